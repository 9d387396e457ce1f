package ground

import "fmt"

// TheoryAtomKind mirrors the four contexts a theory definition may permit a
// theory atom to occur in.
type TheoryAtomKind uint8

const (
	TheoryAtomHead TheoryAtomKind = iota
	TheoryAtomBody
	TheoryAtomAny
	TheoryAtomDirective
)

func (k TheoryAtomKind) String() string {
	switch k {
	case TheoryAtomHead:
		return "head"
	case TheoryAtomBody:
		return "body"
	case TheoryAtomAny:
		return "any"
	case TheoryAtomDirective:
		return "directive"
	default:
		return "?"
	}
}

// Permits reports whether this atom kind allows occurrence in ctx.
func (k TheoryAtomKind) Permits(ctx TheoryAtomContext) bool {
	if k == TheoryAtomAny {
		return true
	}
	switch ctx {
	case TheoryCtxHead:
		return k == TheoryAtomHead
	case TheoryCtxBody:
		return k == TheoryAtomBody
	case TheoryCtxDirective:
		return k == TheoryAtomDirective
	default:
		return false
	}
}

// TheoryOperatorKind mirrors whether a theory operator is unary or a
// left/right-associative binary operator.
type TheoryOperatorKind uint8

const (
	TheoryOpUnary TheoryOperatorKind = iota
	TheoryOpBinaryLeft
	TheoryOpBinaryRight
)

// TheoryOperatorDef is one operator a theory term grammar recognizes, at a
// given precedence (higher binds tighter, matching the source's convention).
type TheoryOperatorDef struct {
	Name       string
	Kind       TheoryOperatorKind
	Precedence int
}

// TheoryTermDef names the set of operators permitted inside a theory term
// of one theory-term-type (e.g. the grammar governing `#theory` term
// definitions like `term { + : 3, binary, left; - : 2, unary }`).
type TheoryTermDef struct {
	Name      string
	Operators []TheoryOperatorDef
}

func (d *TheoryTermDef) operator(name string, kind TheoryOperatorKind) (TheoryOperatorDef, bool) {
	for _, op := range d.Operators {
		if op.Name == name && op.Kind == kind {
			return op, true
		}
	}
	return TheoryOperatorDef{}, false
}

// TheoryAtomDef names one theory atom signature's permitted element term
// type, optional guard operators, and occurrence context.
type TheoryAtomDef struct {
	Name         string
	Arity        int
	ElementType  string // name of the TheoryTermDef governing each element's tuple terms
	GuardOps     []string
	GuardType    string // name of the TheoryTermDef governing the guard term, if any
	Kind         TheoryAtomKind
}

// TheoryDef is one `#theory name { ... }` declaration, carrying the term
// grammars and atom signatures it defines.
type TheoryDef struct {
	Name  string
	Terms map[string]*TheoryTermDef
	Atoms map[Signature]*TheoryAtomDef
	Loc   Location
}

// TheoryDefSet accumulates every #theory declaration seen in a program,
// rejecting a second definition of the same theory name (the source's
// `TheoryDefMap` duplicate check, reported as a runtime-error diagnostic
// rather than silently keeping the first or the last).
type TheoryDefSet struct {
	byName map[string]*TheoryDef
	diags  *Diagnostics
}

// NewTheoryDefSet returns an empty set reporting conflicts to diags.
func NewTheoryDefSet(diags *Diagnostics) *TheoryDefSet {
	return &TheoryDefSet{byName: make(map[string]*TheoryDef), diags: diags}
}

// Add records one #theory declaration, rejecting a redefinition of the same
// name.
func (ts *TheoryDefSet) Add(def *TheoryDef) {
	if existing, ok := ts.byName[def.Name]; ok {
		ts.diags.Error(DiagRuntimeError, def.Loc, "redefinition of theory %q (first defined at %s)", def.Name, existing.Loc)
		return
	}
	ts.byName[def.Name] = def
}

// Lookup returns the named theory definition, or nil if none was declared.
func (ts *TheoryDefSet) Lookup(name string) *TheoryDef {
	return ts.byName[name]
}

// ResolveTheoryAtom checks a theory atom occurrence against the atom
// signature declared in def, validating its occurrence context, its
// element/guard term shapes against the declared operator grammar, and
// (recursively, via checkTheoryTerm) every operator actually used inside its
// element tuples and guard term. It reports every violation to diags and
// returns false if any was found; callers drop the enclosing rule on
// failure, per the "no ground output for the affected rule" band-2 rule.
func ResolveTheoryAtom(atom *TheoryAtom, ctx TheoryAtomContext, def *TheoryDef, loc Location, diags *Diagnostics) bool {
	adef, ok := lookupAtomDef(def, atom.Name)
	if !ok {
		diags.Error(DiagAtomUndefined, loc, "theory atom %q has no matching definition in theory %q", atom.Name, def.Name)
		return false
	}
	ok = true
	if !adef.Kind.Permits(ctx) {
		diags.Error(DiagRuntimeError, loc, "theory atom %q is not permitted in %s context (declared %s)", atom.Name, contextName(ctx), adef.Kind)
		ok = false
	}

	elemDef := def.Terms[adef.ElementType]
	for _, e := range atom.Elements {
		if adef.Arity != 0 && len(e.Tuple) != adef.Arity {
			diags.Error(DiagRuntimeError, loc, "theory atom %q expects a %d-term tuple, got %d", atom.Name, adef.Arity, len(e.Tuple))
			ok = false
		}
		for _, t := range e.Tuple {
			if !checkTheoryTerm(t, elemDef, diags, loc) {
				ok = false
			}
		}
	}

	if atom.Guard != nil {
		if !containsString(adef.GuardOps, atom.Guard.Operator) {
			diags.Error(DiagRuntimeError, loc, "theory atom %q does not permit guard operator %q", atom.Name, atom.Guard.Operator)
			ok = false
		}
		guardDef := def.Terms[adef.GuardType]
		if !checkTheoryTerm(atom.Guard.Term, guardDef, diags, loc) {
			ok = false
		}
	}
	// A definition that declares guard operators but whose occurrence
	// supplies no guard at all is permitted: the guard is always optional.

	return ok
}

func lookupAtomDef(def *TheoryDef, name string) (*TheoryAtomDef, bool) {
	for _, a := range def.Atoms {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

func contextName(ctx TheoryAtomContext) string {
	switch ctx {
	case TheoryCtxHead:
		return "head"
	case TheoryCtxBody:
		return "body"
	case TheoryCtxDirective:
		return "directive"
	default:
		return "any"
	}
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// checkTheoryTerm walks t looking for UnaryTerm/BinaryTerm-shaped operator
// applications encoded as 1- or 2-argument FunctionTerm nodes (the grammar a
// theory term builder constructs for an operator application) and checks
// each one's operator name and arity against termDef. A nil termDef (no
// matching TheoryTermDef name) means the theory declared an element or guard
// type it never itself defined, reported once per occurrence.
func checkTheoryTerm(t Term, termDef *TheoryTermDef, diags *Diagnostics, loc Location) bool {
	if termDef == nil {
		diags.Error(DiagRuntimeError, loc, "theory term grammar references an undefined term type")
		return false
	}
	ft, ok := t.(*FunctionTerm)
	if !ok {
		return true
	}
	ok = true
	switch len(ft.Args) {
	case 1:
		if _, found := termDef.operator(ft.Name, TheoryOpUnary); !found {
			diags.Error(DiagRuntimeError, loc, "theory term grammar %q has no unary operator %q", termDef.Name, ft.Name)
			ok = false
		}
	case 2:
		_, left := termDef.operator(ft.Name, TheoryOpBinaryLeft)
		_, right := termDef.operator(ft.Name, TheoryOpBinaryRight)
		if !left && !right {
			diags.Error(DiagRuntimeError, loc, "theory term grammar %q has no binary operator %q", termDef.Name, ft.Name)
			ok = false
		}
	}
	for _, a := range ft.Args {
		if !checkTheoryTerm(a, termDef, diags, loc) {
			ok = false
		}
	}
	return ok
}

// String renders a TheoryDef for diagnostic messages and debugging.
func (d *TheoryDef) String() string {
	return fmt.Sprintf("#theory %s", d.Name)
}
