package ground

// AtomNeedsProjection reports whether atom carries at least one direct
// positional argument that is an anonymous variable marked for projection
// (set by the simplifier's positional/anonymous handling, see
// rewrite_simplify.go's `positional` parameter).
func AtomNeedsProjection(atom *FunctionTerm) bool {
	for _, a := range atom.Args {
		if v, ok := a.(*VariableTerm); ok && v.Ref.Project {
			return true
		}
	}
	return false
}

// ProjectAtom rewrites atom into its projection form: a dedicated auxiliary
// predicate `#p_<name>` over the same argument positions, plus the
// derivation rule `#p_<name>(args) :- name(args)` that lets the original
// atom continue to supply it. The auxiliary predicate, not the original
// atom, is what other rules referencing this projected position should
// query from here on.
func ProjectAtom(atom *FunctionTerm, loc Location, vt *VarTable) (*FunctionTerm, *Rule) {
	proj := &FunctionTerm{Name: "#p_" + atom.Name, Sign: atom.Sign, Args: atom.Args}
	derive := &Rule{
		Head: Head{Kind: HeadSimple, Atom: proj, Loc: loc},
		Body: []BodyLit{NewSimpleBody(NAFNone, atom, loc)},
		Loc:  loc,
		Vars: vt,
	}
	return proj, derive
}

// ProjectionState accumulates one derivation rule per distinct predicate
// signature that ever needs projecting, across the whole rewriter run: many
// rules can reference the same projected predicate, but its
// `#p_<name>(args) :- name(args)` derivation only needs to exist once.
type ProjectionState struct {
	seen  map[Signature]bool
	Rules []*Rule
}

// NewProjectionState returns an empty state.
func NewProjectionState() *ProjectionState {
	return &ProjectionState{seen: make(map[Signature]bool)}
}

func (ps *ProjectionState) project(atom *FunctionTerm, loc Location, vt *VarTable) *FunctionTerm {
	proj, derive := ProjectAtom(atom, loc, vt)
	if sig := atom.Signature(); !ps.seen[sig] {
		ps.seen[sig] = true
		ps.Rules = append(ps.Rules, derive)
	}
	return proj
}

// RewriteProjections rewrites every body-literal occurrence of an atom that
// needs projection into its `#p_<name>` form, recording the (deduplicated)
// derivation rule in ps. Singleton projection inside an aggregate element's
// tuple or condition is deliberately left disabled, per the spec's explicit
// pin against it: only BodySimple and BodyConjunction's own head atom are
// ever rewritten here.
func RewriteProjections(r *Rule, ps *ProjectionState) *Rule {
	body := make([]BodyLit, len(r.Body))
	for i, lit := range r.Body {
		body[i] = rewriteProjectionsInLit(lit, ps, r.Vars)
	}
	return &Rule{Head: r.Head, Body: body, Loc: r.Loc, Vars: r.Vars}
}

func rewriteProjectionsInLit(lit BodyLit, ps *ProjectionState, vt *VarTable) BodyLit {
	switch lit.Kind {
	case BodySimple:
		if AtomNeedsProjection(lit.Atom) {
			lit.Atom = ps.project(lit.Atom, lit.Loc, vt)
		}
		return lit
	case BodyConjunction:
		if AtomNeedsProjection(lit.Atom) {
			lit.Atom = ps.project(lit.Atom, lit.Loc, vt)
		}
		return lit
	default:
		return lit
	}
}
