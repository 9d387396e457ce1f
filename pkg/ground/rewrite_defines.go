package ground

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrConstantCycle names a cycle among #const declarations. DefineSet.Resolve
// does not return it: on a cycle Resolve returns (nil, false) and the
// Diagnostics sink receives a located error naming the cycle's members.
var ErrConstantCycle = errors.New("ground: constant definition cycle")

// Define is one `#const name = value` declaration as the external builder
// hands it to the rewriter, before any other define it references has been
// resolved.
type Define struct {
	Name    string
	Value   Term
	Default bool // true for a default define that a non-default one of the same name overrides (see Add)
	Loc     Location
}

// DefineSet accumulates every #const declaration seen across a program and
// resolves them into one name -> ground-term substitution, honoring the
// default/non-default override rule and rejecting cyclic definitions.
type DefineSet struct {
	byName map[string]*Define
	order  []string // first-sight order, for deterministic cycle reporting
	diags  *Diagnostics
}

// NewDefineSet returns an empty set that reports conflicts and cycles to
// diags.
func NewDefineSet(diags *Diagnostics) *DefineSet {
	return &DefineSet{byName: make(map[string]*Define), diags: diags}
}

// Add records one #const declaration. A default define is silently
// overridden by a later non-default one; two non-default defines of the same
// name is a redefinition error (the first one recorded wins); a default
// losing to an already-recorded non-default one is silently dropped, since
// the non-default already takes precedence regardless of order.
func (ds *DefineSet) Add(d Define) {
	existing, ok := ds.byName[d.Name]
	if !ok {
		cp := d
		ds.byName[d.Name] = &cp
		ds.order = append(ds.order, d.Name)
		return
	}
	switch {
	case existing.Default && !d.Default:
		cp := d
		ds.byName[d.Name] = &cp
	case !existing.Default && d.Default:
		// Non-default already recorded takes precedence; ignore.
	default:
		ds.diags.Error(DiagRuntimeError, d.Loc, "constant %q redefined (first defined at %s)", d.Name, existing.Loc)
	}
}

// Resolve topologically sorts the recorded defines by their cross-references
// to one another, rejecting a cycle with one error diagnostic naming every
// member, then fixed-point rewrites each right-hand side in dependency order
// (substituting every already-resolved define into later ones) and returns
// the final name -> ground-term map. Returns nil, false on a cycle.
func (ds *DefineSet) Resolve() (map[string]Term, bool) {
	order, ok := ds.topoSort()
	if !ok {
		return nil, false
	}
	resolved := make(map[string]Term, len(order))
	for _, name := range order {
		d := ds.byName[name]
		resolved[name] = substituteDefineRefs(d.Value, resolved)
	}
	return resolved, true
}

// topoSort orders the recorded defines so that every define referenced by
// another's value comes first. A cycle is reported as a single error listing
// every name on the cycle, in first-sight order, and (nil, false) returned.
func (ds *DefineSet) topoSort() ([]string, bool) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(ds.byName))
	var order []string
	var cycle []string
	var cycleStart string
	closed := false
	var ok = true

	var visit func(name string) bool
	visit = func(name string) bool {
		switch color[name] {
		case black:
			return true
		case gray:
			cycle = append(cycle, name)
			cycleStart, closed = name, false
			return false
		}
		color[name] = gray
		d := ds.byName[name]
		refs := map[string]bool{}
		collectDefineRefs(d.Value, ds.byName, refs)
		var sortedRefs []string
		for r := range refs {
			sortedRefs = append(sortedRefs, r)
		}
		sort.Strings(sortedRefs)
		for _, r := range sortedRefs {
			if !visit(r) {
				if color[name] == gray && !closed {
					cycle = append(cycle, name)
					closed = name == cycleStart
				}
				color[name] = black
				return false
			}
		}
		color[name] = black
		order = append(order, name)
		return true
	}

	for _, name := range ds.order {
		if color[name] == white {
			if !visit(name) {
				ok = false
			}
		}
	}

	if !ok {
		loc := ds.byName[cycle[0]].Loc
		ds.diags.Error(DiagRuntimeError, loc, "cyclic constant definition: %s", strings.Join(reverseStrings(cycle), " -> "))
		return nil, false
	}
	return order, true
}

func reverseStrings(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// collectDefineRefs appends every name in names that t references as a
// bare 0-arity function (the only shape a #const reference can take) to out.
func collectDefineRefs(t Term, names map[string]*Define, out map[string]bool) {
	switch v := t.(type) {
	case *FunctionTerm:
		if len(v.Args) == 0 {
			if _, ok := names[v.Name]; ok {
				out[v.Name] = true
			}
		}
		for _, a := range v.Args {
			collectDefineRefs(a, names, out)
		}
	case *UnaryTerm:
		collectDefineRefs(v.Arg, names, out)
	case *BinaryTerm:
		collectDefineRefs(v.Left, names, out)
		collectDefineRefs(v.Right, names, out)
	case *RangeTerm:
		collectDefineRefs(v.Left, names, out)
		collectDefineRefs(v.Right, names, out)
	case *PoolTerm:
		for _, a := range v.Alternatives {
			collectDefineRefs(a, names, out)
		}
	case *ScriptTerm:
		for _, a := range v.Args {
			collectDefineRefs(a, names, out)
		}
	}
}

// substituteDefineRefs replaces every bare 0-arity function reference to a
// name in resolved with that define's already-resolved term, recursively.
func substituteDefineRefs(t Term, resolved map[string]Term) Term {
	switch v := t.(type) {
	case *FunctionTerm:
		if len(v.Args) == 0 {
			if rep, ok := resolved[v.Name]; ok {
				return rep
			}
			return v
		}
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = substituteDefineRefs(a, resolved)
		}
		return &FunctionTerm{Name: v.Name, Sign: v.Sign, Args: args}
	case *UnaryTerm:
		return &UnaryTerm{Op: v.Op, Arg: substituteDefineRefs(v.Arg, resolved)}
	case *BinaryTerm:
		return &BinaryTerm{Op: v.Op, Left: substituteDefineRefs(v.Left, resolved), Right: substituteDefineRefs(v.Right, resolved)}
	case *RangeTerm:
		return &RangeTerm{Left: substituteDefineRefs(v.Left, resolved), Right: substituteDefineRefs(v.Right, resolved)}
	case *PoolTerm:
		alts := make([]Term, len(v.Alternatives))
		for i, a := range v.Alternatives {
			alts[i] = substituteDefineRefs(a, resolved)
		}
		return &PoolTerm{Alternatives: alts}
	case *ScriptTerm:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = substituteDefineRefs(a, resolved)
		}
		return &ScriptTerm{Name: v.Name, Args: args}
	default:
		return t
	}
}

// SubstituteDefinesInRule replaces every define reference throughout r's
// head and body with its resolved value, in place in the sense that it
// returns a new Rule sharing r's Vars and Loc (terms are rebuilt bottom-up,
// so no partially-substituted term is ever mutated after the fact).
func SubstituteDefinesInRule(r *Rule, resolved map[string]Term) *Rule {
	return &Rule{
		Head: substituteDefinesInHead(r.Head, resolved),
		Body: substituteDefinesInBody(r.Body, resolved),
		Loc:  r.Loc,
		Vars: r.Vars,
	}
}

func substituteDefinesInHead(h Head, resolved map[string]Term) Head {
	out := h
	if h.Atom != nil {
		out.Atom = substituteDefineRefs(h.Atom, resolved).(*FunctionTerm)
	}
	if h.Target != nil {
		out.Target = substituteDefineRefs(h.Target, resolved).(*FunctionTerm)
	}
	if len(h.Elements) > 0 {
		elems := make([]DisjunctionElement, len(h.Elements))
		for i, e := range h.Elements {
			elems[i] = DisjunctionElement{Atom: substituteDefineRefs(e.Atom, resolved).(*FunctionTerm), Choice: e.Choice}
		}
		out.Elements = elems
	}
	if h.Lower != nil {
		lo := *h.Lower
		lo.Term = substituteDefineRefs(lo.Term, resolved)
		out.Lower = &lo
	}
	if h.Upper != nil {
		hi := *h.Upper
		hi.Term = substituteDefineRefs(hi.Term, resolved)
		out.Upper = &hi
	}
	if len(h.AggElements) > 0 {
		elems := make([]HeadAggregateElement, len(h.AggElements))
		for i, e := range h.AggElements {
			tuple := make([]Term, len(e.Tuple))
			for j, t := range e.Tuple {
				tuple[j] = substituteDefineRefs(t, resolved)
			}
			elems[i] = HeadAggregateElement{
				Tuple:     tuple,
				Literal:   substituteDefineRefs(e.Literal, resolved).(*FunctionTerm),
				Condition: substituteDefinesInBody(e.Condition, resolved),
			}
		}
		out.AggElements = elems
	}
	if h.Weight != nil {
		out.Weight = substituteDefineRefs(h.Weight, resolved)
	}
	if len(h.Terms) > 0 {
		terms := make([]Term, len(h.Terms))
		for i, t := range h.Terms {
			terms[i] = substituteDefineRefs(t, resolved)
		}
		out.Terms = terms
	}
	if h.Bias != nil {
		out.Bias = substituteDefineRefs(h.Bias, resolved)
	}
	if h.HeuristicPrio != nil {
		out.HeuristicPrio = substituteDefineRefs(h.HeuristicPrio, resolved)
	}
	if len(h.Condition) > 0 {
		out.Condition = substituteDefinesInBody(h.Condition, resolved)
	}
	return out
}

func substituteDefinesInBody(body []BodyLit, resolved map[string]Term) []BodyLit {
	if len(body) == 0 {
		return body
	}
	out := make([]BodyLit, len(body))
	for i, lit := range body {
		out[i] = substituteDefinesInLit(lit, resolved)
	}
	return out
}

func substituteDefinesInLit(lit BodyLit, resolved map[string]Term) BodyLit {
	out := lit
	switch lit.Kind {
	case BodySimple:
		out.Atom = substituteDefineRefs(lit.Atom, resolved).(*FunctionTerm)
	case BodyComparison:
		out.Left = substituteDefineRefs(lit.Left, resolved)
		out.Right = substituteDefineRefs(lit.Right, resolved)
	case BodyAggregateLit:
		agg := *lit.Aggregate
		if agg.Lower != nil {
			lo := *agg.Lower
			lo.Term = substituteDefineRefs(lo.Term, resolved)
			agg.Lower = &lo
		}
		if agg.Upper != nil {
			hi := *agg.Upper
			hi.Term = substituteDefineRefs(hi.Term, resolved)
			agg.Upper = &hi
		}
		elems := make([]AggregateElement, len(agg.Elements))
		for i, e := range agg.Elements {
			tuple := make([]Term, len(e.Tuple))
			for j, t := range e.Tuple {
				tuple[j] = substituteDefineRefs(t, resolved)
			}
			elems[i] = AggregateElement{Tuple: tuple, Condition: substituteDefinesInBody(e.Condition, resolved)}
		}
		agg.Elements = elems
		out.Aggregate = &agg
	case BodyConjunction:
		out.Atom = substituteDefineRefs(lit.Atom, resolved).(*FunctionTerm)
		out.Conditions = substituteDefinesInBody(lit.Conditions, resolved)
	case BodyTheory:
		th := *lit.Theory
		elems := make([]TheoryElement, len(th.Elements))
		for i, e := range th.Elements {
			tuple := make([]Term, len(e.Tuple))
			for j, t := range e.Tuple {
				tuple[j] = substituteDefineRefs(t, resolved)
			}
			elems[i] = TheoryElement{Tuple: tuple, Condition: substituteDefinesInBody(e.Condition, resolved)}
		}
		th.Elements = elems
		if th.Guard != nil {
			g := *th.Guard
			g.Term = substituteDefineRefs(g.Term, resolved)
			th.Guard = &g
		}
		out.Theory = &th
	}
	return out
}
