package ground

import "fmt"

// AuxNames mints fresh, collision-free auxiliary predicate names under the
// reserved `#d` (aggregate/conjunction/disjunction-complete) and `#accu`
// (accumulator) prefixes for one rewriter run. One AuxNames is shared
// across every rule the rewriter compiles in a program, so two rules never
// collide on the same auxiliary signature even if their source rules are
// otherwise unrelated.
type AuxNames struct {
	complete int
	accum    int
}

// Complete mints the next `#d<k>` predicate name.
func (n *AuxNames) Complete() string {
	n.complete++
	return fmt.Sprintf("#d%d", n.complete)
}

// Accumulator mints the next `#accu<k>` predicate name.
func (n *AuxNames) Accumulator() string {
	n.accum++
	return fmt.Sprintf("#accu%d", n.accum)
}

// CompiledAggregate is the result of lowering one aggregate into plain
// rules: AuxRules defines the accumulation chain and the final complete
// predicate, and Probe is the literal the enclosing rule keeps in the
// aggregate's place (a reference to the complete predicate, carrying the
// aggregate's global variables plus the result value).
type CompiledAggregate struct {
	AuxRules []*Rule
	Probe    BodyLit
}

// CompileBodyAggregate lowers agg, appearing with the given global
// variables (the variables the enclosing rule needs from the aggregate's
// scope, other than those local to an element), into the three-part
// compilation §4.6 "Aggregates" names: a per-element seed contributing the
// function's neutral element, one accumulator rule per element advancing a
// running value along a fixed element ordering (0, 1, ..., len(Elements)),
// and a `#d` completion literal once every element's position has been
// visited. The fixed ordering (rather than commutative free combination)
// is what keeps each element's contribution counted exactly once: visiting
// index i requires the accumulated value already reached index i, so no
// element can be skipped or counted twice along any one derivation path.
func CompileBodyAggregate(agg *BodyAggregate, globalVars []*VarRef, loc Location, names *AuxNames, vt *VarTable) CompiledAggregate {
	accuName := names.Accumulator()
	completeName := names.Complete()
	globalTerms := varTerms(globalVars)

	accuAt := func(i int, value Term) *FunctionTerm {
		args := append(append([]Term{}, globalTerms...), constIndex(i), value)
		return NewFunctionTerm(accuName, false, args)
	}

	var rules []*Rule

	// Seed (index 0): reusing each element's own condition as the signal
	// that this aggregate's global tuple is in scope is a conservative
	// choice — it never admits a global tuple no element could otherwise
	// justify, at the cost of the seed rule's body mentioning that
	// element's local variables too (harmless: they don't appear in the
	// head, so distinct local bindings just re-derive the same fact).
	for _, elem := range agg.Elements {
		rules = append(rules, &Rule{
			Head: simpleHead(accuAt(0, &ValueTerm{Sym: agg.Func.Neutral()})),
			Body: append([]BodyLit{}, elem.Condition...),
			Loc:  loc,
			Vars: vt,
		})
	}

	for i, elem := range agg.Elements {
		prevVar := vt.FreshNamed("#AggAcc", 0)
		nextVar := vt.FreshNamed("#AggAcc", 0)

		body := append([]BodyLit{}, elem.Condition...)
		body = append(body, NewSimpleBody(NAFNone, accuAt(i, &VariableTerm{Ref: prevVar}), loc))
		body = append(body, accumulateComparison(agg.Func, elem, prevVar, nextVar, loc))

		rules = append(rules, &Rule{
			Head: simpleHead(accuAt(i+1, &VariableTerm{Ref: nextVar})),
			Body: body,
			Loc:  loc,
			Vars: vt,
		})
	}

	finalVar := vt.FreshNamed("#AggFinal", 0)
	completeAtom := NewFunctionTerm(completeName, false, append(append([]Term{}, globalTerms...), &VariableTerm{Ref: finalVar}))
	rules = append(rules, &Rule{
		Head: simpleHead(completeAtom),
		Body: []BodyLit{NewSimpleBody(NAFNone, accuAt(len(agg.Elements), &VariableTerm{Ref: finalVar}), loc)},
		Loc:  loc,
		Vars: vt,
	})

	return CompiledAggregate{AuxRules: rules, Probe: NewSimpleBody(NAFNone, completeAtom, loc)}
}

func constIndex(i int) Term { return &ValueTerm{Sym: NewNumber(int32(i))} }

// accumulateComparison builds the `Next = combine(Prev, weight)` body
// literal advancing one element's contribution into the running value.
// #min/#max are expressed through a small builtin function symbol the
// instantiation engine evaluates the same way it evaluates any other
// fully-ground function term (see binder.go's script/relation evaluation);
// #count and #sum/#sum+ reduce to ordinary linear/arithmetic forms that
// EvalGround (arith.go) already handles directly.
func accumulateComparison(fn AggregateFunc, elem AggregateElement, prev, next *VarRef, loc Location) BodyLit {
	weight := elementWeight(fn, elem)
	var expr Term
	switch fn {
	case AggCount:
		expr = &LinearTerm{Ref: prev, M: 1, N: 1}
	case AggSum, AggSumPlus:
		expr = &BinaryTerm{Op: OpAdd, Left: &VariableTerm{Ref: prev}, Right: weight}
	case AggMin:
		expr = NewFunctionTerm("#min", false, []Term{&VariableTerm{Ref: prev}, weight})
	case AggMax:
		expr = NewFunctionTerm("#max", false, []Term{&VariableTerm{Ref: prev}, weight})
	default:
		expr = &VariableTerm{Ref: prev}
	}
	return NewComparisonBody(&VariableTerm{Ref: next}, RelEq, expr, loc)
}

// elementWeight returns the term an element contributes to the aggregate:
// the first tuple position for #sum/#sum+/#min/#max, or a constant 1 for
// #count (the element's own multiplicity, independent of its tuple).
func elementWeight(fn AggregateFunc, elem AggregateElement) Term {
	if fn == AggCount {
		return &ValueTerm{Sym: NewNumber(1)}
	}
	if len(elem.Tuple) == 0 {
		return &ValueTerm{Sym: NewNumber(0)}
	}
	return elem.Tuple[0]
}

func varTerms(vars []*VarRef) []Term {
	out := make([]Term, len(vars))
	for i, v := range vars {
		out[i] = &VariableTerm{Ref: v}
	}
	return out
}

func simpleHead(atom *FunctionTerm) Head {
	return Head{Kind: HeadSimple, Atom: atom}
}

// CompileHeadAggregate lowers a head aggregate into a completion predicate
// over the rule's global variables plus one rule per element deriving it
// from that element's own condition. Unlike a body aggregate it builds no
// running-value chain: the aggregate function and its bounds are not
// evaluated here, and no later stage evaluates them either.
func CompileHeadAggregate(h Head, globalVars []*VarRef, loc Location, names *AuxNames, vt *VarTable) CompiledAggregate {
	completeName := names.Complete()
	globalTerms := varTerms(globalVars)
	completeAtom := NewFunctionTerm(completeName, false, globalTerms)

	var rules []*Rule
	for _, elem := range h.AggElements {
		rules = append(rules, &Rule{
			Head: simpleHead(completeAtom),
			Body: elem.Condition,
			Loc:  loc,
			Vars: vt,
		})
	}
	return CompiledAggregate{AuxRules: rules, Probe: NewSimpleBody(NAFNone, completeAtom, loc)}
}
