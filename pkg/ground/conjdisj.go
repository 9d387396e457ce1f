package ground

// CompileConjunction lowers a body conjunction `head : cond_1, ..., cond_n`
// into a dedicated auxiliary predicate per §4.6 "Conjunctions and
// disjunctions": one accumulation path materialises the conditioned head
// clause, a second materialises the condition literals, and a body probe
// fires once every condition has been derived for a given binding of the
// conjunction's outer variables.
//
// globalVars are the variables the enclosing rule needs out of the
// conjunction (typically the free variables of head that also occur
// outside the conjunction); they become the auxiliary predicate's arity,
// exactly as CompileBodyAggregate's globals do.
func CompileConjunction(head *FunctionTerm, cond []BodyLit, globalVars []*VarRef, loc Location, names *AuxNames, vt *VarTable) CompiledAggregate {
	completeName := names.Complete()
	globalTerms := varTerms(globalVars)
	completeAtom := NewFunctionTerm(completeName, false, globalTerms)

	headBody := append([]BodyLit{NewSimpleBody(NAFNone, head, loc)}, cond...)
	headRule := &Rule{
		Head: simpleHead(completeAtom),
		Body: headBody,
		Loc:  loc,
		Vars: vt,
	}

	condRule := &Rule{
		Head: simpleHead(completeAtom),
		Body: append([]BodyLit{}, cond...),
		Loc:  loc,
		Vars: vt,
	}

	return CompiledAggregate{
		AuxRules: []*Rule{headRule, condRule},
		Probe:    NewSimpleBody(NAFNone, completeAtom, loc),
	}
}

// CompileDisjunction lowers a head disjunction per §4.6's dual scheme: a
// single disjunction-complete rule establishes that at least one
// disjunct's condition held, and one disjunction-accumulate rule per
// element re-derives that specific element's own atom so the emitter can
// still recover which disjunct(s) are eligible (§6.2's disjunction event
// needs each element, not just "some element fired"). Elements marked
// Choice compile identically; the choice/strict distinction is the
// emitter's concern (it receives Choice on each DisjunctionElement), not
// this compiler's.
func CompileDisjunction(elements []DisjunctionElement, cond []BodyLit, globalVars []*VarRef, loc Location, names *AuxNames, vt *VarTable) (completeProbe BodyLit, accumulate []*Rule) {
	completeName := names.Complete()
	globalTerms := varTerms(globalVars)
	completeAtom := NewFunctionTerm(completeName, false, globalTerms)

	for _, elem := range elements {
		accumulate = append(accumulate, &Rule{
			Head: simpleHead(elem.Atom),
			Body: append(append([]BodyLit{}, cond...), NewSimpleBody(NAFNone, completeAtom, loc)),
			Loc:  loc,
			Vars: vt,
		})
	}

	completeRule := &Rule{
		Head: simpleHead(completeAtom),
		Body: cond,
		Loc:  loc,
		Vars: vt,
	}
	accumulate = append([]*Rule{completeRule}, accumulate...)

	return NewSimpleBody(NAFNone, completeAtom, loc), accumulate
}
