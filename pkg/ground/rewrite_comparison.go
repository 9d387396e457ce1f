package ground

// ComparisonStep is one `Rel Term` step following the leading term of a
// parsed comparison chain `t0 R1 t1 R2 t2 ... Rn tn`, as the external
// builder hands a chain to the rewriter before this pass lowers it into the
// adjacent-pair BodyComparison literals the rest of the pipeline expects.
type ComparisonStep struct {
	Rel  Rel
	Term Term
}

// ComparisonChain is a parsed multi-relation chain, optionally carrying a
// NAF prefix over the whole chain (`not (a < b < c)`).
type ComparisonChain struct {
	First Term
	Steps []ComparisonStep
	NAF   NAF
	Loc   Location
}

// UnchainComparison lowers a chain into the body literal(s) it stands for.
// A positive chain becomes the adjacent-pair conjunction `t0 R1 t1, t1 R2
// t2, ...`. A negated chain applies De Morgan's law: the negation of that
// conjunction is a disjunction of negated steps, which cannot be written
// directly as body literals, so it is compiled into a dedicated auxiliary
// predicate the same way a disjunctive head is (see conjdisj.go's
// CompileDisjunction) — one auxiliary-deriving rule per negated step, and a
// single probe literal standing in for "at least one step's negation
// holds". Used uniformly for a rule's own body, an aggregate element's
// condition, or a disjunction element's condition: each call's returned
// literals are scoped to append into that one element's own condition list,
// which is what makes the chain's expansion compute element-wise rather
// than fanning out across sibling elements.
func UnchainComparison(c ComparisonChain, names *AuxNames, vt *VarTable) (lits []BodyLit, auxRules []*Rule) {
	if c.NAF == NAFNone {
		return unchainPositive(c), nil
	}
	probe, rules := unchainNegated(c, names, vt)
	return []BodyLit{probe}, rules
}

func unchainPositive(c ComparisonChain) []BodyLit {
	out := make([]BodyLit, len(c.Steps))
	left := c.First
	for i, step := range c.Steps {
		out[i] = NewComparisonBody(left, step.Rel, step.Term, c.Loc)
		left = step.Term
	}
	return out
}

// unchainNegated compiles the De Morgan disjunction of a negated chain's
// steps into one auxiliary predicate: a rule per negated step derives it,
// and the chain's own body position becomes a probe literal for it.
func unchainNegated(c ComparisonChain, names *AuxNames, vt *VarTable) (BodyLit, []*Rule) {
	atom := NewFunctionTerm(names.Complete(), false, nil)
	var rules []*Rule
	left := c.First
	for _, step := range c.Steps {
		negated := NewComparisonBody(left, step.Rel.Negate(), step.Term, c.Loc)
		rules = append(rules, &Rule{
			Head: Head{Kind: HeadSimple, Atom: atom, Loc: c.Loc},
			Body: []BodyLit{negated},
			Loc:  c.Loc,
			Vars: vt,
		})
		left = step.Term
	}
	return NewSimpleBody(NAFNone, atom, c.Loc), rules
}
