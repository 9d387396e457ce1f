package ground

// LiftArithmeticsInRule runs arithmetic lifting (step 8) over an entire
// rule: every body comparison's Left/Right and every aggregate bound is
// passed through RewriteArithmetics at the rule's top quantification level
// (0), and the accumulated equations are appended as fresh BodyComparison
// literals, mirroring SimplifyRule's extraction pattern for dots/scripts.
// forceDefined is passed through to RewriteArithmetics; RewriteRule passes
// false.
func LiftArithmeticsInRule(r *Rule, st *ArithState, forceDefined bool) *Rule {
	body := make([]BodyLit, len(r.Body))
	for i, lit := range r.Body {
		body[i] = liftArithInLit(lit, st, forceDefined)
	}
	for _, eqn := range st.Equations() {
		body = append(body, NewComparisonBody(&VariableTerm{Ref: eqn.Var}, RelEq, eqn.Expr, r.Loc))
	}
	return &Rule{Head: r.Head, Body: body, Loc: r.Loc, Vars: r.Vars}
}

func liftArithInLit(lit BodyLit, st *ArithState, forceDefined bool) BodyLit {
	switch lit.Kind {
	case BodyComparison:
		lit.Left = RewriteArithmetics(lit.Left, st, 0, forceDefined)
		lit.Right = RewriteArithmetics(lit.Right, st, 0, forceDefined)
	case BodyAggregateLit:
		agg := *lit.Aggregate
		if agg.Lower != nil {
			b := *agg.Lower
			b.Term = RewriteArithmetics(b.Term, st, 0, forceDefined)
			agg.Lower = &b
		}
		if agg.Upper != nil {
			b := *agg.Upper
			b.Term = RewriteArithmetics(b.Term, st, 0, forceDefined)
			agg.Upper = &b
		}
		lit.Aggregate = &agg
	}
	return lit
}
