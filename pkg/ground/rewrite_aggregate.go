package ground

// ShiftSingletonHeadAggregate implements the singleton head-aggregate
// rewriting step: a head aggregate with exactly one element and no bound is
// shifted into the body. The element's own literal becomes the rule's new
// simple head; its condition literals move into the rule body (the
// aggregate's bookkeeping — counting distinct tuples — is moot once there
// is exactly one possible derivation); and its term tuple is replaced by a
// fresh `0`, optionally `0+0` when forceArithCheck is set so the next
// pipeline step's arithmetic lifting still runs a definedness check over it
// (harmless for a literal 0, but it keeps this element on the same code
// path every other weighted element goes through).
//
// Returns (nil, false) when h is not eligible: not a HeadAggregate, not
// exactly one element, or it carries a Lower/Upper bound.
func ShiftSingletonHeadAggregate(r *Rule, forceArithCheck bool) (*Rule, bool) {
	h := r.Head
	if h.Kind != HeadAggregate || len(h.AggElements) != 1 || h.Lower != nil || h.Upper != nil {
		return nil, false
	}
	elem := h.AggElements[0]

	var zero Term = &ValueTerm{Sym: NewNumber(0)}
	if forceArithCheck {
		zero = &BinaryTerm{Op: OpAdd, Left: &ValueTerm{Sym: NewNumber(0)}, Right: &ValueTerm{Sym: NewNumber(0)}}
	}

	body := make([]BodyLit, 0, len(r.Body)+len(elem.Condition)+1)
	body = append(body, r.Body...)
	body = append(body, elem.Condition...)
	if forceArithCheck {
		ref := r.Vars.FreshNamed("#Arith", 0)
		body = append(body, NewComparisonBody(&VariableTerm{Ref: ref}, RelEq, zero, h.Loc))
	}

	return &Rule{
		Head: Head{Kind: HeadSimple, Atom: elem.Literal, Loc: h.Loc},
		Body: body,
		Loc:  r.Loc,
		Vars: r.Vars,
	}, true
}
