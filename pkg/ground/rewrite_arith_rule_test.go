package ground

import "testing"

func TestLiftArithmeticsInRuleExtractsNonInvertibleExpression(t *testing.T) {
	vt := NewVarTable()
	x := vt.Ref("X", 0)
	loc := Location{}
	expr := &BinaryTerm{Op: OpMul, Left: &VariableTerm{Ref: x}, Right: &VariableTerm{Ref: x}}
	body := []BodyLit{NewComparisonBody(&VariableTerm{Ref: vt.Ref("Y", 0)}, RelEq, expr, loc)}
	r := &Rule{Head: Head{Kind: HeadSimple, Atom: NewFunctionTerm("p", false, nil)}, Body: body, Loc: loc, Vars: vt}

	st := NewArithState(vt)
	out := LiftArithmeticsInRule(r, st, false)

	if _, ok := out.Body[0].Right.(*VariableTerm); !ok {
		t.Fatalf("expected the non-invertible product to be replaced by a fresh variable, got %v", out.Body[0].Right)
	}
	if len(out.Body) != 2 {
		t.Fatalf("expected one extra equality literal for the lifted expression, got %d body literals", len(out.Body))
	}
	if out.Body[1].Rel != RelEq {
		t.Fatal("expected the lifted equation to be an equality literal")
	}
}

func TestLiftArithmeticsInRuleLeavesInvertibleExpressionAlone(t *testing.T) {
	vt := NewVarTable()
	x := vt.Ref("X", 0)
	loc := Location{}
	expr := &BinaryTerm{Op: OpAdd, Left: &VariableTerm{Ref: x}, Right: &ValueTerm{Sym: NewNumber(1)}}
	body := []BodyLit{NewComparisonBody(&VariableTerm{Ref: vt.Ref("Y", 0)}, RelEq, expr, loc)}
	r := &Rule{Head: Head{Kind: HeadSimple, Atom: NewFunctionTerm("p", false, nil)}, Body: body, Loc: loc, Vars: vt}

	st := NewArithState(vt)
	out := LiftArithmeticsInRule(r, st, false)

	if len(out.Body) != 1 {
		t.Fatalf("expected no extra literal for an invertible expression, got %d body literals", len(out.Body))
	}
}
