package ground

import "testing"

func TestSimplifyRuleFoldsHeadAndBodyConstants(t *testing.T) {
	vt := NewVarTable()
	loc := Location{}
	sum := &BinaryTerm{Op: OpAdd, Left: &ValueTerm{Sym: NewNumber(1)}, Right: &ValueTerm{Sym: NewNumber(2)}}
	head := Head{Kind: HeadSimple, Atom: NewFunctionTerm("p", false, []Term{sum}), Loc: loc}
	body := []BodyLit{NewComparisonBody(sum.Clone(), RelEq, &ValueTerm{Sym: NewNumber(3)}, loc)}
	r := &Rule{Head: head, Body: body, Loc: loc, Vars: vt}

	st := NewSimplifyState(vt)
	out, err := SimplifyRule(r, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.Head.Atom.Args[0].(*ValueTerm)
	if got.Sym.Number() != 3 {
		t.Fatalf("expected 1+2 to fold to 3 in the head, got %v", got)
	}
}

func TestSimplifyRuleExtractsDotsAsBoundLiteral(t *testing.T) {
	vt := NewVarTable()
	loc := Location{}
	rng := &RangeTerm{Left: &ValueTerm{Sym: NewNumber(1)}, Right: &ValueTerm{Sym: NewNumber(5)}}
	head := Head{Kind: HeadSimple, Atom: NewFunctionTerm("p", false, []Term{rng}), Loc: loc}
	r := &Rule{Head: head, Loc: loc, Vars: vt}

	st := NewSimplifyState(vt)
	out, err := SimplifyRule(r, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Body) != 1 {
		t.Fatalf("expected one extracted range-binder literal, got %d", len(out.Body))
	}
	if _, ok := out.Body[0].Right.(*RangeTerm); !ok {
		t.Fatalf("expected the extracted literal's right side to stay a RangeTerm, got %v", out.Body[0].Right)
	}
}
