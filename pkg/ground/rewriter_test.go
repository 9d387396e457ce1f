package ground

import "testing"

func TestRewriteProgramAppliesDefinesThenSimplifiesAndPlansAssignments(t *testing.T) {
	vt := NewVarTable()
	x := vt.Ref("X", 0)
	loc := Location{}

	// p(X) :- q(X), X = N+1.  (N a #const)
	define := NewDefineSet(newTestDiagnostics())
	define.Add(Define{Name: "n", Value: &ValueTerm{Sym: NewNumber(4)}, Loc: loc})

	body := []BodyLit{
		NewSimpleBody(NAFNone, NewFunctionTerm("q", false, []Term{&VariableTerm{Ref: x}}), loc),
		NewComparisonBody(
			&BinaryTerm{Op: OpAdd, Left: NewFunctionTerm("n", false, nil), Right: &ValueTerm{Sym: NewNumber(1)}},
			RelEq,
			&VariableTerm{Ref: x},
			loc,
		),
	}
	r := &Rule{Head: Head{Kind: HeadSimple, Atom: NewFunctionTerm("p", false, []Term{&VariableTerm{Ref: x}})}, Body: body, Loc: loc, Vars: vt}

	diags := newTestDiagnostics()
	out := RewriteProgram([]*Rule{r}, define, nil, diags)
	if diags.HasError {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	if len(out) != 1 {
		t.Fatalf("expected exactly one rewritten rule, got %d", len(out))
	}

	cmp := out[0].Body[1]
	if cmp.Kind != BodyComparison || cmp.Rel != RelEq {
		t.Fatalf("expected the second body literal to stay an equality comparison, got %v", cmp)
	}
	if _, ok := cmp.Left.(*VariableTerm); !ok {
		t.Fatalf("expected assignment planning to put the free variable on the left, got %v", cmp.Left)
	}
	val, ok := cmp.Right.(*ValueTerm)
	if !ok || val.Sym.Number() != 5 {
		t.Fatalf("expected the #const substitution and constant folding to resolve n+1 to 5, got %v", cmp.Right)
	}
}

func TestRewriteProgramStopsOnUnresolvedDefineCycle(t *testing.T) {
	define := NewDefineSet(newTestDiagnostics())
	loc := Location{}
	define.Add(Define{Name: "a", Value: NewFunctionTerm("b", false, nil), Loc: loc})
	define.Add(Define{Name: "b", Value: NewFunctionTerm("a", false, nil), Loc: loc})

	out := RewriteProgram(nil, define, nil, newTestDiagnostics())
	if out != nil {
		t.Fatal("expected a cyclic define set to abort the pipeline with no rules produced")
	}
}
