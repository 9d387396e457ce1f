package ground

import "testing"

func TestPlanSafetyBindsThroughPositiveLiteral(t *testing.T) {
	vt := NewVarTable()
	x := vt.Ref("X", 0)
	body := []BodyLit{
		NewSimpleBody(NAFNone, &FunctionTerm{Name: "p", Args: []Term{&VariableTerm{Ref: x}}}, Location{}),
	}
	sched, err := PlanSafety(body, []*VarRef{x}, Location{}, nil)
	if err != nil {
		t.Fatalf("expected a safe schedule, got error: %v", err)
	}
	if len(sched.Order) != 1 {
		t.Fatalf("expected one scheduled literal, got %d", len(sched.Order))
	}
}

func TestPlanSafetyRejectsUnboundVariable(t *testing.T) {
	vt := NewVarTable()
	x := vt.Ref("X", 0)
	// `not p(X)` never binds X.
	body := []BodyLit{
		NewSimpleBody(NAFNot, &FunctionTerm{Name: "p", Args: []Term{&VariableTerm{Ref: x}}}, Location{}),
	}
	_, err := PlanSafety(body, []*VarRef{x}, Location{}, nil)
	if err == nil {
		t.Fatal("expected an unsafe-variable error")
	}
	unsafe, ok := err.(*Unsafe)
	if !ok {
		t.Fatalf("expected *Unsafe, got %T", err)
	}
	if len(unsafe.Vars) != 1 || unsafe.Vars[0].Name != "X" {
		t.Fatalf("expected X reported unsafe, got %v", unsafe.Vars)
	}
}

func TestPlanSafetyOrdersPositiveBeforeNegative(t *testing.T) {
	vt := NewVarTable()
	x := vt.Ref("X", 0)
	pos := NewSimpleBody(NAFNone, &FunctionTerm{Name: "p", Args: []Term{&VariableTerm{Ref: x}}}, Location{})
	neg := NewSimpleBody(NAFNot, &FunctionTerm{Name: "q", Args: []Term{&VariableTerm{Ref: x}}}, Location{})
	body := []BodyLit{neg, pos}
	sched, err := PlanSafety(body, []*VarRef{x}, Location{}, nil)
	if err != nil {
		t.Fatalf("expected a safe schedule, got error: %v", err)
	}
	if len(sched.Order) != 2 {
		t.Fatalf("expected both literals scheduled, got %d", len(sched.Order))
	}
	if sched.Order[0].Atom.Name != "p" {
		t.Fatalf("expected the positive literal to schedule first, got %s", sched.Order[0].Atom.Name)
	}
}

func TestPlanSafetyAssignmentBindsLeftVariable(t *testing.T) {
	vt := NewVarTable()
	x := vt.Ref("X", 0)
	body := []BodyLit{
		NewComparisonBody(&VariableTerm{Ref: x}, RelEq, &ValueTerm{Sym: NewNumber(3)}, Location{}),
	}
	sched, err := PlanSafety(body, []*VarRef{x}, Location{}, nil)
	if err != nil {
		t.Fatalf("expected `X = 3` to safely bind X, got error: %v", err)
	}
	if len(sched.Order) != 1 {
		t.Fatalf("expected one scheduled literal, got %d", len(sched.Order))
	}
}
