package ground

import (
	"testing"

	"github.com/potassco/clingo-sub003/internal/arena"
)

func TestUnifyValueValue(t *testing.T) {
	ar := arena.New()
	m := NewMatcher(ar)
	a := NewGValue(NewNumber(3))
	b := NewGValue(NewNumber(3))
	if !m.Unify(a, b) {
		t.Fatal("expected equal values to unify")
	}
	c := NewGValue(NewNumber(4))
	if m.Unify(a, c) {
		t.Fatal("expected unequal values to fail unification")
	}
}

func TestUnifyValueVariableBinds(t *testing.T) {
	ar := arena.New()
	m := NewMatcher(ar)
	cell := ar.NewCell()
	v := NewGVariable(cell)
	val := NewGValue(NewNumber(7))
	if !m.Unify(v, val) {
		t.Fatal("expected value-variable unification to succeed")
	}
	if ar.State(cell) != arena.BoundValue {
		t.Fatalf("expected cell bound to value, got state %v", ar.State(cell))
	}
	got := ar.Value(cell).(Symbol)
	if got.Number() != 7 {
		t.Fatalf("expected cell bound to 7, got %v", got)
	}
}

func TestUnifyFunctionFunction(t *testing.T) {
	ar := arena.New()
	m := NewMatcher(ar)
	cellX := ar.NewCell()
	pattern := NewGFunction("p", true, []*GTerm{NewGVariable(cellX), NewGValue(NewNumber(2))})
	candidate := NewGFunction("p", true, []*GTerm{NewGValue(NewNumber(1)), NewGValue(NewNumber(2))})
	if !m.Unify(pattern, candidate) {
		t.Fatal("expected function pattern to unify with matching candidate")
	}
	if ar.Value(cellX).(Symbol).Number() != 1 {
		t.Fatal("expected X bound to 1")
	}

	// Arity mismatch fails.
	other := NewGFunction("p", true, []*GTerm{NewGValue(NewNumber(1))})
	m2 := NewMatcher(arena.New())
	cx := m2.Arena.NewCell()
	p2 := NewGFunction("p", true, []*GTerm{NewGVariable(cx), NewGValue(NewNumber(2))})
	if m2.Unify(p2, other) {
		t.Fatal("expected arity mismatch to fail")
	}
}

func TestUnifyFunctionNameSignMismatch(t *testing.T) {
	ar := arena.New()
	m := NewMatcher(ar)
	a := NewGFunction("p", true, nil)
	b := NewGFunction("p", false, nil)
	if m.Unify(a, b) {
		t.Fatal("expected sign mismatch to fail")
	}
	c := NewGFunction("q", true, nil)
	if m.Unify(a, c) {
		t.Fatal("expected name mismatch to fail")
	}
}

func TestUnifyVarVarSharesBinding(t *testing.T) {
	ar := arena.New()
	m := NewMatcher(ar)
	cx := ar.NewCell()
	cy := ar.NewCell()
	x := NewGVariable(cx)
	y := NewGVariable(cy)
	if !m.Unify(x, y) {
		t.Fatal("expected two unbound variables to unify")
	}
	// Binding x afterward should resolve through to y's cell too.
	if !m.Unify(x, NewGValue(NewNumber(5))) {
		t.Fatal("expected binding through the shared chain to succeed")
	}
	if !m.Unify(y, NewGValue(NewNumber(5))) {
		t.Fatal("expected y to observe x's binding via deref")
	}
}

func TestUnifyFunctionVarOccursCheck(t *testing.T) {
	ar := arena.New()
	m := NewMatcher(ar)
	cell := ar.NewCell()
	v := NewGVariable(cell)
	self := NewGFunction("f", true, []*GTerm{v})
	if m.Unify(v, self) {
		t.Fatal("expected occurs-check to reject X = f(X)")
	}
}

func TestUnifyLinearLinearSameCellRequiresEqualCoefficients(t *testing.T) {
	ar := arena.New()
	m := NewMatcher(ar)
	cell := ar.NewCell()
	a := NewGLinear(cell, 2, 1)
	b := NewGLinear(cell, 2, 1)
	if !m.Unify(a, b) {
		t.Fatal("expected identical linear forms over the same cell to unify")
	}
	c := NewGLinear(cell, 3, 1)
	if m.Unify(a, c) {
		t.Fatal("expected differing coefficients over the same cell to fail")
	}
}

func TestUnifyLinearValueFoldsThroughBinding(t *testing.T) {
	ar := arena.New()
	m := NewMatcher(ar)
	cell := ar.NewCell()
	ar.BindValue(cell, NewNumber(4))
	lin := NewGLinear(cell, 2, 1) // 2*4+1 = 9
	if !m.Unify(lin, NewGValue(NewNumber(9))) {
		t.Fatal("expected bound linear term to fold and unify with its value")
	}
	if m.Unify(lin, NewGValue(NewNumber(10))) {
		t.Fatal("expected folded linear term to reject a mismatched value")
	}
}

func TestMatcherUndoRollsBackTrail(t *testing.T) {
	ar := arena.New()
	m := NewMatcher(ar)
	cell := ar.NewCell()
	mark := m.Mark()
	m.Unify(NewGVariable(cell), NewGValue(NewNumber(1)))
	if ar.State(cell) != arena.BoundValue {
		t.Fatal("expected cell to be bound before undo")
	}
	m.Undo(mark)
	if ar.State(cell) != arena.Empty {
		t.Fatal("expected undo to restore cell to Empty")
	}
}

func TestBuilderSharesCellsByVariableName(t *testing.T) {
	ar := arena.New()
	b := NewBuilder(ar)
	refX := &VarRef{Name: "X", Level: 0}
	t1 := b.Build(&VariableTerm{Ref: refX})
	t2 := b.Build(&VariableTerm{Ref: &VarRef{Name: "X", Level: 0}})
	if t1.Cell() != t2.Cell() {
		t.Fatal("expected two occurrences of X to share one arena cell")
	}
}

func TestUnifyValueFunctionAlwaysFails(t *testing.T) {
	ar := arena.New()
	m := NewMatcher(ar)
	if m.Unify(NewGValue(NewNumber(1)), NewGFunction("f", true, nil)) {
		t.Fatal("expected value-vs-function to never unify")
	}
}
