package arena

import "testing"

func TestNewCellStartsEmpty(t *testing.T) {
	a := New()
	c := a.NewCell()
	if a.State(c) != Empty {
		t.Fatalf("new cell state = %v, want Empty", a.State(c))
	}
	if a.Value(c) != nil {
		t.Fatalf("new cell value = %v, want nil", a.Value(c))
	}
}

func TestBindValueThenUnbind(t *testing.T) {
	a := New()
	c := a.NewCell()
	a.BindValue(c, 42)
	if a.State(c) != BoundValue {
		t.Fatalf("state after bind = %v, want BoundValue", a.State(c))
	}
	if a.Value(c) != 42 {
		t.Fatalf("value after bind = %v, want 42", a.Value(c))
	}
	a.Unbind(c)
	if a.State(c) != Empty {
		t.Fatalf("state after unbind = %v, want Empty", a.State(c))
	}
}

func TestResetClearsAllCells(t *testing.T) {
	a := New()
	cells := make([]Cell, 5)
	for i := range cells {
		cells[i] = a.NewCell()
		a.BindValue(cells[i], i)
	}
	a.Reset()
	for _, c := range cells {
		if a.State(c) != Empty {
			t.Fatalf("cell %d state after reset = %v, want Empty", c, a.State(c))
		}
	}
	if a.Len() != 5 {
		t.Fatalf("Len() after reset = %d, want 5 (capacity preserved)", a.Len())
	}
}

func TestMarkAndTruncate(t *testing.T) {
	a := New()
	a.NewCell()
	a.NewCell()
	mark := a.Mark()
	a.NewCell()
	a.NewCell()
	if a.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", a.Len())
	}
	a.Truncate(mark)
	if a.Len() != 2 {
		t.Fatalf("Len() after truncate = %d, want 2", a.Len())
	}
}

func TestSharedCellIdentity(t *testing.T) {
	// Two occurrences of the same rule variable must share one cell: the
	// grounder core's invariant that variable occurrences in a rule share
	// a reference cell is enforced one level up (VarTable), but the arena
	// itself must support "same index observed from two places agrees".
	a := New()
	c := a.NewCell()
	ref1, ref2 := c, c
	a.BindValue(ref1, "bound")
	if a.Value(ref2) != "bound" {
		t.Fatalf("second reference did not observe the binding made through the first")
	}
}
