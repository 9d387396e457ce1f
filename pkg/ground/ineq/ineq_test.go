package ineq

import "testing"

func i32(n int32) *int32 { return &n }

func TestPropagateDerivesLowerBound(t *testing.T) {
	// x >= 5, from `x >= 5` i.e. 1*x >= 5.
	s := New(1)
	s.AddConstraint(Constraint{Terms: []Term{{Coeff: 1, Var: 0}}, Bound: 5})
	if !s.Propagate() {
		t.Fatal("expected a satisfiable single lower-bound constraint")
	}
	got := s.Bounds()[0]
	if got.Lo == nil || *got.Lo != 5 {
		t.Fatalf("expected lower bound 5, got %+v", got)
	}
}

func TestPropagateDerivesUpperBoundFromNegativeCoefficient(t *testing.T) {
	// -x >= -10  <=>  x <= 10
	s := New(1)
	s.AddConstraint(Constraint{Terms: []Term{{Coeff: -1, Var: 0}}, Bound: -10})
	if !s.Propagate() {
		t.Fatal("expected a satisfiable single upper-bound constraint")
	}
	got := s.Bounds()[0]
	if got.Hi == nil || *got.Hi != 10 {
		t.Fatalf("expected upper bound 10, got %+v", got)
	}
}

func TestPropagateTwoVariableSumNarrows(t *testing.T) {
	// x + y >= 10, x in [0,4] fixed via SetBound, expect y >= 6.
	s := New(2)
	s.SetBound(0, Bound{Lo: i32(0), Hi: i32(4)})
	s.AddConstraint(Constraint{Terms: []Term{{Coeff: 1, Var: 0}, {Coeff: 1, Var: 1}}, Bound: 10})
	if !s.Propagate() {
		t.Fatal("expected feasibility")
	}
	y := s.Bounds()[1]
	if y.Lo == nil || *y.Lo != 6 {
		t.Fatalf("expected y >= 6, got %+v", y)
	}
}

func TestPropagateDetectsInfeasibility(t *testing.T) {
	// x <= 2 and x >= 5 simultaneously is infeasible.
	s := New(1)
	s.SetBound(0, Bound{Hi: i32(2)})
	s.AddConstraint(Constraint{Terms: []Term{{Coeff: 1, Var: 0}}, Bound: 5})
	if s.Propagate() {
		t.Fatal("expected infeasibility to be detected")
	}
}

func TestCeilDivRoundsTowardPositiveInfinity(t *testing.T) {
	s := New(1)
	// 3*x >= 7  =>  x >= ceil(7/3) = 3
	s.AddConstraint(Constraint{Terms: []Term{{Coeff: 3, Var: 0}}, Bound: 7})
	s.Propagate()
	got := s.Bounds()[0]
	if got.Lo == nil || *got.Lo != 3 {
		t.Fatalf("expected ceil(7/3) = 3, got %+v", got)
	}
}

func TestFloorDivRoundsTowardNegativeInfinityForNegativeCoefficient(t *testing.T) {
	// -3*x >= -7  <=>  x <= 7/3 = 2.33, floor = 2
	s := New(1)
	s.AddConstraint(Constraint{Terms: []Term{{Coeff: -3, Var: 0}}, Bound: -7})
	s.Propagate()
	got := s.Bounds()[0]
	if got.Hi == nil || *got.Hi != 2 {
		t.Fatalf("expected floor(7/3) = 2, got %+v", got)
	}
}

func TestSeedIntersectsWithExistingBound(t *testing.T) {
	s := New(1)
	s.SetBound(0, Bound{Lo: i32(0)})
	s.Seed([]Bound{{Lo: i32(3), Hi: i32(9)}})
	got := s.Bounds()[0]
	if got.Lo == nil || *got.Lo != 3 || got.Hi == nil || *got.Hi != 9 {
		t.Fatalf("expected seeded bound [3,9], got %+v", got)
	}
}

func TestAddConstraintMergesDuplicateVariables(t *testing.T) {
	s := New(1)
	// x + x >= 10 merges into 2x >= 10 => x >= 5.
	s.AddConstraint(Constraint{Terms: []Term{{Coeff: 1, Var: 0}, {Coeff: 1, Var: 0}}, Bound: 10})
	s.Propagate()
	got := s.Bounds()[0]
	if got.Lo == nil || *got.Lo != 5 {
		t.Fatalf("expected merged coefficient to derive x >= 5, got %+v", got)
	}
}
