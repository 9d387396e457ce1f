package ground

import "testing"

// planSingleLiteral builds the RulePlan for "q(X) :- p(X)" with a full-scan
// binder directly over pd, the same shape grounder.go would assemble from a
// Schedule produced by PlanSafety.
func planSingleLiteral(pd *Domain) (*RulePlan, *VarRef) {
	vt := NewVarTable()
	x := vt.Ref("X", 0)
	bodyAtom := NewFunctionTerm("p", false, []Term{NewVariableTerm(x)})
	body := NewSimpleBody(NAFNone, bodyAtom, Location{})
	r := &Rule{Body: []BodyLit{body}, Vars: vt}

	sched := &Schedule{Order: []BodyLit{body}}
	plan := NewRulePlan(r, sched, func(lit BodyLit, b *Builder) *Binder {
		return &Binder{Kind: BinderFullScan, Domain: pd}
	})
	return plan, x
}

func TestRulePlanRunFindsEachFullScanCandidate(t *testing.T) {
	pd := NewDomain(Signature{Name: "p", Arity: 1})
	pd.Insert(NewIdentifier("a", false), false)
	pd.Insert(NewIdentifier("b", false), false)
	plan, x := planSingleLiteral(pd)

	var seen []string
	plan.Run(GenAll, func() {
		cell := plan.Builder.CellOf(x.Name)
		v := plan.Arena.Value(cell)
		seen = append(seen, v.(Symbol).String())
	}, nil)

	if len(seen) != 2 {
		t.Fatalf("expected 2 matches, got %d: %v", len(seen), seen)
	}
}

func TestRulePlanRunRespectsGenerationFilter(t *testing.T) {
	pd := NewDomain(Signature{Name: "p", Arity: 1})
	pd.Insert(NewIdentifier("a", false), false)
	pd.Advance()
	pd.Insert(NewIdentifier("b", false), false)
	plan, _ := planSingleLiteral(pd)

	count := 0
	plan.Run(GenNew, func() { count++ }, nil)
	if count != 1 {
		t.Fatalf("expected exactly the NEW atom to match, got %d", count)
	}
}

func TestRulePlanRunSetsSawNewFlag(t *testing.T) {
	pd := NewDomain(Signature{Name: "p", Arity: 1})
	pd.Insert(NewIdentifier("a", false), false)
	plan, _ := planSingleLiteral(pd)

	sawNew := false
	plan.Run(GenAll, func() {}, &sawNew)
	if !sawNew {
		t.Fatal("expected sawNew to be set for an atom inserted in the current generation")
	}
}

func TestRulePlanRunEmptyScheduleInvokesOnMatchOnce(t *testing.T) {
	r := &Rule{Vars: NewVarTable()}
	plan := &RulePlan{Rule: r, Builder: NewBuilder(nil), Arena: nil}
	// An empty schedule never touches the arena/matcher, so a nil Arena is
	// safe here: Run short-circuits before constructing a Matcher over it.
	count := 0
	plan.Run(GenAll, func() { count++ }, nil)
	if count != 1 {
		t.Fatalf("expected the single vacuously-true match, got %d calls", count)
	}
}

func TestRunReportsNoNewCandidatesAfterAdvance(t *testing.T) {
	pd := NewDomain(Signature{Name: "p", Arity: 1})
	pd.Insert(NewIdentifier("a", false), false)
	plan, _ := planSingleLiteral(pd)

	passes := 0
	plan.Run(GenAll, func() { passes++ }, nil)
	pd.Advance() // simulate the driver advancing generations between passes

	sawNew := false
	plan.Run(GenAll, func() {}, &sawNew)
	if sawNew {
		t.Fatal("expected no NEW candidates once the only atom has aged into OLD")
	}
}
