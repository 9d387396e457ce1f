package ground

import "testing"

// These tests build each program in spec.md's end-to-end scenarios table by
// hand (no lexer/parser exists in this package), run it through a fresh
// Grounder exactly as cmd/groundcheck does, and check the key subset of
// wire events the table calls out. Every program that needs a constraint
// head (no derivable atom) uses the reserved `#false` atom as its Head.Atom,
// following spec.md §7's own description of how an evaluation warning
// replaces a head: "dropped (body) or replaced by #false (head)".

func false0() *FunctionTerm { return NewFunctionTerm("#false", false, nil) }

func mustNotDiag(t *testing.T, d *Diagnostics) {
	t.Helper()
	if d.HasError {
		t.Fatalf("unexpected error diagnostics: %v", d.Items())
	}
}

// ruleHeadSymbols returns, for every RuleEvent in events whose single head
// atom belongs to sig, that atom's printed form.
func ruleHeadSymbols(t *testing.T, g *Grounder, events []Event, sig Signature) []string {
	t.Helper()
	dom := g.Domains.Get(sig)
	var out []string
	for _, ev := range events {
		re, ok := ev.(RuleEvent)
		if !ok || len(re.Atoms) != 1 {
			continue
		}
		off := re.Atoms[0]
		if off >= AtomOffset(dom.Len()) {
			continue
		}
		if dom.Symbol(off).Signature() != sig {
			continue
		}
		out = append(out, dom.Symbol(off).String())
	}
	return out
}

func countRuleEvents(events []Event) int {
	n := 0
	for _, ev := range events {
		if _, ok := ev.(RuleEvent); ok {
			n++
		}
	}
	return n
}

// p(1..3). -> p(1). p(2). p(3).
func TestEndToEndRangeFact(t *testing.T) {
	loc := Location{}
	atom := NewFunctionTerm("p", false, []Term{&RangeTerm{Left: NewValueTerm(NewNumber(1)), Right: NewValueTerm(NewNumber(3))}})
	rule := &Rule{Head: Head{Kind: HeadSimple, Atom: atom, Loc: loc}, Loc: loc, Vars: NewVarTable()}

	emit := NewRecordingEmitter()
	g := NewGrounder(emit, nil, nil)
	g.BeginStep()
	if err := g.Ground([]*Rule{rule}, nil, nil); err != nil {
		t.Fatalf("Ground: %v", err)
	}
	g.EndStep()
	mustNotDiag(t, g.Diags)

	got := ruleHeadSymbols(t, g, emit.Events, Signature{Name: "p", Arity: 1})
	want := map[string]bool{"p(1)": true, "p(2)": true, "p(3)": true}
	if len(got) != 3 {
		t.Fatalf("expected 3 ground rule events for p/1, got %d: %v", len(got), got)
	}
	for _, s := range got {
		if !want[s] {
			t.Fatalf("unexpected ground atom %s", s)
		}
		delete(want, s)
	}
}

// {a;b}. :- #count{1:a; 1:b} > 1. -> two choice atoms plus one constraint
// rejecting the all-true model.
func TestEndToEndCountConstraint(t *testing.T) {
	loc := Location{}
	a := NewFunctionTerm("a", false, nil)
	b := NewFunctionTerm("b", false, nil)
	choiceA := &Rule{Head: Head{Kind: HeadSimple, Atom: a, Choice: true, Loc: loc}, Loc: loc, Vars: NewVarTable()}
	choiceB := &Rule{Head: Head{Kind: HeadSimple, Atom: b, Choice: true, Loc: loc}, Loc: loc, Vars: NewVarTable()}

	agg := &BodyAggregate{
		Func: AggCount,
		Elements: []AggregateElement{
			{Tuple: []Term{NewValueTerm(NewNumber(1))}, Condition: []BodyLit{NewSimpleBody(NAFNone, a, loc)}},
			{Tuple: []Term{NewValueTerm(NewNumber(1))}, Condition: []BodyLit{NewSimpleBody(NAFNone, b, loc)}},
		},
		Upper: &AggregateBound{Rel: RelGt, Term: NewValueTerm(NewNumber(1))},
	}
	constraint := &Rule{
		Head: Head{Kind: HeadSimple, Atom: false0(), Loc: loc},
		Body: []BodyLit{{Kind: BodyAggregateLit, Aggregate: agg, Loc: loc}},
		Loc:  loc,
		Vars: NewVarTable(),
	}

	emit := NewRecordingEmitter()
	g := NewGrounder(emit, nil, nil)
	g.BeginStep()
	if err := g.Ground([]*Rule{choiceA, choiceB, constraint}, nil, nil); err != nil {
		t.Fatalf("Ground: %v", err)
	}
	g.EndStep()
	mustNotDiag(t, g.Diags)

	choices := ruleHeadSymbols(t, g, emit.Events, Signature{Name: "a", Arity: 0})
	choices = append(choices, ruleHeadSymbols(t, g, emit.Events, Signature{Name: "b", Arity: 0})...)
	if len(choices) != 2 {
		t.Fatalf("expected one choice rule event each for a and b, got %v", choices)
	}

	rejections := ruleHeadSymbols(t, g, emit.Events, Signature{Name: "#false", Arity: 0})
	if len(rejections) != 1 {
		t.Fatalf("expected exactly one constraint instance (count=2 > 1), got %d", len(rejections))
	}
}

// #const a=1. #const b=a. p(b). -> p(1).
func TestEndToEndConstChain(t *testing.T) {
	loc := Location{}
	diags := newTestDiagnostics()
	defines := NewDefineSet(diags)
	defines.Add(Define{Name: "a", Value: NewValueTerm(NewNumber(1))})
	defines.Add(Define{Name: "b", Value: NewFunctionTerm("a", false, nil)})

	atom := NewFunctionTerm("p", false, []Term{NewFunctionTerm("b", false, nil)})
	rule := &Rule{Head: Head{Kind: HeadSimple, Atom: atom, Loc: loc}, Loc: loc, Vars: NewVarTable()}

	emit := NewRecordingEmitter()
	g := NewGrounder(emit, nil, nil)
	g.BeginStep()
	if err := g.Ground([]*Rule{rule}, defines, nil); err != nil {
		t.Fatalf("Ground: %v", err)
	}
	g.EndStep()
	mustNotDiag(t, g.Diags)

	got := ruleHeadSymbols(t, g, emit.Events, Signature{Name: "p", Arity: 1})
	if len(got) != 1 || got[0] != "p(1)" {
		t.Fatalf("expected exactly p(1), got %v", got)
	}
}

// q(X) :- p(X), X = 1..3. given p(1..4) -> q(1). q(2). q(3).
func TestEndToEndRangeGuardedConjunction(t *testing.T) {
	loc := Location{}
	pVT := NewVarTable()
	pFacts := &Rule{
		Head: Head{Kind: HeadSimple, Atom: NewFunctionTerm("p", false, []Term{
			&RangeTerm{Left: NewValueTerm(NewNumber(1)), Right: NewValueTerm(NewNumber(4))},
		}), Loc: loc},
		Loc: loc, Vars: pVT,
	}

	qVT := NewVarTable()
	x := qVT.Ref("X", 0)
	qRule := &Rule{
		Head: Head{Kind: HeadSimple, Atom: NewFunctionTerm("q", false, []Term{NewVariableTerm(x)}), Loc: loc},
		Body: []BodyLit{
			NewSimpleBody(NAFNone, NewFunctionTerm("p", false, []Term{NewVariableTerm(x)}), loc),
			NewComparisonBody(NewVariableTerm(x), RelEq, &RangeTerm{Left: NewValueTerm(NewNumber(1)), Right: NewValueTerm(NewNumber(3))}, loc),
		},
		Loc: loc, Vars: qVT,
	}

	emit := NewRecordingEmitter()
	g := NewGrounder(emit, nil, nil)
	g.BeginStep()
	if err := g.Ground([]*Rule{pFacts, qRule}, nil, nil); err != nil {
		t.Fatalf("Ground: %v", err)
	}
	g.EndStep()
	mustNotDiag(t, g.Diags)

	got := ruleHeadSymbols(t, g, emit.Events, Signature{Name: "q", Arity: 1})
	want := map[string]bool{"q(1)": true, "q(2)": true, "q(3)": true}
	if len(got) != 3 {
		t.Fatalf("expected q(1..3), got %v", got)
	}
	for _, s := range got {
		if !want[s] {
			t.Fatalf("unexpected ground atom %s", s)
		}
	}
}

// p :- not p. -> one rule, head p, body `not p`, emitted exactly once.
func TestEndToEndSelfNegation(t *testing.T) {
	loc := Location{}
	atom := NewFunctionTerm("p", false, nil)
	rule := &Rule{
		Head: Head{Kind: HeadSimple, Atom: atom, Loc: loc},
		Body: []BodyLit{NewSimpleBody(NAFNot, atom, loc)},
		Loc:  loc, Vars: NewVarTable(),
	}

	emit := NewRecordingEmitter()
	g := NewGrounder(emit, nil, nil)
	g.BeginStep()
	if err := g.Ground([]*Rule{rule}, nil, nil); err != nil {
		t.Fatalf("Ground: %v", err)
	}
	g.EndStep()
	mustNotDiag(t, g.Diags)

	n := countRuleEvents(emit.Events)
	if n != 1 {
		t.Fatalf("expected the odd-loop rule to ground exactly once, got %d rule events", n)
	}
}

// :- X=Y, p(X), q(Y). with p(1;2) and q(2;3) -> exactly one constraint
// instance, rejecting the X=Y=2 model.
func TestEndToEndJoinConstraint(t *testing.T) {
	loc := Location{}
	p1 := &Rule{Head: Head{Kind: HeadSimple, Atom: NewFunctionTerm("p", false, []Term{NewValueTerm(NewNumber(1))}), Loc: loc}, Loc: loc, Vars: NewVarTable()}
	p2 := &Rule{Head: Head{Kind: HeadSimple, Atom: NewFunctionTerm("p", false, []Term{NewValueTerm(NewNumber(2))}), Loc: loc}, Loc: loc, Vars: NewVarTable()}
	q2 := &Rule{Head: Head{Kind: HeadSimple, Atom: NewFunctionTerm("q", false, []Term{NewValueTerm(NewNumber(2))}), Loc: loc}, Loc: loc, Vars: NewVarTable()}
	q3 := &Rule{Head: Head{Kind: HeadSimple, Atom: NewFunctionTerm("q", false, []Term{NewValueTerm(NewNumber(3))}), Loc: loc}, Loc: loc, Vars: NewVarTable()}

	vt := NewVarTable()
	x := vt.Ref("X", 0)
	y := vt.Ref("Y", 0)
	constraint := &Rule{
		Head: Head{Kind: HeadSimple, Atom: false0(), Loc: loc},
		Body: []BodyLit{
			NewComparisonBody(NewVariableTerm(x), RelEq, NewVariableTerm(y), loc),
			NewSimpleBody(NAFNone, NewFunctionTerm("p", false, []Term{NewVariableTerm(x)}), loc),
			NewSimpleBody(NAFNone, NewFunctionTerm("q", false, []Term{NewVariableTerm(y)}), loc),
		},
		Loc: loc, Vars: vt,
	}

	emit := NewRecordingEmitter()
	g := NewGrounder(emit, nil, nil)
	g.BeginStep()
	if err := g.Ground([]*Rule{p1, p2, q2, q3, constraint}, nil, nil); err != nil {
		t.Fatalf("Ground: %v", err)
	}
	g.EndStep()
	mustNotDiag(t, g.Diags)

	got := ruleHeadSymbols(t, g, emit.Events, Signature{Name: "#false", Arity: 0})
	if len(got) != 1 {
		t.Fatalf("expected exactly one rejected X=Y=2 instance, got %d", len(got))
	}
}

// h(S) :- S = #sum{ X,a : p(X) }. with p(1..3) -> h(6).
func TestEndToEndSumGuard(t *testing.T) {
	loc := Location{}
	pFacts := &Rule{
		Head: Head{Kind: HeadSimple, Atom: NewFunctionTerm("p", false, []Term{
			&RangeTerm{Left: NewValueTerm(NewNumber(1)), Right: NewValueTerm(NewNumber(3))},
		}), Loc: loc},
		Loc: loc, Vars: NewVarTable(),
	}

	vt := NewVarTable()
	x := vt.Ref("X", 0)
	s := vt.Ref("S", 0)
	agg := &BodyAggregate{
		Func: AggSum,
		Elements: []AggregateElement{{
			Tuple:     []Term{NewVariableTerm(x), NewFunctionTerm("a", false, nil)},
			Condition: []BodyLit{NewSimpleBody(NAFNone, NewFunctionTerm("p", false, []Term{NewVariableTerm(x)}), loc)},
		}},
		Lower: &AggregateBound{Rel: RelEq, Term: NewVariableTerm(s)},
	}
	hRule := &Rule{
		Head: Head{Kind: HeadSimple, Atom: NewFunctionTerm("h", false, []Term{NewVariableTerm(s)}), Loc: loc},
		Body: []BodyLit{{Kind: BodyAggregateLit, Aggregate: agg, Loc: loc}},
		Loc:  loc, Vars: vt,
	}

	emit := NewRecordingEmitter()
	g := NewGrounder(emit, nil, nil)
	g.BeginStep()
	if err := g.Ground([]*Rule{pFacts, hRule}, nil, nil); err != nil {
		t.Fatalf("Ground: %v", err)
	}
	g.EndStep()
	mustNotDiag(t, g.Diags)

	got := ruleHeadSymbols(t, g, emit.Events, Signature{Name: "h", Arity: 1})
	if len(got) != 1 || got[0] != "h(6)" {
		t.Fatalf("expected exactly h(6), got %v", got)
	}
}

// #heuristic p(1). [2@1, sign] with {p(1)}. -> one heuristic event.
func TestEndToEndHeuristic(t *testing.T) {
	loc := Location{}
	p1 := NewFunctionTerm("p", false, []Term{NewValueTerm(NewNumber(1))})
	choice := &Rule{Head: Head{Kind: HeadSimple, Atom: p1, Choice: true, Loc: loc}, Loc: loc, Vars: NewVarTable()}
	heur := &Rule{
		Head: Head{
			Kind: HeadHeuristic, Atom: p1,
			HeuristicKind: HeuristicSign,
			Bias:          NewValueTerm(NewNumber(2)),
			HeuristicPrio: NewValueTerm(NewNumber(1)),
			Loc:           loc,
		},
		Loc: loc, Vars: NewVarTable(),
	}

	emit := NewRecordingEmitter()
	g := NewGrounder(emit, nil, nil)
	g.BeginStep()
	if err := g.Ground([]*Rule{choice, heur}, nil, nil); err != nil {
		t.Fatalf("Ground: %v", err)
	}
	g.EndStep()
	mustNotDiag(t, g.Diags)

	var heurEvents []HeuristicEvent
	for _, ev := range emit.Events {
		if he, ok := ev.(HeuristicEvent); ok {
			heurEvents = append(heurEvents, he)
		}
	}
	if len(heurEvents) != 1 {
		t.Fatalf("expected exactly one heuristic event, got %d", len(heurEvents))
	}
	he := heurEvents[0]
	if he.Modifier != HeuristicSign || he.Bias != 2 || he.Priority != 1 {
		t.Fatalf("unexpected heuristic event %+v", he)
	}
	dom := g.Domains.Get(Signature{Name: "p", Arity: 1})
	if dom.Symbol(he.Atom).String() != "p(1)" {
		t.Fatalf("expected heuristic atom to reference p(1), got %s", dom.Symbol(he.Atom).String())
	}
}
