package ground

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOutputRuleChoiceVsDisjunctive(t *testing.T) {
	rec := NewRecordingEmitter()
	OutputRule(rec, false, []AtomOffset{3}, []Literal{NewLiteral(1, false), NewLiteral(2, true)})
	OutputRule(rec, true, []AtomOffset{4}, nil)

	want := []Event{
		RuleEvent{Head: WireDisjunctive, Atoms: []AtomOffset{3}, Body: []Literal{2, -3}},
		RuleEvent{Head: WireChoice, Atoms: []AtomOffset{4}, Body: nil},
	}
	if diff := cmp.Diff(want, rec.Events); diff != "" {
		t.Fatalf("unexpected event sequence (-want +got):\n%s", diff)
	}
}

func TestLiteralOffsetAndSign(t *testing.T) {
	pos := NewLiteral(5, false)
	neg := NewLiteral(5, true)
	if pos.Offset() != 5 || neg.Offset() != 5 {
		t.Fatalf("expected both polarities of the same offset to recover it, got %d / %d", pos.Offset(), neg.Offset())
	}
	if pos.Negative() || !neg.Negative() {
		t.Fatal("expected exactly the negated literal to report Negative() true")
	}
	if pos == neg {
		t.Fatal("expected distinct wire values for the two polarities")
	}
}

func TestRecordingEmitterPreservesArrivalOrder(t *testing.T) {
	rec := NewRecordingEmitter()
	rec.InitProgram(InitProgramEvent{Incremental: true})
	rec.BeginStep(BeginStepEvent{})
	rec.Rule(RuleEvent{Head: WireDisjunctive, Atoms: []AtomOffset{0}})
	rec.Output(OutputEvent{Kind: OutputSymbol, Symbol: NewIdentifier("x", false)})
	rec.EndStep(EndStepEvent{})

	want := []Event{
		InitProgramEvent{Incremental: true},
		BeginStepEvent{},
		RuleEvent{Head: WireDisjunctive, Atoms: []AtomOffset{0}},
		OutputEvent{Kind: OutputSymbol, Symbol: NewIdentifier("x", false)},
		EndStepEvent{},
	}
	if diff := cmp.Diff(want, rec.Events, cmp.AllowUnexported(Symbol{})); diff != "" {
		t.Fatalf("unexpected event sequence (-want +got):\n%s", diff)
	}
}
