// Package main demonstrates the grounder core on a handful of hand-built
// programs, the way the teacher's cmd/example exercises pkg/minikanren: no
// flags, no file input, just calls into the library and prints what came
// out.
package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/potassco/clingo-sub003/pkg/ground"
)

func main() {
	log := logrus.NewEntry(logrus.New())

	fmt.Println("=== groundcheck ===")
	fmt.Println()

	runScenario("1. p(1..3).", log, rangeFactProgram)
	runScenario("2. p(1..4). q(X) :- p(X), X = 1..3.", log, rangeConjunctionProgram)
	runScenario("3. p :- not p.", log, selfNegationProgram)
	runScenario("4. {a}. {b}. #heuristic a. [2@1, sign]", log, heuristicProgram)
}

func runScenario(title string, log *logrus.Entry, build func() []*ground.Rule) {
	fmt.Println(title)
	emit := ground.NewRecordingEmitter()
	g := ground.NewGrounder(emit, nil, log)

	emit.InitProgram(ground.InitProgramEvent{})
	g.BeginStep()
	if err := g.Ground(build(), nil, nil); err != nil {
		fmt.Printf("   error: %v\n", err)
	}
	g.EndStep()

	for _, ev := range emit.Events {
		fmt.Printf("   %s\n", describe(ev))
	}
	fmt.Println()
}

// describe renders one wire event as a short line; it only needs to cover
// the event shapes the four scenarios above actually produce.
func describe(ev ground.Event) string {
	switch e := ev.(type) {
	case ground.InitProgramEvent:
		return "initProgram"
	case ground.BeginStepEvent:
		return "beginStep"
	case ground.RuleEvent:
		kind := "rule"
		if e.Head == ground.WireChoice {
			kind = "choice rule"
		}
		return fmt.Sprintf("%s head=%v body=%v", kind, e.Atoms, e.Body)
	case ground.ProjectEvent:
		return fmt.Sprintf("project %v", e.Atoms)
	case ground.OutputEvent:
		return fmt.Sprintf("output %s", e.Symbol)
	case ground.ExternalEvent:
		return fmt.Sprintf("external atom=%d value=%d", e.Atom, e.Value)
	case ground.HeuristicEvent:
		return fmt.Sprintf("heuristic atom=%d modifier=%d bias=%d priority=%d", e.Atom, e.Modifier, e.Bias, e.Priority)
	case ground.MinimizeEvent:
		return fmt.Sprintf("minimize priority=%d literals=%v", e.Priority, e.Literals)
	case ground.AcycEdgeEvent:
		return fmt.Sprintf("acycEdge %d -> %d", e.Source, e.Target)
	case ground.EndStepEvent:
		return "endStep"
	default:
		return fmt.Sprintf("%T", e)
	}
}

// rangeFactProgram builds `p(1..3).`: a single fact whose argument is a
// range term, which the rewriter's dots-extraction step (SimplifyRule)
// turns into `p(X) :- X = 1..3.` before grounding.
func rangeFactProgram() []*ground.Rule {
	vt := ground.NewVarTable()
	loc := ground.Location{}
	atom := ground.NewFunctionTerm("p", false, []ground.Term{
		&ground.RangeTerm{Left: ground.NewValueTerm(ground.NewNumber(1)), Right: ground.NewValueTerm(ground.NewNumber(3))},
	})
	return []*ground.Rule{{
		Head: ground.Head{Kind: ground.HeadSimple, Atom: atom, Loc: loc},
		Loc:  loc,
		Vars: vt,
	}}
}

// rangeConjunctionProgram builds `p(1..4). q(X) :- p(X), X = 1..3.`: the
// facts exercise the same dots extraction as above, and the rule exercises
// a positive body literal plus an independent range-bound comparison in the
// same schedule.
func rangeConjunctionProgram() []*ground.Rule {
	loc := ground.Location{}

	pVT := ground.NewVarTable()
	pAtom := ground.NewFunctionTerm("p", false, []ground.Term{
		&ground.RangeTerm{Left: ground.NewValueTerm(ground.NewNumber(1)), Right: ground.NewValueTerm(ground.NewNumber(4))},
	})
	facts := &ground.Rule{Head: ground.Head{Kind: ground.HeadSimple, Atom: pAtom, Loc: loc}, Loc: loc, Vars: pVT}

	qVT := ground.NewVarTable()
	qX := qVT.Ref("X", 0)
	pBody := ground.NewFunctionTerm("p", false, []ground.Term{ground.NewVariableTerm(qX)})
	qAtom := ground.NewFunctionTerm("q", false, []ground.Term{ground.NewVariableTerm(qX)})
	rule := &ground.Rule{
		Head: ground.Head{Kind: ground.HeadSimple, Atom: qAtom, Loc: loc},
		Body: []ground.BodyLit{
			ground.NewSimpleBody(ground.NAFNone, pBody, loc),
			ground.NewComparisonBody(ground.NewVariableTerm(qX), ground.RelEq,
				&ground.RangeTerm{Left: ground.NewValueTerm(ground.NewNumber(1)), Right: ground.NewValueTerm(ground.NewNumber(3))}, loc),
		},
		Loc:  loc,
		Vars: qVT,
	}

	return []*ground.Rule{facts, rule}
}

// selfNegationProgram builds `p :- not p.`, the classic odd-loop-over-
// negation component: the emitter still receives a rule event with head
// p and a negative body literal referencing the same atom as the head.
func selfNegationProgram() []*ground.Rule {
	vt := ground.NewVarTable()
	loc := ground.Location{}
	atom := ground.NewFunctionTerm("p", false, nil)
	return []*ground.Rule{{
		Head: ground.Head{Kind: ground.HeadSimple, Atom: atom, Loc: loc},
		Body: []ground.BodyLit{ground.NewSimpleBody(ground.NAFNot, atom, loc)},
		Loc:  loc,
		Vars: vt,
	}}
}

// heuristicProgram builds `{a}. {b}. #heuristic a. [2@1, sign]`: two choice
// facts plus a heuristic directive over one of them, guarded by nothing
// (an always-true condition), exercising HeadHeuristic's own emit path.
func heuristicProgram() []*ground.Rule {
	loc := ground.Location{}
	choiceVT := ground.NewVarTable()
	a := ground.NewFunctionTerm("a", false, nil)
	b := ground.NewFunctionTerm("b", false, nil)
	choiceA := &ground.Rule{Head: ground.Head{Kind: ground.HeadSimple, Atom: a, Choice: true, Loc: loc}, Loc: loc, Vars: choiceVT}
	choiceB := &ground.Rule{Head: ground.Head{Kind: ground.HeadSimple, Atom: b, Choice: true, Loc: loc}, Loc: loc, Vars: ground.NewVarTable()}

	heurVT := ground.NewVarTable()
	heur := &ground.Rule{
		Head: ground.Head{
			Kind:          ground.HeadHeuristic,
			Atom:          a,
			HeuristicKind: ground.HeuristicSign,
			Bias:          ground.NewValueTerm(ground.NewNumber(2)),
			HeuristicPrio: ground.NewValueTerm(ground.NewNumber(1)),
			Loc:           loc,
		},
		Loc:  loc,
		Vars: heurVT,
	}

	return []*ground.Rule{choiceA, choiceB, heur}
}
