package ground

import (
	"github.com/potassco/clingo-sub003/internal/arena"
	"github.com/sirupsen/logrus"
)

// LiteralPlan pairs one scheduled body literal with the Binder that
// produces its candidates and, for domain-backed literals, the GTerm
// pattern the matcher unifies each candidate against.
type LiteralPlan struct {
	Lit     BodyLit
	Pattern *GTerm
	Binder  *Binder
}

// RulePlan is one rule's safety schedule lowered into literal plans, plus
// the Builder/Arena pair its GTerm patterns and Matcher share across every
// instantiation attempt for this rule (cell identity, not cell state,
// persists across attempts; Matcher.Reset clears state between attempts).
type RulePlan struct {
	Rule     *Rule
	Schedule []LiteralPlan
	Builder  *Builder
	Arena    *arena.Arena
}

// NewRulePlan allocates a fresh Arena/Builder pair and lowers sched into
// per-literal plans via makeBinder, which the caller supplies so that
// instantiate.go stays independent of how a literal's domain/relation/range
// binder gets constructed (that wiring lives in grounder.go, where the
// DomainSet is in scope).
func NewRulePlan(r *Rule, sched *Schedule, makeBinder func(lit BodyLit, b *Builder) *Binder) *RulePlan {
	ar := arena.New()
	bld := NewBuilder(ar)
	plan := &RulePlan{Rule: r, Builder: bld, Arena: ar}
	for _, lit := range sched.Order {
		lp := LiteralPlan{Lit: lit, Binder: makeBinder(lit, bld)}
		if lit.Kind == BodySimple || lit.Kind == BodyConjunction {
			lp.Pattern = bld.Build(lit.Atom)
		}
		plan.Schedule = append(plan.Schedule, lp)
	}
	return plan
}

// frame is one level of the explicit backtracking stack Run walks, holding
// the candidate list for this literal and where in it we currently are.
type frame struct {
	candidates []Symbol
	idx        int
	mark       int // matcher trail mark to undo to before trying the next candidate
}

// Run performs one full iterative (explicit-stack, non-recursive) search
// over plan's schedule against gen's generation partition, invoking onMatch
// for every full binding found. sawNew, if non-nil, is set to true if any
// literal's accepted candidate came from a NEW-generation atom — the
// semi-naive driver uses this to decide whether the rule contributed a
// derivation this pass.
func (plan *RulePlan) Run(gen GenKind, onMatch func(), sawNew *bool) {
	m := NewMatcher(plan.Arena)
	n := len(plan.Schedule)
	if n == 0 {
		onMatch()
		return
	}

	stack := make([]frame, 0, n)
	stack = append(stack, frame{mark: m.Mark()})
	// candidates for level 0 are filled in lazily below, uniformly with
	// every other level, by the top of the loop.

	level := 0
	for level >= 0 {
		f := &stack[level]
		if f.candidates == nil && f.idx == 0 {
			f.candidates = plan.candidatesFor(plan.Schedule[level], m, gen)
		}
		if f.idx >= len(f.candidates) {
			// Exhausted this level: undo and backtrack.
			m.Undo(f.mark)
			stack = stack[:level]
			level--
			continue
		}
		candidate := f.candidates[f.idx]
		f.idx++

		attemptMark := m.Mark()
		ok := plan.tryLiteral(plan.Schedule[level], candidate, m)
		if !ok {
			m.Undo(attemptMark)
			continue
		}
		if sawNew != nil && gen != GenOld && candidateIsNew(plan.Schedule[level], candidate, gen) {
			*sawNew = true
		}
		if level == n-1 {
			onMatch()
			m.Undo(attemptMark)
			continue
		}
		level++
		stack = append(stack, frame{mark: m.Mark()})
	}
}

// candidatesFor dispatches to the appropriate Binder accessor for lp's
// literal kind; Relation/ScriptCall literals resolve to at most one
// synthesized candidate and Range literals to one candidate per value of the
// range, all computed from already-bound variables rather than a domain
// scan.
func (plan *RulePlan) candidatesFor(lp LiteralPlan, m *Matcher, gen GenKind) []Symbol {
	// Binder.Kind is checked before Lit.Kind: a dots/script extraction
	// literal (rewrite_simplify_rule.go's extractedLiterals) is tagged
	// BodyComparison like a genuine relation, but its Binder is
	// BinderRange/BinderScriptCall, not BinderRelation, so RelationHolds
	// (which reads Binder.Left/Right) would read the wrong fields for it.
	if lp.Binder.Kind == BinderRange {
		vals := RangeValues(lp.Binder, plan.Builder, m)
		out := make([]Symbol, len(vals))
		for i, v := range vals {
			out[i] = NewNumber(v)
		}
		return out
	}
	if lp.Binder.Kind == BinderScriptCall {
		sym, err, ok := ScriptValue(lp.Binder, plan.Builder, m)
		if !ok || err != nil {
			return nil
		}
		return []Symbol{sym}
	}
	switch lp.Lit.Kind {
	case BodyComparison:
		holds, bindVar, value := RelationHolds(lp.Binder, plan.Builder, m)
		if !holds {
			return nil
		}
		if bindVar != nil {
			return []Symbol{NewNumber(value)}
		}
		return []Symbol{trueSentinel}
	default:
		return lp.Binder.Candidates(gen)
	}
}

// trueSentinel stands in for "the comparison held" when no variable needs
// binding, so the schedule-stepping loop always has a uniform one-candidate
// shape to advance through rather than a special no-op branch.
var trueSentinel = NewIdentifier("#true", false)

// tryLiteral attempts to unify candidate against lp's pattern (for
// domain-backed and comparison-assignment literals) or, for a plain
// already-ground comparison, simply accepts the sentinel.
func (plan *RulePlan) tryLiteral(lp LiteralPlan, candidate Symbol, m *Matcher) bool {
	switch lp.Lit.Kind {
	case BodyComparison:
		if v, ok := lp.Lit.Left.(*VariableTerm); ok && !candidate.Equal(trueSentinel) {
			cell := plan.Builder.CellOf(v.Ref.Name)
			return m.Unify(NewGVariable(cell), NewGValue(candidate))
		}
		return true
	case BodySimple:
		if lp.Lit.NAF != NAFNone {
			// Negative literals never reach Run's schedule at all (see
			// grounder.go's newCompiledPlan): they consume already-bound
			// variables rather than producing candidates of their own, so
			// this branch only exists for a caller that passes one in
			// directly (e.g. a unit test schedule); it always accepts.
			return true
		}
		return m.Match(lp.Pattern, candidate)
	default:
		return m.Match(lp.Pattern, candidate)
	}
}

func candidateIsNew(lp LiteralPlan, candidate Symbol, gen GenKind) bool {
	if lp.Binder == nil || lp.Binder.Domain == nil {
		return false
	}
	off, ok := lp.Binder.Domain.Lookup(candidate)
	if !ok {
		return false
	}
	return lp.Binder.Domain.atoms[off].generation == lp.Binder.Domain.current
}

// RunSemiNaive drives plan to a fixed point over component membership: it
// keeps invoking Run with GenAll (so every combination is attempted) but
// only counts the pass as productive — and worth repeating — when at least
// one accepted candidate was NEW, matching "semi-naive iteration ...
// requires at least one literal to draw from NEW". onMatch is called once
// per distinct full binding found across the whole fixed-point loop; it is
// the caller's responsibility to dedupe against already-derived head atoms
// (the Domain's Insert does this naturally when onMatch inserts into it).
func (plan *RulePlan) RunSemiNaive(onMatch func()) {
	plan.RunSemiNaiveLogged(onMatch, nil)
}

// RunSemiNaiveLogged is RunSemiNaive with an optional per-pass debug trace
// written to log when log is non-nil.
func (plan *RulePlan) RunSemiNaiveLogged(onMatch func(), log *logrus.Entry) {
	pass := 0
	for {
		sawNew := false
		plan.Run(GenAll, onMatch, &sawNew)
		if log != nil {
			log.WithFields(logrus.Fields{
				"rule": plan.Rule.Loc.String(),
				"pass": pass,
				"new":  sawNew,
			}).Debug("semi-naive pass")
		}
		pass++
		if !sawNew {
			return
		}
	}
}
