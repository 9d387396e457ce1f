package ground

import "sort"

// EntityKind tags what a safety-graph entity node represents.
type EntityKind uint8

const (
	EntityLiteral EntityKind = iota
	EntityAggregate
	EntityArithEquality
	EntityComparison
)

// entity is one node of the bipartite variable/entity safety graph: a
// single body literal, aggregate, arithmetic equality, or comparison that
// can either bind or merely consume some of the rule's variables.
type entity struct {
	kind EntityKind
	lit  BodyLit
	cost int // estimate(size, bound): lower schedules earlier among ties

	binds    []*VarRef // variables this entity can bind once grounded
	consumes []*VarRef // variables this entity requires already bound

	boundConsumed int // count of consumes[] currently satisfied
}

// Schedule is the ordered list of body literals the safety planner has
// proven safe, in the order the instantiator should bind them.
type Schedule struct {
	Order []BodyLit
}

// Unsafe is returned when one or more variables of a rule can never be
// bound by any entity in its body.
type Unsafe struct {
	Vars []*VarRef
	Loc  Location
}

func (u *Unsafe) Error() string {
	if len(u.Vars) == 1 {
		return "unsafe variable " + u.Vars[0].Name + " at " + u.Loc.String()
	}
	msg := "unsafe variables "
	for i, v := range u.Vars {
		if i > 0 {
			msg += ", "
		}
		msg += v.Name
	}
	return msg + " at " + u.Loc.String()
}

// PlanSafety builds the bipartite variable/entity graph for body and
// repeatedly removes a minimum-cost open entity (one whose consumed
// variables are already all bound), propagating the variables it binds,
// until every entity has been scheduled or no further entity is open. Any
// variable never bound by the resulting schedule is reported as unsafe.
//
// domainSize, when non-nil, estimates a predicate's live atom count for
// cost purposes; literals of an unknown predicate default to a large
// constant so they are scheduled last among ties.
func PlanSafety(body []BodyLit, allVars []*VarRef, loc Location, domainSize func(Signature) int) (*Schedule, error) {
	entities := make([]*entity, 0, len(body))
	for _, lit := range body {
		entities = append(entities, buildEntity(lit, domainSize))
	}

	bound := make(map[*VarRef]bool, len(allVars))
	var order []BodyLit

	for {
		var bestIdx = -1
		for i, e := range entities {
			if e == nil {
				continue
			}
			if !isOpen(e, bound) {
				continue
			}
			if bestIdx == -1 || entityPriority(e) < entityPriority(entities[bestIdx]) ||
				(entityPriority(e) == entityPriority(entities[bestIdx]) && e.cost < entities[bestIdx].cost) {
				bestIdx = i
			}
		}
		if bestIdx == -1 {
			break
		}
		e := entities[bestIdx]
		entities[bestIdx] = nil
		order = append(order, e.lit)
		for _, v := range e.binds {
			bound[v] = true
		}
	}

	var unsafe []*VarRef
	for _, v := range allVars {
		if !bound[v] {
			unsafe = append(unsafe, v)
		}
	}
	if len(unsafe) > 0 {
		sort.Slice(unsafe, func(i, j int) bool { return unsafe[i].Name < unsafe[j].Name })
		return nil, &Unsafe{Vars: unsafe, Loc: loc}
	}
	return &Schedule{Order: order}, nil
}

// isOpen reports whether every variable e consumes is already bound (an
// entity with no consumes at all, e.g. a fact literal or a ground literal,
// is open from the start).
func isOpen(e *entity, bound map[*VarRef]bool) bool {
	for _, v := range e.consumes {
		if !bound[v] {
			return false
		}
	}
	return true
}

// entityPriority implements "positive literals > built-in equality >
// arithmetic > remainder"; lower values schedule first.
func entityPriority(e *entity) int {
	switch e.kind {
	case EntityLiteral:
		if e.lit.Kind == BodySimple && e.lit.IsPositive() {
			return 0
		}
		return 3
	case EntityComparison:
		if e.lit.Rel == RelEq {
			return 1
		}
		return 3
	case EntityArithEquality:
		return 2
	default:
		return 3
	}
}

// buildEntity classifies lit into a safety-graph entity, computing its
// binds/consumes split. A positive simple literal binds every variable
// that occurs free in it (first occurrence anywhere is a bind, since the
// predicate's domain enumerates full tuples); a negative literal, a
// comparison, and an arithmetic equality only ever consume, except a
// comparison that is a disguised assignment (`X = t`, `X` free, `t`
// ground-once-its-own-variables-are-bound) which also binds `X`.
func buildEntity(lit BodyLit, domainSize func(Signature) int) *entity {
	switch lit.Kind {
	case BodySimple:
		vars := dedupVars(lit.Atom.CollectVars(nil))
		e := &entity{kind: EntityLiteral, lit: lit}
		if lit.NAF == NAFNone {
			e.binds = vars
		} else {
			e.consumes = vars
		}
		e.cost = estimateCost(lit.Atom.Signature(), len(e.binds) == 0, domainSize)
		return e

	case BodyComparison:
		kind := EntityComparison
		if containsArith(lit.Left) || containsArith(lit.Right) {
			kind = EntityArithEquality
		}
		e := &entity{kind: kind, lit: lit}
		if lit.Rel == RelEq {
			if isAssignmentCandidate(lit.Left, lit.Right) {
				e.binds = dedupVars(lit.Left.CollectVars(nil))
				e.consumes = dedupVars(lit.Right.CollectVars(nil))
				e.cost = 1
				return e
			}
			if isAssignmentCandidate(lit.Right, lit.Left) {
				e.binds = dedupVars(lit.Right.CollectVars(nil))
				e.consumes = dedupVars(lit.Left.CollectVars(nil))
				e.cost = 1
				return e
			}
		}
		vars := dedupVars(append(lit.Left.CollectVars(nil), lit.Right.CollectVars(nil)...))
		e.consumes = vars
		e.cost = len(vars)
		return e

	case BodyAggregateLit:
		vars := dedupVars(CollectBodyVars(lit, nil))
		return &entity{kind: EntityAggregate, lit: lit, consumes: vars, cost: len(lit.Aggregate.Elements) + 2}

	case BodyConjunction:
		// lit.Atom is the lowered conjunction-complete predicate: a
		// domain-backed atom exactly like a BodySimple literal, binding its
		// own (global) variables rather than merely consuming them. Its own
		// Conditions only matter to the dependency graph, not to safety.
		vars := dedupVars(lit.Atom.CollectVars(nil))
		e := &entity{kind: EntityLiteral, lit: lit, binds: vars}
		e.cost = estimateCost(lit.Atom.Signature(), len(vars) == 0, domainSize)
		return e

	default:
		vars := dedupVars(CollectBodyVars(lit, nil))
		return &entity{kind: EntityLiteral, lit: lit, consumes: vars, cost: len(vars) + 2}
	}
}

// isAssignmentCandidate reports whether lhs is a single free variable that
// does not also occur in rhs, making `lhs = rhs` usable as a binder for
// lhs once rhs's own variables are bound (the rewriter's assignment
// planning pass has already converted genuine cases into this shape; this
// check is the safety planner's independent confirmation).
func isAssignmentCandidate(lhs, rhs Term) bool {
	v, ok := lhs.(*VariableTerm)
	if !ok {
		return false
	}
	for _, r := range rhs.CollectVars(nil) {
		if r.Name == v.Ref.Name {
			return false
		}
	}
	return true
}

// estimateCost approximates a literal's binder size: a known domain size
// when sig is registered, otherwise a conservative large constant so
// unknown predicates schedule after any known one of the same priority
// tier; fully ground literals (no variables to bind) are nearly free.
func estimateCost(sig Signature, ground bool, domainSize func(Signature) int) int {
	if ground {
		return 1
	}
	if domainSize != nil {
		if n := domainSize(sig); n > 0 {
			return n
		}
	}
	return 1 << 20
}

func dedupVars(refs []*VarRef) []*VarRef {
	seen := make(map[*VarRef]bool, len(refs))
	out := make([]*VarRef, 0, len(refs))
	for _, r := range refs {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}
