package ground

// BinderKind tags which strategy a Binder uses to produce candidate
// bindings during instantiation.
type BinderKind uint8

const (
	BinderFullScan BinderKind = iota
	BinderHashProbe
	BinderSinglePoint
	BinderRelation
	BinderRange
	BinderScriptCall
)

func (k BinderKind) String() string {
	switch k {
	case BinderFullScan:
		return "full-scan"
	case BinderHashProbe:
		return "hash-probe"
	case BinderSinglePoint:
		return "single-point"
	case BinderRelation:
		return "relation"
	case BinderRange:
		return "range"
	case BinderScriptCall:
		return "script-call"
	default:
		return "unknown-binder"
	}
}

// ScriptCaller is the external-evaluation collaborator a script-call binder
// delegates to; script execution itself is out of scope for this package
// (§1), so Binder only shapes the call and hands the result back to the
// matcher.
type ScriptCaller interface {
	Call(name string, args []Symbol) (Symbol, error)
}

// Updater imports atoms newly recorded in a Domain since the last time this
// literal's binder probed it, the "Updater" half of an indexed literal (§4.6
// Indices). It is deliberately separate from Binder: several literals over
// the same predicate can share one Updater's import bookkeeping while each
// keeps its own bound-variable-derived probe.
type Updater struct {
	Domain   *Domain
	lastSeen Generation
}

// NewUpdater returns an updater over d starting with nothing imported.
func NewUpdater(d *Domain) *Updater { return &Updater{Domain: d} }

// Drain calls fn for every atom recorded since the last Drain call (or
// since construction), then advances the watermark to the domain's current
// generation.
func (u *Updater) Drain(fn func(AtomOffset)) {
	for off := 0; off < u.Domain.Len(); off++ {
		if u.Domain.atoms[off].generation >= u.lastSeen {
			fn(AtomOffset(off))
		}
	}
	u.lastSeen = u.Domain.current + 1
}

// Binder produces the candidate ground symbols for one body literal's
// position in the schedule, given which generation partition
// (OLD/NEW/ALL) the current semi-naive pass is drawing from.
type Binder struct {
	Kind BinderKind

	// Domain-backed kinds (FullScan, HashProbe, SinglePoint).
	Domain *Domain

	// HashProbe: derives the probe symbol from the rule's currently bound
	// variables; returns ok=false if a needed variable is not yet bound.
	ProbeKey func() (Symbol, bool)

	// SinglePoint: the exact ground symbol a fully-ground literal names.
	Point Symbol

	// Relation: `Left Rel Right`, evaluated once both sides are resolvable.
	Left, Right Term
	Rel         Rel

	// Range: enumerates integers Lo..Hi once both bounds are resolvable.
	Lo, Hi Term

	// ScriptCall.
	ScriptName string
	ScriptArgs []Term
	Caller     ScriptCaller
}

// resolveInt32 evaluates t to a ground Number if every variable it touches
// is already bound in m, reporting ok=false otherwise (a still-open
// variable, or a value that folds to something other than a Number). It
// delegates to EvalGround rather than the GTerm mirror so that an
// arithmetic-equality literal's still-unresolved UnaryOp/BinaryOp shape
// (see arith.go) evaluates directly instead of hitting the mirror builder's
// panic for those node kinds.
func resolveInt32(t Term, b *Builder, m *Matcher) (int32, bool) {
	return EvalGround(t, func(ref *VarRef) (int32, bool) {
		cell := b.CellOf(ref.Name)
		if m.Arena.State(cell) == 0 { // arena.Empty is zero-valued
			return 0, false
		}
		g := m.deref(NewGVariable(cell))
		if g.Kind() != GKValue || g.Symbol().Kind() != KindNumber {
			return 0, false
		}
		return g.Symbol().Number(), true
	})
}

// Candidates returns the sequence of ground symbols this binder can offer
// as a match for its literal's pattern, restricted to gen's generation
// partition where the binder is domain-backed. The instantiator tries each
// in turn against the literal's GTerm pattern via Matcher.Match, undoing
// between attempts.
func (b *Binder) Candidates(gen GenKind) []Symbol {
	switch b.Kind {
	case BinderFullScan:
		var out []Symbol
		b.Domain.Iterate(gen, func(off AtomOffset) {
			out = append(out, b.Domain.Symbol(off))
		})
		return out

	case BinderHashProbe:
		key, ok := b.ProbeKey()
		if !ok {
			return nil
		}
		off, found := b.Domain.Lookup(key)
		if !found {
			return nil
		}
		e := b.Domain.atoms[off]
		switch gen {
		case GenNew:
			if e.generation != b.Domain.current {
				return nil
			}
		case GenOld:
			if e.generation == b.Domain.current {
				return nil
			}
		}
		return []Symbol{e.sym}

	case BinderSinglePoint:
		return []Symbol{b.Point}

	default:
		// Relation, Range, and ScriptCall binders do not draw from a
		// Domain; the instantiator calls their dedicated evaluation paths
		// (RelationHolds, RangeValues, ScriptValue) instead of Candidates.
		return nil
	}
}

// RelationHolds evaluates a Relation binder. When Left is a still-unbound
// single variable and Right already resolves to a ground number, the
// relation acts as an assignment binder (per the rewriter's assignment
// planning pass): it always holds and reports the variable to bind. Either
// way, once both sides resolve, it evaluates Rel directly.
func RelationHolds(b *Binder, bld *Builder, m *Matcher) (holds bool, bindLeft *VarRef, value int32) {
	rv, rok := resolveInt32(b.Right, bld, m)
	if v, ok := b.Left.(*VariableTerm); ok && rok && !isBoundVar(v.Ref, bld, m) {
		return true, v.Ref, rv
	}
	lv, lok := resolveInt32(b.Left, bld, m)
	if !lok || !rok {
		return false, nil, 0
	}
	return b.Rel.Eval(lv, rv), nil, 0
}

// isBoundVar reports whether ref is already bound in m via bld's cell
// assignment for that name.
func isBoundVar(ref *VarRef, bld *Builder, m *Matcher) bool {
	cell := bld.CellOf(ref.Name)
	return m.Arena.State(cell) != 0 // arena.Empty is zero-valued
}

// RangeValues enumerates Lo..Hi once both bounds resolve to ground numbers,
// returning nil if either bound is not yet resolvable.
func RangeValues(b *Binder, bld *Builder, m *Matcher) []int32 {
	lo, lok := resolveInt32(b.Lo, bld, m)
	hi, hok := resolveInt32(b.Hi, bld, m)
	if !lok || !hok || lo > hi {
		return nil
	}
	out := make([]int32, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, v)
	}
	return out
}

// ScriptValue invokes a ScriptCall binder's external evaluator once every
// argument resolves to a ground symbol.
func ScriptValue(b *Binder, bld *Builder, m *Matcher) (Symbol, error, bool) {
	args := make([]Symbol, len(b.ScriptArgs))
	for i, a := range b.ScriptArgs {
		g := bld.Build(a)
		g = m.deref(g)
		if g.Kind() != GKValue {
			return Symbol{}, nil, false
		}
		args[i] = g.Symbol()
	}
	if b.Caller == nil {
		return Symbol{}, nil, false
	}
	sym, err := b.Caller.Call(b.ScriptName, args)
	return sym, err, true
}
