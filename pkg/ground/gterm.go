package ground

import "github.com/potassco/clingo-sub003/internal/arena"

// GKind tags a GTerm's variant.
type GKind uint8

const (
	GKValue GKind = iota
	GKFunction
	GKLinear
	GKVariable
)

// GTerm is the ground-term mirror of a Term: the structure the matcher
// unifies against candidate ground atoms during instantiation. Variable and
// Linear nodes carry a shared arena.Cell instead of their own storage, so
// that every GTerm built from occurrences of the same rule variable
// observes the same binding.
type GTerm struct {
	kind GKind

	sym Symbol // GKValue

	name string  // GKFunction
	sign bool    // GKFunction
	args []*GTerm

	cell arena.Cell // GKLinear, GKVariable
	m, n int32       // GKLinear
}

// NewGValue wraps a ground symbol.
func NewGValue(s Symbol) *GTerm { return &GTerm{kind: GKValue, sym: s} }

// NewGFunction builds a function node.
func NewGFunction(name string, sign bool, args []*GTerm) *GTerm {
	return &GTerm{kind: GKFunction, name: name, sign: sign, args: args}
}

// NewGLinear builds m*cell+n.
func NewGLinear(cell arena.Cell, m, n int32) *GTerm {
	return &GTerm{kind: GKLinear, cell: cell, m: m, n: n}
}

// NewGVariable builds a bare variable reference.
func NewGVariable(cell arena.Cell) *GTerm { return &GTerm{kind: GKVariable, cell: cell} }

func (t *GTerm) Kind() GKind     { return t.kind }
func (t *GTerm) Symbol() Symbol  { return t.sym }
func (t *GTerm) Name() string    { return t.name }
func (t *GTerm) Sign() bool      { return t.sign }
func (t *GTerm) Args() []*GTerm  { return t.args }
func (t *GTerm) Cell() arena.Cell { return t.cell }
func (t *GTerm) M() int32        { return t.m }
func (t *GTerm) N() int32        { return t.n }

// Builder converts non-ground Term trees into GTerm mirrors, handing out
// one shared arena.Cell per distinct rule variable name via rename, so that
// two GTerm trees built from the same rule agree on cell identity for their
// common variables.
type Builder struct {
	Arena  *arena.Arena
	rename map[string]arena.Cell
}

// NewBuilder returns a Builder over ar, with an empty rename map.
func NewBuilder(ar *arena.Arena) *Builder {
	return &Builder{Arena: ar, rename: make(map[string]arena.Cell)}
}

// CellOf returns the shared cell for a rule variable name, allocating one on
// first sight.
func (b *Builder) CellOf(name string) arena.Cell {
	if c, ok := b.rename[name]; ok {
		return c
	}
	c := b.Arena.NewCell()
	b.rename[name] = c
	return c
}

// Build converts t into its GTerm mirror.
func (b *Builder) Build(t Term) *GTerm {
	switch v := t.(type) {
	case *ValueTerm:
		return NewGValue(v.Sym)
	case *VariableTerm:
		return NewGVariable(b.CellOf(v.Ref.Name))
	case *LinearTerm:
		return NewGLinear(b.CellOf(v.Ref.Name), v.M, v.N)
	case *FunctionTerm:
		args := make([]*GTerm, len(v.Args))
		for i, a := range v.Args {
			args[i] = b.Build(a)
		}
		return NewGFunction(v.Name, v.Sign, args)
	default:
		// UnaryTerm/BinaryTerm/Range/Pool/Script never reach the matcher:
		// the rewriter has already replaced them with Value/Variable/Linear
		// forms plus auxiliary body literals by the time a rule is ground.
		panic("gterm: Build called on a non-ground-ready term")
	}
}

// Matcher runs unification against one Arena, recording every cell it binds
// on a trail so a failed attempt can be undone without resetting cells that
// were already bound before the attempt started.
type Matcher struct {
	Arena *arena.Arena
	trail []arena.Cell
}

// NewMatcher returns a Matcher over ar.
func NewMatcher(ar *arena.Arena) *Matcher {
	return &Matcher{Arena: ar}
}

// Mark returns a position in the trail to roll back to.
func (m *Matcher) Mark() int { return len(m.trail) }

// Undo unbinds every cell bound since mark, in reverse order.
func (m *Matcher) Undo(mark int) {
	for i := len(m.trail) - 1; i >= mark; i-- {
		m.Arena.Unbind(m.trail[i])
	}
	m.trail = m.trail[:mark]
}

func (m *Matcher) bindValue(c arena.Cell, s Symbol) {
	m.Arena.BindValue(c, s)
	m.trail = append(m.trail, c)
}

func (m *Matcher) bindTerm(c arena.Cell, t *GTerm) {
	m.Arena.BindTerm(c, t)
	m.trail = append(m.trail, c)
}

// deref resolves t through the arena as far as binding allows: a bound
// GKVariable becomes whatever it is bound to (recursively); a bound
// GKLinear with its cell bound to a number v folds to the concrete GKValue
// m*v+n. An unbound GKVariable/GKLinear is returned unchanged.
func (m *Matcher) deref(t *GTerm) *GTerm {
	for {
		switch t.kind {
		case GKVariable:
			switch m.Arena.State(t.cell) {
			case arena.BoundValue:
				return &GTerm{kind: GKValue, sym: m.Arena.Value(t.cell).(Symbol)}
			case arena.BoundTerm:
				t = m.Arena.Value(t.cell).(*GTerm)
				continue
			default:
				return t
			}
		case GKLinear:
			if m.Arena.State(t.cell) == arena.BoundValue {
				base := m.Arena.Value(t.cell).(Symbol)
				if base.Kind() != KindNumber {
					return t // malformed input; let the caller's equality check fail
				}
				return &GTerm{kind: GKValue, sym: NewNumber(t.m*base.Number() + t.n)}
			}
			return t
		default:
			return t
		}
	}
}

// occurs reports whether cell c appears anywhere inside t, used to reject
// e.g. `X -> f(X)` during variable-vs-function unification.
func occurs(m *Matcher, c arena.Cell, t *GTerm) bool {
	t = m.deref(t)
	switch t.kind {
	case GKVariable, GKLinear:
		return t.cell == c
	case GKFunction:
		for _, a := range t.args {
			if occurs(m, c, a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// unifyFn is one entry of the (kind, kind) dispatch table.
type unifyFn func(m *Matcher, a, b *GTerm) bool

// unifyTable enumerates, per the design notes, exactly the pairs that can
// succeed; every other combination is unreachable default-false. Indexed
// [a.kind][b.kind], so asymmetric combinations (e.g. function, variable)
// need both orderings filled in explicitly.
var unifyTable [4][4]unifyFn

func init() {
	for i := range unifyTable {
		for j := range unifyTable[i] {
			unifyTable[i][j] = unifyFail
		}
	}
	unifyTable[GKValue][GKValue] = unifyValueValue
	unifyTable[GKValue][GKVariable] = unifyValueVar
	unifyTable[GKVariable][GKValue] = swap(unifyValueVar)
	unifyTable[GKFunction][GKFunction] = unifyFunctionFunction
	unifyTable[GKFunction][GKVariable] = unifyFunctionVar
	unifyTable[GKVariable][GKFunction] = swap(unifyFunctionVar)
	unifyTable[GKLinear][GKLinear] = unifyLinearLinear
	unifyTable[GKLinear][GKVariable] = unifyLinearVar
	unifyTable[GKVariable][GKLinear] = swap(unifyLinearVar)
	unifyTable[GKVariable][GKVariable] = unifyVarVar
}

func swap(f unifyFn) unifyFn {
	return func(m *Matcher, a, b *GTerm) bool { return f(m, b, a) }
}

func unifyFail(m *Matcher, a, b *GTerm) bool { return false }

func unifyValueValue(m *Matcher, a, b *GTerm) bool { return a.sym.Equal(b.sym) }

func unifyValueVar(m *Matcher, value, v *GTerm) bool {
	m.bindValue(v.cell, value.sym)
	return true
}

func unifyFunctionFunction(m *Matcher, a, b *GTerm) bool {
	if a.name != b.name || a.sign != b.sign || len(a.args) != len(b.args) {
		return false
	}
	for i := range a.args {
		if !m.Unify(a.args[i], b.args[i]) {
			return false
		}
	}
	return true
}

func unifyFunctionVar(m *Matcher, fn, v *GTerm) bool {
	if occurs(m, v.cell, fn) {
		return false
	}
	m.bindTerm(v.cell, fn)
	return true
}

// unifyLinearLinear unifies two still-unbound linear forms permissively: if
// they name the same cell, their (m,n) must agree structurally; otherwise
// unification is accepted as an over-approximation, matching the data
// model's documented trade-off ("the caller may re-match").
func unifyLinearLinear(m *Matcher, a, b *GTerm) bool {
	if a.cell == b.cell {
		return a.m == b.m && a.n == b.n
	}
	return true
}

func unifyLinearVar(m *Matcher, lin, v *GTerm) bool {
	if lin.cell == v.cell {
		// X -> 1*X+0 is the only self-referential linear form that is
		// trivially satisfied without creating a binding.
		return lin.m == 1 && lin.n == 0
	}
	m.bindTerm(v.cell, lin)
	return true
}

func unifyVarVar(m *Matcher, a, b *GTerm) bool {
	if a.cell == b.cell {
		return true
	}
	m.bindTerm(a.cell, b)
	return true
}

// Unify attempts to unify a and b, binding free cells as needed. On failure
// the caller is responsible for calling Undo back to a prior Mark: Unify
// itself does not roll back partial bindings made by a recursive call that
// later failed, since the caller usually wants those rolled back together
// with bindings made before the call (e.g. an entire rule attempt).
func (m *Matcher) Unify(a, b *GTerm) bool {
	a = m.deref(a)
	b = m.deref(b)
	return unifyTable[a.kind][b.kind](m, a, b)
}

// Match checks whether candidate unifies against pattern, binding pattern's
// free cells as a side effect. It is Unify with the common case named for
// readability at call sites that think in terms of "match a candidate
// against a pattern". Candidate is mirrored into function-shaped GTerm
// structure (not a flat GValue) so a compound pattern like f(X) can unify
// argument-by-argument against a compound ground atom f(a): a flat GValue
// would only ever reach the value-value or value-variable table entries and
// could never unify against a GKFunction pattern.
func (m *Matcher) Match(pattern *GTerm, candidate Symbol) bool {
	return m.Unify(pattern, groundMirror(candidate))
}

// groundMirror converts a fully ground Symbol into the GTerm shape Unify
// expects to see on the candidate side: KindFunction symbols become a
// GKFunction node with each argument mirrored recursively, and every other
// kind (including KindIdentifier, a 0-arity function) becomes a flat
// GKValue leaf.
func groundMirror(s Symbol) *GTerm {
	if s.Kind() != KindFunction {
		return NewGValue(s)
	}
	args := s.Args()
	mirrored := make([]*GTerm, len(args))
	for i, a := range args {
		mirrored[i] = groundMirror(a)
	}
	return NewGFunction(s.Str(), s.Sign(), mirrored)
}

// Reset returns every cell in the underlying arena to Empty and clears the
// trail, used between independent instantiation attempts over the same
// rule.
func (m *Matcher) Reset() {
	m.Arena.Reset()
	m.trail = m.trail[:0]
}
