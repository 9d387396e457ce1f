package ground

import (
	"fmt"
	"strings"
)

// TermKind tags a Term's variant.
type TermKind uint8

const (
	TValue TermKind = iota
	TVariable
	TLinear
	TUnaryOp
	TBinaryOp
	TRange
	TFunction
	TPool
	TScript
)

// UnaryOp identifies a unary arithmetic operator.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpAbs
	OpBNot
)

func (o UnaryOp) String() string {
	switch o {
	case OpNeg:
		return "-"
	case OpAbs:
		return "|.|"
	case OpBNot:
		return "~"
	default:
		return "?"
	}
}

// BinaryOp identifies a binary arithmetic operator.
type BinaryOp uint8

const (
	OpXor BinaryOp = iota
	OpOr
	OpAnd
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
)

func (o BinaryOp) String() string {
	switch o {
	case OpXor:
		return "^"
	case OpOr:
		return "?"
	case OpAnd:
		return "&"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "\\"
	case OpPow:
		return "**"
	default:
		return "?"
	}
}

// Term is a tagged, non-ground expression variant: Value, Variable, Linear,
// UnaryOp, BinaryOp, Range, Function, Pool, or Script.
//
// Term implementations are deep-cloneable (Value terms share underlying
// interned symbols; Variable terms intentionally alias the same *VarRef
// across occurrences within a rule) and support structural equality that
// ignores reference-cell identity but preserves anonymous-variable
// uniqueness.
type Term interface {
	Kind() TermKind
	String() string
	Clone() Term
	Equal(other Term) bool
	// CollectVars appends every VarRef this term touches (without
	// deduplication; callers key by ref identity) to out and returns the
	// result.
	CollectVars(out []*VarRef) []*VarRef
}

// VarRef is the non-ground counterpart of a variable occurrence: a name, a
// quantification depth ("level"), and whether it sits in a position the
// projection pass cares about. All Term.Variable nodes built from the same
// rule-level name share one *VarRef, which is what lets the rewriter and
// planner treat "the variable X" as a single entity across its occurrences.
type VarRef struct {
	Name    string
	Level   int
	Project bool // set on positional anonymous variables ("_") pre-projection
}

// ValueTerm wraps a ground Symbol.
type ValueTerm struct{ Sym Symbol }

func NewValueTerm(s Symbol) *ValueTerm { return &ValueTerm{Sym: s} }

func (t *ValueTerm) Kind() TermKind { return TValue }
func (t *ValueTerm) String() string { return t.Sym.String() }
func (t *ValueTerm) Clone() Term    { return &ValueTerm{Sym: t.Sym} }
func (t *ValueTerm) Equal(o Term) bool {
	ot, ok := o.(*ValueTerm)
	return ok && t.Sym.Equal(ot.Sym)
}
func (t *ValueTerm) CollectVars(out []*VarRef) []*VarRef { return out }

// VariableTerm is an occurrence of a logic variable. Its Ref is shared by
// every occurrence of the same name within one rule (see VarTable).
type VariableTerm struct{ Ref *VarRef }

func NewVariableTerm(ref *VarRef) *VariableTerm { return &VariableTerm{Ref: ref} }

func (t *VariableTerm) Kind() TermKind { return TVariable }
func (t *VariableTerm) String() string { return t.Ref.Name }
func (t *VariableTerm) Clone() Term    { return &VariableTerm{Ref: t.Ref} }
func (t *VariableTerm) Equal(o Term) bool {
	ot, ok := o.(*VariableTerm)
	// Structural equality ignores reference-cell identity but, per the data
	// model, two occurrences of the same rule variable are equal exactly
	// when they share a name (anonymous variables get fresh unique names
	// during simplification so "_" never collides with another "_").
	return ok && t.Ref.Name == ot.Ref.Name
}
func (t *VariableTerm) CollectVars(out []*VarRef) []*VarRef { return append(out, t.Ref) }

// LinearTerm represents the canonical arithmetic form m*X + n.
type LinearTerm struct {
	Ref  *VarRef
	M, N int32
}

func NewLinearTerm(ref *VarRef, m, n int32) *LinearTerm { return &LinearTerm{Ref: ref, M: m, N: n} }

func (t *LinearTerm) Kind() TermKind { return TLinear }
func (t *LinearTerm) String() string {
	switch {
	case t.N == 0:
		return fmt.Sprintf("%d*%s", t.M, t.Ref.Name)
	case t.N > 0:
		return fmt.Sprintf("%d*%s+%d", t.M, t.Ref.Name, t.N)
	default:
		return fmt.Sprintf("%d*%s-%d", t.M, t.Ref.Name, -t.N)
	}
}
func (t *LinearTerm) Clone() Term { return &LinearTerm{Ref: t.Ref, M: t.M, N: t.N} }
func (t *LinearTerm) Equal(o Term) bool {
	ot, ok := o.(*LinearTerm)
	return ok && t.Ref.Name == ot.Ref.Name && t.M == ot.M && t.N == ot.N
}
func (t *LinearTerm) CollectVars(out []*VarRef) []*VarRef { return append(out, t.Ref) }

// UnaryTerm applies a unary operator to an argument.
type UnaryTerm struct {
	Op  UnaryOp
	Arg Term
}

func NewUnaryTerm(op UnaryOp, arg Term) *UnaryTerm { return &UnaryTerm{Op: op, Arg: arg} }

func (t *UnaryTerm) Kind() TermKind { return TUnaryOp }
func (t *UnaryTerm) String() string { return fmt.Sprintf("%s(%s)", t.Op, t.Arg.String()) }
func (t *UnaryTerm) Clone() Term    { return &UnaryTerm{Op: t.Op, Arg: t.Arg.Clone()} }
func (t *UnaryTerm) Equal(o Term) bool {
	ot, ok := o.(*UnaryTerm)
	return ok && t.Op == ot.Op && t.Arg.Equal(ot.Arg)
}
func (t *UnaryTerm) CollectVars(out []*VarRef) []*VarRef { return t.Arg.CollectVars(out) }

// BinaryTerm applies a binary operator to two arguments.
type BinaryTerm struct {
	Op          BinaryOp
	Left, Right Term
}

func NewBinaryTerm(op BinaryOp, l, r Term) *BinaryTerm { return &BinaryTerm{Op: op, Left: l, Right: r} }

func (t *BinaryTerm) Kind() TermKind { return TBinaryOp }
func (t *BinaryTerm) String() string {
	return fmt.Sprintf("(%s%s%s)", t.Left.String(), t.Op, t.Right.String())
}
func (t *BinaryTerm) Clone() Term {
	return &BinaryTerm{Op: t.Op, Left: t.Left.Clone(), Right: t.Right.Clone()}
}
func (t *BinaryTerm) Equal(o Term) bool {
	ot, ok := o.(*BinaryTerm)
	return ok && t.Op == ot.Op && t.Left.Equal(ot.Left) && t.Right.Equal(ot.Right)
}
func (t *BinaryTerm) CollectVars(out []*VarRef) []*VarRef {
	out = t.Left.CollectVars(out)
	return t.Right.CollectVars(out)
}

// RangeTerm represents `left..right`. Simplify replaces it with a fresh
// variable and a dots-list entry; it then survives only as the right-hand
// side of the extracted `#Range<n> = left..right` binder literal.
type RangeTerm struct{ Left, Right Term }

func NewRangeTerm(l, r Term) *RangeTerm { return &RangeTerm{Left: l, Right: r} }

func (t *RangeTerm) Kind() TermKind { return TRange }
func (t *RangeTerm) String() string { return fmt.Sprintf("%s..%s", t.Left.String(), t.Right.String()) }
func (t *RangeTerm) Clone() Term    { return &RangeTerm{Left: t.Left.Clone(), Right: t.Right.Clone()} }
func (t *RangeTerm) Equal(o Term) bool {
	ot, ok := o.(*RangeTerm)
	return ok && t.Left.Equal(ot.Left) && t.Right.Equal(ot.Right)
}
func (t *RangeTerm) CollectVars(out []*VarRef) []*VarRef {
	out = t.Left.CollectVars(out)
	return t.Right.CollectVars(out)
}

// FunctionTerm is a non-ground function application (includes 0-arity
// identifiers).
type FunctionTerm struct {
	Name string
	Sign bool
	Args []Term
}

func NewFunctionTerm(name string, sign bool, args []Term) *FunctionTerm {
	return &FunctionTerm{Name: name, Sign: sign, Args: args}
}

func (t *FunctionTerm) Kind() TermKind { return TFunction }
func (t *FunctionTerm) String() string {
	var b strings.Builder
	if t.Sign {
		b.WriteByte('-')
	}
	b.WriteString(t.Name)
	if len(t.Args) > 0 {
		b.WriteByte('(')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(a.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}
func (t *FunctionTerm) Clone() Term {
	args := make([]Term, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Clone()
	}
	return &FunctionTerm{Name: t.Name, Sign: t.Sign, Args: args}
}
func (t *FunctionTerm) Equal(o Term) bool {
	ot, ok := o.(*FunctionTerm)
	if !ok || t.Name != ot.Name || t.Sign != ot.Sign || len(t.Args) != len(ot.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(ot.Args[i]) {
			return false
		}
	}
	return true
}
func (t *FunctionTerm) CollectVars(out []*VarRef) []*VarRef {
	for _, a := range t.Args {
		out = a.CollectVars(out)
	}
	return out
}

// Signature reports the (name, arity, sign) of this function application.
func (t *FunctionTerm) Signature() Signature {
	return Signature{Name: t.Name, Arity: len(t.Args), Sign: t.Sign}
}

// PoolTerm is a non-deterministic choice among alternatives, e.g. `(a;b;c)`.
// It never survives past unpooling.
type PoolTerm struct{ Alternatives []Term }

func NewPoolTerm(alts []Term) *PoolTerm { return &PoolTerm{Alternatives: alts} }

func (t *PoolTerm) Kind() TermKind { return TPool }
func (t *PoolTerm) String() string {
	parts := make([]string, len(t.Alternatives))
	for i, a := range t.Alternatives {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, ";") + ")"
}
func (t *PoolTerm) Clone() Term {
	alts := make([]Term, len(t.Alternatives))
	for i, a := range t.Alternatives {
		alts[i] = a.Clone()
	}
	return &PoolTerm{Alternatives: alts}
}
func (t *PoolTerm) Equal(o Term) bool {
	ot, ok := o.(*PoolTerm)
	if !ok || len(t.Alternatives) != len(ot.Alternatives) {
		return false
	}
	for i := range t.Alternatives {
		if !t.Alternatives[i].Equal(ot.Alternatives[i]) {
			return false
		}
	}
	return true
}
func (t *PoolTerm) CollectVars(out []*VarRef) []*VarRef {
	for _, a := range t.Alternatives {
		out = a.CollectVars(out)
	}
	return out
}

// ScriptTerm is an external-evaluation placeholder, e.g. `@foo(X,Y)`.
// Simplification replaces it with a fresh variable plus a script-call entry
// in the SimplifyState; it then survives only as the right-hand side of the
// extracted `#Script<n> = @foo(X,Y)` binder literal.
type ScriptTerm struct {
	Name string
	Args []Term
}

func NewScriptTerm(name string, args []Term) *ScriptTerm { return &ScriptTerm{Name: name, Args: args} }

func (t *ScriptTerm) Kind() TermKind { return TScript }
func (t *ScriptTerm) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return "@" + t.Name + "(" + strings.Join(parts, ",") + ")"
}
func (t *ScriptTerm) Clone() Term {
	args := make([]Term, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Clone()
	}
	return &ScriptTerm{Name: t.Name, Args: args}
}
func (t *ScriptTerm) Equal(o Term) bool {
	ot, ok := o.(*ScriptTerm)
	if !ok || t.Name != ot.Name || len(t.Args) != len(ot.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(ot.Args[i]) {
			return false
		}
	}
	return true
}
func (t *ScriptTerm) CollectVars(out []*VarRef) []*VarRef {
	for _, a := range t.Args {
		out = a.CollectVars(out)
	}
	return out
}

// VarTable hands out one shared *VarRef per distinct variable name within a
// single rule, and a fresh, guaranteed-unique name for each anonymous
// variable it is asked to mint. One VarTable is scoped to one rule's
// rewriting; it is not shared across rules.
type VarTable struct {
	byName map[string]*VarRef
	anon   int
}

func NewVarTable() *VarTable {
	return &VarTable{byName: make(map[string]*VarRef)}
}

// Ref returns the shared VarRef for name, creating it at the given level on
// first sight.
func (vt *VarTable) Ref(name string, level int) *VarRef {
	if ref, ok := vt.byName[name]; ok {
		return ref
	}
	ref := &VarRef{Name: name, Level: level}
	vt.byName[name] = ref
	return ref
}

// FreshAnon mints a new anonymous variable under the reserved #Anon family,
// guaranteed not to collide with any other variable this table has handed
// out, including other anonymous ones.
func (vt *VarTable) FreshAnon(level int, project bool) *VarRef {
	vt.anon++
	name := fmt.Sprintf("#Anon%d", vt.anon)
	ref := &VarRef{Name: name, Level: level, Project: project}
	vt.byName[name] = ref
	return ref
}

// FreshNamed mints a fresh variable under the given reserved-prefix family
// (e.g. "#Arith", "#Range", "#Script"), used by the rewriter passes that
// lift dots/scripts/non-invertible arithmetic out of a term.
func (vt *VarTable) FreshNamed(prefix string, level int) *VarRef {
	vt.anon++
	name := fmt.Sprintf("%s%d", prefix, vt.anon)
	ref := &VarRef{Name: name, Level: level}
	vt.byName[name] = ref
	return ref
}

// Vars returns every VarRef this table has handed out, useful for safety
// checking ("every variable of r covered exactly once").
func (vt *VarTable) Vars() []*VarRef {
	out := make([]*VarRef, 0, len(vt.byName))
	for _, ref := range vt.byName {
		out = append(out, ref)
	}
	return out
}
