// Package ground implements the grounder core of an ASP toolchain: term
// algebra and unification, the rewriter pipeline, dependency analysis,
// safety/variable-order planning, and the semi-naive instantiation engine.
// The lexer/parser, builder API, CLI, and downstream solver are external
// collaborators and are not implemented here.
package ground

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/hashstructure/v2"
)

// SymKind tags the variant a Symbol holds.
type SymKind uint8

const (
	KindInfimum SymKind = iota
	KindNumber
	KindString
	KindIdentifier
	KindFunction
	KindSupremum
)

func (k SymKind) String() string {
	switch k {
	case KindInfimum:
		return "infimum"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindIdentifier:
		return "identifier"
	case KindFunction:
		return "function"
	case KindSupremum:
		return "supremum"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Signature is the triple (name, arity, sign) that identifies a predicate or
// function symbol regardless of its concrete arguments.
type Signature struct {
	Name  string
	Arity int
	Sign  bool // true means classically negated, "-name(...)"
}

func (s Signature) String() string {
	if s.Sign {
		return fmt.Sprintf("-%s/%d", s.Name, s.Arity)
	}
	return fmt.Sprintf("%s/%d", s.Name, s.Arity)
}

// Symbol is a ground value: one of Infimum, Supremum, Number, String,
// Identifier, or Function. Symbols are immutable once constructed; the zero
// value is the Infimum symbol (deliberately, so an uninitialized Symbol
// sorts below everything rather than panicking on first use).
type Symbol struct {
	kind SymKind
	num  int32
	str  string // payload for String; name for Identifier/Function
	sign bool   // classical negation, Identifier/Function only
	args []Symbol
}

// Infimum is the least symbol in the total order.
var Infimum = Symbol{kind: KindInfimum}

// Supremum is the greatest symbol in the total order.
var Supremum = Symbol{kind: KindSupremum}

// NewNumber constructs a signed 32-bit integer symbol.
func NewNumber(n int32) Symbol {
	return Symbol{kind: KindNumber, num: n}
}

// NewString constructs a string symbol. Interning (so that equal strings
// compare as identical underlying data, not merely equal by value) is the
// SymbolTable's job; Symbol itself only guarantees structural equality.
func NewString(s string) Symbol {
	return Symbol{kind: KindString, str: s}
}

// NewIdentifier constructs a 0-arity function symbol, i.e. a plain name.
func NewIdentifier(name string, sign bool) Symbol {
	return Symbol{kind: KindIdentifier, str: name, sign: sign}
}

// NewFunction constructs a function symbol with the given name, sign, and
// argument symbols. A 0-length args yields the same KindIdentifier symbol
// NewIdentifier builds.
func NewFunction(name string, sign bool, args []Symbol) Symbol {
	if len(args) == 0 {
		return NewIdentifier(name, sign)
	}
	return Symbol{kind: KindFunction, str: name, sign: sign, args: args}
}

// IsGround is always true for Symbol: by construction a Symbol never
// contains a variable. It exists to make call sites that branch on Term vs
// Symbol self-documenting.
func (s Symbol) IsGround() bool { return true }

// Kind returns the tag of the symbol's variant.
func (s Symbol) Kind() SymKind { return s.kind }

// Number returns the integer payload; only meaningful when Kind() ==
// KindNumber.
func (s Symbol) Number() int32 { return s.num }

// Str returns the string payload (the literal value for KindString, the
// name for KindIdentifier/KindFunction).
func (s Symbol) Str() string { return s.str }

// Sign returns the classical-negation sign bit; only meaningful for
// KindIdentifier/KindFunction.
func (s Symbol) Sign() bool { return s.sign }

// Args returns the argument symbols of a KindFunction symbol (nil for every
// other kind, including KindIdentifier).
func (s Symbol) Args() []Symbol { return s.args }

// Arity returns the number of arguments: 0 for everything but KindFunction.
func (s Symbol) Arity() int { return len(s.args) }

// Signature returns the (name, arity, sign) triple of an Identifier or
// Function symbol. Calling it on any other kind panics: the rewriter never
// needs a signature for a Number/String/Infimum/Supremum symbol, so this is
// the "unreachable assertion" pattern from the design notes rather than a
// checked error path.
func (s Symbol) Signature() Signature {
	switch s.kind {
	case KindIdentifier, KindFunction:
		return Signature{Name: s.str, Arity: len(s.args), Sign: s.sign}
	default:
		panic(fmt.Sprintf("Signature: symbol kind %v has no signature", s.kind))
	}
}

// Negate flips only the outer sign bit, so double negation round-trips and
// a triple negation equals a single one: `---x = -x`. Negating anything but
// an Identifier or Function symbol panics — the rewriter never constructs
// such a call, the parser rejects classical negation on non-atoms before
// this package ever sees the term.
func (s Symbol) Negate() Symbol {
	switch s.kind {
	case KindIdentifier:
		return Symbol{kind: KindIdentifier, str: s.str, sign: !s.sign}
	case KindFunction:
		out := Symbol{kind: KindFunction, str: s.str, sign: !s.sign, args: s.args}
		return out
	default:
		panic(fmt.Sprintf("Negate: symbol kind %v cannot be classically negated", s.kind))
	}
}

// Equal reports structural equality.
func (s Symbol) Equal(o Symbol) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case KindInfimum, KindSupremum:
		return true
	case KindNumber:
		return s.num == o.num
	case KindString:
		return s.str == o.str
	case KindIdentifier:
		return s.str == o.str && s.sign == o.sign
	case KindFunction:
		if s.str != o.str || s.sign != o.sign || len(s.args) != len(o.args) {
			return false
		}
		for i := range s.args {
			if !s.args[i].Equal(o.args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare implements the total order from the data model: Infimum < Number
// < String < Function < Supremum, tie-broken lexicographically within a
// kind. Identifier and Function compare by the same rule (name, then arity,
// then args, then sign) since an Identifier is just a 0-arity Function.
func (s Symbol) Compare(o Symbol) int {
	sr, or := s.kindRank(), o.kindRank()
	if sr != or {
		return sr - or
	}
	switch s.kind {
	case KindInfimum, KindSupremum:
		return 0
	case KindNumber:
		switch {
		case s.num < o.num:
			return -1
		case s.num > o.num:
			return 1
		default:
			return 0
		}
	case KindString:
		return strings.Compare(s.str, o.str)
	case KindIdentifier, KindFunction:
		if c := strings.Compare(s.str, o.str); c != 0 {
			return c
		}
		if c := len(s.args) - len(o.args); c != 0 {
			return c
		}
		for i := range s.args {
			if c := s.args[i].Compare(o.args[i]); c != 0 {
				return c
			}
		}
		return boolCompare(s.sign, o.sign)
	default:
		return 0
	}
}

// kindRank collapses KindIdentifier and KindFunction into the same rank:
// the data model's total order treats them as one "Function" tier,
// distinguished only by arity (which Compare already handles).
func (s Symbol) kindRank() int {
	switch s.kind {
	case KindInfimum:
		return 0
	case KindNumber:
		return 1
	case KindString:
		return 2
	case KindIdentifier, KindFunction:
		return 3
	case KindSupremum:
		return 4
	default:
		return 5
	}
}

func boolCompare(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

// hashProjection is the exported, hashstructure-friendly shape a Symbol
// hashes through. hashstructure walks exported struct fields via
// reflection; Symbol's own fields are unexported so projections keep the
// hash stable without exposing internal representation on the public type.
type hashProjection struct {
	Kind SymKind
	Num  int32
	Str  string
	Sign bool
	Args []uint64
}

// Hash returns a hash stable across calls within one process, per the data
// model invariant. It is not guaranteed stable across processes or Go
// versions (hashstructure makes no such promise), which is all the spec
// requires.
func (s Symbol) Hash() uint64 {
	argHashes := make([]uint64, len(s.args))
	for i, a := range s.args {
		argHashes[i] = a.Hash()
	}
	h, err := hashstructure.Hash(hashProjection{
		Kind: s.kind,
		Num:  s.num,
		Str:  s.str,
		Sign: s.sign,
		Args: argHashes,
	}, hashstructure.FormatV2, nil)
	if err != nil {
		// hashProjection only contains primitives and a []uint64; Hash can
		// only fail on unsupported field types or cyclic structures, neither
		// of which this projection can ever contain.
		panic(fmt.Sprintf("ground: symbol hash: %v", err))
	}
	return h
}

// String renders the symbol in the canonical surface form a parser would
// re-read as the same symbol.
func (s Symbol) String() string {
	switch s.kind {
	case KindInfimum:
		return "#inf"
	case KindSupremum:
		return "#sup"
	case KindNumber:
		return fmt.Sprintf("%d", s.num)
	case KindString:
		return fmt.Sprintf("%q", s.str)
	case KindIdentifier:
		if s.sign {
			return "-" + s.str
		}
		return s.str
	case KindFunction:
		var b strings.Builder
		if s.sign {
			b.WriteByte('-')
		}
		b.WriteString(s.str)
		b.WriteByte('(')
		for i, a := range s.args {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(a.String())
		}
		b.WriteByte(')')
		return b.String()
	default:
		return "?"
	}
}

// SymbolTable interns String, Identifier, and Function symbol names so
// that repeated construction of the same surface name shares underlying
// storage, the way the data model's "Strings and functions are interned"
// invariant requires. Interning is append-only and process-instance scoped
// (one SymbolTable per Grounder), never global — see the design notes on
// avoiding process-global state.
type SymbolTable struct {
	names map[string]string
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{names: make(map[string]string)}
}

// intern returns the canonical storage for s, inserting it on first sight.
func (t *SymbolTable) intern(s string) string {
	if canon, ok := t.names[s]; ok {
		return canon
	}
	t.names[s] = s
	return s
}

// String interns and returns a string symbol.
func (t *SymbolTable) String(s string) Symbol {
	return NewString(t.intern(s))
}

// Identifier interns and returns a 0-arity function symbol.
func (t *SymbolTable) Identifier(name string, sign bool) Symbol {
	return NewIdentifier(t.intern(name), sign)
}

// Function interns and returns a function symbol.
func (t *SymbolTable) Function(name string, sign bool, args []Symbol) Symbol {
	return NewFunction(t.intern(name), sign, args)
}

// SortSymbols sorts a slice of symbols in place using the total order.
func SortSymbols(syms []Symbol) {
	sort.Slice(syms, func(i, j int) bool { return syms[i].Compare(syms[j]) < 0 })
}
