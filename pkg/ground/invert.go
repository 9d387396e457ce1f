package ground

// InvertKind classifies how a term's free variable(s) can be recovered from
// its value: Constant terms have none, Invertible terms have exactly one
// and a monotone way to solve for it, and NotInvertible terms need their
// value assigned through a fresh auxiliary equality instead.
type InvertKind uint8

const (
	Constant InvertKind = iota
	Invertible
	NotInvertible
)

// Invertibility classifies t per the term-algebra rules: a LinearTerm is
// always Invertible; UnaryTerm{OpNeg} over an Invertible argument is
// Invertible (negation is its own inverse); a BinaryTerm with both operands
// non-constant is NotInvertible, since recovering either operand from the
// result is not well defined in general (and the spec never asks this
// package to attempt partial inversion of e.g. multiplication).
func Invertibility(t Term) InvertKind {
	switch v := t.(type) {
	case *ValueTerm:
		return Constant
	case *VariableTerm:
		return Invertible
	case *LinearTerm:
		return Invertible
	case *UnaryTerm:
		switch v.Op {
		case OpNeg:
			return liftUnaryInvertibility(Invertibility(v.Arg))
		default:
			// abs and bitwise-not are not monotone/invertible in general.
			if Invertibility(v.Arg) == Constant {
				return Constant
			}
			return NotInvertible
		}
	case *BinaryTerm:
		li, ri := Invertibility(v.Left), Invertibility(v.Right)
		if li == Constant && ri == Constant {
			return Constant
		}
		if li == Constant && ri != Constant {
			return liftBinaryInvertibility(v.Op, ri, false)
		}
		if ri == Constant && li != Constant {
			return liftBinaryInvertibility(v.Op, li, true)
		}
		// Both sides carry an unknown: not invertible, gets lifted.
		return NotInvertible
	case *FunctionTerm:
		allConst := true
		for _, a := range v.Args {
			if Invertibility(a) != Constant {
				allConst = false
				break
			}
		}
		if allConst {
			return Constant
		}
		return NotInvertible
	default:
		// Range, Pool, Script never reach invertibility classification: the
		// rewriter replaces them with a fresh variable before arithmetic
		// lifting runs.
		return NotInvertible
	}
}

func liftUnaryInvertibility(arg InvertKind) InvertKind {
	if arg == Constant {
		return Constant
	}
	if arg == Invertible {
		return Invertible
	}
	return NotInvertible
}

// liftBinaryInvertibility decides invertibility when exactly one side of a
// BinaryTerm carries the unknown. isLeft records which side that was, for
// operators where invertibility depends on position (subtraction and
// division are not symmetric: `c - X` is invertible but in a different
// sense than `X - c`; both are Invertible here, only the solving formula
// the arithmetic-rewriting step would use differs).
func liftBinaryInvertibility(op BinaryOp, unknown InvertKind, isLeft bool) InvertKind {
	if unknown != Invertible {
		return NotInvertible
	}
	switch op {
	case OpAdd, OpSub:
		return Invertible
	default:
		// Multiplication, division, mod, pow, and the bitwise operators are
		// not safely invertible against an arbitrary constant (division by
		// zero, non-injective mod/pow), so they always get lifted to a
		// fresh auxiliary variable plus an equality instead.
		return NotInvertible
	}
}
