package ground

import "github.com/pkg/errors"

// ErrUndefined is returned by Simplify when a subterm folds to the
// "undefined" marker: an operation applied outside its domain (integer op
// on a string, division by zero, a negative exponent applied to zero, a
// range over a non-numeric bound). RewriteRule drops the whole enclosing
// rule and records an operation-undefined warning; it is not a Go error in
// the exceptional
// sense, just a sentinel the rewriter tests for.
var ErrUndefined = errors.New("ground: operation undefined")

// DotsEntry records a Range term lifted out during simplification: the
// fresh variable that replaces it, plus the (simplified) left/right bound
// terms that become a range-binder literal in the rewritten rule body.
type DotsEntry struct {
	Var         *VarRef
	Left, Right Term
}

// ScriptEntry records a Script term lifted out during simplification.
type ScriptEntry struct {
	Var  *VarRef
	Name string
	Args []Term
}

// SimplifyState accumulates the side effects of simplifying every term in
// one rule: the variable table new fresh names are minted from, and the
// dots/script lists the rewriter turns into extra body literals afterward.
type SimplifyState struct {
	Vars    *VarTable
	Dots    []DotsEntry
	Scripts []ScriptEntry
}

// NewSimplifyState returns a state scoped to one rule, sharing its
// VarTable with the rest of that rule's rewriting.
func NewSimplifyState(vt *VarTable) *SimplifyState {
	return &SimplifyState{Vars: vt}
}

// SimplifyTopLevel simplifies t as it appears directly as a head or body
// literal's outer term: if t is a FunctionTerm, its direct arguments are
// positional (anonymous variables there propagate Project=true); every
// nested position is not.
func SimplifyTopLevel(t Term, st *SimplifyState) (Term, error) {
	if ft, ok := t.(*FunctionTerm); ok {
		args := make([]Term, len(ft.Args))
		for i, a := range ft.Args {
			s, err := simplify(a, st, true, false, 0)
			if err != nil {
				return nil, err
			}
			args[i] = s
		}
		return &FunctionTerm{Name: ft.Name, Sign: ft.Sign, Args: args}, nil
	}
	return simplify(t, st, false, false, 0)
}

// Simplify runs partial constant folding and canonicalization on t.
// positional marks whether t occupies a projectable position (directly
// inside the outermost function symbol of a literal); arithmetic marks
// whether t is expected to fold to a Number (so that e.g. a bare string in
// this position is itself an operation-undefined condition one level up).
func Simplify(t Term, st *SimplifyState, positional, arithmetic bool) (Term, error) {
	return simplify(t, st, positional, arithmetic, 0)
}

func simplify(t Term, st *SimplifyState, positional, arithmetic bool, level int) (Term, error) {
	switch v := t.(type) {
	case *ValueTerm:
		return v, nil

	case *VariableTerm:
		if v.Ref.Name == "_" {
			return &VariableTerm{Ref: st.Vars.FreshAnon(level, positional)}, nil
		}
		return v, nil

	case *LinearTerm:
		return v, nil

	case *UnaryTerm:
		arg, err := simplify(v.Arg, st, false, true, level)
		if err != nil {
			return nil, err
		}
		return simplifyUnary(v.Op, arg)

	case *BinaryTerm:
		l, err := simplify(v.Left, st, false, true, level)
		if err != nil {
			return nil, err
		}
		r, err := simplify(v.Right, st, false, true, level)
		if err != nil {
			return nil, err
		}
		return simplifyBinary(v.Op, l, r)

	case *RangeTerm:
		l, err := simplify(v.Left, st, false, true, level)
		if err != nil {
			return nil, err
		}
		r, err := simplify(v.Right, st, false, true, level)
		if err != nil {
			return nil, err
		}
		if !isNumericOrVar(l) || !isNumericOrVar(r) {
			return nil, ErrUndefined
		}
		ref := st.Vars.FreshNamed("#Range", level)
		st.Dots = append(st.Dots, DotsEntry{Var: ref, Left: l, Right: r})
		return &VariableTerm{Ref: ref}, nil

	case *FunctionTerm:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			s, err := simplify(a, st, false, false, level)
			if err != nil {
				return nil, err
			}
			args[i] = s
		}
		return &FunctionTerm{Name: v.Name, Sign: v.Sign, Args: args}, nil

	case *PoolTerm:
		alts := make([]Term, len(v.Alternatives))
		for i, a := range v.Alternatives {
			s, err := simplify(a, st, positional, arithmetic, level)
			if err != nil {
				return nil, err
			}
			alts[i] = s
		}
		return &PoolTerm{Alternatives: alts}, nil

	case *ScriptTerm:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			s, err := simplify(a, st, false, true, level)
			if err != nil {
				return nil, err
			}
			args[i] = s
		}
		ref := st.Vars.FreshNamed("#Script", level)
		st.Scripts = append(st.Scripts, ScriptEntry{Var: ref, Name: v.Name, Args: args})
		return &VariableTerm{Ref: ref}, nil

	default:
		return v, nil
	}
}

func isNumericOrVar(t Term) bool {
	switch v := t.(type) {
	case *ValueTerm:
		return v.Sym.Kind() == KindNumber
	case *VariableTerm, *LinearTerm:
		return true
	default:
		return false
	}
}

// simplifyUnary folds a unary operator over an already-simplified argument,
// rewriting `-X` to a LinearTerm per the canonicalization rule.
func simplifyUnary(op UnaryOp, arg Term) (Term, error) {
	if val, ok := arg.(*ValueTerm); ok {
		if val.Sym.Kind() != KindNumber {
			return nil, ErrUndefined
		}
		n := val.Sym.Number()
		switch op {
		case OpNeg:
			return &ValueTerm{Sym: NewNumber(-n)}, nil
		case OpAbs:
			if n < 0 {
				n = -n
			}
			return &ValueTerm{Sym: NewNumber(n)}, nil
		case OpBNot:
			return &ValueTerm{Sym: NewNumber(^n)}, nil
		}
	}
	if op == OpNeg {
		switch v := arg.(type) {
		case *VariableTerm:
			return &LinearTerm{Ref: v.Ref, M: -1, N: 0}, nil
		case *LinearTerm:
			return &LinearTerm{Ref: v.Ref, M: -v.M, N: -v.N}, nil
		}
	}
	return &UnaryTerm{Op: op, Arg: arg}, nil
}

// simplifyBinary folds a binary operator over two already-simplified
// arguments, canonicalizing `c + X`, `X + c`, `c - X` and `X - c` into
// LinearTerm form.
func simplifyBinary(op BinaryOp, l, r Term) (Term, error) {
	lv, lok := l.(*ValueTerm)
	rv, rok := r.(*ValueTerm)

	if lok && rok {
		if lv.Sym.Kind() != KindNumber || rv.Sym.Kind() != KindNumber {
			return nil, ErrUndefined
		}
		n, err := foldNumeric(op, lv.Sym.Number(), rv.Sym.Number())
		if err != nil {
			return nil, err
		}
		return &ValueTerm{Sym: NewNumber(n)}, nil
	}

	if op == OpAdd {
		if lok && lv.Sym.Kind() == KindNumber {
			if lin, ok := linearOf(r); ok {
				return &LinearTerm{Ref: lin.Ref, M: lin.M, N: lin.N + lv.Sym.Number()}, nil
			}
		}
		if rok && rv.Sym.Kind() == KindNumber {
			if lin, ok := linearOf(l); ok {
				return &LinearTerm{Ref: lin.Ref, M: lin.M, N: lin.N + rv.Sym.Number()}, nil
			}
		}
	}
	if op == OpSub {
		if rok && rv.Sym.Kind() == KindNumber {
			if lin, ok := linearOf(l); ok {
				return &LinearTerm{Ref: lin.Ref, M: lin.M, N: lin.N - rv.Sym.Number()}, nil
			}
		}
	}

	return &BinaryTerm{Op: op, Left: l, Right: r}, nil
}

// linearOf reports whether t is already a Variable or LinearTerm, returning
// its canonical (ref, m, n) form.
func linearOf(t Term) (*LinearTerm, bool) {
	switch v := t.(type) {
	case *VariableTerm:
		return &LinearTerm{Ref: v.Ref, M: 1, N: 0}, true
	case *LinearTerm:
		return v, true
	default:
		return nil, false
	}
}

// foldNumeric computes a BinaryOp over two ground numbers, returning
// ErrUndefined for the documented undefined conditions (division by zero,
// a negative exponent applied to zero).
func foldNumeric(op BinaryOp, a, b int32) (int32, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return 0, ErrUndefined
		}
		return a / b, nil
	case OpMod:
		if b == 0 {
			return 0, ErrUndefined
		}
		return a % b, nil
	case OpPow:
		if b < 0 {
			switch a {
			case 0:
				return 0, ErrUndefined
			case 1:
				return 1, nil
			case -1:
				if b%2 == 0 {
					return 1, nil
				}
				return -1, nil
			}
			return 0, nil
		}
		if a == 0 && b == 0 {
			return 1, nil
		}
		result := int32(1)
		for i := int32(0); i < b; i++ {
			result *= a
		}
		return result, nil
	case OpAnd:
		return a & b, nil
	case OpOr:
		return a | b, nil
	case OpXor:
		return a ^ b, nil
	default:
		return 0, ErrUndefined
	}
}
