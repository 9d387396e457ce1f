package ground

// ArithEqn is one `FreshVar = Term` equality the rewriter materializes as an
// extra body literal after arithmetic lifting.
type ArithEqn struct {
	Var  *VarRef
	Expr Term
}

// ArithState accumulates the equalities produced by lifting non-invertible
// subterms out of one rule, keyed by quantification level per the data
// model ("lifts every non-invertible sub-expression at level k into a map
// arith[k]: Term -> FreshVar"). A plain slice-per-level is used instead of a
// hash map keyed by term structure: rule bodies are small, so linear
// dedup-by-Equal is both simpler and fast enough, and it avoids needing a
// canonical hash for arbitrary (possibly not-yet-ground) Term trees.
type ArithState struct {
	Vars   *VarTable
	Levels map[int][]ArithEqn
}

// NewArithState returns a state scoped to one rule.
func NewArithState(vt *VarTable) *ArithState {
	return &ArithState{Vars: vt, Levels: make(map[int][]ArithEqn)}
}

// lookupOrAdd returns the fresh variable standing in for expr at level,
// reusing a prior equation if an equal expression was already lifted at the
// same level (so two occurrences of the same non-invertible subterm in one
// rule share one auxiliary variable and one equality literal).
func (st *ArithState) lookupOrAdd(level int, expr Term) *VarRef {
	for _, eqn := range st.Levels[level] {
		if eqn.Expr.Equal(expr) {
			return eqn.Var
		}
	}
	ref := st.Vars.FreshNamed("#Arith", level)
	st.Levels[level] = append(st.Levels[level], ArithEqn{Var: ref, Expr: expr})
	return ref
}

// RewriteArithmetics lifts every non-invertible sub-expression of t at the
// given quantification level into st, returning the term with those
// sub-expressions replaced by the fresh variables that stand in for them.
// forceDefined additionally lifts a function term whose arguments are all
// constant, unless it is itself an argument of another function term;
// constant arithmetic such as `0+0` is not lifted. RewriteRule passes false.
func RewriteArithmetics(t Term, st *ArithState, level int, forceDefined bool) Term {
	switch v := t.(type) {
	case *ValueTerm, *VariableTerm, *LinearTerm:
		return t

	case *UnaryTerm:
		arg := RewriteArithmetics(v.Arg, st, level, forceDefined)
		node := &UnaryTerm{Op: v.Op, Arg: arg}
		if Invertibility(node) == NotInvertible {
			return &VariableTerm{Ref: st.lookupOrAdd(level, node)}
		}
		return node

	case *BinaryTerm:
		l := RewriteArithmetics(v.Left, st, level, forceDefined)
		r := RewriteArithmetics(v.Right, st, level, forceDefined)
		node := &BinaryTerm{Op: v.Op, Left: l, Right: r}
		if Invertibility(node) == NotInvertible {
			return &VariableTerm{Ref: st.lookupOrAdd(level, node)}
		}
		return node

	case *FunctionTerm:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = RewriteArithmetics(a, st, level, false)
		}
		node := &FunctionTerm{Name: v.Name, Sign: v.Sign, Args: args}
		if forceDefined && Invertibility(node) == Constant {
			return &VariableTerm{Ref: st.lookupOrAdd(level, node)}
		}
		return node

	default:
		return t
	}
}

// EvalGround evaluates t to a concrete int32 given resolve, which reports
// the current binding of a variable (ok=false if still unbound). Unlike the
// GTerm mirror (gterm.go), which only ever sees Value/Variable/Linear/
// Function nodes because every genuinely non-invertible sub-expression is
// lifted out of a rule's atoms by RewriteArithmetics before instantiation,
// the lifted equality literal itself (`FreshVar = Expr`) keeps Expr in its
// original UnaryOp/BinaryOp shape — that expression is evaluated here,
// directly in Go, rather than through unification.
func EvalGround(t Term, resolve func(*VarRef) (int32, bool)) (int32, bool) {
	switch v := t.(type) {
	case *ValueTerm:
		if v.Sym.Kind() != KindNumber {
			return 0, false
		}
		return v.Sym.Number(), true

	case *VariableTerm:
		return resolve(v.Ref)

	case *LinearTerm:
		base, ok := resolve(v.Ref)
		if !ok {
			return 0, false
		}
		return v.M*base + v.N, true

	case *UnaryTerm:
		arg, ok := EvalGround(v.Arg, resolve)
		if !ok {
			return 0, false
		}
		switch v.Op {
		case OpNeg:
			return -arg, true
		case OpAbs:
			if arg < 0 {
				return -arg, true
			}
			return arg, true
		case OpBNot:
			return ^arg, true
		default:
			return 0, false
		}

	case *BinaryTerm:
		l, lok := EvalGround(v.Left, resolve)
		r, rok := EvalGround(v.Right, resolve)
		if !lok || !rok {
			return 0, false
		}
		switch v.Op {
		case OpAdd:
			return l + r, true
		case OpSub:
			return l - r, true
		case OpMul:
			return l * r, true
		case OpDiv:
			if r == 0 {
				return 0, false
			}
			return l / r, true
		case OpMod:
			if r == 0 {
				return 0, false
			}
			return l % r, true
		case OpPow:
			return intPow(l, r), true
		case OpAnd:
			return l & r, true
		case OpOr:
			return l | r, true
		case OpXor:
			return l ^ r, true
		default:
			return 0, false
		}

	default:
		return 0, false
	}
}

func intPow(base, exp int32) int32 {
	if exp < 0 {
		return 0
	}
	result := int32(1)
	for i := int32(0); i < exp; i++ {
		result *= base
	}
	return result
}

// containsArith reports whether t structurally contains a still-unresolved
// UnaryOp or BinaryOp node, the marker the safety planner uses to schedule
// an arithmetic-equality literal (lower priority) separately from a plain
// built-in equality between two already-linear terms.
func containsArith(t Term) bool {
	switch v := t.(type) {
	case *UnaryTerm, *BinaryTerm:
		return true
	case *FunctionTerm:
		for _, a := range v.Args {
			if containsArith(a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Equations returns every equality literal accumulated across all levels, in
// level order then insertion order, ready to be appended to the rewritten
// rule body.
func (st *ArithState) Equations() []ArithEqn {
	var out []ArithEqn
	for lvl := 0; lvl <= maxLevel(st.Levels); lvl++ {
		out = append(out, st.Levels[lvl]...)
	}
	return out
}

func maxLevel(levels map[int][]ArithEqn) int {
	max := 0
	for lvl := range levels {
		if lvl > max {
			max = lvl
		}
	}
	return max
}
