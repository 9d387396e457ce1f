package ground

// UnpoolTerm expands every PoolTerm node within t into the Cartesian product
// of its alternatives, returning one pool-free term per combination. Nested
// pools (a pool inside a pool's own alternative, or inside a function
// argument that is itself a pool) are expanded recursively before the
// product is taken, so `f((a;b),(c;d))` yields all four combinations.
func UnpoolTerm(t Term) []Term {
	switch v := t.(type) {
	case *ValueTerm, *VariableTerm, *LinearTerm:
		return []Term{t}

	case *UnaryTerm:
		var out []Term
		for _, a := range UnpoolTerm(v.Arg) {
			out = append(out, &UnaryTerm{Op: v.Op, Arg: a})
		}
		return out

	case *BinaryTerm:
		var out []Term
		for _, l := range UnpoolTerm(v.Left) {
			for _, r := range UnpoolTerm(v.Right) {
				out = append(out, &BinaryTerm{Op: v.Op, Left: l, Right: r})
			}
		}
		return out

	case *RangeTerm:
		var out []Term
		for _, l := range UnpoolTerm(v.Left) {
			for _, r := range UnpoolTerm(v.Right) {
				out = append(out, &RangeTerm{Left: l, Right: r})
			}
		}
		return out

	case *FunctionTerm:
		combos := unpoolTermList(v.Args)
		out := make([]Term, len(combos))
		for i, args := range combos {
			out[i] = &FunctionTerm{Name: v.Name, Sign: v.Sign, Args: args}
		}
		return out

	case *PoolTerm:
		var out []Term
		for _, alt := range v.Alternatives {
			out = append(out, UnpoolTerm(alt)...)
		}
		return out

	case *ScriptTerm:
		combos := unpoolTermList(v.Args)
		out := make([]Term, len(combos))
		for i, args := range combos {
			out[i] = &ScriptTerm{Name: v.Name, Args: args}
		}
		return out

	default:
		return []Term{t}
	}
}

// unpoolTermList returns the Cartesian product of unpooling every term in
// ts, preserving position order. A 0-length ts yields one 0-length
// combination, the identity needed for a 0-arity function.
func unpoolTermList(ts []Term) [][]Term {
	combos := [][]Term{{}}
	for _, t := range ts {
		alts := UnpoolTerm(t)
		var next [][]Term
		for _, combo := range combos {
			for _, a := range alts {
				entry := make([]Term, len(combo)+1)
				copy(entry, combo)
				entry[len(combo)] = a
				next = append(next, entry)
			}
		}
		combos = next
	}
	return combos
}

// unpoolBodyList returns the Cartesian product of unpooling every literal in
// lits, one combination per complete pool-free conjunction. Used both for a
// rule's own body and for the condition attached to an aggregate,
// conjunction, or disjunction element, each of which is itself a conjunction
// of literals.
func unpoolBodyList(lits []BodyLit) [][]BodyLit {
	combos := [][]BodyLit{{}}
	for _, lit := range lits {
		alts := UnpoolBodyLit(lit)
		var next [][]BodyLit
		for _, combo := range combos {
			for _, a := range alts {
				entry := make([]BodyLit, len(combo)+1)
				copy(entry, combo)
				entry[len(combo)] = a
				next = append(next, entry)
			}
		}
		combos = next
	}
	return combos
}

// UnpoolBodyLit expands a single body literal into every pool-free
// alternative it stands for. A simple literal's atom pools across its
// arguments; a comparison's two sides pool independently and are then
// combined pairwise; an aggregate's elements unpool internally without
// multiplying the surrounding rule, since a set of elements already
// tolerates growing by more entries. A conjunction yields one literal per
// combination of its atom's and its condition's alternatives, so it does
// multiply the surrounding rule.
func UnpoolBodyLit(lit BodyLit) []BodyLit {
	switch lit.Kind {
	case BodySimple:
		var out []BodyLit
		for _, a := range UnpoolTerm(lit.Atom) {
			out = append(out, BodyLit{Kind: BodySimple, Loc: lit.Loc, NAF: lit.NAF, Atom: a.(*FunctionTerm)})
		}
		return out

	case BodyComparison:
		var out []BodyLit
		for _, l := range UnpoolTerm(lit.Left) {
			for _, r := range UnpoolTerm(lit.Right) {
				out = append(out, BodyLit{Kind: BodyComparison, Loc: lit.Loc, Left: l, Rel: lit.Rel, Right: r})
			}
		}
		return out

	case BodyAggregateLit:
		agg := *lit.Aggregate
		agg.Elements = unpoolAggregateElements(agg.Elements)
		return []BodyLit{{Kind: BodyAggregateLit, Loc: lit.Loc, Aggregate: &agg}}

	case BodyConjunction:
		var out []BodyLit
		condCombos := unpoolBodyList(lit.Conditions)
		for _, a := range UnpoolTerm(lit.Atom) {
			for _, cond := range condCombos {
				out = append(out, BodyLit{Kind: BodyConjunction, Loc: lit.Loc, Atom: a.(*FunctionTerm), Conditions: cond})
			}
		}
		return out

	case BodyTheory:
		// Theory atom tuples are interpreted by the theory definition the
		// atom resolves against, not reinterpreted here; a theory literal
		// passes through unpooling unchanged.
		return []BodyLit{lit}

	default:
		return []BodyLit{lit}
	}
}

func unpoolAggregateElements(elements []AggregateElement) []AggregateElement {
	var out []AggregateElement
	for _, e := range elements {
		tupleCombos := unpoolTermList(e.Tuple)
		condCombos := unpoolBodyList(e.Condition)
		for _, tuple := range tupleCombos {
			for _, cond := range condCombos {
				out = append(out, AggregateElement{Tuple: tuple, Condition: cond})
			}
		}
	}
	return out
}

func unpoolHeadAggregateElements(elements []HeadAggregateElement) []HeadAggregateElement {
	var out []HeadAggregateElement
	for _, e := range elements {
		tupleCombos := unpoolTermList(e.Tuple)
		litCombos := UnpoolTerm(e.Literal)
		condCombos := unpoolBodyList(e.Condition)
		for _, tuple := range tupleCombos {
			for _, lit := range litCombos {
				for _, cond := range condCombos {
					out = append(out, HeadAggregateElement{Tuple: tuple, Literal: lit.(*FunctionTerm), Condition: cond})
				}
			}
		}
	}
	return out
}

func unpoolDisjunctionElements(elements []DisjunctionElement) []DisjunctionElement {
	var out []DisjunctionElement
	for _, e := range elements {
		for _, a := range UnpoolTerm(e.Atom) {
			out = append(out, DisjunctionElement{Atom: a.(*FunctionTerm), Choice: e.Choice})
		}
	}
	return out
}

// UnpoolHead expands h's own pool positions. A simple head's atom pools
// across a rule-multiplying Cartesian product (one Head per alternative); a
// disjunction or aggregate head's elements grow in place (one Head, more
// elements); a minimize directive's weight and extra terms multiply the
// number of weighted-literal entries, mirroring how a rule's own body
// multiplies. Every other head kind carries no pool-bearing position a
// Cartesian product needs to act on.
func UnpoolHead(h Head) []Head {
	switch h.Kind {
	case HeadSimple:
		var out []Head
		for _, a := range UnpoolTerm(h.Atom) {
			nh := h
			nh.Atom = a.(*FunctionTerm)
			out = append(out, nh)
		}
		return out

	case HeadDisjunction:
		nh := h
		nh.Elements = unpoolDisjunctionElements(h.Elements)
		return []Head{nh}

	case HeadAggregate:
		nh := h
		nh.AggElements = unpoolHeadAggregateElements(h.AggElements)
		return []Head{nh}

	case HeadMinimize:
		var out []Head
		weightCombos := UnpoolTerm(h.Weight)
		termCombos := unpoolTermList(h.Terms)
		for _, w := range weightCombos {
			for _, terms := range termCombos {
				nh := h
				nh.Weight = w
				nh.Terms = terms
				out = append(out, nh)
			}
		}
		return out

	case HeadEdge:
		var out []Head
		for _, s := range UnpoolTerm(h.Atom) {
			for _, tt := range UnpoolTerm(h.Target) {
				nh := h
				nh.Atom = s.(*FunctionTerm)
				nh.Target = tt.(*FunctionTerm)
				out = append(out, nh)
			}
		}
		return out

	default:
		return []Head{h}
	}
}

// UnpoolRule expands every pool occurring anywhere in r into the full
// Cartesian product of pool-free rules it stands for: the head's own pool
// positions (UnpoolHead) combine with one independently-chosen alternative
// per body literal position (UnpoolBodyLit). Unpooling multiplies whole
// rules, it never ORs alternatives together within one rule.
func UnpoolRule(r *Rule) []*Rule {
	headAlts := UnpoolHead(r.Head)
	bodyCombos := unpoolBodyList(r.Body)

	var out []*Rule
	for _, h := range headAlts {
		for _, body := range bodyCombos {
			out = append(out, &Rule{Head: h, Body: body, Loc: r.Loc, Vars: r.Vars})
		}
	}
	return out
}
