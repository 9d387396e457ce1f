package ground

// SimplifyRule runs constant folding and dots/script extraction (step 4 of
// the rewriter pipeline) over an entire rule, applying SimplifyTopLevel to
// every head/body atom's direct argument list and Simplify to every other
// term position. Extracted Range and Script terms come back out of st as
// extra body literals — a `FreshVar = left..right` comparison per DotsEntry,
// and a bare FunctionTerm-shaped script call with the fresh variable bound
// by a comparison — appended after the existing body.
func SimplifyRule(r *Rule, st *SimplifyState) (*Rule, error) {
	head, err := simplifyHead(r.Head, st)
	if err != nil {
		return nil, err
	}
	body, err := simplifyBodyList(r.Body, st)
	if err != nil {
		return nil, err
	}
	body = append(body, extractedLiterals(st, r.Loc)...)
	return &Rule{Head: head, Body: body, Loc: r.Loc, Vars: r.Vars}, nil
}

// extractedLiterals turns every Dots/Script entry st accumulated into the
// body literal that binds its fresh variable: `#Range<n> = left..right` for
// a dots entry (left as a RangeTerm so the binder-construction stage can
// recognize it as a BinderRange site), `#Script<n> = @name(args)` for a
// script entry.
func extractedLiterals(st *SimplifyState, loc Location) []BodyLit {
	var out []BodyLit
	for _, d := range st.Dots {
		out = append(out, NewComparisonBody(&VariableTerm{Ref: d.Var}, RelEq, &RangeTerm{Left: d.Left, Right: d.Right}, loc))
	}
	for _, s := range st.Scripts {
		out = append(out, NewComparisonBody(&VariableTerm{Ref: s.Var}, RelEq, &ScriptTerm{Name: s.Name, Args: s.Args}, loc))
	}
	return out
}

func simplifyTermArgs(args []Term, st *SimplifyState) ([]Term, error) {
	out := make([]Term, len(args))
	for i, a := range args {
		s, err := Simplify(a, st, false, false)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// simplifyAtom applies SimplifyTopLevel when atom is a genuine head/body
// atom (its direct arguments are positional), leaving a nil atom (an
// optional field many Head variants don't use) untouched.
func simplifyAtom(atom *FunctionTerm, st *SimplifyState) (*FunctionTerm, error) {
	if atom == nil {
		return nil, nil
	}
	t, err := SimplifyTopLevel(atom, st)
	if err != nil {
		return nil, err
	}
	return t.(*FunctionTerm), nil
}

func simplifyHead(h Head, st *SimplifyState) (Head, error) {
	var err error
	if h.Atom, err = simplifyAtom(h.Atom, st); err != nil {
		return Head{}, err
	}
	if h.Target, err = simplifyAtom(h.Target, st); err != nil {
		return Head{}, err
	}

	switch h.Kind {
	case HeadDisjunction:
		elems := make([]DisjunctionElement, len(h.Elements))
		for i, e := range h.Elements {
			if e.Atom, err = simplifyAtom(e.Atom, st); err != nil {
				return Head{}, err
			}
			elems[i] = e
		}
		h.Elements = elems

	case HeadAggregate:
		elems := make([]HeadAggregateElement, len(h.AggElements))
		for i, e := range h.AggElements {
			if e.Tuple, err = simplifyTermArgs(e.Tuple, st); err != nil {
				return Head{}, err
			}
			if e.Literal, err = simplifyAtom(e.Literal, st); err != nil {
				return Head{}, err
			}
			if e.Condition, err = simplifyBodyList(e.Condition, st); err != nil {
				return Head{}, err
			}
			elems[i] = e
		}
		h.AggElements = elems

	case HeadMinimize:
		if h.Weight, err = Simplify(h.Weight, st, false, true); err != nil {
			return Head{}, err
		}
		if h.Terms, err = simplifyTermArgs(h.Terms, st); err != nil {
			return Head{}, err
		}

	case HeadHeuristic:
		if h.Bias != nil {
			if h.Bias, err = Simplify(h.Bias, st, false, true); err != nil {
				return Head{}, err
			}
		}
		if h.HeuristicPrio != nil {
			if h.HeuristicPrio, err = Simplify(h.HeuristicPrio, st, false, true); err != nil {
				return Head{}, err
			}
		}
	}

	if h.Condition != nil {
		if h.Condition, err = simplifyBodyList(h.Condition, st); err != nil {
			return Head{}, err
		}
	}
	return h, nil
}

func simplifyBodyList(body []BodyLit, st *SimplifyState) ([]BodyLit, error) {
	out := make([]BodyLit, len(body))
	for i, lit := range body {
		s, err := simplifyBodyLit(lit, st)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func simplifyBodyLit(lit BodyLit, st *SimplifyState) (BodyLit, error) {
	var err error
	switch lit.Kind {
	case BodySimple:
		if lit.Atom, err = simplifyAtom(lit.Atom, st); err != nil {
			return BodyLit{}, err
		}

	case BodyComparison:
		if lit.Left, err = Simplify(lit.Left, st, false, true); err != nil {
			return BodyLit{}, err
		}
		if lit.Right, err = Simplify(lit.Right, st, false, true); err != nil {
			return BodyLit{}, err
		}

	case BodyAggregateLit:
		agg := *lit.Aggregate
		if agg.Lower != nil {
			b := *agg.Lower
			if b.Term, err = Simplify(b.Term, st, false, true); err != nil {
				return BodyLit{}, err
			}
			agg.Lower = &b
		}
		if agg.Upper != nil {
			b := *agg.Upper
			if b.Term, err = Simplify(b.Term, st, false, true); err != nil {
				return BodyLit{}, err
			}
			agg.Upper = &b
		}
		elems := make([]AggregateElement, len(agg.Elements))
		for i, e := range agg.Elements {
			if e.Tuple, err = simplifyTermArgs(e.Tuple, st); err != nil {
				return BodyLit{}, err
			}
			if e.Condition, err = simplifyBodyList(e.Condition, st); err != nil {
				return BodyLit{}, err
			}
			elems[i] = e
		}
		agg.Elements = elems
		lit.Aggregate = &agg

	case BodyConjunction:
		if lit.Atom, err = simplifyAtom(lit.Atom, st); err != nil {
			return BodyLit{}, err
		}
		if lit.Conditions, err = simplifyBodyList(lit.Conditions, st); err != nil {
			return BodyLit{}, err
		}
	}
	return lit, nil
}
