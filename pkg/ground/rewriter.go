package ground

// RewriteProgram drives every rule of one input program through the full
// nine-step rewriter pipeline and returns the final, instantiation-ready
// rule set. The pass ordering follows the pipeline: a #const substitution
// that applies uniformly across every rule runs first (so a later pool or
// simplification step never has to special-case an unresolved constant
// reference), then each rule is unpooled (a single source rule may become
// several), and each of those is carried independently through theory
// resolution, simplification, projection, comparison unchaining, head
// aggregate shifting, arithmetic lifting, and assignment planning.
//
// A single ProjectionState is shared across the whole program (not reset
// per rule) so that two source rules mentioning the same projected
// predicate reuse the same auxiliary.
func RewriteProgram(rules []*Rule, defines *DefineSet, theories *TheoryDefSet, diags *Diagnostics) []*Rule {
	resolved, ok := defines.Resolve()
	if !ok {
		return nil
	}

	proj := NewProjectionState()

	var out []*Rule
	for _, r := range rules {
		withDefines := SubstituteDefinesInRule(r, resolved)
		for _, unpooled := range UnpoolRule(withDefines) {
			if rewritten := RewriteRule(unpooled, theories, proj, diags); rewritten != nil {
				out = append(out, rewritten)
			}
		}
	}
	out = append(out, proj.Rules...)
	return out
}

// RewriteRule carries one already-unpooled, already-define-substituted rule
// through pipeline steps 3 through 9. Step 6 (comparison-chain unchaining)
// has no work left to do here: a multi-relation chain only exists as a
// ComparisonChain value at the point the external builder turns parsed
// syntax into a Rule's BodyLit slice, and UnchainComparison (see
// rewrite_comparison.go) is what that builder calls to flatten each chain
// into the single-step BodyComparison literals (plus any auxiliary-deriving
// rules a negated chain needs) that already populate r.Body by the time a
// Rule value exists — so by this point every comparison in r.Body is
// already in that flattened shape.
func RewriteRule(r *Rule, theories *TheoryDefSet, proj *ProjectionState, diags *Diagnostics) *Rule {
	if !resolveTheoryAtoms(r, theories, diags) {
		return nil
	}

	simplified, err := SimplifyRule(r, NewSimplifyState(r.Vars))
	if err != nil {
		diags.Warn(DiagOperationUndefined, r.Loc, "%v", err)
		return nil
	}

	projected := RewriteProjections(simplified, proj)

	if shifted, ok := ShiftSingletonHeadAggregate(projected, true); ok {
		projected = shifted
	}

	lifted := LiftArithmeticsInRule(projected, NewArithState(projected.Vars), false)
	return PlanAssignments(lifted)
}

// resolveTheoryAtoms validates every theory atom directly attached to r's
// head or body against theories, recording a diagnostic for each one that
// fails to resolve. Nested occurrences (a theory atom inside an aggregate
// or conjunction condition) are not part of this language's grammar, so
// only the rule's own head and top-level body positions are checked. It
// reports whether every checked theory atom resolved.
func resolveTheoryAtoms(r *Rule, theories *TheoryDefSet, diags *Diagnostics) bool {
	if theories == nil {
		return true
	}
	ok := true
	if r.Head.Kind == HeadTheory && r.Head.Theory != nil {
		def := theories.Lookup(r.Head.Theory.Name)
		if def == nil {
			diags.Error(DiagAtomUndefined, r.Head.Loc, "no #theory definition covers atom %q", r.Head.Theory.Name)
			ok = false
		} else if !ResolveTheoryAtom(r.Head.Theory, TheoryCtxHead, def, r.Head.Loc, diags) {
			ok = false
		}
	}
	for _, lit := range r.Body {
		if lit.Kind != BodyTheory || lit.Theory == nil {
			continue
		}
		def := theories.Lookup(lit.Theory.Name)
		if def == nil {
			diags.Error(DiagAtomUndefined, lit.Loc, "no #theory definition covers atom %q", lit.Theory.Name)
			ok = false
			continue
		}
		if !ResolveTheoryAtom(lit.Theory, TheoryCtxBody, def, lit.Loc, diags) {
			ok = false
		}
	}
	return ok
}
