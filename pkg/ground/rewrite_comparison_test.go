package ground

import "testing"

func TestUnchainComparisonProducesAdjacentPairs(t *testing.T) {
	vt := NewVarTable()
	x := vt.Ref("X", 0)
	loc := Location{}
	chain := ComparisonChain{
		First: &ValueTerm{Sym: NewNumber(1)},
		Steps: []ComparisonStep{
			{Rel: RelLt, Term: &VariableTerm{Ref: x}},
			{Rel: RelLt, Term: &ValueTerm{Sym: NewNumber(10)}},
		},
		Loc: loc,
	}
	lits, rules := UnchainComparison(chain, &AuxNames{}, vt)
	if len(lits) != 2 {
		t.Fatalf("expected 2 adjacent-pair literals, got %d", len(lits))
	}
	if rules != nil {
		t.Fatal("expected no auxiliary rules for a positive chain")
	}
	if lits[0].Right != chain.Steps[0].Term || lits[1].Left != chain.Steps[0].Term {
		t.Fatal("expected the chain's middle term to be shared between both adjacent pairs")
	}
}

func TestUnchainComparisonNegatedProducesDisjunctionAux(t *testing.T) {
	vt := NewVarTable()
	x := vt.Ref("X", 0)
	loc := Location{}
	chain := ComparisonChain{
		First: &ValueTerm{Sym: NewNumber(1)},
		Steps: []ComparisonStep{
			{Rel: RelLt, Term: &VariableTerm{Ref: x}},
			{Rel: RelLt, Term: &ValueTerm{Sym: NewNumber(10)}},
		},
		NAF: NAFNot,
		Loc: loc,
	}
	lits, rules := UnchainComparison(chain, &AuxNames{}, vt)
	if len(lits) != 1 || lits[0].Kind != BodySimple {
		t.Fatalf("expected a single auxiliary-predicate probe literal, got %v", lits)
	}
	if len(rules) != 2 {
		t.Fatalf("expected one auxiliary-deriving rule per negated step, got %d", len(rules))
	}
	for i, r := range rules {
		if r.Head.Atom.Name != lits[0].Atom.Name {
			t.Fatalf("expected rule %d to derive the same auxiliary the probe checks", i)
		}
		if r.Body[0].Rel != chain.Steps[i].Rel.Negate() {
			t.Fatalf("expected rule %d's body relation to be the De Morgan dual of step %d", i, i)
		}
	}
}
