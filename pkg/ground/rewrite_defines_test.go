package ground

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestDiagnostics() *Diagnostics {
	return NewDiagnostics(logrus.NewEntry(logrus.New()))
}

func TestDefineSetResolvesSimpleChain(t *testing.T) {
	ds := NewDefineSet(newTestDiagnostics())
	ds.Add(Define{Name: "a", Value: &ValueTerm{Sym: NewNumber(1)}})
	ds.Add(Define{Name: "b", Value: NewFunctionTerm("a", false, nil)})

	resolved, ok := ds.Resolve()
	if !ok {
		t.Fatal("expected resolution to succeed")
	}
	bv, ok := resolved["b"].(*ValueTerm)
	if !ok || bv.Sym.Number() != 1 {
		t.Fatalf("expected b to resolve to 1 via a, got %v", resolved["b"])
	}
}

func TestDefineSetNonDefaultOverridesDefault(t *testing.T) {
	ds := NewDefineSet(newTestDiagnostics())
	ds.Add(Define{Name: "a", Value: &ValueTerm{Sym: NewNumber(1)}, Default: true})
	ds.Add(Define{Name: "a", Value: &ValueTerm{Sym: NewNumber(2)}, Default: false})

	resolved, ok := ds.Resolve()
	if !ok {
		t.Fatal("expected resolution to succeed")
	}
	if resolved["a"].(*ValueTerm).Sym.Number() != 2 {
		t.Fatal("expected the non-default value to win regardless of add order")
	}
}

func TestDefineSetDefaultLosesWhenNonDefaultAlreadyPresent(t *testing.T) {
	ds := NewDefineSet(newTestDiagnostics())
	ds.Add(Define{Name: "a", Value: &ValueTerm{Sym: NewNumber(2)}, Default: false})
	ds.Add(Define{Name: "a", Value: &ValueTerm{Sym: NewNumber(1)}, Default: true})

	resolved, ok := ds.Resolve()
	if !ok {
		t.Fatal("expected resolution to succeed")
	}
	if resolved["a"].(*ValueTerm).Sym.Number() != 2 {
		t.Fatal("expected the already-present non-default value to win over a later default")
	}
}

func TestDefineSetTwoNonDefaultsIsRedefinitionError(t *testing.T) {
	diags := newTestDiagnostics()
	ds := NewDefineSet(diags)
	ds.Add(Define{Name: "a", Value: &ValueTerm{Sym: NewNumber(1)}})
	ds.Add(Define{Name: "a", Value: &ValueTerm{Sym: NewNumber(2)}})

	if !diags.HasError {
		t.Fatal("expected a redefinition error to be raised")
	}
}

func TestDefineSetCycleIsRejected(t *testing.T) {
	diags := newTestDiagnostics()
	ds := NewDefineSet(diags)
	ds.Add(Define{Name: "a", Value: NewFunctionTerm("b", false, nil)})
	ds.Add(Define{Name: "b", Value: NewFunctionTerm("a", false, nil)})

	_, ok := ds.Resolve()
	if ok {
		t.Fatal("expected a cycle to be rejected")
	}
	if !diags.HasError {
		t.Fatal("expected the cycle to be reported as an error diagnostic")
	}
}

func TestSubstituteDefinesInRuleRewritesHeadAndBody(t *testing.T) {
	loc := Location{}
	resolved := map[string]Term{"n": &ValueTerm{Sym: NewNumber(5)}}
	head := Head{Kind: HeadSimple, Atom: NewFunctionTerm("p", false, []Term{NewFunctionTerm("n", false, nil)})}
	body := []BodyLit{NewSimpleBody(NAFNone, NewFunctionTerm("q", false, []Term{NewFunctionTerm("n", false, nil)}), loc)}
	r := &Rule{Head: head, Body: body, Loc: loc, Vars: NewVarTable()}

	out := SubstituteDefinesInRule(r, resolved)
	if out.Head.Atom.Args[0].(*ValueTerm).Sym.Number() != 5 {
		t.Fatal("expected the head argument to be substituted")
	}
	if out.Body[0].Atom.Args[0].(*ValueTerm).Sym.Number() != 5 {
		t.Fatal("expected the body argument to be substituted")
	}
}
