package ground

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Grounder is one independent instantiation session: its own symbol table,
// atom domains, diagnostics sink, and wire emitter, with no process-global
// state shared across instances (§5 "no internal parallelism", teacher's own
// pattern of constructing independent search instances rather than reaching
// for package-level state).
type Grounder struct {
	ID uuid.UUID

	Symbols *SymbolTable
	Domains *DomainSet
	Diags   *Diagnostics
	Emit    Emitter
	Aux     *AuxNames
	Scripts ScriptCaller

	log *logrus.Entry

	emitted     map[emittedKey]bool
	nodeIDs     map[string]int32
	theoryTerms *theoryInterner

	nextTheoryElement int32
	nextTheoryAtom    int32

	// parts records, per named #program part, the parameter tuples this
	// grounder has already instantiated it with (§3.11), so re-grounding the
	// same part with the same arguments across steps is a no-op rather than
	// a duplicate pass over its rules.
	parts map[string]map[string]struct{}
}

// emittedKey deduplicates a rule's (rule, ground-binding) pair across the
// repeated rounds groundComponent runs within one step. A directive-style
// head (#minimize/#external/#heuristic/...) has no owning Domain to dedupe
// through at all; a HeadSimple rule has one (Domain.Insert's isNew), but
// that only tracks whether the head ATOM is new, not whether this specific
// body binding has already produced its own wire rule event, so emitSimple
// uses this map too.
type emittedKey struct {
	rule *Rule
	key  string
}

// NewGrounder returns a Grounder ready to process one program. scripts may
// be nil if the program never calls an external script; log may be nil for
// a default standalone logger.
func NewGrounder(emit Emitter, scripts ScriptCaller, log *logrus.Entry) *Grounder {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	g := &Grounder{
		ID:          uuid.New(),
		Symbols:     NewSymbolTable(),
		Domains:     NewDomainSet(),
		Emit:        emit,
		Aux:         &AuxNames{},
		Scripts:     scripts,
		log:         log,
		emitted:     make(map[emittedKey]bool),
		nodeIDs:     make(map[string]int32),
		theoryTerms: &theoryInterner{seen: make(map[string]int32)},
		parts:       make(map[string]map[string]struct{}),
	}
	g.Diags = NewDiagnostics(log.WithField("grounder", g.ID.String()))
	return g
}

// BeginStep opens one grounding step: incremental (`#inc_`-prefixed)
// domains are cleared so a re-grounded incremental part only ever sees this
// step's own derivations, and the step's beginStep event is emitted before
// any rule/output/... event of the step.
func (g *Grounder) BeginStep() {
	g.Domains.ClearIncremental()
	g.Emit.BeginStep(BeginStepEvent{})
}

// EndStep closes the current step: every domain's generation advances (the
// OLD/NEW boundary the next step's semi-naive passes are relative to), then
// the step's endStep event is emitted.
func (g *Grounder) EndStep() {
	g.Domains.AdvanceAll()
	g.Emit.EndStep(EndStepEvent{})
}

// PartSeen reports whether partName has already been instantiated with the
// given argument tuple (§3.11 "#program part parameter tuples"), recording
// it as seen if not. A part with no parameters (plain `#program base.`)
// passes a nil args slice and is only ever "new" once per grounder.
func (g *Grounder) PartSeen(partName string, args []Symbol) bool {
	seen, ok := g.parts[partName]
	if !ok {
		seen = make(map[string]struct{})
		g.parts[partName] = seen
	}
	key := NewFunction("#part", false, args).String()
	if _, ok := seen[key]; ok {
		return true
	}
	seen[key] = struct{}{}
	return false
}

// Ground rewrites rules into instantiation-ready form, computes its
// dependency components, and drives each component to a fixed point,
// emitting every derivation and directive through g.Emit. Defines/theories
// may be nil (an empty program-wide #const/#theory environment).
func (g *Grounder) Ground(rules []*Rule, defines *DefineSet, theories *TheoryDefSet) error {
	if defines == nil {
		defines = NewDefineSet(g.Diags)
	}
	rewritten := RewriteProgram(rules, defines, theories, g.Diags)
	if g.Diags.HasError {
		return errors.Errorf("ground: %d diagnostic(s) raised during rewriting", len(g.Diags.Items()))
	}

	lowered := g.lower(rewritten)
	nodes := BuildRuleNodes(lowered)
	components := ComputeSCCs(nodes)

	g.log.WithFields(logrus.Fields{
		"id":         g.ID,
		"rules":      len(lowered),
		"components": len(components),
	}).Debug("grounding program")

	for _, comp := range components {
		g.groundComponent(nodes, comp)
	}
	return nil
}

// GroundPart grounds rules as the body of a named, optionally parameterized
// `#program` part (§3.11): partName is the part's declared name ("base" for
// the implicit top-level part) and args is the parameter tuple this
// instantiation request supplies, e.g. `#program step(t).`'s `t` binding for
// one incremental iteration. A (partName, args) pair already seen by this
// Grounder is a no-op, matching a parameterized incremental part's own
// semantics: re-activating it with parameters it has already been
// instantiated with must not re-run its rules a second time.
func (g *Grounder) GroundPart(partName string, args []Symbol, rules []*Rule, defines *DefineSet, theories *TheoryDefSet) error {
	if g.PartSeen(partName, args) {
		g.log.WithFields(logrus.Fields{
			"part": partName,
			"args": args,
		}).Debug("part already instantiated with these arguments, skipping")
		return nil
	}
	return g.Ground(rules, defines, theories)
}

// --- lowering pass: aggregates, conjunctions, disjunctions -------------

// lower drives rules through a fixed point of aggregate/conjunction/
// disjunction expansion: each pass may hand back freshly compiled auxiliary
// rules (which themselves may still carry a nested construct, e.g. a
// conjunction whose own condition includes a body aggregate), so lowering
// runs as a worklist rather than a single linear scan.
func (g *Grounder) lower(rules []*Rule) []*Rule {
	var out []*Rule
	queue := append([]*Rule{}, rules...)
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]

		switch {
		case r.Head.Kind == HeadAggregate:
			queue = append(queue, g.lowerHeadAggregate(r)...)
			continue
		case r.Head.Kind == HeadDisjunction:
			queue = append(queue, g.lowerHeadDisjunction(r)...)
			continue
		case r.Head.Kind == HeadMinimize && len(r.Body) > 1:
			rewritten, extra := g.lowerMinimizeBody(r)
			queue = append(queue, extra...)
			queue = append(queue, rewritten)
			continue
		}

		if body, extra, changed := g.lowerBody(r.Body, r); changed {
			queue = append(queue, extra...)
			queue = append(queue, &Rule{Head: r.Head, Body: body, Loc: r.Loc, Vars: r.Vars})
			continue
		}
		out = append(out, r)
	}
	return out
}

// lowerHeadAggregate expands a general head aggregate into its aux chain
// (CompileHeadAggregate) plus one choice rule per element: the element's own
// tuple/literal becomes an ordinary HeadSimple choice atom, guarded by the
// element's own condition plus a probe on the aggregate's completion
// predicate. The aggregate's function and its Lower/Upper bounds are not
// read here or by any later stage: each element's atom is a free choice,
// so the bound/weight relationship is not enforced in the output.
func (g *Grounder) lowerHeadAggregate(r *Rule) []*Rule {
	globals := dedupVars(collectVarsOfBody(r.Body))
	compiled := CompileHeadAggregate(r.Head, globals, r.Head.Loc, g.Aux, r.Vars)

	out := append([]*Rule{}, compiled.AuxRules...)
	for _, elem := range r.Head.AggElements {
		body := append(append([]BodyLit{}, r.Body...), elem.Condition...)
		body = append(body, compiled.Probe)
		out = append(out, &Rule{
			Head: Head{Kind: HeadSimple, Atom: elem.Literal, Choice: true, Loc: r.Head.Loc},
			Body: body,
			Loc:  r.Loc,
			Vars: r.Vars,
		})
	}
	return out
}

// lowerHeadDisjunction expands a disjunctive head via CompileDisjunction,
// restoring each element's own Choice flag onto its per-element accumulate
// rule (CompileDisjunction's simpleHead helper always builds a strict head).
func (g *Grounder) lowerHeadDisjunction(r *Rule) []*Rule {
	globals := dedupVars(collectVarsOfBody(r.Body))
	_, accumulate := CompileDisjunction(r.Head.Elements, r.Body, globals, r.Head.Loc, g.Aux, r.Vars)
	for i, elem := range r.Head.Elements {
		accumulate[i+1].Head.Choice = elem.Choice
	}
	return accumulate
}

// lowerMinimizeBody reduces a #minimize statement's multi-literal condition
// to a single literal by routing it through a dedicated #d-complete
// auxiliary (the same shape CompileDisjunction's own completeRule uses),
// since emitMinimize only ever grounds a single condition literal per
// instance into one weighted literal.
func (g *Grounder) lowerMinimizeBody(r *Rule) (*Rule, []*Rule) {
	globals := dedupVars(CollectHeadVars(r.Head, nil))
	name := g.Aux.Complete()
	atom := NewFunctionTerm(name, false, varTerms(globals))
	auxRule := &Rule{Head: simpleHead(atom), Body: r.Body, Loc: r.Loc, Vars: r.Vars}
	newBody := []BodyLit{NewSimpleBody(NAFNone, atom, r.Loc)}
	return &Rule{Head: r.Head, Body: newBody, Loc: r.Loc, Vars: r.Vars}, []*Rule{auxRule}
}

// lowerBody replaces the first BodyAggregateLit/BodyConjunction literal it
// finds in body with its compiled probe (plus, for an aggregate, guard
// comparisons against the bound), returning the auxiliary rules the
// compiler produced. It only ever rewrites one literal per call; the
// worklist in lower drives this to a fixed point across a rule's whole body.
func (g *Grounder) lowerBody(body []BodyLit, r *Rule) ([]BodyLit, []*Rule, bool) {
	for i, lit := range body {
		switch lit.Kind {
		case BodyAggregateLit:
			// Globals are drawn from the elements' own scope (tuple +
			// condition vars) only, not the guard bound terms: a guard
			// like `S = #sum{X : p(X)}` binds S from the comparison
			// guardedProbe appends, not from inside the aggregate itself,
			// so threading S through as a "global" would leave the
			// completion rule's head carrying an unbound argument.
			elemVars := dedupVars(collectAggregateElementVars(lit.Aggregate))
			globals := sharedVars(elemVars, otherVars(r, body, i))
			compiled := CompileBodyAggregate(lit.Aggregate, globals, lit.Loc, g.Aux, r.Vars)
			newBody := append(append([]BodyLit{}, body[:i]...), guardedProbe(compiled, lit.Aggregate)...)
			newBody = append(newBody, body[i+1:]...)
			return newBody, compiled.AuxRules, true

		case BodyConjunction:
			litVars := dedupVars(append(append([]*VarRef{}, lit.Atom.CollectVars(nil)...), collectVarsOfBody(lit.Conditions)...))
			globals := sharedVars(litVars, otherVars(r, body, i))
			compiled := CompileConjunction(lit.Atom, lit.Conditions, globals, lit.Loc, g.Aux, r.Vars)
			newBody := append(append([]BodyLit{}, body[:i]...), compiled.Probe)
			newBody = append(newBody, body[i+1:]...)
			return newBody, compiled.AuxRules, true
		}
	}
	return body, nil, false
}

// guardedProbe returns the compiled aggregate's probe literal plus the
// guard comparisons its lower/upper bound needs against the accumulated
// value (CompileBodyAggregate's completeAtom's last argument).
func guardedProbe(c CompiledAggregate, agg *BodyAggregate) []BodyLit {
	out := []BodyLit{c.Probe}
	args := c.Probe.Atom.Args
	final := args[len(args)-1]
	if agg.Lower != nil {
		out = append(out, NewComparisonBody(agg.Lower.Term, agg.Lower.Rel, final, c.Probe.Loc))
	}
	if agg.Upper != nil {
		out = append(out, NewComparisonBody(final, agg.Upper.Rel, agg.Upper.Term, c.Probe.Loc))
	}
	return out
}

// collectAggregateElementVars gathers every variable occurring in agg's
// elements (tuple and condition), deliberately excluding its Lower/Upper
// guard terms: those belong to the enclosing literal's own scope, not the
// aggregate's internal element scope, so they must never be treated as
// globals the aggregate's own compiled rules need threaded through.
func collectAggregateElementVars(agg *BodyAggregate) []*VarRef {
	var out []*VarRef
	for _, e := range agg.Elements {
		out = e.CollectVars(out)
	}
	return out
}

func collectVarsOfBody(body []BodyLit) []*VarRef {
	var out []*VarRef
	for _, lit := range body {
		out = CollectBodyVars(lit, out)
	}
	return out
}

// otherVars computes every variable touched by r outside body[skip],
// i.e. the candidate set an aggregate/conjunction literal's globals are
// drawn from.
func otherVars(r *Rule, body []BodyLit, skip int) []*VarRef {
	out := CollectHeadVars(r.Head, nil)
	for j, lit := range body {
		if j == skip {
			continue
		}
		out = CollectBodyVars(lit, out)
	}
	return out
}

func sharedVars(own, other []*VarRef) []*VarRef {
	want := make(map[*VarRef]bool, len(other))
	for _, v := range other {
		want[v] = true
	}
	seen := make(map[*VarRef]bool, len(own))
	var out []*VarRef
	for _, v := range own {
		if want[v] && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// --- per-component semi-naive driving ------------------------------------

// compiledPlan pairs a RulePlan over a rule's positive schedule with the
// negative BodySimple literals PlanSafety scheduled but left unbound
// (checked, not bound — see tryLiteral's own comment in instantiate.go).
type compiledPlan struct {
	plan     *RulePlan
	negative []BodyLit
}

// groundComponent drives every rule in one dependency component to a joint
// fixed point: each round attempts every member rule once against the
// current (GenAll) state of every domain it reads, and the round repeats
// until no rule derives anything new. This is a plain (rather than
// generation-partitioned) fixed-point loop at the granularity of one
// component: the semi-naive OLD/NEW partitioning this package implements
// (domain.go's Generation) operates at the coarser granularity of a
// grounding step (BeginStep/EndStep), not between these intra-step rounds.
func (g *Grounder) groundComponent(nodes []*RuleNode, comp []int) {
	var members []*compiledPlan
	var rules []*Rule

	for _, idx := range comp {
		r := nodes[idx].Rule
		sched, err := PlanSafety(r.Body, dedupVars(r.CollectVars()), r.Loc, g.Domains.Size)
		if err != nil {
			if u, ok := err.(*Unsafe); ok {
				g.Diags.Error(DiagVariableUnbounded, u.Loc, "%s", u.Error())
			}
			continue
		}
		members = append(members, g.newCompiledPlan(r, sched))
		rules = append(rules, r)
	}

	for {
		progressed := false
		for i, cp := range members {
			if g.runRuleOnce(rules[i], cp) {
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}

// newCompiledPlan splits sched's order into the positive literals
// NewRulePlan drives via Binder/Matcher, and the negative BodySimple
// literals, which safety.go already proved consume only already-bound
// variables and so never need a Binder of their own: handing one to
// NewRulePlan would give it a full-scan candidate list it has no business
// enumerating (an empty domain would stall the schedule instead of letting
// the literal pass through, the opposite of "not p" over an as-yet-empty
// p). cp.negative is the record of which literals were excluded, kept
// alongside the plan for groundBodyLiterals-style re-grounding against
// whatever the positive schedule bound.
func (g *Grounder) newCompiledPlan(r *Rule, sched *Schedule) *compiledPlan {
	var pos, neg []BodyLit
	for _, lit := range sched.Order {
		if lit.Kind == BodySimple && lit.NAF != NAFNone {
			neg = append(neg, lit)
			continue
		}
		pos = append(pos, lit)
	}
	plan := NewRulePlan(r, &Schedule{Order: pos}, g.makeBinder)
	return &compiledPlan{plan: plan, negative: neg}
}

// runRuleOnce attempts every positive binding of r's schedule once (a
// single GenAll pass, no internal semi-naive looping — groundComponent's
// own outer loop is what iterates to a fixed point), emitting a derivation
// for each binding found. It reports whether any emission was new.
//
// A negative literal's truth is never evaluated here: whether "not p(X)"
// holds is the solver's job once it sees the emitted rule, not the
// grounder's — the dependency analyzer's stratification classification
// (dependency.go) would let a future version of this engine fold a
// stratified negative literal's known truth value into the ground program
// early (dropping the rule instance, or dropping the literal from its
// body) the way gringo's grounder does for efficiency, but doing so is not
// required for soundness: emitting the literal unconditionally, as this
// engine does uniformly for stratified and unstratified negation alike,
// still describes an equivalent program to the solver, just a less
// compact one.
func (g *Grounder) runRuleOnce(r *Rule, cp *compiledPlan) bool {
	progressed := false
	cp.plan.Run(GenAll, func() {
		if g.emit(r, cp.plan) {
			progressed = true
		}
	}, nil)
	return progressed
}

// makeBinder builds the Binder strategy for one scheduled literal, the
// wiring NewRulePlan defers to its caller per instantiate.go's own doc
// comment (so instantiate.go stays independent of DomainSet/ScriptCaller).
func (g *Grounder) makeBinder(lit BodyLit, b *Builder) *Binder {
	switch lit.Kind {
	case BodySimple, BodyConjunction:
		return &Binder{Kind: BinderFullScan, Domain: g.Domains.Get(lit.Atom.Signature())}
	case BodyComparison:
		switch rt := lit.Right.(type) {
		case *RangeTerm:
			return &Binder{Kind: BinderRange, Lo: rt.Left, Hi: rt.Right}
		case *ScriptTerm:
			return &Binder{Kind: BinderScriptCall, ScriptName: rt.Name, ScriptArgs: rt.Args, Caller: g.Scripts}
		default:
			return &Binder{Kind: BinderRelation, Left: lit.Left, Right: lit.Right, Rel: lit.Rel}
		}
	default:
		return &Binder{Kind: BinderRelation}
	}
}

// groundSymbolFromTerm derefs t's GTerm mirror against b's arena into a
// concrete Symbol, failing if any subterm is still unbound. Safe to call
// once every schedule literal up to and including the one that bound t's
// variables has succeeded.
func groundSymbolFromTerm(t Term, b *Builder) (Symbol, bool) {
	m := NewMatcher(b.Arena)
	return derefToSymbol(m, b.Build(t))
}

func derefToSymbol(m *Matcher, t *GTerm) (Symbol, bool) {
	t = m.deref(t)
	switch t.Kind() {
	case GKValue:
		return t.Symbol(), true
	case GKFunction:
		args := make([]Symbol, len(t.Args()))
		for i, a := range t.Args() {
			sym, ok := derefToSymbol(m, a)
			if !ok {
				return Symbol{}, false
			}
			args[i] = sym
		}
		return NewFunction(t.Name(), t.Sign(), args), true
	default:
		return Symbol{}, false
	}
}

// groundBodyLiterals grounds every BodySimple literal of body into a wire
// Literal (its atom's stable domain offset, signed by NAF), used to build a
// rule's body, a show/edge/theory-element's condition, and so on. Every
// other literal kind has already vanished by the time a rule reaches
// emission (comparisons resolve to bindings, aggregates/conjunctions/
// disjunctions were lowered away, theory atoms are grounded through their
// own dedicated path).
func (g *Grounder) groundBodyLiterals(body []BodyLit, b *Builder) []Literal {
	var out []Literal
	for _, lit := range body {
		if lit.Kind != BodySimple {
			continue
		}
		sym, ok := groundSymbolFromTerm(lit.Atom, b)
		if !ok {
			continue
		}
		off := g.Domains.Get(lit.Atom.Signature()).Reserve(sym)
		out = append(out, NewLiteral(off, lit.NAF != NAFNone))
	}
	return out
}

// bindingKey builds the Symbol g.firstTimeForThisBinding keys its dedup map
// by: every variable the rule's VarTable handed out, in whatever binding
// the current attempt has reached, skipping variables local to an aggregate
// element's condition that the schedule never binds at the top level.
func (g *Grounder) bindingKey(r *Rule, b *Builder) (Symbol, bool) {
	vars := dedupVars(r.CollectVars())
	m := NewMatcher(b.Arena)
	var args []Symbol
	for _, v := range vars {
		cell := b.CellOf(v.Name)
		if m.Arena.State(cell) == 0 {
			continue
		}
		sym, ok := derefToSymbol(m, NewGVariable(cell))
		if !ok {
			continue
		}
		args = append(args, sym)
	}
	return NewFunction("#binding", false, args), true
}

// firstTimeForThisBinding reports whether this is the first time rule r has
// reached this particular variable binding, recording it if so. Directive
// heads (minimize/edge/project/external/heuristic/show/theory) have no
// owning Domain to dedupe new derivations through, so this is their progress
// signal; emitSimple also uses it directly, since Domain.Insert's own isNew
// tracks whether the head ATOM is new, not whether this particular rule
// instantiation (a distinct body binding that happens to derive an
// already-known atom) has already been emitted as its own wire rule event.
func (g *Grounder) firstTimeForThisBinding(r *Rule, b *Builder) bool {
	key, ok := g.bindingKey(r, b)
	if !ok {
		return true
	}
	ek := emittedKey{rule: r, key: key.String()}
	if g.emitted[ek] {
		return false
	}
	g.emitted[ek] = true
	return true
}

func (g *Grounder) nodeID(sym Symbol) int32 {
	key := sym.String()
	if id, ok := g.nodeIDs[key]; ok {
		return id
	}
	id := int32(len(g.nodeIDs))
	g.nodeIDs[key] = id
	return id
}

// theoryInterner assigns stable, process-instance-scoped integer ids to
// theory terms by their canonical string form, the identity ASPIF's
// theoryTerm/theoryElement/theoryAtom events thread through.
type theoryInterner struct {
	next int32
	seen map[string]int32
}

func (ti *theoryInterner) id(key string) (int32, bool) {
	if id, ok := ti.seen[key]; ok {
		return id, false
	}
	id := ti.next
	ti.next++
	ti.seen[key] = id
	return id, true
}

// internTheoryTerm interns sym as a theoryTerm tree, emitting one
// TheoryTermEvent per newly seen node (recursing into a compound's functor
// name and arguments), and returns its id whether newly seen or not.
func (g *Grounder) internTheoryTerm(sym Symbol) int32 {
	id, isNew := g.theoryTerms.id(sym.String())
	if !isNew {
		return id
	}
	switch sym.Kind() {
	case KindNumber:
		g.Emit.TheoryTerm(TheoryTermEvent{ID: id, Kind: TheoryTermNumber, Number: sym.Number()})
	case KindFunction:
		nameID := g.internTheoryTerm(NewIdentifier(sym.Str(), sym.Sign()))
		args := make([]int32, len(sym.Args()))
		for i, a := range sym.Args() {
			args[i] = g.internTheoryTerm(a)
		}
		g.Emit.TheoryTerm(TheoryTermEvent{ID: id, Kind: TheoryTermCompound, Name: nameID, Args: args})
	default:
		g.Emit.TheoryTerm(TheoryTermEvent{ID: id, Kind: TheoryTermSymbol, Symbol: sym.String()})
	}
	return id
}

// --- emission -------------------------------------------------------------

// emit dispatches one successful schedule binding of r to its wire event(s),
// reporting whether this was a genuinely new derivation/instance (the
// signal groundComponent's fixed-point loop watches).
func (g *Grounder) emit(r *Rule, plan *RulePlan) bool {
	switch r.Head.Kind {
	case HeadSimple:
		return g.emitSimple(r, plan)
	case HeadMinimize:
		return g.emitMinimize(r, plan)
	case HeadEdge:
		return g.emitEdge(r, plan)
	case HeadProject:
		return g.emitProject(r, plan)
	case HeadExternal:
		return g.emitExternal(r, plan)
	case HeadHeuristic:
		return g.emitHeuristic(r, plan)
	case HeadShow:
		return g.emitShow(r, plan)
	case HeadTheory:
		return g.emitTheoryDirective(r, plan)
	default:
		return false
	}
}

func (g *Grounder) emitSimple(r *Rule, plan *RulePlan) bool {
	sym, ok := groundSymbolFromTerm(r.Head.Atom, plan.Builder)
	if !ok {
		return false
	}
	// Gated the same way every other emit* function gates: the naive
	// within-step driving loop (groundComponent) revisits a matching
	// binding every round until the component stops progressing, so
	// without this check a rule whose body keeps re-matching (most
	// visibly one with only negative literals, whose schedule is empty
	// and so matches vacuously every round) would re-emit the same wire
	// rule event once per round instead of once ever.
	if !g.firstTimeForThisBinding(r, plan.Builder) {
		return false
	}
	dom := g.Domains.Get(r.Head.Atom.Signature())
	asFact := !r.Head.Choice && len(r.Body) == 0
	off, _ := dom.Insert(sym, asFact)
	body := g.groundBodyLiterals(r.Body, plan.Builder)
	OutputRule(g.Emit, r.Head.Choice, []AtomOffset{off}, body)
	return true
}

func (g *Grounder) emitMinimize(r *Rule, plan *RulePlan) bool {
	if !g.firstTimeForThisBinding(r, plan.Builder) {
		return false
	}
	m := NewMatcher(plan.Builder.Arena)
	weight, ok := resolveInt32(r.Head.Weight, plan.Builder, m)
	if !ok {
		return false
	}
	lits := g.groundBodyLiterals(r.Body, plan.Builder)
	wl := make([]WeightedLiteral, len(lits))
	for i, l := range lits {
		wl[i] = WeightedLiteral{Lit: l, Weight: weight}
	}
	g.Emit.Minimize(MinimizeEvent{Priority: int32(r.Head.Priority), Literals: wl})
	return true
}

func (g *Grounder) emitEdge(r *Rule, plan *RulePlan) bool {
	if !g.firstTimeForThisBinding(r, plan.Builder) {
		return false
	}
	src, ok1 := groundSymbolFromTerm(r.Head.Atom, plan.Builder)
	tgt, ok2 := groundSymbolFromTerm(r.Head.Target, plan.Builder)
	if !ok1 || !ok2 {
		return false
	}
	cond := g.groundBodyLiterals(r.Head.Condition, plan.Builder)
	g.Emit.AcycEdge(AcycEdgeEvent{Source: g.nodeID(src), Target: g.nodeID(tgt), Condition: cond})
	return true
}

func (g *Grounder) emitProject(r *Rule, plan *RulePlan) bool {
	if !g.firstTimeForThisBinding(r, plan.Builder) {
		return false
	}
	sym, ok := groundSymbolFromTerm(r.Head.Atom, plan.Builder)
	if !ok {
		return false
	}
	off := g.Domains.Get(r.Head.Atom.Signature()).Reserve(sym)
	g.Emit.Project(ProjectEvent{Atoms: []AtomOffset{off}})
	return true
}

func (g *Grounder) emitExternal(r *Rule, plan *RulePlan) bool {
	if !g.firstTimeForThisBinding(r, plan.Builder) {
		return false
	}
	sym, ok := groundSymbolFromTerm(r.Head.Atom, plan.Builder)
	if !ok {
		return false
	}
	dom := g.Domains.Get(r.Head.Atom.Signature())
	var off AtomOffset
	if r.Head.ExternalKind == ExternalRelease {
		off = dom.Reserve(sym)
	} else {
		off = dom.SetExternal(sym, externalTruthOf(r.Head.ExternalKind))
	}
	g.Emit.External(ExternalEvent{Atom: off, Value: r.Head.ExternalKind})
	return true
}

func externalTruthOf(v ExternalValue) ExternalTruth {
	switch v {
	case ExternalTrue:
		return ExternalTrueAssigned
	case ExternalFalse:
		return ExternalFalseAssigned
	default:
		return ExternalFreeAssigned
	}
}

func (g *Grounder) emitHeuristic(r *Rule, plan *RulePlan) bool {
	if !g.firstTimeForThisBinding(r, plan.Builder) {
		return false
	}
	sym, ok := groundSymbolFromTerm(r.Head.Atom, plan.Builder)
	if !ok {
		return false
	}
	off := g.Domains.Get(r.Head.Atom.Signature()).Reserve(sym)
	m := NewMatcher(plan.Builder.Arena)
	bias, _ := resolveInt32(r.Head.Bias, plan.Builder, m)
	prio, _ := resolveInt32(r.Head.HeuristicPrio, plan.Builder, m)
	cond := g.groundBodyLiterals(r.Head.Condition, plan.Builder)
	g.Emit.Heuristic(HeuristicEvent{
		Atom:      off,
		Modifier:  r.Head.HeuristicKind,
		Bias:      bias,
		Priority:  prio,
		Condition: cond,
	})
	return true
}

func (g *Grounder) emitShow(r *Rule, plan *RulePlan) bool {
	if !g.firstTimeForThisBinding(r, plan.Builder) {
		return false
	}
	sym, ok := groundSymbolFromTerm(r.Head.Atom, plan.Builder)
	if !ok {
		return false
	}
	cond := g.groundBodyLiterals(r.Head.Condition, plan.Builder)
	g.Emit.Output(OutputEvent{Kind: OutputSymbol, Symbol: sym, Condition: cond})
	return true
}

func (g *Grounder) emitTheoryDirective(r *Rule, plan *RulePlan) bool {
	if !g.firstTimeForThisBinding(r, plan.Builder) {
		return false
	}
	ta := r.Head.Theory
	if ta == nil {
		return false
	}

	var elemIDs []int32
	for _, e := range ta.Elements {
		var termIDs []int32
		for _, t := range e.Tuple {
			sym, ok := groundSymbolFromTerm(t, plan.Builder)
			if !ok {
				continue
			}
			termIDs = append(termIDs, g.internTheoryTerm(sym))
		}
		cond := g.groundBodyLiterals(e.Condition, plan.Builder)
		id := g.nextTheoryElement
		g.nextTheoryElement++
		g.Emit.TheoryElement(TheoryElementEvent{ID: id, Terms: termIDs, Condition: cond})
		elemIDs = append(elemIDs, id)
	}

	var termID int32
	if nameSym, ok := groundSymbolFromTerm(NewFunctionTerm(ta.Name, false, nil), plan.Builder); ok {
		termID = g.internTheoryTerm(nameSym)
	}

	var guard *TheoryGuardWire
	if ta.Guard != nil {
		if gsym, ok := groundSymbolFromTerm(ta.Guard.Term, plan.Builder); ok {
			opSym, _ := groundSymbolFromTerm(NewFunctionTerm(ta.Guard.Operator, false, nil), plan.Builder)
			guard = &TheoryGuardWire{Operator: g.internTheoryTerm(opSym), Term: g.internTheoryTerm(gsym)}
		}
	}

	id := g.nextTheoryAtom
	g.nextTheoryAtom++
	g.Emit.TheoryAtom(TheoryAtomEvent{ID: id, Term: termID, Elements: elemIDs, Guard: guard})
	return true
}
