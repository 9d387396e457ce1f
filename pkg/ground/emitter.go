package ground

// Literal is a signed wire reference to an atom: its magnitude is the
// atom's AtomOffset shifted by one (offsets are zero-based, wire literals
// are never zero), its sign carries polarity. "All atoms are non-zero
// positive integers identifying an entry in some predicate domain; literals
// are signed atom references."
type Literal int32

// NewLiteral builds the wire literal for off, negated if neg is true.
func NewLiteral(off AtomOffset, neg bool) Literal {
	l := Literal(off + 1)
	if neg {
		return -l
	}
	return l
}

// Offset recovers the AtomOffset a literal refers to, independent of sign.
func (l Literal) Offset() AtomOffset {
	if l < 0 {
		return AtomOffset(-l - 1)
	}
	return AtomOffset(l - 1)
}

// Negative reports whether l carries a negative polarity.
func (l Literal) Negative() bool { return l < 0 }

// WeightedLiteral pairs a literal with its weight, the shape every weight
// constraint and aggregate-derived wire event carries its body in.
type WeightedLiteral struct {
	Lit    Literal
	Weight int32
}

// WireHead distinguishes the two shapes an ordinary ground rule's head can
// take on the wire: a disjunction of plain atoms, or a choice construct.
type WireHead uint8

const (
	WireDisjunctive WireHead = iota
	WireChoice
)

// OutputKind distinguishes the two `output` overloads: a plain symbol
// output, or a theory-term output.
type OutputKind uint8

const (
	OutputSymbol OutputKind = iota
	OutputTheoryTerm
)

// TheoryTermKind tags which of the three theoryTerm overloads an event
// carries: a number, a plain symbol/identifier, or a compound (a name term
// id applied to argument term ids).
type TheoryTermKind uint8

const (
	TheoryTermNumber TheoryTermKind = iota
	TheoryTermSymbol
	TheoryTermCompound
)

// Event is the closed set of wire events this package can emit, one struct
// per §6.2 event-table row.
type Event interface{ isEvent() }

type InitProgramEvent struct{ Incremental bool }

type BeginStepEvent struct{}

type RuleEvent struct {
	Head  WireHead
	Atoms []AtomOffset
	Body  []Literal
}

type WeightedRuleEvent struct {
	Head  WireHead
	Atoms []AtomOffset
	Lower int32
	Body  []WeightedLiteral
}

type MinimizeEvent struct {
	Priority int32
	Literals []WeightedLiteral
}

type ProjectEvent struct {
	Atoms []AtomOffset
}

type OutputEvent struct {
	Kind      OutputKind
	Symbol    Symbol
	Term      int32 // OutputTheoryTerm: the interned theory term id
	Condition []Literal
}

type ExternalEvent struct {
	Atom  AtomOffset
	Value ExternalValue
}

type AssumeEvent struct {
	Literals []Literal
}

type HeuristicEvent struct {
	Atom      AtomOffset
	Modifier  HeuristicModifier
	Bias      int32
	Priority  int32
	Condition []Literal
}

type AcycEdgeEvent struct {
	Source, Target int32
	Condition      []Literal
}

type TheoryTermEvent struct {
	ID     int32
	Kind   TheoryTermKind
	Number int32
	Symbol string
	Name   int32 // Compound: the interned id of the functor/operator term
	Args   []int32
}

type TheoryElementEvent struct {
	ID        int32
	Terms     []int32
	Condition []Literal
}

// TheoryGuardWire is a theory atom's optional trailing `operator term` pair,
// both already interned as theory term ids.
type TheoryGuardWire struct {
	Operator int32
	Term     int32
}

type TheoryAtomEvent struct {
	ID       int32
	Term     int32
	Elements []int32
	Guard    *TheoryGuardWire
}

type EndStepEvent struct{}

func (InitProgramEvent) isEvent()   {}
func (BeginStepEvent) isEvent()     {}
func (RuleEvent) isEvent()          {}
func (WeightedRuleEvent) isEvent()  {}
func (MinimizeEvent) isEvent()      {}
func (ProjectEvent) isEvent()       {}
func (OutputEvent) isEvent()        {}
func (ExternalEvent) isEvent()      {}
func (AssumeEvent) isEvent()        {}
func (HeuristicEvent) isEvent()     {}
func (AcycEdgeEvent) isEvent()      {}
func (TheoryTermEvent) isEvent()    {}
func (TheoryElementEvent) isEvent() {}
func (TheoryAtomEvent) isEvent()    {}
func (EndStepEvent) isEvent()       {}

// Emitter is the ground program's wire-out contract: one method per §6.2
// event-table row. A grounder instance writes to it synchronously, step by
// step, never from more than one goroutine at a time (§5).
type Emitter interface {
	InitProgram(InitProgramEvent)
	BeginStep(BeginStepEvent)
	Rule(RuleEvent)
	WeightedRule(WeightedRuleEvent)
	Minimize(MinimizeEvent)
	Project(ProjectEvent)
	Output(OutputEvent)
	External(ExternalEvent)
	Assume(AssumeEvent)
	Heuristic(HeuristicEvent)
	AcycEdge(AcycEdgeEvent)
	TheoryTerm(TheoryTermEvent)
	TheoryElement(TheoryElementEvent)
	TheoryAtom(TheoryAtomEvent)
	EndStep(EndStepEvent)
}

// OutputRule emits a single-head rule event, unweighted: a plain rule for an
// ordinary derivation, or a choice rule when choice is set. Every HeadSimple
// derivation in this package goes through here; weightedRule has no call
// site of its own since this grounder lowers weight-constraint heads into
// per-element choice rules during lowering (Grounder.lower) rather than emitting a native
// weighted head (see lowerHeadAggregate in grounder.go).
func OutputRule(e Emitter, choice bool, head []AtomOffset, body []Literal) {
	wh := WireDisjunctive
	if choice {
		wh = WireChoice
	}
	e.Rule(RuleEvent{Head: wh, Atoms: head, Body: body})
}

// RecordingEmitter is a concrete Emitter that appends every event it
// receives, in arrival order. cmd/groundcheck uses it to print a grounded
// program; tests use it to structurally diff the sequence an input program
// produces against a golden one.
type RecordingEmitter struct {
	Events []Event
}

// NewRecordingEmitter returns an empty RecordingEmitter.
func NewRecordingEmitter() *RecordingEmitter { return &RecordingEmitter{} }

func (r *RecordingEmitter) InitProgram(e InitProgramEvent)     { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) BeginStep(e BeginStepEvent)         { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) Rule(e RuleEvent)                   { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) WeightedRule(e WeightedRuleEvent)   { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) Minimize(e MinimizeEvent)           { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) Project(e ProjectEvent)             { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) Output(e OutputEvent)               { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) External(e ExternalEvent)           { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) Assume(e AssumeEvent)               { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) Heuristic(e HeuristicEvent)         { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) AcycEdge(e AcycEdgeEvent)           { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) TheoryTerm(e TheoryTermEvent)       { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) TheoryElement(e TheoryElementEvent) { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) TheoryAtom(e TheoryAtomEvent)       { r.Events = append(r.Events, e) }
func (r *RecordingEmitter) EndStep(e EndStepEvent)             { r.Events = append(r.Events, e) }
