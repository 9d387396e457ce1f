package ground

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// DiagKind is the closed taxonomy of diagnostic kinds this package ever
// raises. No other value is valid; any caller matching on DiagKind can use
// an exhaustive switch.
type DiagKind uint8

const (
	DiagOperationUndefined DiagKind = iota
	DiagAtomUndefined
	DiagGlobalVariableInTuple
	DiagFileIncludedTwice
	DiagRuntimeError
	DiagVariableUnbounded
)

func (k DiagKind) String() string {
	switch k {
	case DiagOperationUndefined:
		return "operation-undefined"
	case DiagAtomUndefined:
		return "atom-undefined"
	case DiagGlobalVariableInTuple:
		return "global-variable-in-tuple"
	case DiagFileIncludedTwice:
		return "file-included-twice"
	case DiagRuntimeError:
		return "runtime-error"
	case DiagVariableUnbounded:
		return "variable-unbounded"
	default:
		return "unknown-diagnostic"
	}
}

// Severity distinguishes the two bands of diagnostic that this package
// itself raises (parse/syntactic diagnostics belong to the external parser
// and never appear here).
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Location identifies a span in the original source text, carried through
// from the AST the external builder constructed.
type Location struct {
	File                string
	StartLine, StartCol int
	EndLine, EndCol     int
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", l.File, l.StartLine, l.StartCol, l.EndLine, l.EndCol)
}

// Diagnostic is a single located warning or error.
type Diagnostic struct {
	Kind     DiagKind
	Severity Severity
	Location Location
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s (%s)", d.Location, d.Severity, d.Message, d.Kind)
}

// Diagnostics accumulates every diagnostic raised during one grounding
// session and latches HasError once any error-severity diagnostic is
// recorded, per the "has-error flag halts the pipeline at the end of the
// current phase" rule.
type Diagnostics struct {
	items    []Diagnostic
	HasError bool
	log      *logrus.Entry
}

// NewDiagnostics returns an empty Diagnostics sink that logs through log
// (pass logrus.NewEntry(logrus.New()) for a standalone default logger, or
// share one Grounder-scoped entry across a pipeline run).
func NewDiagnostics(log *logrus.Entry) *Diagnostics {
	return &Diagnostics{log: log}
}

// Warn records a band-3 evaluation warning: the offending literal is
// dropped (body) or replaced by #false (head), but the rule may still be
// ground if it remains satisfiable.
func (d *Diagnostics) Warn(kind DiagKind, loc Location, format string, args ...interface{}) {
	diag := Diagnostic{Kind: kind, Severity: SeverityWarning, Location: loc, Message: fmt.Sprintf(format, args...)}
	d.items = append(d.items, diag)
	if d.log != nil {
		d.log.WithField("location", loc.String()).WithField("kind", kind.String()).Warn(diag.Message)
	}
}

// Error records a band-2 semantic rejection and sets HasError.
func (d *Diagnostics) Error(kind DiagKind, loc Location, format string, args ...interface{}) {
	diag := Diagnostic{Kind: kind, Severity: SeverityError, Location: loc, Message: fmt.Sprintf(format, args...)}
	d.items = append(d.items, diag)
	d.HasError = true
	if d.log != nil {
		d.log.WithField("location", loc.String()).WithField("kind", kind.String()).Error(diag.Message)
	}
}

// Items returns every diagnostic recorded so far, in recording order.
func (d *Diagnostics) Items() []Diagnostic {
	return d.items
}
