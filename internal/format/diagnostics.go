package format

import (
	"errors"
	"fmt"

	"github.com/BendyLand/blfmt-sub000/internal/diag"
	"github.com/BendyLand/blfmt-sub000/internal/source"
)

var (
	ErrNilFile = errors.New("format: nil source file")
	ErrNilTree = errors.New("format: nil syntax tree")
)

// Diagnostic records a node the formatter emitted verbatim.
type Diagnostic struct {
	Kind string // grammar kind of the node
	Text string // literal source text of the node
	Span source.Span
	Code diag.Code
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s at %s", d.Code.ID(), d.Kind, d.Span)
}

// Diag converts the record into the shared diagnostic model.
func (d Diagnostic) Diag() diag.Diagnostic {
	msg := d.Code.Title()
	if d.Kind != "" {
		msg = fmt.Sprintf("%s: %s", d.Kind, msg)
	}
	return diag.NewWarning(d.Code, d.Span, msg)
}

// malformedError is returned by a handler whose assumption about the shape of
// its node did not hold. The dispatcher falls back to verbatim output.
type malformedError struct {
	kind   string
	reason string
}

func (e *malformedError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.reason)
}

func malformed(kind, format string, args ...any) error {
	return &malformedError{kind: kind, reason: fmt.Sprintf(format, args...)}
}
