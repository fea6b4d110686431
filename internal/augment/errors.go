package augment

import (
	"fmt"
	"strings"

	"github.com/hanpama/mongograph/internal/schema"
)

// ConfigurationError reports an invalid @collection declaration or a
// malformed field marker.
type ConfigurationError struct {
	Type      string
	Field     string
	Directive string
	Message   string
	Position  *schema.Position
}

func (e *ConfigurationError) Error() string {
	target := e.Type
	if e.Field != "" {
		target += "." + e.Field
	}
	return fmt.Sprintf("configuration error: @%s on %s: %s%s", e.Directive, target, e.Message, at(e.Position))
}

// UnsupportedScalarError reports a marked field whose type has no registered
// operator wrapper or input form for the capability.
type UnsupportedScalarError struct {
	Entity     string
	Field      string
	Scalar     string
	Capability Capability
	Position   *schema.Position
}

func (e *UnsupportedScalarError) Error() string {
	return fmt.Sprintf("unsupported scalar %q for @%s on field %s.%s%s",
		e.Scalar, e.Capability, e.Entity, e.Field, at(e.Position))
}

// NameCollisionError reports a derived or prelude definition whose name is
// already taken by a different definition in the base graph.
type NameCollisionError struct {
	Name string
	// Origin describes what produced the colliding definition, e.g.
	// "Book filter" or "prelude".
	Origin   string
	Position *schema.Position
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("name collision: %s type %q conflicts with an existing definition%s", e.Origin, e.Name, at(e.Position))
}

// ErrorList collects every independent augmentation problem. errors.As and
// errors.Is inspect each member.
type ErrorList []error

func (l ErrorList) Error() string {
	if len(l) == 1 {
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, err := range l {
		msgs[i] = "- " + err.Error()
	}
	return fmt.Sprintf("%d augmentation errors:\n%s", len(l), strings.Join(msgs, "\n"))
}

func (l ErrorList) Unwrap() []error { return l }

func (l ErrorList) err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func at(pos *schema.Position) string {
	if pos == nil {
		return ""
	}
	if pos.Src == "" {
		return fmt.Sprintf(" (line %d:%d)", pos.Line, pos.Column)
	}
	return fmt.Sprintf(" (%s:%d:%d)", pos.Src, pos.Line, pos.Column)
}
