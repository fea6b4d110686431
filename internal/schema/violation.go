package schema

import (
	"fmt"

	language "github.com/hanpama/mongograph/internal/language"
)

type Violation struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

type ValidationError []*Violation

func (e ValidationError) Error() string {
	msg := "violations found:\n"
	for _, v := range e {
		line := "- " + v.Message
		if v.File != "" {
			line += fmt.Sprintf(" %s:%d:%d", v.File, v.Line, v.Column)
		}
		msg += line + "\n"
	}
	return msg
}

func violationWithPosition(message string, pos *language.Position) *Violation {
	v := &Violation{Message: message}
	if pos == nil {
		return v
	}
	if pos.Src != nil {
		v.File = pos.Src.Name
	}
	v.Line = pos.Line
	v.Column = pos.Column
	return v
}

func violationDuplicateType(typeName string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Duplicate definition of type %q", typeName), pos)
}

func violationDuplicateDirective(name string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Duplicate definition of directive @%s", name), pos)
}

func violationDuplicateField(kind, fieldName, typeName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Duplicate field %q found in %s %q", fieldName, kind, typeName),
		pos,
	)
}

func violationExtensionKind(typeName string, want, got language.DefinitionKind, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Cannot extend %s %q with %s extension", want, typeName, got),
		pos,
	)
}

func violationTypeNotFound(typeName string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Type %q not found in definitions", typeName), pos)
}
