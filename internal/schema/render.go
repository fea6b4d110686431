package schema

import (
	"strconv"
	"strings"
)

// Render produces SDL from the Schema. Types and directive definitions are
// printed in graph order; built-in scalars and directives are skipped.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var b strings.Builder

	renderSchemaBlock(&b, s)

	for _, directive := range s.Directives {
		if IsBuiltinDirective(directive.Name) {
			continue
		}
		renderDirective(&b, directive)
	}

	for _, typ := range s.Types {
		if IsBuiltinType(typ.Name) {
			continue
		}
		switch typ.Kind {
		case TypeKindScalar:
			renderScalar(&b, typ)
		case TypeKindEnum:
			renderEnum(&b, typ)
		case TypeKindInputObject:
			renderInputObject(&b, typ)
		case TypeKindObject:
			renderObject(&b, typ)
		case TypeKindInterface:
			renderInterface(&b, typ)
		case TypeKindUnion:
			renderUnion(&b, typ)
		}
	}

	out := strings.TrimRight(b.String(), "\n") + "\n"
	return out
}

// renderSchemaBlock prints an explicit schema block only when a present root
// type does not use its conventional name.
func renderSchemaBlock(b *strings.Builder, s *Schema) {
	roots := []struct{ op, name, conventional string }{
		{"query", s.QueryType, "Query"},
		{"mutation", s.MutationType, "Mutation"},
		{"subscription", s.SubscriptionType, "Subscription"},
	}
	custom := false
	for _, r := range roots {
		if r.name != r.conventional && s.HasType(r.name) {
			custom = true
		}
	}
	if !custom {
		return
	}
	b.WriteString("schema {\n")
	for _, r := range roots {
		if !s.HasType(r.name) {
			continue
		}
		b.WriteString("  ")
		b.WriteString(r.op)
		b.WriteString(": ")
		b.WriteString(r.name)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

// ----- render helpers -----

func renderDescription(b *strings.Builder, desc, indent string) {
	if desc == "" {
		return
	}
	b.WriteString(indent)
	b.WriteString("\"\"\"\n")
	escaped := strings.ReplaceAll(desc, "\"\"\"", "\\\"\"\"")
	for _, line := range strings.Split(escaped, "\n") {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(indent)
	b.WriteString("\"\"\"\n")
}

func renderScalar(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("scalar ")
	b.WriteString(typ.Name)
	renderDirectiveUses(b, typ.Directives)
	b.WriteString("\n\n")
}

func renderEnum(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("enum ")
	b.WriteString(typ.Name)
	renderDirectiveUses(b, typ.Directives)
	b.WriteString(" {\n")
	for _, val := range typ.EnumValues {
		renderDescription(b, val.Description, "  ")
		b.WriteString("  ")
		b.WriteString(val.Name)
		renderDirectiveUses(b, val.Directives)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderInputObject(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("input ")
	b.WriteString(typ.Name)
	renderDirectiveUses(b, typ.Directives)
	b.WriteString(" {\n")
	for _, field := range typ.InputFields {
		renderDescription(b, field.Description, "  ")
		b.WriteString("  ")
		renderInputValue(b, field)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderObject(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("type ")
	b.WriteString(typ.Name)
	renderImplements(b, typ.Interfaces)
	renderDirectiveUses(b, typ.Directives)
	b.WriteString(" {\n")
	for _, field := range typ.Fields {
		renderField(b, field)
	}
	b.WriteString("}\n\n")
}

func renderInterface(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("interface ")
	b.WriteString(typ.Name)
	renderImplements(b, typ.Interfaces)
	renderDirectiveUses(b, typ.Directives)
	b.WriteString(" {\n")
	for _, field := range typ.Fields {
		renderField(b, field)
	}
	b.WriteString("}\n\n")
}

func renderImplements(b *strings.Builder, interfaces []string) {
	if len(interfaces) == 0 {
		return
	}
	b.WriteString(" implements ")
	b.WriteString(strings.Join(interfaces, " & "))
}

func renderUnion(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("union ")
	b.WriteString(typ.Name)
	renderDirectiveUses(b, typ.Directives)
	b.WriteString(" = ")
	b.WriteString(strings.Join(typ.PossibleTypes, " | "))
	b.WriteString("\n\n")
}

func renderField(b *strings.Builder, field *Field) {
	renderDescription(b, field.Description, "  ")
	b.WriteString("  ")
	b.WriteString(field.Name)
	renderArguments(b, field.Arguments)
	b.WriteString(": ")
	b.WriteString(renderTypeRef(field.Type))
	renderDirectiveUses(b, field.Directives)
	b.WriteString("\n")
}

func renderArguments(b *strings.Builder, args []*InputValue) {
	if len(args) == 0 {
		return
	}
	b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		renderInputValue(b, arg)
	}
	b.WriteString(")")
}

func renderInputValue(b *strings.Builder, v *InputValue) {
	b.WriteString(v.Name)
	b.WriteString(": ")
	b.WriteString(renderTypeRef(v.Type))
	if v.DefaultValue != nil {
		b.WriteString(" = ")
		b.WriteString(renderValue(v.DefaultValue))
	}
	renderDirectiveUses(b, v.Directives)
}

func renderDirectiveUses(b *strings.Builder, uses []*DirectiveUse) {
	for _, use := range uses {
		b.WriteString(" @")
		b.WriteString(use.Name)
		if len(use.Arguments) == 0 {
			continue
		}
		b.WriteString("(")
		for i, arg := range use.Arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(arg.Name)
			b.WriteString(": ")
			b.WriteString(renderValue(arg.Value))
		}
		b.WriteString(")")
	}
}

func renderDirective(b *strings.Builder, directive *Directive) {
	renderDescription(b, directive.Description, "")
	b.WriteString("directive @")
	b.WriteString(directive.Name)
	renderArguments(b, directive.Arguments)
	if directive.IsRepeatable {
		b.WriteString(" repeatable")
	}
	b.WriteString(" on ")
	b.WriteString(strings.Join(directive.Locations, " | "))
	b.WriteString("\n\n")
}

func renderTypeRef(typeRef *TypeRef) string {
	if typeRef == nil {
		return ""
	}

	switch typeRef.Kind {
	case TypeRefKindNamed:
		return typeRef.Named
	case TypeRefKindList:
		return "[" + renderTypeRef(typeRef.OfType) + "]"
	case TypeRefKindNonNull:
		return renderTypeRef(typeRef.OfType) + "!"
	default:
		return ""
	}
}

// renderValue renders a GraphQL literal (default values, directive arguments)
func renderValue(value *Value) string {
	if value == nil {
		return "null"
	}

	switch value.Kind {
	case ValueKindString:
		return strconv.Quote(value.Raw)
	case ValueKindNull:
		return "null"
	case ValueKindVariable:
		return "$" + value.Raw
	case ValueKindList:
		parts := make([]string, 0, len(value.List))
		for _, item := range value.List {
			parts = append(parts, renderValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ValueKindObject:
		parts := make([]string, 0, len(value.Fields))
		for _, f := range value.Fields {
			parts = append(parts, f.Name+": "+renderValue(f.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return value.Raw
	}
}
