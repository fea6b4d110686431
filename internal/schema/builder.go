package schema

import (
	language "github.com/hanpama/mongograph/internal/language"
)

// BuildFromDocuments merges parsed SDL documents into one Schema. Definitions
// keep their declaration order across documents; `extend` blocks are applied
// after every definition has been collected. A `schema {}` block overrides the
// default root type names.
func BuildFromDocuments(docs ...*language.SchemaDocument) (*Schema, error) {
	b := &builder{types: map[string]*Type{}, directives: map[string]*Directive{}}
	for _, doc := range docs {
		b.collectDefinitions(doc)
	}
	for _, doc := range docs {
		b.applyExtensions(doc)
	}
	if len(b.violations) > 0 {
		return nil, b.violations
	}

	s := NewSchema()
	for _, name := range b.order {
		s = s.WithType(b.types[name])
	}
	for _, name := range b.directiveOrder {
		s = s.WithDirective(b.directives[name])
	}
	return s.WithRoots(b.query, b.mutation, b.subscription), nil
}

// BuildFromSDL parses a single SDL string and builds its Schema.
func BuildFromSDL(name, sdl string) (*Schema, error) {
	doc, err := language.ParseSchema(name, sdl)
	if err != nil {
		return nil, err
	}
	return BuildFromDocuments(doc)
}

type builder struct {
	types          map[string]*Type
	order          []string
	directives     map[string]*Directive
	directiveOrder []string
	query          string
	mutation       string
	subscription   string
	violations     ValidationError
}

func (b *builder) collectDefinitions(doc *language.SchemaDocument) {
	for _, def := range doc.Definitions {
		if IsBuiltinType(def.Name) {
			continue
		}
		if _, exists := b.types[def.Name]; exists {
			b.violations = append(b.violations, violationDuplicateType(def.Name, def.Position))
			continue
		}
		b.types[def.Name] = b.buildDefinition(def)
		b.order = append(b.order, def.Name)
	}
	for _, dir := range doc.Directives {
		if IsBuiltinDirective(dir.Name) {
			continue
		}
		if _, exists := b.directives[dir.Name]; exists {
			b.violations = append(b.violations, violationDuplicateDirective(dir.Name, dir.Position))
			continue
		}
		b.directives[dir.Name] = buildDirective(dir)
		b.directiveOrder = append(b.directiveOrder, dir.Name)
	}
	schemaDefs := append(language.SchemaDefinitionList{}, doc.Schema...)
	schemaDefs = append(schemaDefs, doc.SchemaExtension...)
	for _, sd := range schemaDefs {
		for _, op := range sd.OperationTypes {
			switch op.Operation {
			case language.Query:
				b.query = op.Type
			case language.Mutation:
				b.mutation = op.Type
			case language.Subscription:
				b.subscription = op.Type
			}
		}
	}
}

func (b *builder) applyExtensions(doc *language.SchemaDocument) {
	for _, ext := range doc.Extensions {
		base, ok := b.types[ext.Name]
		if !ok {
			b.violations = append(b.violations, violationTypeNotFound(ext.Name, ext.Position))
			continue
		}
		if kindOf(ext.Kind) != base.Kind {
			b.violations = append(b.violations, violationExtensionKind(ext.Name, kindName(base.Kind), ext.Kind, ext.Position))
			continue
		}
		extended := b.buildDefinition(ext)
		merged := *base
		merged.Directives = append(append([]*DirectiveUse{}, base.Directives...), extended.Directives...)
		merged.Interfaces = append(append([]string{}, base.Interfaces...), extended.Interfaces...)
		merged.PossibleTypes = append(append([]string{}, base.PossibleTypes...), extended.PossibleTypes...)
		merged.EnumValues = append(append([]*EnumValue{}, base.EnumValues...), extended.EnumValues...)
		merged.Fields = append([]*Field{}, base.Fields...)
		for _, f := range extended.Fields {
			if merged.Field(f.Name) != nil {
				b.violations = append(b.violations, violationDuplicateField("type", f.Name, ext.Name, fieldPosition(ext, f.Name)))
				continue
			}
			merged.Fields = append(merged.Fields, f)
		}
		merged.InputFields = append([]*InputValue{}, base.InputFields...)
		for _, f := range extended.InputFields {
			if merged.InputField(f.Name) != nil {
				b.violations = append(b.violations, violationDuplicateField("input", f.Name, ext.Name, fieldPosition(ext, f.Name)))
				continue
			}
			merged.InputFields = append(merged.InputFields, f)
		}
		b.types[ext.Name] = &merged
	}
}

func (b *builder) buildDefinition(def *language.Definition) *Type {
	t := &Type{
		Name:        def.Name,
		Kind:        kindOf(def.Kind),
		Description: def.Description,
		Directives:  buildDirectiveUses(def.Directives),
		Position:    buildPosition(def.Position),
	}
	switch t.Kind {
	case TypeKindObject, TypeKindInterface:
		t.Interfaces = append(t.Interfaces, def.Interfaces...)
		seen := map[string]bool{}
		for _, fd := range def.Fields {
			if seen[fd.Name] {
				b.violations = append(b.violations, violationDuplicateField("type", fd.Name, def.Name, fd.Position))
				continue
			}
			seen[fd.Name] = true
			t.Fields = append(t.Fields, buildField(fd))
		}
	case TypeKindInputObject:
		seen := map[string]bool{}
		for _, fd := range def.Fields {
			if seen[fd.Name] {
				b.violations = append(b.violations, violationDuplicateField("input", fd.Name, def.Name, fd.Position))
				continue
			}
			seen[fd.Name] = true
			t.InputFields = append(t.InputFields, &InputValue{
				Name:         fd.Name,
				Description:  fd.Description,
				Type:         buildTypeRef(fd.Type),
				DefaultValue: buildValue(fd.DefaultValue),
				Directives:   buildDirectiveUses(fd.Directives),
			})
		}
	case TypeKindEnum:
		for _, ev := range def.EnumValues {
			t.EnumValues = append(t.EnumValues, &EnumValue{
				Name:        ev.Name,
				Description: ev.Description,
				Directives:  buildDirectiveUses(ev.Directives),
			})
		}
	case TypeKindUnion:
		t.PossibleTypes = append(t.PossibleTypes, def.Types...)
	}
	return t
}

func buildField(fd *language.FieldDefinition) *Field {
	f := &Field{
		Name:        fd.Name,
		Description: fd.Description,
		Type:        buildTypeRef(fd.Type),
		Directives:  buildDirectiveUses(fd.Directives),
		Position:    buildPosition(fd.Position),
	}
	for _, arg := range fd.Arguments {
		f.Arguments = append(f.Arguments, buildArgument(arg))
	}
	return f
}

func buildArgument(arg *language.ArgumentDefinition) *InputValue {
	return &InputValue{
		Name:         arg.Name,
		Description:  arg.Description,
		Type:         buildTypeRef(arg.Type),
		DefaultValue: buildValue(arg.DefaultValue),
		Directives:   buildDirectiveUses(arg.Directives),
	}
}

func buildDirective(dir *language.DirectiveDefinition) *Directive {
	d := &Directive{
		Name:         dir.Name,
		Description:  dir.Description,
		IsRepeatable: dir.IsRepeatable,
	}
	for _, loc := range dir.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range dir.Arguments {
		d.Arguments = append(d.Arguments, buildArgument(arg))
	}
	return d
}

func buildDirectiveUses(list language.DirectiveList) []*DirectiveUse {
	if len(list) == 0 {
		return nil
	}
	uses := make([]*DirectiveUse, 0, len(list))
	for _, dir := range list {
		use := &DirectiveUse{Name: dir.Name, Position: buildPosition(dir.Position)}
		for _, arg := range dir.Arguments {
			use.Arguments = append(use.Arguments, &Argument{Name: arg.Name, Value: buildValue(arg.Value)})
		}
		uses = append(uses, use)
	}
	return uses
}

func buildTypeRef(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(buildTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = NonNullType(ref)
	}
	return ref
}

func buildValue(v *language.Value) *Value {
	if v == nil {
		return nil
	}
	out := &Value{Raw: v.Raw}
	switch v.Kind {
	case language.Variable:
		out.Kind = ValueKindVariable
	case language.IntValue:
		out.Kind = ValueKindInt
	case language.FloatValue:
		out.Kind = ValueKindFloat
	case language.StringValue, language.BlockValue:
		out.Kind = ValueKindString
	case language.BooleanValue:
		out.Kind = ValueKindBoolean
	case language.NullValue:
		out.Kind = ValueKindNull
	case language.EnumValue:
		out.Kind = ValueKindEnum
	case language.ListValue:
		out.Kind = ValueKindList
		for _, child := range v.Children {
			out.List = append(out.List, buildValue(child.Value))
		}
	case language.ObjectValue:
		out.Kind = ValueKindObject
		for _, child := range v.Children {
			out.Fields = append(out.Fields, &ObjectField{Name: child.Name, Value: buildValue(child.Value)})
		}
	}
	return out
}

func buildPosition(pos *language.Position) *Position {
	if pos == nil {
		return nil
	}
	p := &Position{Line: pos.Line, Column: pos.Column}
	if pos.Src != nil {
		p.Src = pos.Src.Name
	}
	return p
}

func fieldPosition(def *language.Definition, name string) *language.Position {
	if f := def.Fields.ForName(name); f != nil {
		return f.Position
	}
	return def.Position
}

func kindOf(k language.DefinitionKind) TypeKind {
	switch k {
	case language.Object:
		return TypeKindObject
	case language.Interface:
		return TypeKindInterface
	case language.Union:
		return TypeKindUnion
	case language.Enum:
		return TypeKindEnum
	case language.InputObject:
		return TypeKindInputObject
	default:
		return TypeKindScalar
	}
}

func kindName(k TypeKind) language.DefinitionKind {
	switch k {
	case TypeKindObject:
		return language.Object
	case TypeKindInterface:
		return language.Interface
	case TypeKindUnion:
		return language.Union
	case TypeKindEnum:
		return language.Enum
	case TypeKindInputObject:
		return language.InputObject
	default:
		return language.Scalar
	}
}
