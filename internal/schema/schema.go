package schema

// Schema is an ordered, immutable GraphQL type graph. Types keep their
// declaration order; the name index gives constant time lookup. Values are
// never mutated after construction: every With* method returns a new Schema
// sharing the untouched types with its receiver.
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            []*Type
	Directives       []*Directive

	typeIndex      map[string]int
	directiveIndex map[string]int
}

// NewSchema returns a schema holding the built-in scalars and the default
// root type names.
func NewSchema() *Schema {
	s := &Schema{
		QueryType:        "Query",
		MutationType:     "Mutation",
		SubscriptionType: "Subscription",
		typeIndex:        map[string]int{},
		directiveIndex:   map[string]int{},
	}
	for _, t := range builtinScalars {
		s.typeIndex[t.Name] = len(s.Types)
		s.Types = append(s.Types, t)
	}
	return s
}

// Type returns the named type or nil.
func (s *Schema) Type(name string) *Type {
	if s == nil {
		return nil
	}
	i, ok := s.typeIndex[name]
	if !ok {
		return nil
	}
	return s.Types[i]
}

func (s *Schema) HasType(name string) bool {
	_, ok := s.typeIndex[name]
	return ok
}

// Directive returns the named directive definition or nil.
func (s *Schema) Directive(name string) *Directive {
	i, ok := s.directiveIndex[name]
	if !ok {
		return nil
	}
	return s.Directives[i]
}

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Type(s.QueryType) }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.Type(s.MutationType) }

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type { return s.Type(s.SubscriptionType) }

// UserTypes returns the non built-in types in graph order.
func (s *Schema) UserTypes() []*Type {
	out := make([]*Type, 0, len(s.Types))
	for _, t := range s.Types {
		if !IsBuiltinType(t.Name) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Schema) clone() *Schema {
	c := &Schema{
		QueryType:        s.QueryType,
		MutationType:     s.MutationType,
		SubscriptionType: s.SubscriptionType,
		Types:            make([]*Type, len(s.Types)),
		Directives:       make([]*Directive, len(s.Directives)),
		typeIndex:        make(map[string]int, len(s.typeIndex)),
		directiveIndex:   make(map[string]int, len(s.directiveIndex)),
	}
	copy(c.Types, s.Types)
	copy(c.Directives, s.Directives)
	for k, v := range s.typeIndex {
		c.typeIndex[k] = v
	}
	for k, v := range s.directiveIndex {
		c.directiveIndex[k] = v
	}
	return c
}

// WithType returns a schema where t replaces the type of the same name, or
// is appended when no such type exists.
func (s *Schema) WithType(t *Type) *Schema {
	return s.WithTypes(t)
}

// WithTypes is WithType applied in order.
func (s *Schema) WithTypes(types ...*Type) *Schema {
	c := s.clone()
	for _, t := range types {
		if i, ok := c.typeIndex[t.Name]; ok {
			c.Types[i] = t
			continue
		}
		c.typeIndex[t.Name] = len(c.Types)
		c.Types = append(c.Types, t)
	}
	return c
}

// WithDirective returns a schema where d replaces or appends the directive
// definition of the same name.
func (s *Schema) WithDirective(d *Directive) *Schema {
	c := s.clone()
	if i, ok := c.directiveIndex[d.Name]; ok {
		c.Directives[i] = d
		return c
	}
	c.directiveIndex[d.Name] = len(c.Directives)
	c.Directives = append(c.Directives, d)
	return c
}

// WithRoots returns a schema with the given root type names. Empty names keep
// the current value.
func (s *Schema) WithRoots(query, mutation, subscription string) *Schema {
	c := s.clone()
	if query != "" {
		c.QueryType = query
	}
	if mutation != "" {
		c.MutationType = mutation
	}
	if subscription != "" {
		c.SubscriptionType = subscription
	}
	return c
}

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name          string
	Kind          TypeKind
	Description   string
	Fields        []*Field      // For OBJECT and INTERFACE
	Interfaces    []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes []string      // For UNION
	EnumValues    []*EnumValue  // For ENUM
	InputFields   []*InputValue // For INPUT_OBJECT
	Directives    []*DirectiveUse
	Position      *Position
}

// Field returns the named output field or nil.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// InputField returns the named input field or nil.
func (t *Type) InputField(name string) *InputValue {
	for _, f := range t.InputFields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Directive returns the first use of the named directive on the type.
func (t *Type) Directive(name string) *DirectiveUse {
	return findDirective(t.Directives, name)
}

// WithFields returns a copy of t with its output fields replaced.
func (t *Type) WithFields(fields []*Field) *Type {
	c := *t
	c.Fields = fields
	return &c
}

// AppendFields returns a copy of t with fields added after the existing ones.
func (t *Type) AppendFields(fields ...*Field) *Type {
	merged := make([]*Field, 0, len(t.Fields)+len(fields))
	merged = append(merged, t.Fields...)
	merged = append(merged, fields...)
	return t.WithFields(merged)
}

// Field represents a field on an object or interface
type Field struct {
	Name        string
	Description string
	Type        *TypeRef
	Arguments   []*InputValue
	Directives  []*DirectiveUse
	Position    *Position
}

// Directive returns the first use of the named directive on the field.
func (f *Field) Directive(name string) *DirectiveUse {
	return findDirective(f.Directives, name)
}

// Argument returns the named argument definition or nil.
func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List and NonNull
	Named  string   // For named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t.Kind == TypeRefKindList {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindList
	}
	return false
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

// Rename returns a copy of the reference with the innermost named type
// replaced, keeping every list and non-null wrapper.
func (t *TypeRef) Rename(name string) *TypeRef {
	if t == nil {
		return nil
	}
	if t.Kind == TypeRefKindNamed {
		return NamedType(name)
	}
	return &TypeRef{Kind: t.Kind, OfType: t.OfType.Rename(name)}
}

// Nullable strips every non-null wrapper, at every depth.
func (t *TypeRef) Nullable() *TypeRef {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TypeRefKindNonNull:
		return t.OfType.Nullable()
	case TypeRefKindList:
		return ListType(t.OfType.Nullable())
	default:
		return t
	}
}

func (t *TypeRef) String() string { return renderTypeRef(t) }

// Equal reports whether both references describe the same wrapped type.
func (t *TypeRef) Equal(o *TypeRef) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind || t.Named != o.Named {
		return false
	}
	return t.OfType.Equal(o.OfType)
}

type EnumValue struct {
	Name        string
	Description string
	Directives  []*DirectiveUse
}

type InputValue struct {
	Name         string
	Description  string
	Type         *TypeRef
	DefaultValue *Value
	Directives   []*DirectiveUse
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

// DirectiveUse is a directive applied to a type, field or value.
type DirectiveUse struct {
	Name      string
	Arguments []*Argument
	Position  *Position
}

// Argument returns the named argument or nil.
func (d *DirectiveUse) Argument(name string) *Argument {
	for _, a := range d.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

type Argument struct {
	Name  string
	Value *Value
}

// Position locates a definition in its source document.
type Position struct {
	Src    string
	Line   int
	Column int
}

func findDirective(uses []*DirectiveUse, name string) *DirectiveUse {
	for _, d := range uses {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type is (or is wrapped by) a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }
