package augment

import (
	"log/slog"

	"github.com/hanpama/mongograph/internal/schema"
)

// OperationKind identifies a generated root field.
type OperationKind int

const (
	FindMany OperationKind = iota
	FindByID
	FindByIDs
	InsertOne
	InsertMany
	UpdateOne
	UpdateMany
	RemoveOne
	RemoveMany
)

var operationKindNames = [...]string{
	FindMany:   "findMany",
	FindByID:   "findById",
	FindByIDs:  "findByIds",
	InsertOne:  "insertOne",
	InsertMany: "insertMany",
	UpdateOne:  "updateOne",
	UpdateMany: "updateMany",
	RemoveOne:  "removeOne",
	RemoveMany: "removeMany",
}

func (k OperationKind) String() string { return operationKindNames[k] }

// IsMutation reports whether the operation is appended to the mutation root.
func (k OperationKind) IsMutation() bool { return k >= InsertOne }

// Operation describes one generated root field.
type Operation struct {
	Root       string
	Name       string
	Kind       OperationKind
	Entity     string
	Collection string
}

type operationSpec struct {
	kind  OperationKind
	name  func(entity string) string
	field func(e *Entity, d *DerivedTypes) *schema.Field
}

// operationTable drives the append step. A nil field means the operation is
// not offered for the entity.
var operationTable = []operationSpec{
	{FindMany, func(e string) string { return "find" + Pluralize(e) }, findManyField},
	{FindByID, func(e string) string { return "find" + e + "ById" }, findByIDField},
	{FindByIDs, func(e string) string { return "find" + Pluralize(e) + "ByIds" }, findByIDsField},
	{InsertOne, func(e string) string { return "insert" + e }, insertOneField},
	{InsertMany, func(e string) string { return "insertMany" + Pluralize(e) }, insertManyField},
	{UpdateOne, func(e string) string { return "update" + e }, updateOneField},
	{UpdateMany, func(e string) string { return "updateMany" + Pluralize(e) }, updateManyField},
	{RemoveOne, func(e string) string { return "remove" + e }, removeOneField},
	{RemoveMany, func(e string) string { return "removeMany" + Pluralize(e) }, removeManyField},
}

// OperationName returns the root field name generated for kind and entity.
func OperationName(kind OperationKind, entity string) string {
	return operationTable[kind].name(entity)
}

// AppendOperations appends the generated query and mutation fields of every
// CRUD entity to the roots of g. A field whose name already exists on the
// accumulating root is left untouched and reported in skipped.
func AppendOperations(g *schema.Schema, m *CapabilityMap, d *DerivedTypes) (out *schema.Schema, added, skipped []Operation) {
	var query, mutation *schema.Type
	for _, e := range m.Entities {
		if !e.CRUD {
			continue
		}
		if query == nil {
			query = rootType(g, g.QueryType)
			mutation = rootType(g, g.MutationType)
		}
		for _, spec := range operationTable {
			field := spec.field(e, d)
			if field == nil {
				continue
			}
			field.Name = spec.name(e.Name)
			root := &query
			if spec.kind.IsMutation() {
				root = &mutation
			}
			op := Operation{
				Root:       (*root).Name,
				Name:       field.Name,
				Kind:       spec.kind,
				Entity:     e.Name,
				Collection: e.CollectionName,
			}
			if (*root).Field(field.Name) != nil {
				slog.Debug("skipping generated operation: field already defined",
					"root", op.Root, "field", op.Name, "entity", e.Name)
				skipped = append(skipped, op)
				continue
			}
			*root = (*root).AppendFields(field)
			added = append(added, op)
		}
	}
	if query == nil {
		return g, nil, nil
	}
	return g.WithTypes(query, mutation), added, skipped
}

func rootType(g *schema.Schema, name string) *schema.Type {
	if t := g.Type(name); t != nil {
		return t
	}
	return &schema.Type{Name: name, Kind: schema.TypeKindObject}
}

func objectIDArg(name string) *schema.InputValue {
	return &schema.InputValue{Name: name, Type: schema.NonNullType(schema.NamedType(objectIDType))}
}

func objectIDsArg(name string) *schema.InputValue {
	return &schema.InputValue{
		Name: name,
		Type: schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType(objectIDType)))),
	}
}

func optionalArg(name string, t *schema.Type) *schema.InputValue {
	return &schema.InputValue{Name: name, Type: schema.NamedType(t.Name)}
}

// filterArgs returns the optional filter argument when the entity has a
// filter type.
func filterArgs(e *Entity, d *DerivedTypes) []*schema.InputValue {
	if t := d.Type(Filter, e.Name); t != nil {
		return []*schema.InputValue{optionalArg("filter", t)}
	}
	return nil
}

func entityRef(e *Entity) *schema.TypeRef { return schema.NamedType(e.Name) }

func entityListRef(e *Entity) *schema.TypeRef { return schema.ListType(schema.NamedType(e.Name)) }

func findManyField(e *Entity, d *DerivedTypes) *schema.Field {
	args := []*schema.InputValue{
		{Name: "pagination", Type: schema.NamedType(paginationType)},
		{Name: "sort", Type: schema.NamedType(sortType)},
	}
	args = append(args, filterArgs(e, d)...)
	if d.Type(TextSearch, e.Name) != nil {
		args = append(args, &schema.InputValue{Name: "textsearch", Type: schema.NamedType(textSearchType)})
	}
	return &schema.Field{
		Type:      schema.NonNullType(schema.NamedType(d.Page(e.Name).Name)),
		Arguments: args,
	}
}

func findByIDField(e *Entity, d *DerivedTypes) *schema.Field {
	return &schema.Field{
		Type:      entityRef(e),
		Arguments: append([]*schema.InputValue{objectIDArg("id")}, filterArgs(e, d)...),
	}
}

func findByIDsField(e *Entity, d *DerivedTypes) *schema.Field {
	return &schema.Field{
		Type:      entityListRef(e),
		Arguments: append([]*schema.InputValue{objectIDsArg("ids")}, filterArgs(e, d)...),
	}
}

func insertOneField(e *Entity, d *DerivedTypes) *schema.Field {
	t := d.Type(Insert, e.Name)
	if t == nil {
		return nil
	}
	return &schema.Field{
		Type: entityRef(e),
		Arguments: []*schema.InputValue{{
			Name: argumentName(e.Name),
			Type: schema.NonNullType(schema.NamedType(t.Name)),
		}},
	}
}

func insertManyField(e *Entity, d *DerivedTypes) *schema.Field {
	ref := d.InsertMany(e.Name)
	if ref == nil {
		return nil
	}
	return &schema.Field{
		Type:      entityListRef(e),
		Arguments: []*schema.InputValue{{Name: Pluralize(argumentName(e.Name)), Type: ref}},
	}
}

// updateArgs returns the payload arguments of the update operations, or nil
// when the entity offers none of set, inc and dec.
func updateArgs(e *Entity, d *DerivedTypes) []*schema.InputValue {
	var args []*schema.InputValue
	for _, c := range updateCapabilities {
		if t := d.Type(c, e.Name); t != nil {
			args = append(args, optionalArg(argumentName(e.Name)+c.Suffix(), t))
		}
	}
	return args
}

func updateOneField(e *Entity, d *DerivedTypes) *schema.Field {
	payload := updateArgs(e, d)
	if len(payload) == 0 {
		return nil
	}
	args := append([]*schema.InputValue{objectIDArg("id")}, filterArgs(e, d)...)
	return &schema.Field{Type: entityRef(e), Arguments: append(args, payload...)}
}

func updateManyField(e *Entity, d *DerivedTypes) *schema.Field {
	payload := updateArgs(e, d)
	if len(payload) == 0 {
		return nil
	}
	args := append([]*schema.InputValue{objectIDsArg("ids")}, filterArgs(e, d)...)
	return &schema.Field{Type: entityListRef(e), Arguments: append(args, payload...)}
}

func removeOneField(e *Entity, d *DerivedTypes) *schema.Field {
	return &schema.Field{
		Type:      entityRef(e),
		Arguments: append([]*schema.InputValue{objectIDArg("id")}, filterArgs(e, d)...),
	}
}

func removeManyField(e *Entity, d *DerivedTypes) *schema.Field {
	return &schema.Field{
		Type:      entityListRef(e),
		Arguments: append([]*schema.InputValue{objectIDsArg("ids")}, filterArgs(e, d)...),
	}
}
