package augment

import (
	"github.com/hanpama/mongograph/internal/schema"
)

// DerivedTypes holds the types synthesized for every entity. A missing
// (capability, entity) entry means the capability is not offered.
type DerivedTypes struct {
	byCapability map[Capability]map[string]*schema.Type
	pages        map[string]*schema.Type
	ordered      []derivedType
}

type derivedType struct {
	typ    *schema.Type
	origin string
}

// Type returns the type derived for (c, entity) or nil.
func (d *DerivedTypes) Type(c Capability, entity string) *schema.Type {
	if d == nil {
		return nil
	}
	return d.byCapability[c][entity]
}

// Page returns the page wrapper of entity or nil.
func (d *DerivedTypes) Page(entity string) *schema.Type {
	if d == nil {
		return nil
	}
	return d.pages[entity]
}

// InsertMany returns the plural insert container [EInsert!]! or nil when
// entity has no insert fields.
func (d *DerivedTypes) InsertMany(entity string) *schema.TypeRef {
	t := d.Type(Insert, entity)
	if t == nil {
		return nil
	}
	return schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType(t.Name))))
}

// Types lists every derived type in graph order: per entity its page then
// its capability types, followed by the synthesized enum filter wrappers.
func (d *DerivedTypes) Types() []*schema.Type {
	out := make([]*schema.Type, len(d.ordered))
	for i, dt := range d.ordered {
		out[i] = dt.typ
	}
	return out
}

func (d *DerivedTypes) add(c Capability, entity string, t *schema.Type) {
	if d.byCapability[c] == nil {
		d.byCapability[c] = map[string]*schema.Type{}
	}
	d.byCapability[c][entity] = t
	d.ordered = append(d.ordered, derivedType{typ: t, origin: entity + " " + c.String()})
}

// Build derives the page wrapper and the capability types of every entity
// in m. g must already contain the prelude.
func Build(m *CapabilityMap, g *schema.Schema) (*DerivedTypes, error) {
	b := &typeBuilder{
		graph: g,
		caps:  m,
		out: &DerivedTypes{
			byCapability: map[Capability]map[string]*schema.Type{},
			pages:        map[string]*schema.Type{},
		},
		enumWrappers: map[string]bool{},
	}
	for _, e := range m.Entities {
		page := &schema.Type{
			Name: pageTypeName(e.Name),
			Kind: schema.TypeKindObject,
			Fields: []*schema.Field{
				{Name: "total", Type: schema.NamedType("Int")},
				{Name: "data", Type: schema.ListType(schema.NamedType(e.Name))},
			},
		}
		b.out.pages[e.Name] = page
		b.out.ordered = append(b.out.ordered, derivedType{typ: page, origin: e.Name + " page"})

		for _, c := range Capabilities {
			fields := e.Fields(c)
			if len(fields) == 0 {
				continue
			}
			t := &schema.Type{Name: c.TypeName(e.Name), Kind: schema.TypeKindInputObject}
			for _, f := range fields {
				ref, err := b.fieldType(e, f, c)
				if err != nil {
					b.errs = append(b.errs, err)
					continue
				}
				t.InputFields = append(t.InputFields, &schema.InputValue{
					Name:        f.Name,
					Description: f.Description,
					Type:        ref,
				})
			}
			b.out.add(c, e.Name, t)
		}
	}
	b.out.ordered = append(b.out.ordered, b.enums...)
	if err := b.errs.err(); err != nil {
		return nil, err
	}
	return b.out, nil
}

type typeBuilder struct {
	graph        *schema.Schema
	caps         *CapabilityMap
	out          *DerivedTypes
	enums        []derivedType
	enumWrappers map[string]bool
	errs         ErrorList
}

func (b *typeBuilder) fieldType(e *Entity, f *schema.Field, c Capability) (*schema.TypeRef, error) {
	info := capabilityTable[c]
	named := f.Type.GetNamedType()
	switch info.mapping {
	case wrapInFilter:
		wrapper, err := b.filterOperand(e, f, c, named)
		if err != nil {
			return nil, err
		}
		return schema.NamedType(wrapper), nil
	case unsetFlag:
		return schema.NamedType(unsetFlagType), nil
	}

	ref := f.Type
	if !info.keepNull {
		ref = ref.Nullable()
	}
	if info.numeric {
		if named != "Int" && named != "Float" {
			return nil, &UnsupportedScalarError{Entity: e.Name, Field: f.Name, Scalar: named, Capability: c, Position: f.Position}
		}
		return ref, nil
	}
	t := b.graph.Type(named)
	if t == nil {
		return nil, &UnsupportedScalarError{Entity: e.Name, Field: f.Name, Scalar: named, Capability: c, Position: f.Position}
	}
	switch t.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum, schema.TypeKindInputObject:
		return ref, nil
	case schema.TypeKindObject:
		// Nested entities reuse their own derived input for the same
		// capability.
		if nested := b.caps.Entity(named); nested != nil && nested.Has(c) {
			return ref.Rename(c.TypeName(named)), nil
		}
	}
	return nil, &UnsupportedScalarError{Entity: e.Name, Field: f.Name, Scalar: named, Capability: c, Position: f.Position}
}

// filterOperand returns the name of the comparison wrapper used for a field
// of named type under filter or textsearch. Lists are filtered by their
// element type.
func (b *typeBuilder) filterOperand(e *Entity, f *schema.Field, c Capability, named string) (string, error) {
	unsupported := &UnsupportedScalarError{Entity: e.Name, Field: f.Name, Scalar: named, Capability: c, Position: f.Position}
	t := b.graph.Type(named)
	if t == nil {
		return "", unsupported
	}
	wrapper := FilterTypeName(named)
	switch t.Kind {
	case schema.TypeKindScalar:
		if w := b.graph.Type(wrapper); w != nil && w.Kind == schema.TypeKindInputObject {
			return wrapper, nil
		}
	case schema.TypeKindEnum:
		if !b.enumWrappers[named] {
			b.enumWrappers[named] = true
			b.enums = append(b.enums, derivedType{typ: filterWrapper(named), origin: named + " enum filter"})
		}
		return wrapper, nil
	case schema.TypeKindObject:
		if nested := b.caps.Entity(named); nested != nil && nested.Has(Filter) {
			return wrapper, nil
		}
		if w := b.graph.Type(wrapper); w != nil && w.Kind == schema.TypeKindInputObject {
			return wrapper, nil
		}
	}
	return "", unsupported
}
