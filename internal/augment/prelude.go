package augment

import (
	"sync"

	"github.com/hanpama/mongograph/internal/schema"
)

const preludeSDL = `
directive @collection(name: String!, crud: Boolean) on OBJECT
directive @filter on FIELD_DEFINITION
directive @textsearch on FIELD_DEFINITION
directive @insert on FIELD_DEFINITION
directive @set on FIELD_DEFINITION
directive @unset on FIELD_DEFINITION
directive @inc on FIELD_DEFINITION
directive @dec on FIELD_DEFINITION

input Pagination {
  perPage: Int
  page: Int
}

input Sort {
  field: String
  order: Int
}

input TextSearch {
  search: String!
  language: String
  caseSensitive: Boolean
  diacriticSensitive: Boolean
}

scalar Date
scalar ObjectId

"""
Presence flag for unset operations. Only the literal 1 is accepted.
"""
scalar UnsetFlag
`

const (
	paginationType = "Pagination"
	sortType       = "Sort"
	textSearchType = "TextSearch"
	objectIDType   = "ObjectId"
	dateType       = "Date"
	unsetFlagType  = "UnsetFlag"
)

// Operand types that get a prelude comparison wrapper.
var preludeFilterScalars = []string{"Boolean", "Int", "Float", "String", dateType, "ID", objectIDType}

// filterOperators lists the comparison wrapper fields in order. List
// operators take [T].
var filterOperators = []struct {
	name string
	list bool
}{
	{"EQ", false},
	{"GT", false},
	{"GTE", false},
	{"IN", true},
	{"ALL", true},
	{"LT", false},
	{"LTE", false},
	{"NE", false},
	{"NIN", true},
}

// FilterTypeName names the comparison wrapper of operand type t.
func FilterTypeName(t string) string { return t + "Filter" }

func filterWrapper(operand string) *schema.Type {
	t := &schema.Type{Name: FilterTypeName(operand), Kind: schema.TypeKindInputObject}
	for _, op := range filterOperators {
		ref := schema.NamedType(operand)
		if op.list {
			ref = schema.ListType(ref)
		}
		t.InputFields = append(t.InputFields, &schema.InputValue{Name: op.name, Type: ref})
	}
	return t
}

var loadPrelude = sync.OnceValues(func() (*schema.Schema, error) {
	s, err := schema.BuildFromSDL("prelude.graphql", preludeSDL)
	if err != nil {
		return nil, err
	}
	for _, operand := range preludeFilterScalars {
		s = s.WithType(filterWrapper(operand))
	}
	return s, nil
})

// Prelude returns the definitions every augmented graph contains.
func Prelude() *schema.Schema {
	s, err := loadPrelude()
	if err != nil {
		panic("augment: invalid prelude: " + err.Error())
	}
	return s
}

// mergePrelude adds the prelude definitions to base. Identical existing
// definitions are kept; differing ones are name collisions.
func mergePrelude(base *schema.Schema) (*schema.Schema, error) {
	p := Prelude()
	g := base
	var errs ErrorList
	for _, d := range p.Directives {
		existing := g.Directive(d.Name)
		if existing == nil {
			g = g.WithDirective(d)
			continue
		}
		if !schema.SameDirective(existing, d) {
			errs = append(errs, &NameCollisionError{Name: "@" + d.Name, Origin: "prelude directive"})
		}
	}
	for _, t := range p.UserTypes() {
		existing := g.Type(t.Name)
		if existing == nil {
			g = g.WithType(t)
			continue
		}
		if !schema.SameShape(existing, t) {
			errs = append(errs, &NameCollisionError{Name: t.Name, Origin: "prelude", Position: existing.Position})
		}
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return g, nil
}
