package augment

import (
	"fmt"

	"github.com/hanpama/mongograph/internal/schema"
)

const collectionDirective = "collection"

// Entity is a type marked with @collection together with its marked fields.
type Entity struct {
	Name           string
	CollectionName string
	CRUD           bool
	Position       *schema.Position

	fields map[Capability][]*schema.Field
}

// Fields returns the fields carrying c in declaration order.
func (e *Entity) Fields(c Capability) []*schema.Field { return e.fields[c] }

// Has reports whether at least one field carries c.
func (e *Entity) Has(c Capability) bool { return len(e.fields[c]) > 0 }

// CapabilityMap holds the entities of a graph in declaration order.
type CapabilityMap struct {
	Entities []*Entity
	index    map[string]*Entity
}

// Entity returns the named entity or nil.
func (m *CapabilityMap) Entity(name string) *Entity {
	if m == nil {
		return nil
	}
	return m.index[name]
}

// Scan extracts the @collection declarations and field capability markers of
// g. Types without @collection are not entities and their field markers are
// ignored.
func Scan(g *schema.Schema) (*CapabilityMap, error) {
	m := &CapabilityMap{index: map[string]*Entity{}}
	var errs ErrorList
	for _, t := range g.UserTypes() {
		uses := collectionUses(t)
		if len(uses) == 0 {
			continue
		}
		if t.Kind != schema.TypeKindObject {
			errs = append(errs, &ConfigurationError{
				Type: t.Name, Directive: collectionDirective, Position: uses[0].Position,
				Message: fmt.Sprintf("only object types can be collections, got %s", t.Kind),
			})
			continue
		}
		if len(uses) > 1 {
			errs = append(errs, &ConfigurationError{
				Type: t.Name, Directive: collectionDirective, Position: uses[1].Position,
				Message: "declared more than once",
			})
			continue
		}
		e, err := scanEntity(t, uses[0])
		if err != nil {
			errs = append(errs, err...)
			continue
		}
		m.Entities = append(m.Entities, e)
		m.index[e.Name] = e
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return m, nil
}

func collectionUses(t *schema.Type) []*schema.DirectiveUse {
	var uses []*schema.DirectiveUse
	for _, d := range t.Directives {
		if d.Name == collectionDirective {
			uses = append(uses, d)
		}
	}
	return uses
}

func scanEntity(t *schema.Type, use *schema.DirectiveUse) (*Entity, ErrorList) {
	var errs ErrorList
	configErr := func(msg string) {
		errs = append(errs, &ConfigurationError{
			Type: t.Name, Directive: collectionDirective, Message: msg, Position: use.Position,
		})
	}

	e := &Entity{Name: t.Name, Position: t.Position, fields: map[Capability][]*schema.Field{}}
	hasName := false
	for _, arg := range use.Arguments {
		switch arg.Name {
		case "name":
			hasName = true
			name, ok := getStringValue(arg.Value)
			if !ok {
				configErr("argument \"name\" must be a string")
				continue
			}
			if name == "" {
				configErr("argument \"name\" must not be empty")
				continue
			}
			e.CollectionName = name
		case "crud":
			crud, ok := getBoolValue(arg.Value)
			if !ok {
				configErr("argument \"crud\" must be a boolean")
				continue
			}
			e.CRUD = crud
		default:
			configErr(fmt.Sprintf("unknown argument %q", arg.Name))
		}
	}
	if !hasName {
		configErr("missing required argument \"name\"")
	}

	for _, f := range t.Fields {
		for _, d := range f.Directives {
			c, ok := CapabilityForMarker(d.Name)
			if !ok {
				continue
			}
			if len(d.Arguments) > 0 {
				errs = append(errs, &ConfigurationError{
					Type: t.Name, Field: f.Name, Directive: d.Name, Position: d.Position,
					Message: "field markers take no arguments",
				})
				continue
			}
			if contains(e.fields[c], f) {
				continue
			}
			e.fields[c] = append(e.fields[c], f)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return e, nil
}

func contains(fields []*schema.Field, f *schema.Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}

func getStringValue(v *schema.Value) (string, bool) {
	if v == nil || v.Kind != schema.ValueKindString {
		return "", false
	}
	return v.Raw, true
}

func getBoolValue(v *schema.Value) (bool, bool) {
	if v == nil || v.Kind != schema.ValueKindBoolean {
		return false, false
	}
	return v.Raw == "true", true
}
