package augment

import (
	"github.com/hanpama/mongograph/internal/schema"
)

// Merge adds every derived type to g. A derived name already present in g is
// a NameCollisionError unless the existing definition has the same shape, in
// which case the existing one is kept.
func Merge(g *schema.Schema, d *DerivedTypes) (*schema.Schema, error) {
	var errs ErrorList
	added := make([]*schema.Type, 0, len(d.ordered))
	seen := map[string]*schema.Type{}
	for _, dt := range d.ordered {
		existing := g.Type(dt.typ.Name)
		if existing == nil {
			existing = seen[dt.typ.Name]
		}
		if existing == nil {
			seen[dt.typ.Name] = dt.typ
			added = append(added, dt.typ)
			continue
		}
		if !schema.SameShape(existing, dt.typ) {
			errs = append(errs, &NameCollisionError{Name: dt.typ.Name, Origin: dt.origin, Position: existing.Position})
		}
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return g.WithTypes(added...), nil
}
