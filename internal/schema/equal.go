package schema

// SameShape reports whether two type definitions are interchangeable: same
// name and kind, the same ordered fields with equal type references and
// arguments, and the same enum values, members and interfaces. Descriptions,
// directive uses and positions are ignored.
func SameShape(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Kind != b.Kind {
		return false
	}
	if !sameStrings(a.Interfaces, b.Interfaces) || !sameStrings(a.PossibleTypes, b.PossibleTypes) {
		return false
	}
	if len(a.Fields) != len(b.Fields) || len(a.InputFields) != len(b.InputFields) || len(a.EnumValues) != len(b.EnumValues) {
		return false
	}
	for i := range a.Fields {
		fa, fb := a.Fields[i], b.Fields[i]
		if fa.Name != fb.Name || !fa.Type.Equal(fb.Type) || !sameInputValues(fa.Arguments, fb.Arguments) {
			return false
		}
	}
	if !sameInputValues(a.InputFields, b.InputFields) {
		return false
	}
	for i := range a.EnumValues {
		if a.EnumValues[i].Name != b.EnumValues[i].Name {
			return false
		}
	}
	return true
}

// SameDirective reports whether two directive definitions declare the same
// arguments, locations and repeatability.
func SameDirective(a, b *Directive) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name &&
		a.IsRepeatable == b.IsRepeatable &&
		sameStrings(a.Locations, b.Locations) &&
		sameInputValues(a.Arguments, b.Arguments)
}

func sameInputValues(a, b []*InputValue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !a[i].Type.Equal(b[i].Type) || !a[i].DefaultValue.Equal(b[i].DefaultValue) {
			return false
		}
	}
	return true
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
