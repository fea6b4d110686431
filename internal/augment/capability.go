package augment

// Capability is a field-level marker that derives an auxiliary type.
type Capability int

const (
	Filter Capability = iota
	TextSearch
	Insert
	Set
	Unset
	Inc
	Dec
)

// Capabilities lists every capability in derivation order.
var Capabilities = []Capability{Filter, TextSearch, Insert, Set, Unset, Inc, Dec}

type fieldMapping int

const (
	// wrapInFilter replaces the element type T with its comparison wrapper.
	wrapInFilter fieldMapping = iota
	// keepType keeps the field type; insert keeps non-null markers too.
	keepType
	// unsetFlag replaces the type with the UnsetFlag presence marker.
	unsetFlag
)

type capabilityInfo struct {
	marker   string
	suffix   string
	mapping  fieldMapping
	keepNull bool
	numeric  bool // kept types are limited to Int and Float
}

var capabilityTable = [...]capabilityInfo{
	Filter:     {marker: "filter", suffix: "Filter", mapping: wrapInFilter},
	TextSearch: {marker: "textsearch", suffix: "Textsearch", mapping: wrapInFilter},
	Insert:     {marker: "insert", suffix: "Insert", mapping: keepType, keepNull: true},
	Set:        {marker: "set", suffix: "Set", mapping: keepType},
	Unset:      {marker: "unset", suffix: "Unset", mapping: unsetFlag},
	Inc:        {marker: "inc", suffix: "Inc", mapping: keepType, numeric: true},
	Dec:        {marker: "dec", suffix: "Dec", mapping: keepType, numeric: true},
}

// String returns the marker directive name.
func (c Capability) String() string { return capabilityTable[c].marker }

// Suffix is appended to the entity name to name the derived type.
func (c Capability) Suffix() string { return capabilityTable[c].suffix }

// TypeName names the type derived for entity.
func (c Capability) TypeName(entity string) string { return entity + c.Suffix() }

// CapabilityForMarker maps a directive name to its capability.
func CapabilityForMarker(name string) (Capability, bool) {
	for _, c := range Capabilities {
		if capabilityTable[c].marker == name {
			return c, true
		}
	}
	return 0, false
}

// updateCapabilities are the payloads accepted by the generated update
// operations. Unset is not among them.
var updateCapabilities = []Capability{Set, Inc, Dec}
