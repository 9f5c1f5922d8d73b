package common

// MetadataKind is the kind of a metadata literal.
type MetadataKind string

const (
	MetadataDate       MetadataKind = "date"
	MetadataAmount     MetadataKind = "amount"
	MetadataPercentage MetadataKind = "percentage"
	MetadataQuantity   MetadataKind = "quantity"
	MetadataOrdinal    MetadataKind = "ordinal"
)

// MetadataKinds lists the kinds in the order they are attached to
// relationships.
var MetadataKinds = []MetadataKind{
	MetadataDate,
	MetadataAmount,
	MetadataPercentage,
	MetadataQuantity,
	MetadataOrdinal,
}

// Metadata maps a kind to the literals found in one scope, in order of
// occurrence. Duplicates are kept.
type Metadata map[MetadataKind][]string

// Add appends a literal of the given kind.
func (m Metadata) Add(kind MetadataKind, value string) {
	m[kind] = append(m[kind], value)
}

// First returns the first literal of a kind or "".
func (m Metadata) First(kind MetadataKind) string {
	if len(m[kind]) == 0 {
		return ""
	}
	return m[kind][0]
}

// Properties flattens the metadata into the property bag attached to a
// relationship: the first literal of each kind that is present.
func (m Metadata) Properties() map[string]string {
	if len(m) == 0 {
		return nil
	}
	props := make(map[string]string)
	for _, kind := range MetadataKinds {
		if v := m.First(kind); v != "" {
			props[string(kind)] = v
		}
	}
	if len(props) == 0 {
		return nil
	}
	return props
}

// Merge appends every literal of other to m, preserving order.
func (m Metadata) Merge(other Metadata) {
	for _, kind := range MetadataKinds {
		for _, v := range other[kind] {
			m.Add(kind, v)
		}
	}
}
