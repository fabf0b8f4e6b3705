package contract

import (
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/transition/document"
)

// ValidateProperties checks document properties against the schema and
// returns the name of the first offending property.
func (dt *DocumentType) ValidateProperties(props []document.Property) (string, bool) {
	present := make(map[string]bool, len(props))
	for _, p := range props {
		schema, ok := dt.Property(p.Name)
		if !ok || present[p.Name] || !schema.accepts(p.Value) {
			return p.Name, false
		}
		present[p.Name] = true
	}
	for _, schema := range dt.Properties {
		if schema.Required && !present[schema.Name] {
			return schema.Name, false
		}
	}
	return "", true
}

func (s *PropertySchema) accepts(v []byte) bool {
	maxLen := s.MaxLength
	if maxLen == 0 {
		maxLen = DefaultMaxLength
	}
	switch s.Type {
	case String, Bytes:
		return uint32(len(v)) <= maxLen
	case Integer:
		return len(v) == 8
	case IdentifierType:
		return len(v) == inter.IdentifierLength
	case Bool:
		return len(v) == 1 && v[0] <= 1
	}
	return false
}

// CompatibleUpdate checks that next can replace prev without invalidating
// stored documents: no document type is removed and indices and property
// types of existing types stay unchanged. It returns the first offending
// document type and field.
func CompatibleUpdate(prev, next *DataContract) (docType, field string, ok bool) {
	for i := range prev.DocumentTypes {
		old := &prev.DocumentTypes[i]
		cur, exists := next.DocumentType(old.Name)
		if !exists {
			return old.Name, "document type", false
		}
		if len(old.Indices) != len(cur.Indices) {
			return old.Name, "indices", false
		}
		for j, idx := range old.Indices {
			if !sameIndex(idx, cur.Indices[j]) {
				return old.Name, "indices", false
			}
		}
		for _, p := range old.Properties {
			np, exists := cur.Property(p.Name)
			if !exists || np.Type != p.Type {
				return old.Name, "property " + p.Name, false
			}
		}
		if old.KeepsHistory != cur.KeepsHistory {
			return old.Name, "keepsHistory", false
		}
	}
	if len(next.Tokens) < len(prev.Tokens) {
		return "", "tokens", false
	}
	return "", "", true
}

func sameIndex(a, b Index) bool {
	if a.Name != b.Name || a.Unique != b.Unique || a.Contested != b.Contested || len(a.Properties) != len(b.Properties) {
		return false
	}
	for i := range a.Properties {
		if a.Properties[i] != b.Properties[i] {
			return false
		}
	}
	return true
}
