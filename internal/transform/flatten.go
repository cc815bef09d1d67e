// Package transform converts between the external profile representation, the
// dashboard view, and the flat dot-path form used for partial updates.
package transform

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind classifies a JSON value for flattening.
type Kind int

// Value kinds. Only mappings are descended into.
const (
	KindNull Kind = iota
	KindScalar
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// kindOf classifies raw JSON by its first significant byte.
func kindOf(raw []byte) Kind {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return KindNull
	}
	switch trimmed[0] {
	case '{':
		return KindMapping
	case '[':
		return KindSequence
	case 'n':
		return KindNull
	default:
		return KindScalar
	}
}

// Mapping is a JSON object whose key order is preserved.
type Mapping = orderedmap.OrderedMap[string, Value]

// Value is a decoded JSON value tagged with its Kind. Mapping is set for
// KindMapping; Raw holds the literal JSON for every other kind.
type Value struct {
	Kind    Kind
	Raw     json.RawMessage
	Mapping *Mapping
}

// UnmarshalJSON decodes and tags a JSON value, keeping object key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	v.Kind = kindOf(data)
	if v.Kind != KindMapping {
		v.Raw = append(json.RawMessage(nil), data...)
		v.Mapping = nil
		return nil
	}
	m := orderedmap.New[string, Value]()
	if err := m.UnmarshalJSON(data); err != nil {
		return err
	}
	v.Raw = nil
	v.Mapping = m
	return nil
}

// MarshalJSON encodes the value back to JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindMapping && v.Mapping != nil {
		return v.Mapping.MarshalJSON()
	}
	if len(v.Raw) == 0 {
		return []byte("null"), nil
	}
	return v.Raw, nil
}

// ParseUpdate decodes a partial update payload. The payload must be a JSON object.
func ParseUpdate(data []byte) (*Mapping, error) {
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding update payload: %w", err)
	}
	if v.Kind != KindMapping {
		return nil, fmt.Errorf("update payload must be a JSON object, got %s", v.Kind)
	}
	return v.Mapping, nil
}

// FlatUpdate maps dot paths to leaf JSON values, in first-seen order.
type FlatUpdate = orderedmap.OrderedMap[string, json.RawMessage]

// FlattenForUpdate turns a nested update into dot-path assignments.
// Mappings are descended into; scalars, nulls and sequences are emitted as
// leaves. An empty mapping contributes nothing.
func FlattenForUpdate(update *Mapping) *FlatUpdate {
	flat := orderedmap.New[string, json.RawMessage]()
	if update != nil {
		flattenInto(flat, update, "")
	}
	return flat
}

func flattenInto(flat *FlatUpdate, m *Mapping, prefix string) {
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		path := prefix + pair.Key
		switch pair.Value.Kind {
		case KindMapping:
			if pair.Value.Mapping != nil {
				flattenInto(flat, pair.Value.Mapping, path+".")
			}
		case KindNull:
			flat.Set(path, json.RawMessage("null"))
		case KindScalar, KindSequence:
			flat.Set(path, pair.Value.Raw)
		}
	}
}
