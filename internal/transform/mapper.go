package transform

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/jonathan/profile-bff/internal/types"
)

// Naming decides the top-level key names of a rendered view.
type Naming interface {
	Key(field string) string
}

type passThrough struct{}

func (passThrough) Key(field string) string { return field }

// PassThrough keeps the external field names.
func PassThrough() Naming { return passThrough{} }

type renaming map[string]string

func (r renaming) Key(field string) string {
	if to, ok := r[field]; ok && to != "" {
		return to
	}
	return field
}

// Renaming maps selected top-level fields to new names. Fields not listed
// keep their external name. Two fields may not share a target, and a target
// may not be a view key that keeps its own name, since either would drop a
// field from the rendered view.
func Renaming(renames map[string]string) (Naming, error) {
	r := make(renaming, len(renames))
	owner := make(map[string]string, len(renames))
	for from, to := range renames {
		if to == "" || to == from {
			continue
		}
		if prev, dup := owner[to]; dup {
			first, second := prev, from
			if second < first {
				first, second = second, first
			}
			return nil, fmt.Errorf("fields %q and %q are both renamed to %q", first, second, to)
		}
		owner[to] = from
		r[from] = to
	}
	for to, from := range owner {
		if !viewKeys[to] {
			continue
		}
		if _, movedAway := r[to]; !movedAway {
			return nil, fmt.Errorf("field %q cannot be renamed to %q: the view already has that key", from, to)
		}
	}
	if len(r) == 0 {
		return PassThrough(), nil
	}
	return r, nil
}

// viewKeys are the top-level JSON keys a ViewProfile can render.
var viewKeys = jsonKeys(reflect.TypeOf(types.ViewProfile{}))

func jsonKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" {
			name = t.Field(i).Name
		}
		if name != "-" {
			keys[name] = true
		}
	}
	return keys
}

// Mapper renders view profiles with a fixed naming strategy.
type Mapper struct {
	naming Naming
}

// NewMapper returns a Mapper using naming, or PassThrough when naming is nil.
func NewMapper(naming Naming) *Mapper {
	if naming == nil {
		naming = PassThrough()
	}
	return &Mapper{naming: naming}
}

// Render encodes view as a JSON object with keys named by the mapper's
// strategy. Key order follows the view's declared field order.
func (m *Mapper) Render(view *types.ViewProfile) (json.RawMessage, error) {
	if view == nil {
		return json.RawMessage("null"), nil
	}
	data, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("encoding view: %w", err)
	}
	if _, ok := m.naming.(passThrough); ok {
		return data, nil
	}

	fields := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, fields); err != nil {
		return nil, fmt.Errorf("decoding view fields: %w", err)
	}
	renamed := orderedmap.New[string, json.RawMessage]()
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		key := m.naming.Key(pair.Key)
		if _, taken := renamed.Get(key); taken {
			return nil, fmt.Errorf("renaming %q collides with an existing key %q", pair.Key, key)
		}
		renamed.Set(key, pair.Value)
	}
	out, err := json.Marshal(renamed)
	if err != nil {
		return nil, fmt.Errorf("encoding renamed view: %w", err)
	}
	return out, nil
}
