package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// IDer is implemented by expanded references that know their own id.
type IDer interface {
	GetID() string
}

func (d Domain) GetID() string       { return d.ID }
func (p Plot) GetID() string         { return p.ID }
func (p Plant) GetID() string        { return p.ID }
func (o Organization) GetID() string { return o.ID }

// NormalizeID returns the canonical string id of v, whether v is a raw id or
// an expanded reference (struct, pointer or decoded JSON object). Unknown
// shapes yield "".
func NormalizeID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *Domain:
		if t == nil {
			return ""
		}
		return t.ID
	case *Plot:
		if t == nil {
			return ""
		}
		return t.ID
	case *Plant:
		if t == nil {
			return ""
		}
		return t.ID
	case IDer:
		return t.GetID()
	case map[string]any:
		if id, ok := t["_id"]; ok {
			return NormalizeID(id)
		}
		if id, ok := t["id"]; ok {
			return NormalizeID(id)
		}
		return ""
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	}
	return ""
}

// Ref is an id field that accepts either a raw id or an expanded reference
// ({"_id": ...}, {"id": ...}) on decode. It always encodes as a plain string.
type Ref string

func (r *Ref) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("decode reference: %w", err)
	}
	*r = Ref(NormalizeID(v))
	return nil
}

func (r Ref) String() string { return string(r) }
