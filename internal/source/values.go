package source

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ID is an entity identifier as it appears in the export.
//
// The vendor emits identifiers both as JSON strings and as JSON numbers, so
// IDs are compared by their canonical text. Identifiers are unique within an
// entity kind but not across kinds.
type ID struct {
	text    string
	numeric bool
}

// StringID returns the ID whose canonical text is s.
func StringID(s string) ID {
	return ID{text: s}
}

// NumberID returns the ID for the JSON number literal n.
func NumberID(n int64) ID {
	return ID{text: strconv.FormatInt(n, 10), numeric: true}
}

// UnmarshalJSON accepts strings and numbers. Any other JSON value decodes to
// the empty ID.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*id = ID{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &id.text)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		id.text = string(data)
		id.numeric = true
	}
	return nil
}

// String returns the canonical text of the identifier.
func (id ID) String() string {
	return id.text
}

// Present reports whether the identifier carries a usable value. Empty
// strings and a numeric zero are treated as absent references.
func (id ID) Present() bool {
	if id.text == "" {
		return false
	}
	if id.numeric {
		f, err := strconv.ParseFloat(id.text, 64)
		return err != nil || f != 0
	}
	return true
}

// Equal reports whether both identifiers have the same canonical text.
func (id ID) Equal(other ID) bool {
	return id.text == other.text
}

// Scalar holds a free-form JSON scalar (quantities, tags) rendered as text.
type Scalar struct {
	text string
	set  bool
}

// ScalarOf returns a set Scalar with the given text.
func ScalarOf(s string) Scalar {
	return Scalar{text: s, set: true}
}

// UnmarshalJSON keeps strings and numbers verbatim and renders booleans the
// way the platform's importer expects them. Null, objects and arrays leave
// the scalar unset.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = Scalar{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &s.text); err != nil {
			return err
		}
		s.set = true
	case 't':
		*s = ScalarOf("True")
	case 'f':
		*s = ScalarOf("False")
	case 'n', '{', '[':
	default:
		*s = ScalarOf(string(data))
	}
	return nil
}

// String returns the scalar text, or "" when unset.
func (s Scalar) String() string {
	return s.text
}

// IsSet reports whether the field was present with a scalar value.
func (s Scalar) IsSet() bool {
	return s.set
}

// Price is an amount in minor currency units (cents).
type Price struct {
	minor float64
	set   bool
}

// PriceOf returns a set price of minor units.
func PriceOf(minor float64) Price {
	return Price{minor: minor, set: true}
}

// UnmarshalJSON accepts numbers and numeric strings; anything else leaves the
// price unset.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*p = Price{}
	text := string(data)
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	*p = PriceOf(f)
	return nil
}

// IsZero reports whether the price is absent or zero.
func (p Price) IsZero() bool {
	return !p.set || p.minor == 0
}

// Major returns the price in major currency units.
func (p Price) Major() float64 {
	return p.minor / 100
}

// isObject reports whether data holds a JSON object.
func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

// List is a JSON array of T. Values that are not arrays decode to an empty
// list, and elements that do not fit T decode to the zero T.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	*l = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(List[T], len(raw))
	for i, elem := range raw {
		if err := json.Unmarshal(elem, &out[i]); err != nil {
			var zero T
			out[i] = zero
		}
	}
	*l = out
	return nil
}
