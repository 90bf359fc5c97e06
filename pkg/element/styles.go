package element

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"gopkg.in/yaml.v3"
)

// Styles is an insertion-ordered map from CSS property name to value.
//
// The zero value is an empty, ready-to-use map. Styles values share their
// backing storage when copied; use [Styles.Clone] before mutating a copy.
type Styles struct {
	keys   []string
	values map[string]string
}

// NewStyles builds Styles from alternating key/value pairs.
// A trailing key without a value is ignored.
func NewStyles(kv ...string) Styles {
	var s Styles
	for i := 0; i+1 < len(kv); i += 2 {
		s.Set(kv[i], kv[i+1])
	}
	return s
}

// Len returns the number of declarations.
func (s Styles) Len() int { return len(s.keys) }

// Get returns the value for key.
func (s Styles) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Value returns the value for key, or "" when absent.
func (s Styles) Value(key string) string { return s.values[key] }

// Keys returns the property names in insertion order.
func (s Styles) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Each calls fn for every declaration in insertion order.
func (s Styles) Each(fn func(key, value string)) {
	for _, k := range s.keys {
		fn(k, s.values[k])
	}
}

// Set assigns value to key. An existing key keeps its position.
func (s *Styles) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Delete removes key if present.
func (s *Styles) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i:i], s.keys[i+1:]...)
			break
		}
	}
}

// IsZero reports whether s holds no declarations.
func (s Styles) IsZero() bool { return len(s.keys) == 0 }

// Clone returns a deep copy. Clones of empty maps are the zero value.
func (s Styles) Clone() Styles {
	if len(s.keys) == 0 {
		return Styles{}
	}
	out := Styles{
		keys:   make([]string, len(s.keys)),
		values: make(map[string]string, len(s.keys)),
	}
	copy(out.keys, s.keys)
	for k, v := range s.values {
		out.values[k] = v
	}
	return out
}

// Merged returns a new Styles holding s overlaid with patch.
// Keys only in s keep their value and position; keys in patch overwrite
// existing values in place or are appended in patch order.
func (s Styles) Merged(patch Styles) Styles {
	out := s.Clone()
	patch.Each(out.Set)
	return out
}

// Inline joins the declarations as "prop: value" pairs separated by "; ",
// in insertion order, with property names in CSS spelling.
func (s Styles) Inline() string {
	var b strings.Builder
	for i, k := range s.keys {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(CSSName(k))
		b.WriteString(": ")
		b.WriteString(s.values[k])
	}
	return b.String()
}

// Equal reports whether both maps hold the same declarations in the same order.
func (s Styles) Equal(other Styles) bool {
	if len(s.keys) != len(other.keys) {
		return false
	}
	for i, k := range s.keys {
		if other.keys[i] != k || other.values[k] != s.values[k] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the declarations as a JSON object in insertion order.
func (s Styles) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(s.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the order keys appear in.
// null decodes to an empty map. Numbers and booleans are stored in their
// textual form; nested objects and arrays are rejected.
func (s *Styles) UnmarshalJSON(data []byte) error {
	*s = Styles{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("styles: %w", err)
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("styles: expected object, got %v", tok)
	}

	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return fmt.Errorf("styles: %w", err)
		}
		key, _ := kt.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("styles: %q: %w", key, err)
		}
		value, ok, err := scalarString(raw)
		if err != nil {
			return fmt.Errorf("styles: %q: %w", key, err)
		}
		if ok {
			s.Set(key, value)
		}
	}
	_, err = dec.Token()
	return err
}

// MarshalBSONValue stores the declarations as an ordered BSON document.
func (s Styles) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d := make(bson.D, 0, len(s.keys))
	for _, k := range s.keys {
		d = append(d, bson.E{Key: k, Value: s.values[k]})
	}
	return bson.MarshalValue(d)
}

// UnmarshalBSONValue reads an embedded document in field order.
// Documents written by older clients may hold numeric values; those are
// converted to strings.
func (s *Styles) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*s = Styles{}
	if t == bsontype.Null || t == bsontype.Undefined {
		return nil
	}
	var d bson.D
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&d); err != nil {
		return fmt.Errorf("styles: %w", err)
	}
	for _, e := range d {
		value, ok, err := scalarString(e.Value)
		if err != nil {
			return fmt.Errorf("styles: %q: %w", e.Key, err)
		}
		if ok {
			s.Set(e.Key, value)
		}
	}
	return nil
}

// UnmarshalYAML reads a mapping node in document order.
func (s *Styles) UnmarshalYAML(n *yaml.Node) error {
	*s = Styles{}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("styles: line %d: expected mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("styles: line %d: %q must be a scalar", v.Line, k.Value)
		}
		if v.Tag == "!!null" {
			continue
		}
		s.Set(k.Value, v.Value)
	}
	return nil
}

// MarshalYAML writes the declarations as an ordered mapping.
func (s Styles) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range s.keys {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: s.values[k], Style: yaml.DoubleQuotedStyle},
		)
	}
	return n, nil
}

// scalarString converts a decoded scalar to its CSS text.
// ok is false for null values, which are skipped.
func scalarString(v any) (value string, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return x, true, nil
	case json.Number:
		return x.String(), true, nil
	case bool:
		return strconv.FormatBool(x), true, nil
	case int32:
		return strconv.FormatInt(int64(x), 10), true, nil
	case int64:
		return strconv.FormatInt(x, 10), true, nil
	case int:
		return strconv.Itoa(x), true, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true, nil
	default:
		return "", false, fmt.Errorf("value must be a string, got %T", v)
	}
}
