package entity

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FieldValue is one named piece of extracted information.
type FieldValue struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Fields is an insertion-ordered mapping of field name to value. Names are
// unique; writing an existing name replaces the value in place (last write
// wins, original position kept).
type Fields struct {
	order []string
	items map[string]FieldValue
}

func NewFields() *Fields {
	return &Fields{
		items: make(map[string]FieldValue),
	}
}

// Set records a field value. Empty names are ignored.
func (f *Fields) Set(name, value string, confidence float64) {
	if name == "" {
		return
	}
	if _, exists := f.items[name]; !exists {
		f.order = append(f.order, name)
	}
	f.items[name] = FieldValue{Name: name, Value: value, Confidence: confidence}
}

func (f *Fields) Get(name string) (FieldValue, bool) {
	fv, ok := f.items[name]
	return fv, ok
}

// Names returns field names in extraction order.
func (f *Fields) Names() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

func (f *Fields) Len() int {
	return len(f.order)
}

// Values returns the field values in extraction order.
func (f *Fields) Values() []FieldValue {
	out := make([]FieldValue, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.items[name])
	}
	return out
}

// ToMap flattens to name -> value, losing order and confidence.
func (f *Fields) ToMap() map[string]string {
	out := make(map[string]string, len(f.order))
	for name, fv := range f.items {
		out[name] = fv.Value
	}
	return out
}

// NonEmpty counts fields whose value has content beyond whitespace.
func (f *Fields) NonEmpty() int {
	n := 0
	for _, fv := range f.items {
		if strings.TrimSpace(fv.Value) != "" {
			n++
		}
	}
	return n
}

// MarshalJSON emits an object keyed by field name, preserving extraction
// order.
func (f *Fields) MarshalJSON() ([]byte, error) {
	if f == nil || len(f.order) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range f.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		fv := f.items[name]
		val, err := json.Marshal(struct {
			Value      string  `json:"value"`
			Confidence float64 `json:"confidence"`
		}{fv.Value, fv.Confidence})
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
