package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the shape of a Value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = map[Kind]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is an immutable JSON-like value. Numbers keep their source text so
// they print exactly as they appeared in the model.
type Value struct {
	kind   Kind
	b      bool
	s      string
	items  []Value
	keys   []string
	fields map[string]Value
}

// Null returns the null value
func Null() Value {
	return Value{kind: KindNull}
}

// Bool wraps a boolean
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number wraps a number given in its textual form
func Number(text string) Value {
	return Value{kind: KindNumber, s: text}
}

// String wraps a string
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Array wraps a list of values
func Array(items ...Value) Value {
	return Value{kind: KindArray, items: items}
}

// Object builds an object whose fields keep the order of keys.
func Object(keys []string, fields map[string]Value) Value {
	return Value{kind: KindObject, keys: keys, fields: fields}
}

// ParseJSON parses a JSON document into a Value.
func ParseJSON(text string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("unexpected data after top-level JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t.String()), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Array(items...), nil
		case '{':
			keys := []string{}
			fields := make(map[string]Value)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key %v", keyTok)
				}
				field, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				if _, dup := fields[key]; !dup {
					keys = append(keys, key)
				}
				fields[key] = field
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Object(keys, fields), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}

// Kind returns the value's kind
func (v Value) Kind() Kind {
	return v.kind
}

// Len returns the number of elements of an array or fields of an object.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.keys)
	}
	return 0
}

// Items returns the elements of an array.
func (v Value) Items() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.items, true
}

// Keys returns the field names of an object in document order.
func (v Value) Keys() []string {
	return append([]string(nil), v.keys...)
}

// Index returns the i-th element of an array.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Field returns the named field of an object.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	field, ok := v.fields[name]
	return field, ok
}

// Truthy coerces the value to a boolean. Numbers are true when non-zero and
// strings must spell a boolean; arrays and objects cannot be coerced.
func (v Value) Truthy() (bool, error) {
	switch v.kind {
	case KindNull:
		return false, nil
	case KindBool:
		return v.b, nil
	case KindNumber:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return false, err
		}
		return f != 0, nil
	case KindString:
		return strconv.ParseBool(v.s)
	}
	return false, fmt.Errorf("cannot convert %s to bool", v.kind)
}

// Float coerces a number or a numeric string to float64.
func (v Value) Float() (float64, error) {
	switch v.kind {
	case KindNumber:
		return strconv.ParseFloat(v.s, 64)
	case KindString:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return 0, err
		}
		// JSON has no NaN or infinity, so text spelling them is not numeric.
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%q is not a finite number", v.s)
		}
		return f, nil
	}
	return 0, fmt.Errorf("cannot convert %s to number", v.kind)
}

// Text returns the value as it is written to the output: strings verbatim,
// numbers in their source form, null as the empty string, and arrays or
// objects as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber, KindString:
		return v.s
	}
	data, _ := v.MarshalJSON()
	return string(data)
}

func (v Value) String() string {
	return v.Text()
}

// MarshalJSON encodes the value as compact JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	if err := v.writeJSON(&b); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func (v Value) writeJSON(b *strings.Builder) error {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		b.WriteString(v.s)
	case KindString:
		data, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		b.Write(data)
	case KindArray:
		b.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := item.writeJSON(b); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				b.WriteByte(',')
			}
			data, err := json.Marshal(key)
			if err != nil {
				return err
			}
			b.Write(data)
			b.WriteByte(':')
			if err := v.fields[key].writeJSON(b); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	}
	return nil
}
