package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// ValueKind enumerates the closed set of JSON value shapes the engine can
// carry inside an opaque document.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

// Value is a single JSON value: string, number, bool, object, array, or null.
// The engine treats entity payloads as trees of Values so it never depends on
// domain schemas. The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	obj  Document
	arr  []Value
}

// Document is an opaque JSON object keyed by field name. It is the payload
// representation for every synchronized entity.
type Document map[string]Value

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// String wraps s as a JSON string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps n as a JSON number value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool wraps b as a JSON boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Object wraps d as a JSON object value.
func Object(d Document) Value { return Value{kind: KindObject, obj: d} }

// Array wraps vs as a JSON array value.
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

// Time wraps t as an ISO-8601 string value with fractional seconds, the
// timestamp encoding used on the wire.
func Time(t time.Time) Value { return String(t.UTC().Format(TimeLayout)) }

// TimeLayout is the wire format for timestamps: ISO-8601 / RFC 3339 with
// fractional seconds, always UTC.
const TimeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// Kind reports the shape of the value.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload. ok is false when the value is not a
// string.
func (v Value) AsString() (s string, ok bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsNumber returns the numeric payload. ok is false when the value is not a
// number.
func (v Value) AsNumber() (n float64, ok bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// AsInt returns the numeric payload truncated to int64. ok is false when the
// value is not a number or does not fit.
func (v Value) AsInt() (n int64, ok bool) {
	if v.kind != KindNumber || math.IsNaN(v.num) || math.IsInf(v.num, 0) {
		return 0, false
	}
	return int64(v.num), true
}

// AsBool returns the boolean payload. ok is false when the value is not a
// bool.
func (v Value) AsBool() (b bool, ok bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsObject returns the object payload. ok is false when the value is not an
// object.
func (v Value) AsObject() (d Document, ok bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// AsArray returns the array payload. ok is false when the value is not an
// array.
func (v Value) AsArray() (vs []Value, ok bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsTime parses the value as an ISO-8601 timestamp string. ok is false when
// the value is not a string or does not parse.
func (v Value) AsTime() (t time.Time, ok bool) {
	s, ok := v.AsString()
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Equal reports deep equality of two values. Objects compare by key set and
// per-key equality; arrays compare element-wise in order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, val := range v.obj {
			other, present := o.obj[k]
			if !present || !val.Equal(other) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindObject:
		return json.Marshal(map[string]Value(v.obj))
	case KindArray:
		return json.Marshal(v.arr)
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

// UnmarshalJSON implements json.Unmarshaler. Any well-formed JSON value
// decodes into exactly one of the six shapes.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}

func fromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case string:
		return String(t)
	case float64:
		return Number(t)
	case bool:
		return Bool(t)
	case map[string]any:
		d := make(Document, len(t))
		for k, val := range t {
			d[k] = fromAny(val)
		}
		return Object(d)
	case []any:
		vs := make([]Value, 0, len(t))
		for _, val := range t {
			vs = append(vs, fromAny(val))
		}
		return Array(vs...)
	}
	return Null()
}

// DecodeDocument parses raw JSON into a Document. The top-level value must be
// an object.
func DecodeDocument(data []byte) (Document, error) {
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	d, ok := v.AsObject()
	if !ok {
		return nil, fmt.Errorf("decode document: top-level value is not an object")
	}
	return d, nil
}

// Encode serializes the document back to JSON bytes.
func (d Document) Encode() ([]byte, error) {
	data, err := json.Marshal(map[string]Value(d))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// GetString returns the string field named key, or "" when absent or not a
// string.
func (d Document) GetString(key string) string {
	s, _ := d[key].AsString()
	return s
}

// GetBool returns the boolean field named key, or false when absent or not a
// bool.
func (d Document) GetBool(key string) bool {
	b, _ := d[key].AsBool()
	return b
}

// GetInt returns the numeric field named key truncated to int64, or 0 when
// absent or not a number.
func (d Document) GetInt(key string) int64 {
	n, _ := d[key].AsInt()
	return n
}

// GetTime returns the timestamp field named key. ok is false when the field
// is absent or not an ISO-8601 string.
func (d Document) GetTime(key string) (time.Time, bool) {
	return d[key].AsTime()
}

// Keys returns the document's field names in sorted order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v.clone()
	}
	return out
}

func (v Value) clone() Value {
	switch v.kind {
	case KindObject:
		return Object(v.obj.Clone())
	case KindArray:
		vs := make([]Value, len(v.arr))
		for i := range v.arr {
			vs[i] = v.arr[i].clone()
		}
		return Array(vs...)
	default:
		return v
	}
}
