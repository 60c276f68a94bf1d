package nt

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the type held by a Value.
type Kind int

const (
	KindUnassigned Kind = iota
	KindBoolean
	KindDouble
	KindString
	KindBooleanArray
	KindDoubleArray
	KindStringArray
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBooleanArray:
		return "boolean[]"
	case KindDoubleArray:
		return "double[]"
	case KindStringArray:
		return "string[]"
	default:
		return "unassigned"
	}
}

// Value is an immutable table entry. The zero Value is unassigned.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	text    string
	bools   []bool
	numbers []float64
	texts   []string
}

func BooleanValue(v bool) Value   { return Value{kind: KindBoolean, boolean: v} }
func DoubleValue(v float64) Value { return Value{kind: KindDouble, number: v} }
func StringValue(v string) Value  { return Value{kind: KindString, text: v} }

func BooleanArrayValue(v []bool) Value {
	return Value{kind: KindBooleanArray, bools: append([]bool(nil), v...)}
}

func DoubleArrayValue(v []float64) Value {
	return Value{kind: KindDoubleArray, numbers: append([]float64(nil), v...)}
}

func StringArrayValue(v []string) Value {
	return Value{kind: KindStringArray, texts: append([]string(nil), v...)}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) Boolean() (bool, bool) { return v.boolean, v.kind == KindBoolean }

func (v Value) Double() (float64, bool) { return v.number, v.kind == KindDouble }

func (v Value) Text() (string, bool) { return v.text, v.kind == KindString }

// DoubleArray returns a copy of the array so callers cannot mutate cached entries.
func (v Value) DoubleArray() ([]float64, bool) {
	if v.kind != KindDoubleArray {
		return nil, false
	}
	return append([]float64(nil), v.numbers...), true
}

func (v Value) BooleanArray() ([]bool, bool) {
	if v.kind != KindBooleanArray {
		return nil, false
	}
	return append([]bool(nil), v.bools...), true
}

func (v Value) StringArray() ([]string, bool) {
	if v.kind != KindStringArray {
		return nil, false
	}
	return append([]string(nil), v.texts...), true
}

// Equal reports whether two values have the same kind and contents.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBoolean:
		return v.boolean == other.boolean
	case KindDouble:
		return v.number == other.number
	case KindString:
		return v.text == other.text
	case KindBooleanArray:
		if len(v.bools) != len(other.bools) {
			return false
		}
		for i := range v.bools {
			if v.bools[i] != other.bools[i] {
				return false
			}
		}
	case KindDoubleArray:
		if len(v.numbers) != len(other.numbers) {
			return false
		}
		for i := range v.numbers {
			if v.numbers[i] != other.numbers[i] {
				return false
			}
		}
	case KindStringArray:
		if len(v.texts) != len(other.texts) {
			return false
		}
		for i := range v.texts {
			if v.texts[i] != other.texts[i] {
				return false
			}
		}
	}
	return true
}

// EncodeValue renders v as the JSON payload stored by every networked backend.
func EncodeValue(v Value) ([]byte, error) {
	switch v.kind {
	case KindBoolean:
		return json.Marshal(v.boolean)
	case KindDouble:
		return json.Marshal(v.number)
	case KindString:
		return json.Marshal(v.text)
	case KindBooleanArray:
		return json.Marshal(nonNil(v.bools))
	case KindDoubleArray:
		return json.Marshal(nonNil(v.numbers))
	case KindStringArray:
		return json.Marshal(nonNil(v.texts))
	default:
		return nil, fmt.Errorf("encode %s value", v.kind)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// DecodeValue parses a JSON payload. Arrays must be homogeneous; an empty
// array decodes as an empty double array.
func DecodeValue(data []byte) (Value, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, fmt.Errorf("decode value: %w", err)
	}
	switch typed := raw.(type) {
	case bool:
		return BooleanValue(typed), nil
	case float64:
		return DoubleValue(typed), nil
	case string:
		return StringValue(typed), nil
	case []interface{}:
		return decodeArray(typed)
	default:
		return Value{}, fmt.Errorf("decode value: unsupported payload %s", truncate(data))
	}
}

func decodeArray(items []interface{}) (Value, error) {
	if len(items) == 0 {
		return DoubleArrayValue(nil), nil
	}
	switch items[0].(type) {
	case float64:
		out := make([]float64, len(items))
		for i, item := range items {
			n, ok := item.(float64)
			if !ok {
				return Value{}, fmt.Errorf("decode value: mixed array at index %d", i)
			}
			out[i] = n
		}
		return Value{kind: KindDoubleArray, numbers: out}, nil
	case bool:
		out := make([]bool, len(items))
		for i, item := range items {
			b, ok := item.(bool)
			if !ok {
				return Value{}, fmt.Errorf("decode value: mixed array at index %d", i)
			}
			out[i] = b
		}
		return Value{kind: KindBooleanArray, bools: out}, nil
	case string:
		out := make([]string, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return Value{}, fmt.Errorf("decode value: mixed array at index %d", i)
			}
			out[i] = s
		}
		return Value{kind: KindStringArray, texts: out}, nil
	default:
		return Value{}, fmt.Errorf("decode value: unsupported array element %T", items[0])
	}
}

func truncate(data []byte) string {
	const max = 32
	if len(data) <= max {
		return string(data)
	}
	return string(data[:max]) + "..."
}
