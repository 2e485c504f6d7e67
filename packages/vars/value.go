package vars

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the runtime type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindStructured
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// Value is a tagged scalar. Variables keep their original YAML/JSON type so
// that a field whose entire content is one placeholder substitutes the typed
// value rather than its string form.
type Value struct {
	kind Kind
	raw  any
}

func Null() Value {
	return Value{kind: KindNull}
}

func String(s string) Value {
	return Value{kind: KindString, raw: s}
}

func Number(f float64) Value {
	return Value{kind: KindNumber, raw: f}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, raw: b}
}

// Structured wraps a decoded map or slice.
func Structured(v any) Value {
	return Value{kind: KindStructured, raw: v}
}

// From classifies an arbitrary decoded value.
func From(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case float32:
		return Number(float64(x))
	case float64:
		return Number(x)
	case map[string]any, []any:
		return Structured(x)
	default:
		return String(fmt.Sprintf("%v", x))
	}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Raw returns the underlying typed value.
func (v Value) Raw() any {
	return v.raw
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// String returns the textual form used when a placeholder is embedded in a
// larger string.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.raw.(string)
	case KindNumber:
		return strconv.FormatFloat(v.raw.(float64), 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.raw.(bool))
	case KindStructured:
		b, err := json.Marshal(v.raw)
		if err != nil {
			return fmt.Sprintf("%v", v.raw)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", v.raw)
	}
}
