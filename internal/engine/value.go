package engine

import (
	"fmt"
	"strconv"
)

// Kind identifies which variant of a Value is populated
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindText
	KindOther
)

// Value is the closed set of cell types the engine can return. Results are
// decoded into Values once at the engine boundary so comparison logic never
// touches driver-specific types.
type Value struct {
	Kind    Kind
	Bool    bool
	Int64   int64
	Float64 float64
	Text    string

	// Raw holds the textual form of a KindOther value (dates, blobs,
	// anything outside the common variants).
	Raw string
}

// decodeValue maps a driver-provided cell to a Value
func decodeValue(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Value{Kind: KindNull}
	case bool:
		return Value{Kind: KindBool, Bool: x}
	case int64:
		return Value{Kind: KindInt64, Int64: x}
	case float64:
		return Value{Kind: KindFloat64, Float64: x}
	case string:
		return Value{Kind: KindText, Text: x}
	case []byte:
		return Value{Kind: KindText, Text: string(x)}
	default:
		return Value{Kind: KindOther, Raw: fmt.Sprint(x)}
	}
}

// String returns the textual representation used for grading comparisons.
// Numeric text and numbers collapse to the same form, so SELECT 1 and
// SELECT '1' compare equal.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindInt64:
		return strconv.FormatInt(v.Int64, 10)
	case KindFloat64:
		return strconv.FormatFloat(v.Float64, 'g', -1, 64)
	case KindText:
		return v.Text
	default:
		return v.Raw
	}
}
