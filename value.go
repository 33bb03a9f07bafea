package strictlite

import "fmt"

// Value is a dynamically-typed column value: exactly one of the engine's
// non-NULL runtime types. NULL is deliberately not a variant; absence is
// expressed by the nullable compositions (CheckNullable,
// ColumnNullableValue), never by a value.
type Value struct {
	typ ColumnType
	n   int64
	f   float64
	b   []byte
}

// IntegerValue wraps an int64.
func IntegerValue(v int64) Value { return Value{typ: TypeInteger, n: v} }

// FloatValue wraps a float64.
func FloatValue(v float64) Value { return Value{typ: TypeFloat, f: v} }

// TextValue wraps a Text.
func TextValue(v Text) Value { return Value{typ: TypeText, b: v} }

// BlobValue wraps a byte slice.
func BlobValue(v []byte) Value { return Value{typ: TypeBlob, b: v} }

// Type returns which variant the value holds. The zero Value reports an
// unknown type and matches no variant.
func (v Value) Type() ColumnType { return v.typ }

// Int64 returns the integer variant, if that is what the value holds.
func (v Value) Int64() (int64, bool) { return v.n, v.typ == TypeInteger }

// Float64 returns the float variant, if that is what the value holds.
func (v Value) Float64() (float64, bool) { return v.f, v.typ == TypeFloat }

// Text returns the text variant, if that is what the value holds.
func (v Value) Text() (Text, bool) {
	if v.typ != TypeText {
		return nil, false
	}
	return Text(v.b), true
}

// Blob returns the blob variant, if that is what the value holds.
func (v Value) Blob() ([]byte, bool) {
	if v.typ != TypeBlob {
		return nil, false
	}
	return v.b, true
}

// Equal compares two values by variant and content; blob and text content
// compares byte-wise.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeInteger:
		return v.n == other.n
	case TypeFloat:
		return v.f == other.f
	case TypeText, TypeBlob:
		return Text(v.b).Equal(Text(other.b))
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.typ {
	case TypeInteger:
		return fmt.Sprintf("%d", v.n)
	case TypeFloat:
		return fmt.Sprintf("%g", v.f)
	case TypeText:
		return Text(v.b).String()
	case TypeBlob:
		return fmt.Sprintf("x'%x'", v.b)
	default:
		return "<invalid>"
	}
}
