package strictlite

import (
	"math"
	"unicode/utf8"
)

// One-shot typed reads. Each is a Check immediately followed by the matching
// load, for callers that do not need to hold tokens across several columns.

// Null verifies that column i holds SQL NULL; any other runtime type fails
// with CodeMismatch.
func (s *Stmt) Null(i int) error {
	_, err := s.Check(i, TypeNull)
	return err
}

// Int64 reads column i as the engine's canonical 64-bit integer.
func (s *Stmt) Int64(i int) (int64, error) {
	tok, err := s.Check(i, TypeInteger)
	if err != nil {
		return 0, err
	}
	return s.LoadInt64(tok)
}

// narrowInt range-checks a canonical integer into a narrower target. Out of
// range never truncates, it is a mismatch.
func narrowInt(v, lo, hi int64, target string) (int64, error) {
	if v < lo || v > hi {
		return 0, errCode(CodeMismatch, "integer %d does not fit in %s", v, target)
	}
	return v, nil
}

// Int reads column i as int with a range check.
func (s *Stmt) Int(i int) (int, error) {
	v, err := s.Int64(i)
	if err != nil {
		return 0, err
	}
	v, err = narrowInt(v, math.MinInt, math.MaxInt, "int")
	return int(v), err
}

// Int32 reads column i as int32 with a range check.
func (s *Stmt) Int32(i int) (int32, error) {
	v, err := s.Int64(i)
	if err != nil {
		return 0, err
	}
	v, err = narrowInt(v, math.MinInt32, math.MaxInt32, "int32")
	return int32(v), err
}

// Int16 reads column i as int16 with a range check.
func (s *Stmt) Int16(i int) (int16, error) {
	v, err := s.Int64(i)
	if err != nil {
		return 0, err
	}
	v, err = narrowInt(v, math.MinInt16, math.MaxInt16, "int16")
	return int16(v), err
}

// Int8 reads column i as int8 with a range check.
func (s *Stmt) Int8(i int) (int8, error) {
	v, err := s.Int64(i)
	if err != nil {
		return 0, err
	}
	v, err = narrowInt(v, math.MinInt8, math.MaxInt8, "int8")
	return int8(v), err
}

// Uint64 reads column i as uint64; negative stored values are a mismatch.
func (s *Stmt) Uint64(i int) (uint64, error) {
	v, err := s.Int64(i)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errCode(CodeMismatch, "integer %d does not fit in uint64", v)
	}
	return uint64(v), nil
}

// Uint32 reads column i as uint32 with a range check.
func (s *Stmt) Uint32(i int) (uint32, error) {
	v, err := s.Int64(i)
	if err != nil {
		return 0, err
	}
	v, err = narrowInt(v, 0, math.MaxUint32, "uint32")
	return uint32(v), err
}

// Uint16 reads column i as uint16 with a range check.
func (s *Stmt) Uint16(i int) (uint16, error) {
	v, err := s.Int64(i)
	if err != nil {
		return 0, err
	}
	v, err = narrowInt(v, 0, math.MaxUint16, "uint16")
	return uint16(v), err
}

// Uint8 reads column i as uint8 with a range check.
func (s *Stmt) Uint8(i int) (uint8, error) {
	v, err := s.Int64(i)
	if err != nil {
		return 0, err
	}
	v, err = narrowInt(v, 0, math.MaxUint8, "uint8")
	return uint8(v), err
}

// Float64 reads column i as the engine's canonical double.
func (s *Stmt) Float64(i int) (float64, error) {
	tok, err := s.Check(i, TypeFloat)
	if err != nil {
		return 0, err
	}
	return s.LoadFloat64(tok)
}

// Float32 reads column i as float32. The narrowing is lossy and never
// fails; out-of-range magnitudes become infinities.
func (s *Stmt) Float32(i int) (float32, error) {
	v, err := s.Float64(i)
	return float32(v), err
}

// Text reads column i as an owned Text copy. No UTF-8 validity is implied.
func (s *Stmt) Text(i int) (Text, error) {
	tok, err := s.Check(i, TypeText)
	if err != nil {
		return nil, err
	}
	return s.LoadText(tok)
}

// Str reads column i as a validated UTF-8 string. Ill-formed text is a
// mismatch; use Text to accept arbitrary bytes.
func (s *Stmt) Str(i int) (string, error) {
	t, err := s.Text(i)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(t) {
		return "", errCode(CodeMismatch, "column %d holds text that is not valid UTF-8", i)
	}
	return string(t), nil
}

// Blob reads column i as an owned byte-slice copy.
func (s *Stmt) Blob(i int) ([]byte, error) {
	tok, err := s.Check(i, TypeBlob)
	if err != nil {
		return nil, err
	}
	return s.LoadBlob(tok)
}

// ColumnValue reads column i as a dynamic Value, dispatching on whichever
// runtime type the column currently reports. NULL has no Value variant; use
// ColumnNullableValue for columns that may be NULL.
func (s *Stmt) ColumnValue(i int) (Value, error) {
	switch t := s.ColumnType(i); t {
	case TypeInteger:
		v, err := s.Int64(i)
		return IntegerValue(v), err
	case TypeFloat:
		v, err := s.Float64(i)
		return FloatValue(v), err
	case TypeText:
		v, err := s.Text(i)
		return TextValue(v), err
	case TypeBlob:
		v, err := s.Blob(i)
		return BlobValue(v), err
	case TypeNull:
		return Value{}, errCode(CodeMismatch, "column %d is NULL, which has no dynamic value", i)
	default:
		return Value{}, errCode(CodeMismatch, "dynamic value has unsupported column type %s", t)
	}
}

// ColumnNullableValue is the nullable composition of ColumnValue: absent for
// NULL columns, otherwise the dynamic value.
func (s *Stmt) ColumnNullableValue(i int) (Value, bool, error) {
	if s.ColumnType(i) == TypeNull {
		return Value{}, false, nil
	}
	v, err := s.ColumnValue(i)
	if err != nil {
		return Value{}, false, err
	}
	return v, true, nil
}

// NullableInt64 reads column i as an integer, or absent when NULL.
func (s *Stmt) NullableInt64(i int) (int64, bool, error) {
	tok, present, err := s.CheckNullable(i, TypeInteger)
	if err != nil || !present {
		return 0, false, err
	}
	v, err := s.LoadInt64(tok)
	return v, err == nil, err
}

// NullableFloat64 reads column i as a float, or absent when NULL.
func (s *Stmt) NullableFloat64(i int) (float64, bool, error) {
	tok, present, err := s.CheckNullable(i, TypeFloat)
	if err != nil || !present {
		return 0, false, err
	}
	v, err := s.LoadFloat64(tok)
	return v, err == nil, err
}

// NullableText reads column i as text, or absent when NULL.
func (s *Stmt) NullableText(i int) (Text, bool, error) {
	tok, present, err := s.CheckNullable(i, TypeText)
	if err != nil || !present {
		return nil, false, err
	}
	v, err := s.LoadText(tok)
	return v, err == nil, err
}

// NullableBlob reads column i as a blob, or absent when NULL.
func (s *Stmt) NullableBlob(i int) ([]byte, bool, error) {
	tok, present, err := s.CheckNullable(i, TypeBlob)
	if err != nil || !present {
		return nil, false, err
	}
	v, err := s.LoadBlob(tok)
	return v, err == nil, err
}
