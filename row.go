package strictlite

import (
	"reflect"
	"strings"
	"sync"
)

// Scan reads the current row into the destinations, one per column starting
// at 0. It runs in two phases: every column is checked before any value is
// loaded, so a row either scans completely or fails before a single
// destination is written by the load phase.
//
// Destinations are pointers to int64 and the narrower integer kinds, bool,
// float64, float32, string, Text, []byte or Value. A pointer to pointer
// marks the column nullable: NULL stores nil, any other value allocates.
func (s *Stmt) Scan(dests ...any) error {
	loads := make([]func() error, len(dests))
	for i, d := range dests {
		ld, err := s.checkDest(i, d)
		if err != nil {
			return err
		}
		loads[i] = ld
	}
	for _, ld := range loads {
		if err := ld(); err != nil {
			return err
		}
	}
	return nil
}

// Next advances to the next row and scans it. It returns false with a nil
// error once the statement is done.
func (s *Stmt) Next(dests ...any) (bool, error) {
	st, err := s.Step()
	if err != nil {
		return false, err
	}
	if st.IsDone() {
		return false, nil
	}
	if err := s.Scan(dests...); err != nil {
		return false, err
	}
	return true, nil
}

// checkDest runs the check phase for one destination and returns its
// deferred load.
func (s *Stmt) checkDest(i int, dest any) (func() error, error) {
	switch d := dest.(type) {
	case *Value:
		if i < 0 || i >= s.ColumnCount() {
			return nil, errCode(CodeRange, "column index %d out of range 0..%d", i, s.ColumnCount()-1)
		}
		reported := s.ColumnType(i)
		if reported == TypeNull {
			return nil, errCode(CodeMismatch, "column %d is NULL, which has no dynamic value", i)
		}
		tok, err := s.Check(i, reported)
		if err != nil {
			return nil, err
		}
		return func() error {
			v, err := s.loadValue(tok)
			if err != nil {
				return err
			}
			*d = v
			return nil
		}, nil
	case **Value:
		if i < 0 || i >= s.ColumnCount() {
			return nil, errCode(CodeRange, "column index %d out of range 0..%d", i, s.ColumnCount()-1)
		}
		reported := s.ColumnType(i)
		if reported == TypeNull {
			return func() error { *d = nil; return nil }, nil
		}
		tok, err := s.Check(i, reported)
		if err != nil {
			return nil, err
		}
		return func() error {
			v, err := s.loadValue(tok)
			if err != nil {
				return err
			}
			*d = &v
			return nil
		}, nil
	}

	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, errCode(CodeMisuse, "scan destination for column %d must be a non-nil pointer, got %T", i, dest)
	}
	elem := rv.Elem()

	if elem.Kind() == reflect.Pointer {
		et := elem.Type().Elem()
		want, ok := expectedType(et)
		if !ok {
			return nil, errCode(CodeMisuse, "cannot scan column %d into %T", i, dest)
		}
		tok, present, err := s.CheckNullable(i, want)
		if err != nil {
			return nil, err
		}
		if !present {
			return func() error { elem.SetZero(); return nil }, nil
		}
		return func() error {
			p := reflect.New(et)
			if err := s.loadToken(tok, p.Elem()); err != nil {
				return err
			}
			elem.Set(p)
			return nil
		}, nil
	}

	want, ok := expectedType(elem.Type())
	if !ok {
		return nil, errCode(CodeMisuse, "cannot scan column %d into %T", i, dest)
	}
	tok, err := s.Check(i, want)
	if err != nil {
		return nil, err
	}
	return func() error { return s.loadToken(tok, elem) }, nil
}

var (
	textType  = reflect.TypeOf(Text(nil))
	bytesType = reflect.TypeOf([]byte(nil))
)

// expectedType maps a Go destination type to the column type it demands.
func expectedType(t reflect.Type) (ColumnType, bool) {
	switch t {
	case textType:
		return TypeText, true
	case bytesType:
		return TypeBlob, true
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Bool:
		return TypeInteger, true
	case reflect.Float32, reflect.Float64:
		return TypeFloat, true
	case reflect.String:
		return TypeText, true
	}
	return TypeNull, false
}

// loadToken loads a checked token into a settable destination, narrowing
// integers with a range check and validating UTF-8 for string targets.
func (s *Stmt) loadToken(tok Token, elem reflect.Value) error {
	switch elem.Type() {
	case textType:
		t, err := s.LoadText(tok)
		if err != nil {
			return err
		}
		elem.Set(reflect.ValueOf(t))
		return nil
	case bytesType:
		b, err := s.LoadBlob(tok)
		if err != nil {
			return err
		}
		elem.SetBytes(b)
		return nil
	}
	switch elem.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := s.LoadInt64(tok)
		if err != nil {
			return err
		}
		if elem.OverflowInt(v) {
			return errCode(CodeMismatch, "integer %d does not fit in %s", v, elem.Type())
		}
		elem.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := s.LoadInt64(tok)
		if err != nil {
			return err
		}
		if v < 0 || elem.OverflowUint(uint64(v)) {
			return errCode(CodeMismatch, "integer %d does not fit in %s", v, elem.Type())
		}
		elem.SetUint(uint64(v))
	case reflect.Bool:
		v, err := s.LoadInt64(tok)
		if err != nil {
			return err
		}
		elem.SetBool(v != 0)
	case reflect.Float32, reflect.Float64:
		v, err := s.LoadFloat64(tok)
		if err != nil {
			return err
		}
		elem.SetFloat(v)
	case reflect.String:
		t, err := s.LoadText(tok)
		if err != nil {
			return err
		}
		str, err := t.Str()
		if err != nil {
			return err
		}
		elem.SetString(str)
	default:
		return errCode(CodeMisuse, "cannot load into %s", elem.Type())
	}
	return nil
}

// loadValue loads a checked token into a dynamic Value.
func (s *Stmt) loadValue(tok Token) (Value, error) {
	switch tok.typ {
	case TypeInteger:
		v, err := s.LoadInt64(tok)
		if err != nil {
			return Value{}, err
		}
		return IntegerValue(v), nil
	case TypeFloat:
		v, err := s.LoadFloat64(tok)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(v), nil
	case TypeText:
		t, err := s.LoadText(tok)
		if err != nil {
			return Value{}, err
		}
		return TextValue(t), nil
	case TypeBlob:
		b, err := s.LoadBlob(tok)
		if err != nil {
			return Value{}, err
		}
		return BlobValue(b), nil
	}
	return Value{}, errCode(CodeMismatch, "no dynamic value for column type %s", tok.typ)
}

// colField describes one bindable or scannable struct field.
type colField struct {
	name  string
	index []int
}

// structPlans caches the field layout per struct type.
var structPlans sync.Map // reflect.Type -> []colField

// structColumns returns the exported fields of t in declaration order,
// named by the `col` tag or the lower-cased field name. Fields tagged
// `col:"-"` are skipped. Anonymous embedded structs are flattened.
func structColumns(t reflect.Type) []colField {
	if cached, ok := structPlans.Load(t); ok {
		return cached.([]colField)
	}
	fields := collectFields(t, nil)
	structPlans.Store(t, fields)
	return fields
}

func collectFields(t reflect.Type, prefix []int) []colField {
	var fields []colField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		index := append(append([]int(nil), prefix...), i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			fields = append(fields, collectFields(f.Type, index)...)
			continue
		}
		name := strings.ToLower(f.Name)
		if tag, ok := f.Tag.Lookup("col"); ok {
			if tag == "-" {
				continue
			}
			name = tag
		}
		fields = append(fields, colField{name: name, index: index})
	}
	return fields
}

// ScanStruct reads the current row into the fields of *dest, matching result
// columns to fields by the `col` tag or the case-insensitive field name.
// Every field must have a matching column; pointer fields are nullable. Like
// Scan it checks every column before loading any.
func (s *Stmt) ScanStruct(dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errCode(CodeMisuse, "ScanStruct needs a non-nil struct pointer, got %T", dest)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return errCode(CodeMisuse, "ScanStruct needs a struct pointer, got %T", dest)
	}

	byName := make(map[string]int, s.ColumnCount())
	for i := 0; i < s.ColumnCount(); i++ {
		name, err := s.ColumnName(i)
		if err != nil {
			return err
		}
		byName[strings.ToLower(name)] = i
	}

	fields := structColumns(rv.Type())
	loads := make([]func() error, 0, len(fields))
	for _, f := range fields {
		i, ok := byName[strings.ToLower(f.name)]
		if !ok {
			return errCode(CodeMismatch, "result has no column named %q", f.name)
		}
		ld, err := s.checkDest(i, rv.FieldByIndex(f.index).Addr().Interface())
		if err != nil {
			return err
		}
		loads = append(loads, ld)
	}
	for _, ld := range loads {
		if err := ld(); err != nil {
			return err
		}
	}
	return nil
}
