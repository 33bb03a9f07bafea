package strictlite

import (
	"math"
	"reflect"
	"runtime"
	"time"
	"unsafe"
)

// zeroByte backs zero-length text and blob binds: the engine treats a NULL
// data pointer as binding SQL NULL, which is not the same value as an empty
// string or empty blob.
var zeroByte byte

// bindIndex validates a 1-based parameter position.
func (s *Stmt) bindIndex(i int) error {
	if err := s.guard(); err != nil {
		return err
	}
	if i < 1 || i > s.ParameterCount() {
		return errCode(CodeRange, "parameter index %d out of range 1..%d", i, s.ParameterCount())
	}
	return nil
}

// BindNull binds SQL NULL to parameter i (1-based).
func (s *Stmt) BindNull(i int) error {
	if err := s.bindIndex(i); err != nil {
		return err
	}
	s.bump()
	if rc := c_sqlite3_bind_null(unsafe.Pointer(s.stmt), int32(i)); rc != 0 {
		return s.dbErr()
	}
	return nil
}

// BindInt64 binds an integer to parameter i.
func (s *Stmt) BindInt64(i int, v int64) error {
	if err := s.bindIndex(i); err != nil {
		return err
	}
	s.bump()
	if rc := c_sqlite3_bind_int64(unsafe.Pointer(s.stmt), int32(i), v); rc != 0 {
		return s.dbErr()
	}
	return nil
}

// BindFloat64 binds a float to parameter i.
func (s *Stmt) BindFloat64(i int, v float64) error {
	if err := s.bindIndex(i); err != nil {
		return err
	}
	s.bump()
	if rc := c_sqlite3_bind_double(unsafe.Pointer(s.stmt), int32(i), v); rc != 0 {
		return s.dbErr()
	}
	return nil
}

// BindText binds text to parameter i. The engine copies the bytes during the
// call; no UTF-8 validation is performed (see Text).
func (s *Stmt) BindText(i int, v Text) error {
	if err := s.bindIndex(i); err != nil {
		return err
	}
	s.bump()
	ptr := unsafe.Pointer(&zeroByte)
	if len(v) > 0 {
		ptr = unsafe.Pointer(&v[0])
	}
	rc := c_sqlite3_bind_text(unsafe.Pointer(s.stmt), int32(i), ptr, int32(len(v)), c_SQLITE_TRANSIENT)
	runtime.KeepAlive(v)
	if rc != 0 {
		return s.dbErr()
	}
	return nil
}

// BindString binds a Go string as text.
func (s *Stmt) BindString(i int, v string) error {
	return s.BindText(i, Text(v))
}

// BindBlob binds a byte slice to parameter i. The engine copies the bytes
// during the call.
func (s *Stmt) BindBlob(i int, v []byte) error {
	if err := s.bindIndex(i); err != nil {
		return err
	}
	s.bump()
	ptr := unsafe.Pointer(&zeroByte)
	if len(v) > 0 {
		ptr = unsafe.Pointer(&v[0])
	}
	rc := c_sqlite3_bind_blob(unsafe.Pointer(s.stmt), int32(i), ptr, int32(len(v)), c_SQLITE_TRANSIENT)
	runtime.KeepAlive(v)
	if rc != 0 {
		return s.dbErr()
	}
	return nil
}

// BindValue binds a dynamic Value according to its variant.
func (s *Stmt) BindValue(i int, v Value) error {
	switch v.typ {
	case TypeInteger:
		return s.BindInt64(i, v.n)
	case TypeFloat:
		return s.BindFloat64(i, v.f)
	case TypeText:
		return s.BindText(i, Text(v.b))
	case TypeBlob:
		return s.BindBlob(i, v.b)
	default:
		return errCode(CodeMisuse, "cannot bind a zero Value")
	}
}

// Bind binds an arbitrary Go value to parameter i, dispatching on its
// dynamic type. Integers of any width bind as 64-bit after a range check,
// bool binds as 0/1, time.Time binds as RFC3339Nano text, nil (and nil
// pointers) bind NULL and non-nil pointers bind their element. Types outside
// the closed set fail with CodeMisuse; nothing is ever stringified
// implicitly.
func (s *Stmt) Bind(i int, v any) error {
	if v == nil {
		return s.BindNull(i)
	}
	switch x := v.(type) {
	case int:
		return s.BindInt64(i, int64(x))
	case int8:
		return s.BindInt64(i, int64(x))
	case int16:
		return s.BindInt64(i, int64(x))
	case int32:
		return s.BindInt64(i, int64(x))
	case int64:
		return s.BindInt64(i, x)
	case uint:
		if uint64(x) > math.MaxInt64 {
			return errCode(CodeMismatch, "integer %d does not fit in int64", x)
		}
		return s.BindInt64(i, int64(x))
	case uint8:
		return s.BindInt64(i, int64(x))
	case uint16:
		return s.BindInt64(i, int64(x))
	case uint32:
		return s.BindInt64(i, int64(x))
	case uint64:
		if x > math.MaxInt64 {
			return errCode(CodeMismatch, "integer %d does not fit in int64", x)
		}
		return s.BindInt64(i, int64(x))
	case float32:
		return s.BindFloat64(i, float64(x))
	case float64:
		return s.BindFloat64(i, x)
	case bool:
		if x {
			return s.BindInt64(i, 1)
		}
		return s.BindInt64(i, 0)
	case string:
		return s.BindString(i, x)
	case Text:
		return s.BindText(i, x)
	case []byte:
		return s.BindBlob(i, x)
	case Value:
		return s.BindValue(i, x)
	case time.Time:
		return s.BindString(i, x.Format(time.RFC3339Nano))
	}

	// a nil pointer (or nil-able) binds NULL, a non-nil pointer binds its
	// element, covering optional fields without a dedicated wrapper type
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return s.BindNull(i)
		}
		return s.Bind(i, rv.Elem().Interface())
	}
	return errCode(CodeMisuse, "cannot bind value of type %T", v)
}

// BindByName binds to a named parameter (`:name`, `@name` or `$name`; name
// includes the prefix). An unknown name fails with CodeMismatch and leaves
// every previously bound parameter bound.
func (s *Stmt) BindByName(name string, v any) error {
	if err := s.guard(); err != nil {
		return err
	}
	i := s.ParameterIndex(name)
	if i == 0 {
		return errCode(CodeMismatch, "statement has no parameter named %q", name)
	}
	return s.Bind(i, v)
}

// BindAll binds values positionally starting at parameter 1.
func (s *Stmt) BindAll(vs ...any) error {
	for i, v := range vs {
		if err := s.Bind(i+1, v); err != nil {
			return err
		}
	}
	return nil
}

// BindMap binds named parameters from a map; keys include the prefix.
func (s *Stmt) BindMap(vs map[string]any) error {
	for name, v := range vs {
		if err := s.BindByName(name, v); err != nil {
			return err
		}
	}
	return nil
}

// BindStruct binds a struct's fields positionally starting at parameter 1,
// in declaration order. Fields tagged `col:"-"` are skipped. This is value
// composition only: it is exactly repeated calls to Bind.
func (s *Stmt) BindStruct(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errCode(CodeMisuse, "cannot bind a nil struct pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errCode(CodeMisuse, "BindStruct needs a struct, got %T", v)
	}
	i := 1
	for _, f := range structColumns(rv.Type()) {
		if err := s.Bind(i, rv.FieldByIndex(f.index).Interface()); err != nil {
			return err
		}
		i++
	}
	return nil
}

// BindStructNamed binds a struct's fields by name: each field binds to the
// first of `:name`, `@name`, `$name` present in the statement, where name is
// the `col` tag or the lower-cased field name. Fields with no matching
// parameter fail with CodeMismatch.
func (s *Stmt) BindStructNamed(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errCode(CodeMisuse, "cannot bind a nil struct pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errCode(CodeMisuse, "BindStructNamed needs a struct, got %T", v)
	}
	for _, f := range structColumns(rv.Type()) {
		i := 0
		for _, prefix := range [...]string{":", "@", "$"} {
			if i = s.ParameterIndex(prefix + f.name); i != 0 {
				break
			}
		}
		if i == 0 {
			return errCode(CodeMismatch, "statement has no parameter named %q", f.name)
		}
		if err := s.Bind(i, rv.FieldByIndex(f.index).Interface()); err != nil {
			return err
		}
	}
	return nil
}
