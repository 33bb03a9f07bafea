package strictlite

import "unsafe"

// Token proves that a column currently holds a specific runtime type and that
// loading it is safe. It is produced by Check and consumed by the matching
// Load call. It is a value, not a reference into engine memory.
//
// For TEXT and BLOB columns the token freezes the byte length observed at
// check time. The length query itself may make the engine materialize a UTF-8
// representation for the column, which is exactly why checking happens before
// any pointer is taken: the conversion is idempotent and runs while no
// borrowed pointer exists to invalidate.
//
// Between Check and Load the statement must not be stepped, reset or bound;
// the engine's implicit conversions are column-scoped and can fire as a side
// effect of touching a different column too. Tokens carry the statement's
// generation at check time, and every load verifies it, so a violated window
// is reported as CodeMisuse rather than read through.
type Token struct {
	index  int
	typ    ColumnType
	length int
	gen    uint64
}

// Type returns the runtime type the token was checked against.
func (t Token) Type() ColumnType { return t.typ }

// Len returns the byte length captured at check time. Zero for scalar types.
func (t Token) Len() int { return t.length }

// Check validates that column i currently reports the expected runtime type
// and returns a token permitting the matching load. No coercion is attempted:
// any difference fails with CodeMismatch. For TEXT and BLOB the byte length
// is captured now and never re-queried.
func (s *Stmt) Check(i int, expected ColumnType) (Token, error) {
	if err := s.guard(); err != nil {
		return Token{}, err
	}
	if i < 0 || i >= s.ColumnCount() {
		return Token{}, errCode(CodeRange, "column index %d out of range 0..%d", i, s.ColumnCount())
	}
	actual := s.ColumnType(i)
	if actual != expected {
		return Token{}, errCode(CodeMismatch, "expected column type %s but found %s", expected, actual)
	}
	tok := Token{index: i, typ: expected, gen: s.gen}
	if expected.sized() {
		tok.length = int(c_sqlite3_column_bytes(unsafe.Pointer(s.stmt), int32(i)))
	}
	return tok, nil
}

// CheckNullable is the nullable composition of Check: when the column is NULL
// it short-circuits to absent (present=false) without running the inner
// check; otherwise it delegates to Check with the expected type. The expected
// type must itself be non-nullable, so wrapping TypeNull is rejected with
// CodeMisuse.
func (s *Stmt) CheckNullable(i int, expected ColumnType) (tok Token, present bool, err error) {
	if expected == TypeNull {
		return Token{}, false, errCode(CodeMisuse, "nullable of NULL is not a type")
	}
	if err := s.guard(); err != nil {
		return Token{}, false, err
	}
	if i < 0 || i >= s.ColumnCount() {
		return Token{}, false, errCode(CodeRange, "column index %d out of range 0..%d", i, s.ColumnCount())
	}
	if s.ColumnType(i) == TypeNull {
		return Token{}, false, nil
	}
	tok, err = s.Check(i, expected)
	if err != nil {
		return Token{}, false, err
	}
	return tok, true, nil
}

// consume verifies that a token is still valid for this statement and of the
// wanted type.
func (s *Stmt) consume(t Token, want ...ColumnType) error {
	if err := s.guard(); err != nil {
		return err
	}
	if t.gen != s.gen {
		return errCode(CodeMisuse, "column token is stale, the statement moved since the check")
	}
	for _, w := range want {
		if t.typ == w {
			return nil
		}
	}
	return errCode(CodeMisuse, "token checked as %s cannot be loaded as %v", t.typ, want)
}

// LoadInt64 loads the integer value the token was checked for.
func (s *Stmt) LoadInt64(t Token) (int64, error) {
	if err := s.consume(t, TypeInteger); err != nil {
		return 0, err
	}
	return c_sqlite3_column_int64(unsafe.Pointer(s.stmt), int32(t.index)), nil
}

// LoadFloat64 loads the float value the token was checked for.
func (s *Stmt) LoadFloat64(t Token) (float64, error) {
	if err := s.consume(t, TypeFloat); err != nil {
		return 0, err
	}
	return c_sqlite3_column_double(unsafe.Pointer(s.stmt), int32(t.index)), nil
}

// sizedPtr re-fetches the data pointer for a sized token. The pointer aliases
// engine memory and is only valid until the statement moves.
func (s *Stmt) sizedPtr(t Token) unsafe.Pointer {
	if t.typ == TypeText {
		return c_sqlite3_column_text(unsafe.Pointer(s.stmt), int32(t.index))
	}
	return c_sqlite3_column_blob(unsafe.Pointer(s.stmt), int32(t.index))
}

// rawSized returns a view of exactly the captured length for a sized token,
// valid until the statement moves.
func (s *Stmt) rawSized(t Token) []byte {
	p := s.sizedPtr(t)
	if p == nil || t.length == 0 {
		// a null pointer for a zero-length column is the empty value
		return nil
	}
	return unsafe.Slice((*byte)(p), t.length)
}

// LoadText loads a TEXT token as an owned Text copy, valid beyond the row.
func (s *Stmt) LoadText(t Token) (Text, error) {
	if err := s.consume(t, TypeText); err != nil {
		return nil, err
	}
	return Text(copyBytes(s.sizedPtr(t), t.length)), nil
}

// LoadBlob loads a BLOB token as an owned copy, valid beyond the row.
func (s *Stmt) LoadBlob(t Token) ([]byte, error) {
	if err := s.consume(t, TypeBlob); err != nil {
		return nil, err
	}
	return copyBytes(s.sizedPtr(t), t.length), nil
}

// WithRawBytes gives fn zero-copy access to a TEXT or BLOB token's bytes. The
// slice aliases engine memory and is valid only for the duration of the
// callback; fn must not retain it.
func (s *Stmt) WithRawBytes(t Token, fn func([]byte) error) error {
	if err := s.consume(t, TypeText, TypeBlob); err != nil {
		return err
	}
	return fn(s.rawSized(t))
}

// AppendText appends a TEXT token's bytes to dst and returns the extended
// slice, so a caller can reuse one buffer across rows.
func (s *Stmt) AppendText(t Token, dst []byte) ([]byte, error) {
	if err := s.consume(t, TypeText); err != nil {
		return dst, err
	}
	return append(dst, s.rawSized(t)...), nil
}

// AppendBlob appends a BLOB token's bytes to dst and returns the extended
// slice.
func (s *Stmt) AppendBlob(t Token, dst []byte) ([]byte, error) {
	if err := s.consume(t, TypeBlob); err != nil {
		return dst, err
	}
	return append(dst, s.rawSized(t)...), nil
}

// LoadInto copies a TEXT or BLOB token's bytes into caller-owned fixed
// storage. It fails with CodeMismatch when the captured length exceeds
// len(dst); otherwise it returns the number of bytes copied.
func (s *Stmt) LoadInto(t Token, dst []byte) (int, error) {
	if err := s.consume(t, TypeText, TypeBlob); err != nil {
		return 0, err
	}
	if t.length > len(dst) {
		return 0, errCode(CodeMismatch, "column holds %d bytes, buffer capacity is %d", t.length, len(dst))
	}
	return copy(dst, s.rawSized(t)), nil
}
