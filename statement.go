package strictlite

import (
	"runtime"
	"strings"
	"unsafe"
)

// PrepareFlags tune statement compilation.
type PrepareFlags uint32

const (
	// PreparePersistent hints that the statement will be retained and reused
	// many times.
	PreparePersistent PrepareFlags = 0x01
	// PrepareNormalize enables SQL normalization for plan caching.
	PrepareNormalize PrepareFlags = 0x02
	// PrepareNoVTab forbids the statement from using virtual tables.
	PrepareNoVTab PrepareFlags = 0x04
)

// State is the outcome of stepping a statement cursor.
type State int

const (
	// StateRow means column data for the current row is available.
	StateRow State = iota
	// StateDone means the statement has no more data; Reset before stepping
	// again with new bindings.
	StateDone
)

func (s State) IsRow() bool  { return s == StateRow }
func (s State) IsDone() bool { return s == StateDone }

// Stmt is a prepared statement together with its implicit cursor position.
//
// A Stmt is a single-threaded cursor: it performs no internal locking, and
// concurrent use from two goroutines without external synchronization is
// undefined by contract.
//
// Every bind, step and reset bumps an internal generation counter. Column
// tokens capture the generation at check time and loads verify it, so a token
// left over from before the cursor moved is rejected with CodeMisuse instead
// of reading through a possibly dangling engine pointer.
type Stmt struct {
	stmt      stmtHandle
	gen       uint64
	finalized bool
}

// Prepare compiles a single SQL statement. Trailing content after the first
// statement is rejected with CodeMisuse; use Execute for batches.
func (c *Conn) Prepare(sql string, flags ...PrepareFlags) (*Stmt, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	var pf PrepareFlags
	for _, f := range flags {
		pf |= f
	}

	buf := cBytes(sql)
	var stmt stmtHandle
	var tail uintptr
	rc := c_sqlite3_prepare_v3(
		unsafe.Pointer(c.db),
		unsafe.Pointer(&buf[0]),
		int32(len(buf)),
		uint32(pf),
		unsafe.Pointer(&stmt),
		unsafe.Pointer(&tail),
	)
	runtime.KeepAlive(buf)
	if rc != 0 {
		return nil, dbError(c.db)
	}
	if stmt == nil {
		return nil, errCode(CodeMisuse, "empty statement")
	}
	consumed := int(tail - uintptr(unsafe.Pointer(&buf[0])))
	if consumed < len(sql) && strings.TrimSpace(sql[consumed:]) != "" {
		c_sqlite3_finalize(unsafe.Pointer(stmt))
		return nil, errCode(CodeMisuse, "Prepare accepts a single statement, use Execute for batches")
	}
	return &Stmt{stmt: stmt}, nil
}

// bump invalidates all outstanding column tokens.
func (s *Stmt) bump() { s.gen++ }

// dbErr builds the error for a failing call on the statement's owning
// database, which the engine tracks for every prepared statement.
func (s *Stmt) dbErr() *Error {
	return dbError(dbHandle(c_sqlite3_db_handle(unsafe.Pointer(s.stmt))))
}

func (s *Stmt) guard() error {
	if s.finalized {
		return errCode(CodeMisuse, "statement is finalized")
	}
	return nil
}

// Step advances the cursor. StateRow means the current row can be read;
// StateDone means evaluation finished.
func (s *Stmt) Step() (State, error) {
	if err := s.guard(); err != nil {
		return StateDone, err
	}
	s.bump()
	switch Code(c_sqlite3_step(unsafe.Pointer(s.stmt))).Base() {
	case CodeRow:
		return StateRow, nil
	case CodeDone:
		return StateDone, nil
	default:
		return StateDone, s.dbErr()
	}
}

// Reset rewinds the cursor so the statement can be stepped again. Bound
// parameters keep their values; use ClearBindings to drop them.
func (s *Stmt) Reset() error {
	if err := s.guard(); err != nil {
		return err
	}
	s.bump()
	// the return value of reset repeats the error of the preceding step,
	// which the caller has already seen
	c_sqlite3_reset(unsafe.Pointer(s.stmt))
	return nil
}

// ClearBindings rebinds every parameter to NULL.
func (s *Stmt) ClearBindings() error {
	if err := s.guard(); err != nil {
		return err
	}
	s.bump()
	if rc := c_sqlite3_clear_bindings(unsafe.Pointer(s.stmt)); rc != 0 {
		return s.dbErr()
	}
	return nil
}

// Finalize releases the native statement. It never fails observably and is
// safe to call more than once.
func (s *Stmt) Finalize() {
	if s.finalized {
		return
	}
	s.finalized = true
	s.bump()
	c_sqlite3_finalize(unsafe.Pointer(s.stmt))
}

// Close is Finalize under the name resource-owning Go code expects.
func (s *Stmt) Close() error {
	s.Finalize()
	return nil
}

// ColumnCount returns the number of result columns. Valid on a prepared
// statement even before the first step.
func (s *Stmt) ColumnCount() int {
	return int(c_sqlite3_column_count(unsafe.Pointer(s.stmt)))
}

// ColumnName returns the schema-derived name of column i (0-based).
func (s *Stmt) ColumnName(i int) (string, error) {
	if i < 0 || i >= s.ColumnCount() {
		return "", errCode(CodeRange, "column index %d out of range 0..%d", i, s.ColumnCount())
	}
	p := c_sqlite3_column_name(unsafe.Pointer(s.stmt), int32(i))
	if p == nil {
		return "", errCode(CodeNoMem, "column name unavailable")
	}
	return copyCString(p), nil
}

// ColumnNames returns all result column names in order.
func (s *Stmt) ColumnNames() ([]string, error) {
	n := s.ColumnCount()
	names := make([]string, n)
	for i := 0; i < n; i++ {
		name, err := s.ColumnName(i)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

// ColumnType reports the runtime type of column i for the current row. Out of
// range indices report TypeNull, matching the engine.
func (s *Stmt) ColumnType(i int) ColumnType {
	if i < 0 {
		return TypeNull
	}
	return ColumnType(c_sqlite3_column_type(unsafe.Pointer(s.stmt), int32(i)))
}

// ColumnDeclType returns the declared type of column i from the schema, or
// "" for expressions and out-of-range indexes. This is declaration text, not
// the runtime type of any value.
func (s *Stmt) ColumnDeclType(i int) string {
	if i < 0 || i >= s.ColumnCount() {
		return ""
	}
	return copyCString(c_sqlite3_column_decltype(unsafe.Pointer(s.stmt), int32(i)))
}

// ParameterCount returns the number of bind parameters.
func (s *Stmt) ParameterCount() int {
	return int(c_sqlite3_bind_parameter_count(unsafe.Pointer(s.stmt)))
}

// ParameterIndex resolves a named parameter (`:name`, `@name` or `$name`,
// including the prefix) to its 1-based position, or 0 when there is no such
// parameter.
func (s *Stmt) ParameterIndex(name string) int {
	return int(c_sqlite3_bind_parameter_index(unsafe.Pointer(s.stmt), name))
}
