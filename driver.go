package strictlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// define all package level errors here
var (
	ErrStmtClosed = errors.New("strictlite: statement closed")
	ErrConnClosed = errors.New("strictlite: connection closed")
	ErrRowsClosed = errors.New("strictlite: rows closed")
	ErrTxDone     = errors.New("strictlite: transaction done")
)

// DefaultBusyTimeout is the busy timeout in milliseconds applied to driver
// connections unless the DSN or connector overrides it.
const DefaultBusyTimeout = 5000

// define all package level structs here

type sqlDriver struct{}

type sqlConn struct {
	conn   *Conn
	closed bool
}

type sqlStmt struct {
	conn   *sqlConn
	stmt   *Stmt
	closed bool
}

type sqlRows struct {
	stmt      *Stmt
	ownStmt   bool
	columns   []string
	decltypes []string
	closed    bool
}

type sqlResult struct {
	lastInsertId int64
	rowsAffected int64
}

type sqlTx struct {
	conn *sqlConn
	done bool
}

// register driver
func init() {
	sql.Register("strictlite", &sqlDriver{})
}

// dsnConfig is the parsed form of a driver DSN.
type dsnConfig struct {
	path        string
	flags       OpenFlags
	busyTimeout int // milliseconds, 0 disables the busy handler
}

// parseDSN supports format: <path>[?mode=ro|rw|rwc|memory&cache=shared|private&_busy_timeout=<ms>]
// A "file:" path is passed to the engine as a URI.
func parseDSN(dsn string) (dsnConfig, error) {
	cfg := dsnConfig{
		path:        dsn,
		flags:       OpenReadWrite | OpenCreate,
		busyTimeout: DefaultBusyTimeout,
	}
	if qMark := strings.IndexByte(dsn, '?'); qMark >= 0 {
		cfg.path = dsn[:qMark]
		vals, err := url.ParseQuery(dsn[qMark+1:])
		if err != nil {
			return dsnConfig{}, err
		}
		switch mode := vals.Get("mode"); mode {
		case "":
		case "ro":
			cfg.flags = OpenReadOnly
		case "rw":
			cfg.flags = OpenReadWrite
		case "rwc":
			cfg.flags = OpenReadWrite | OpenCreate
		case "memory":
			cfg.flags = OpenReadWrite | OpenCreate | OpenMemory
		default:
			return dsnConfig{}, fmt.Errorf("strictlite: unknown mode %q", mode)
		}
		switch cache := vals.Get("cache"); cache {
		case "":
		case "shared":
			cfg.flags |= OpenSharedCache
		case "private":
			cfg.flags |= OpenPrivateCache
		default:
			return dsnConfig{}, fmt.Errorf("strictlite: unknown cache %q", cache)
		}
		if v := vals.Get("_busy_timeout"); v != "" {
			timeout, err := strconv.Atoi(v)
			if err != nil {
				return dsnConfig{}, fmt.Errorf("strictlite: bad _busy_timeout %q", v)
			}
			cfg.busyTimeout = timeout
		}
	}
	if strings.HasPrefix(cfg.path, "file:") {
		cfg.flags |= OpenURI
	}
	return cfg, nil
}

func (cfg dsnConfig) connect() (driver.Conn, error) {
	conn, err := Open(cfg.path, cfg.flags)
	if err != nil {
		return nil, err
	}
	if cfg.busyTimeout > 0 {
		if err := conn.SetBusyTimeout(cfg.busyTimeout); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return &sqlConn{conn: conn}, nil
}

// Implement sql.Driver methods
func (d *sqlDriver) Open(dsn string) (driver.Conn, error) {
	cfg, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	return cfg.connect()
}

// --- driver.Conn and friends ---

// Ensure sqlConn implements required interfaces.
var (
	_ driver.Conn               = (*sqlConn)(nil)
	_ driver.ConnPrepareContext = (*sqlConn)(nil)
	_ driver.ExecerContext      = (*sqlConn)(nil)
	_ driver.QueryerContext     = (*sqlConn)(nil)
	_ driver.Pinger             = (*sqlConn)(nil)
	_ driver.ConnBeginTx        = (*sqlConn)(nil)
	_ driver.NamedValueChecker  = (*sqlConn)(nil)
)

func (c *sqlConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *sqlConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	stmt, err := c.conn.Prepare(query, PreparePersistent)
	if err != nil {
		return nil, err
	}
	return &sqlStmt{conn: c, stmt: stmt}, nil
}

func (c *sqlConn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *sqlConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *sqlConn) BeginTx(ctx context.Context, _ driver.TxOptions) (driver.Tx, error) {
	if _, err := c.ExecContext(ctx, "BEGIN", nil); err != nil {
		return nil, err
	}
	return &sqlTx{conn: c}, nil
}

func (c *sqlConn) Ping(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return c.conn.Execute("SELECT 1")
}

func (c *sqlConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	// a parameter-free exec goes through the batch path, which accepts
	// multiple statements separated by semicolons
	if len(args) == 0 {
		if err := c.conn.Execute(query); err != nil {
			return nil, err
		}
		return &sqlResult{
			lastInsertId: c.conn.LastInsertRowID(),
			rowsAffected: int64(c.conn.Changes()),
		}, nil
	}
	stmt, err := c.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Finalize()
	if err := bindNamedArgs(stmt, args); err != nil {
		return nil, err
	}
	if err := drain(ctx, stmt); err != nil {
		return nil, err
	}
	return &sqlResult{
		lastInsertId: c.conn.LastInsertRowID(),
		rowsAffected: int64(c.conn.Changes()),
	}, nil
}

func (c *sqlConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	stmt, err := c.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	if err := bindNamedArgs(stmt, args); err != nil {
		stmt.Finalize()
		return nil, err
	}
	// leave the cursor before the first row
	return &sqlRows{stmt: stmt, ownStmt: true}, nil
}

func (c *sqlConn) CheckNamedValue(nv *driver.NamedValue) error {
	return checkNamedValue(nv)
}

func (c *sqlConn) checkOpen() error {
	if c.closed {
		return ErrConnClosed
	}
	return nil
}

// checkNamedValue lets the package's own Text and Value types through to
// Bind; everything else goes through the default converter.
func checkNamedValue(nv *driver.NamedValue) error {
	switch nv.Value.(type) {
	case Text, Value, nil:
		return nil
	}
	v, err := driver.DefaultParameterConverter.ConvertValue(nv.Value)
	if err != nil {
		return err
	}
	nv.Value = v
	return nil
}

// --- Connector Pattern ---

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithBusyTimeout sets the busy timeout in milliseconds. Use 0 to disable
// the busy handler, -1 to use DefaultBusyTimeout.
func WithBusyTimeout(ms int) ConnectorOption {
	return func(c *Connector) {
		c.busyTimeout = ms
	}
}

// Connector implements driver.Connector for programmatic configuration.
type Connector struct {
	dsn         string
	busyTimeout int // -1 = use default or DSN value, >=0 = override
}

// NewConnector creates a Connector with the given DSN and options. The DSN
// is validated eagerly.
func NewConnector(dsn string, opts ...ConnectorOption) (*Connector, error) {
	if _, err := parseDSN(dsn); err != nil {
		return nil, err
	}
	c := &Connector{dsn: dsn, busyTimeout: -1}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect implements driver.Connector.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	cfg, err := parseDSN(c.dsn)
	if err != nil {
		return nil, err
	}
	if c.busyTimeout >= 0 {
		cfg.busyTimeout = c.busyTimeout
	}
	return cfg.connect()
}

// Driver implements driver.Connector.
func (c *Connector) Driver() driver.Driver {
	return &sqlDriver{}
}

var _ driver.Connector = (*Connector)(nil)

// --- driver.Stmt and friends ---

// Ensure sqlStmt implements required interfaces.
var (
	_ driver.Stmt              = (*sqlStmt)(nil)
	_ driver.StmtExecContext   = (*sqlStmt)(nil)
	_ driver.StmtQueryContext  = (*sqlStmt)(nil)
	_ driver.NamedValueChecker = (*sqlStmt)(nil)
)

func (s *sqlStmt) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.stmt.Finalize()
	return nil
}

func (s *sqlStmt) NumInput() int {
	return s.stmt.ParameterCount()
}

func (s *sqlStmt) Exec(args []driver.Value) (driver.Result, error) {
	named := make([]driver.NamedValue, len(args))
	for i, v := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return s.ExecContext(context.Background(), named)
}

func (s *sqlStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	if s.closed {
		return nil, ErrStmtClosed
	}
	if err := s.rebind(args); err != nil {
		return nil, err
	}
	if err := drain(ctx, s.stmt); err != nil {
		return nil, err
	}
	return &sqlResult{
		lastInsertId: s.conn.conn.LastInsertRowID(),
		rowsAffected: int64(s.conn.conn.Changes()),
	}, nil
}

func (s *sqlStmt) Query(args []driver.Value) (driver.Rows, error) {
	named := make([]driver.NamedValue, len(args))
	for i, v := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return s.QueryContext(context.Background(), named)
}

func (s *sqlStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if s.closed {
		return nil, ErrStmtClosed
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := s.rebind(args); err != nil {
		return nil, err
	}
	return &sqlRows{stmt: s.stmt}, nil
}

func (s *sqlStmt) CheckNamedValue(nv *driver.NamedValue) error {
	return checkNamedValue(nv)
}

// rebind resets the statement and replaces all previous bindings.
func (s *sqlStmt) rebind(args []driver.NamedValue) error {
	if err := s.stmt.Reset(); err != nil {
		return err
	}
	if err := s.stmt.ClearBindings(); err != nil {
		return err
	}
	return bindNamedArgs(s.stmt, args)
}

// --- driver.Rows ---

var (
	_ driver.Rows                           = (*sqlRows)(nil)
	_ driver.RowsColumnTypeDatabaseTypeName = (*sqlRows)(nil)
)

func (r *sqlRows) Columns() []string {
	if r.columns != nil {
		return r.columns
	}
	n := r.stmt.ColumnCount()
	names := make([]string, n)
	decltypes := make([]string, n)
	for i := 0; i < n; i++ {
		name, err := r.stmt.ColumnName(i)
		if err == nil {
			names[i] = name
		}
		decltypes[i] = r.stmt.ColumnDeclType(i)
	}
	r.columns = names
	r.decltypes = decltypes
	return r.columns
}

// ColumnTypeDatabaseTypeName returns the declared type from the schema,
// upper-cased, or "" for expression columns.
func (r *sqlRows) ColumnTypeDatabaseTypeName(i int) string {
	r.Columns()
	if i < 0 || i >= len(r.decltypes) {
		return ""
	}
	return strings.ToUpper(r.decltypes[i])
}

func (r *sqlRows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.ownStmt {
		r.stmt.Finalize()
		return nil
	}
	// prepared-statement rows only rewind, the statement is reused
	return r.stmt.Reset()
}

func (r *sqlRows) Next(dest []driver.Value) error {
	if r.closed {
		return io.EOF
	}
	r.Columns()
	st, err := r.stmt.Step()
	if err != nil {
		return err
	}
	if st.IsDone() {
		return io.EOF
	}
	n := r.stmt.ColumnCount()
	if len(dest) != n {
		return fmt.Errorf("strictlite: expected %d dests, got %d", n, len(dest))
	}
	for i := 0; i < n; i++ {
		v, present, err := r.stmt.ColumnNullableValue(i)
		if err != nil {
			return err
		}
		if !present {
			dest[i] = nil
			continue
		}
		switch v.Type() {
		case TypeInteger:
			n, _ := v.Int64()
			dest[i] = n
		case TypeFloat:
			f, _ := v.Float64()
			dest[i] = f
		case TypeText:
			t, _ := v.Text()
			// a declared time column surfaces as time.Time, matching
			// what callers of database/sql drivers for this engine expect
			if i < len(r.decltypes) && isTimeColumn(r.decltypes[i]) {
				if ts, err := parseTimeString(string(t)); err == nil {
					dest[i] = ts
					continue
				}
			}
			dest[i] = string(t)
		case TypeBlob:
			b, _ := v.Blob()
			dest[i] = b
		}
	}
	return nil
}

// --- driver.Result ---

var _ driver.Result = (*sqlResult)(nil)

func (r *sqlResult) LastInsertId() (int64, error) {
	return r.lastInsertId, nil
}

func (r *sqlResult) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

// --- driver.Tx ---

var _ driver.Tx = (*sqlTx)(nil)

func (tx *sqlTx) Commit() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	_, err := tx.conn.ExecContext(context.Background(), "COMMIT", nil)
	return err
}

func (tx *sqlTx) Rollback() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	_, err := tx.conn.ExecContext(context.Background(), "ROLLBACK", nil)
	return err
}

// Helpers

// drain runs a bound statement to completion, discarding any rows.
func drain(ctx context.Context, stmt *Stmt) error {
	for {
		if ctx != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		st, err := stmt.Step()
		if err != nil {
			return err
		}
		if st.IsDone() {
			return nil
		}
	}
}

// bindNamedArgs binds ordinal and named values to a statement. Named values
// resolve against `:name`, `@name` and `$name` parameters in that order.
func bindNamedArgs(stmt *Stmt, args []driver.NamedValue) error {
	for _, nv := range args {
		if nv.Name != "" {
			pos := 0
			for _, prefix := range [...]string{":", "@", "$"} {
				if pos = stmt.ParameterIndex(prefix + nv.Name); pos != 0 {
					break
				}
			}
			if pos == 0 {
				return errCode(CodeMismatch, "statement has no parameter named %q", nv.Name)
			}
			if err := stmt.Bind(pos, nv.Value); err != nil {
				return err
			}
			continue
		}
		if err := stmt.Bind(nv.Ordinal, nv.Value); err != nil {
			return err
		}
	}
	return nil
}

// isTimeColumn reports whether a declared column type marks a time value.
func isTimeColumn(decltype string) bool {
	switch strings.ToUpper(decltype) {
	case "TIMESTAMP", "DATETIME", "DATE":
		return true
	}
	return false
}

// TimestampFormats are the text layouts recognized for declared time
// columns, most precise first.
var TimestampFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimeString(s string) (time.Time, error) {
	s = strings.TrimSuffix(s, "Z")
	for _, format := range TimestampFormats {
		if t, err := time.ParseInLocation(format, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as time", s)
}
