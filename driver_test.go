package strictlite

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMem(t *testing.T) *sql.DB {
	t.Helper()
	needLibrary(t)
	db, err := sql.Open("strictlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	// one in-memory database per connection, keep the pool at one
	db.SetMaxOpenConns(1)
	return db
}

func TestDriverExecAndQuery(t *testing.T) {
	db := openMem(t)

	_, err := db.Exec("CREATE TABLE test(foo, bar, baz)")
	require.NoError(t, err)

	res, err := db.Exec("INSERT INTO test VALUES (?, ?, ?)", 1, "one", []byte("blob"))
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	rows, err := db.Query("SELECT foo, bar, baz FROM test")
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)
	require.Equal(t, []string{"foo", "bar", "baz"}, cols)

	require.True(t, rows.Next())
	var (
		foo int
		bar string
		baz []byte
	)
	require.NoError(t, rows.Scan(&foo, &bar, &baz))
	assert.Equal(t, 1, foo)
	assert.Equal(t, "one", bar)
	assert.Equal(t, []byte("blob"), baz)
	require.False(t, rows.Next())
	require.NoError(t, rows.Err())
}

func TestDriverNullHandling(t *testing.T) {
	db := openMem(t)

	var s sql.NullString
	require.NoError(t, db.QueryRow("SELECT NULL").Scan(&s))
	require.False(t, s.Valid)

	require.NoError(t, db.QueryRow("SELECT 'x'").Scan(&s))
	require.True(t, s.Valid)
	require.Equal(t, "x", s.String)
}

func TestDriverNamedParams(t *testing.T) {
	db := openMem(t)

	var sum int
	err := db.QueryRow("SELECT :a + :b", sql.Named("a", 2), sql.Named("b", 3)).Scan(&sum)
	require.NoError(t, err)
	require.Equal(t, 5, sum)

	err = db.QueryRow("SELECT :a", sql.Named("missing", 1)).Scan(&sum)
	require.Error(t, err)
}

func TestDriverPreparedReuse(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("CREATE TABLE t(x)")
	require.NoError(t, err)

	stmt, err := db.Prepare("INSERT INTO t VALUES (?)")
	require.NoError(t, err)
	defer stmt.Close()

	for i := 0; i < 5; i++ {
		_, err := stmt.Exec(i)
		require.NoError(t, err)
	}

	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM t").Scan(&n))
	require.Equal(t, 5, n)
}

func TestDriverTransactions(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("CREATE TABLE t(x)")
	require.NoError(t, err)

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = tx.Exec("INSERT INTO t VALUES (1)")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM t").Scan(&n))
	require.Equal(t, 0, n)

	tx, err = db.Begin()
	require.NoError(t, err)
	_, err = tx.Exec("INSERT INTO t VALUES (1)")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.NoError(t, db.QueryRow("SELECT count(*) FROM t").Scan(&n))
	require.Equal(t, 1, n)
}

func TestDriverTimeColumns(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("CREATE TABLE events(at DATETIME)")
	require.NoError(t, err)

	stamp := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	_, err = db.Exec("INSERT INTO events VALUES (?)", stamp)
	require.NoError(t, err)

	var got time.Time
	require.NoError(t, db.QueryRow("SELECT at FROM events").Scan(&got))
	require.True(t, stamp.Equal(got), "got %v", got)
}

func TestDriverStrictTypes(t *testing.T) {
	db := openMem(t)

	// the driver surfaces each value with its runtime type and leaves
	// conversion policy to database/sql
	var f float64
	require.NoError(t, db.QueryRow("SELECT 2.5").Scan(&f))
	require.Equal(t, 2.5, f)

	var b []byte
	require.NoError(t, db.QueryRow("SELECT x'0102'").Scan(&b))
	require.Equal(t, []byte{1, 2}, b)
}

func TestDriverMultiStatementExec(t *testing.T) {
	db := openMem(t)
	_, err := db.Exec("CREATE TABLE a(x); CREATE TABLE b(y); INSERT INTO a VALUES (1)")
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM a").Scan(&n))
	require.Equal(t, 1, n)
}

func TestDriverOnDiskDSN(t *testing.T) {
	needLibrary(t)
	path := filepath.Join(t.TempDir(), "dsn.db")

	db, err := sql.Open("strictlite", path+"?_busy_timeout=100")
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("CREATE TABLE t(x)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ro, err := sql.Open("strictlite", path+"?mode=ro")
	require.NoError(t, err)
	defer ro.Close()
	_, err = ro.Exec("INSERT INTO t VALUES (1)")
	require.Error(t, err)
}

func TestDriverConnector(t *testing.T) {
	needLibrary(t)
	c, err := NewConnector(":memory:", WithBusyTimeout(50))
	require.NoError(t, err)
	db := sql.OpenDB(c)
	defer db.Close()
	require.NoError(t, db.Ping())

	_, err = NewConnector(":memory:?mode=bogus")
	require.Error(t, err)
}

func TestParseDSN(t *testing.T) {
	cfg, err := parseDSN("/tmp/x.db")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.path)
	assert.Equal(t, OpenReadWrite|OpenCreate, cfg.flags)
	assert.Equal(t, DefaultBusyTimeout, cfg.busyTimeout)

	cfg, err = parseDSN("/tmp/x.db?mode=ro&cache=shared&_busy_timeout=250")
	require.NoError(t, err)
	assert.Equal(t, OpenReadOnly|OpenSharedCache, cfg.flags)
	assert.Equal(t, 250, cfg.busyTimeout)

	cfg, err = parseDSN("file:/tmp/x.db?mode=memory")
	require.NoError(t, err)
	assert.Equal(t, OpenReadWrite|OpenCreate|OpenMemory|OpenURI, cfg.flags)

	_, err = parseDSN("/tmp/x.db?mode=banana")
	require.Error(t, err)
	_, err = parseDSN("/tmp/x.db?_busy_timeout=soon")
	require.Error(t, err)
}
