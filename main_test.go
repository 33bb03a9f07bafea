package strictlite

import "testing"

// needLibrary skips tests that require a shared sqlite3 library on hosts
// that don't have one.
func needLibrary(t *testing.T) {
	t.Helper()
	if err := ensureLibrary(); err != nil {
		t.Skipf("sqlite3 library unavailable: %v", err)
	}
}

func openTestConn(t *testing.T) *Conn {
	t.Helper()
	needLibrary(t)
	conn, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func mustExec(t *testing.T, conn *Conn, sql string) {
	t.Helper()
	if err := conn.Execute(sql); err != nil {
		t.Fatalf("execute %q: %v", sql, err)
	}
}

func mustPrepare(t *testing.T, conn *Conn, sql string) *Stmt {
	t.Helper()
	stmt, err := conn.Prepare(sql)
	if err != nil {
		t.Fatalf("prepare %q: %v", sql, err)
	}
	t.Cleanup(stmt.Finalize)
	return stmt
}

// stepRow advances the statement and fails the test unless it lands on a row.
func stepRow(t *testing.T, stmt *Stmt) {
	t.Helper()
	st, err := stmt.Step()
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !st.IsRow() {
		t.Fatalf("expected a row, statement is done")
	}
}

// queryRow prepares a single-row query and steps onto its row.
func queryRow(t *testing.T, conn *Conn, sql string) *Stmt {
	t.Helper()
	stmt := mustPrepare(t, conn, sql)
	stepRow(t, stmt)
	return stmt
}

func wantCode(t *testing.T, err error, code Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := ErrCode(err).Base(); got != code.Base() {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}
