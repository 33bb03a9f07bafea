package strictlite

import (
	"bytes"
	"testing"
)

// literalRow steps onto a row holding one value of every runtime type:
// column 0 INTEGER, 1 FLOAT, 2 TEXT, 3 BLOB, 4 NULL.
func literalRow(t *testing.T, conn *Conn) *Stmt {
	t.Helper()
	return queryRow(t, conn, "SELECT 1, 2.5, 'abc', x'010203', NULL")
}

func TestCheckAcceptsMatchingType(t *testing.T) {
	conn := openTestConn(t)
	stmt := literalRow(t, conn)

	tok, err := stmt.Check(0, TypeInteger)
	if err != nil {
		t.Fatalf("check integer: %v", err)
	}
	v, err := stmt.LoadInt64(tok)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v != 1 {
		t.Errorf("LoadInt64 = %d, want 1", v)
	}
}

func TestCheckRejectsEveryOtherType(t *testing.T) {
	conn := openTestConn(t)
	stmt := literalRow(t, conn)

	// every column against every wrong expectation, conversion is never
	// an option
	actual := []ColumnType{TypeInteger, TypeFloat, TypeText, TypeBlob, TypeNull}
	for i, have := range actual {
		for _, want := range []ColumnType{TypeInteger, TypeFloat, TypeText, TypeBlob, TypeNull} {
			_, err := stmt.Check(i, want)
			if want == have {
				if err != nil {
					t.Errorf("column %d: check %s failed: %v", i, want, err)
				}
				continue
			}
			wantCode(t, err, CodeMismatch)
		}
	}
}

func TestCheckOutOfRange(t *testing.T) {
	conn := openTestConn(t)
	stmt := literalRow(t, conn)

	_, err := stmt.Check(5, TypeInteger)
	wantCode(t, err, CodeRange)
	_, err = stmt.Check(-1, TypeInteger)
	wantCode(t, err, CodeRange)
}

func TestCheckCapturesLength(t *testing.T) {
	conn := openTestConn(t)
	stmt := queryRow(t, conn, "SELECT 'hello', x'0102030405'")

	tok, err := stmt.Check(0, TypeText)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if tok.Len() != 5 {
		t.Errorf("text token Len = %d, want 5", tok.Len())
	}

	tok, err = stmt.Check(1, TypeBlob)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if tok.Len() != 5 {
		t.Errorf("blob token Len = %d, want 5", tok.Len())
	}
}

func TestTokenStaleAfterStep(t *testing.T) {
	conn := openTestConn(t)
	mustExec(t, conn, "CREATE TABLE t(x); INSERT INTO t VALUES (1), (2)")
	stmt := mustPrepare(t, conn, "SELECT x FROM t")

	stepRow(t, stmt)
	tok, err := stmt.Check(0, TypeInteger)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	stepRow(t, stmt)

	// the token was minted on the previous row
	_, err = stmt.LoadInt64(tok)
	wantCode(t, err, CodeMisuse)
}

func TestTokenStaleAfterReset(t *testing.T) {
	conn := openTestConn(t)
	stmt := queryRow(t, conn, "SELECT 'abc'")

	tok, err := stmt.Check(0, TypeText)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := stmt.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	_, err = stmt.LoadText(tok)
	wantCode(t, err, CodeMisuse)
}

func TestTokenStaleAfterBind(t *testing.T) {
	conn := openTestConn(t)
	stmt := mustPrepare(t, conn, "SELECT 'abc' WHERE ?1 IS NULL OR 1")
	stepRow(t, stmt)

	tok, err := stmt.Check(0, TypeText)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := stmt.BindInt64(1, 7); err != nil {
		t.Fatalf("bind: %v", err)
	}
	_, err = stmt.LoadText(tok)
	wantCode(t, err, CodeMisuse)
}

func TestCheckNullable(t *testing.T) {
	conn := openTestConn(t)
	stmt := queryRow(t, conn, "SELECT 42, NULL")

	tok, present, err := stmt.CheckNullable(0, TypeInteger)
	if err != nil {
		t.Fatalf("check nullable: %v", err)
	}
	if !present {
		t.Fatalf("non-NULL column reported absent")
	}
	if v, err := stmt.LoadInt64(tok); err != nil || v != 42 {
		t.Errorf("LoadInt64 = %d, %v", v, err)
	}

	_, present, err = stmt.CheckNullable(1, TypeInteger)
	if err != nil {
		t.Fatalf("check nullable NULL: %v", err)
	}
	if present {
		t.Errorf("NULL column reported present")
	}

	// NULL is absence, not a type one can expect optionally
	_, _, err = stmt.CheckNullable(0, TypeNull)
	wantCode(t, err, CodeMisuse)
}

func TestNullableStillRejectsWrongType(t *testing.T) {
	conn := openTestConn(t)
	stmt := queryRow(t, conn, "SELECT 'abc'")

	_, _, err := stmt.CheckNullable(0, TypeInteger)
	wantCode(t, err, CodeMismatch)
}

func TestLoadTextAndBlob(t *testing.T) {
	conn := openTestConn(t)
	stmt := queryRow(t, conn, "SELECT 'abc', x'0a0b'")

	tok, err := stmt.Check(0, TypeText)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	txt, err := stmt.LoadText(tok)
	if err != nil {
		t.Fatalf("load text: %v", err)
	}
	if !txt.Equal(NewText("abc")) {
		t.Errorf("LoadText = %q", txt)
	}

	tok, err = stmt.Check(1, TypeBlob)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	blob, err := stmt.LoadBlob(tok)
	if err != nil {
		t.Fatalf("load blob: %v", err)
	}
	if !bytes.Equal(blob, []byte{0x0a, 0x0b}) {
		t.Errorf("LoadBlob = %v", blob)
	}
}

func TestRepeatedLoadsAreIdentical(t *testing.T) {
	conn := openTestConn(t)
	stmt := queryRow(t, conn, "SELECT 'stable-text', x'0102030405'")

	// Two full check+load cycles on the same row, with no intervening
	// bind, step or reset, must read back the same bytes.
	tok, err := stmt.Check(0, TypeText)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	first, err := stmt.LoadText(tok)
	if err != nil {
		t.Fatalf("load text: %v", err)
	}
	tok, err = stmt.Check(0, TypeText)
	if err != nil {
		t.Fatalf("re-check: %v", err)
	}
	second, err := stmt.LoadText(tok)
	if err != nil {
		t.Fatalf("re-load text: %v", err)
	}
	if !first.Equal(second) {
		t.Errorf("repeated LoadText differ: %q then %q", first, second)
	}
	if !first.Equal(NewText("stable-text")) {
		t.Errorf("LoadText = %q", first)
	}

	tok, err = stmt.Check(1, TypeBlob)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	b1, err := stmt.LoadBlob(tok)
	if err != nil {
		t.Fatalf("load blob: %v", err)
	}
	tok, err = stmt.Check(1, TypeBlob)
	if err != nil {
		t.Fatalf("re-check: %v", err)
	}
	b2, err := stmt.LoadBlob(tok)
	if err != nil {
		t.Fatalf("re-load blob: %v", err)
	}
	if !bytes.Equal(b1, b2) {
		t.Errorf("repeated LoadBlob differ: %v then %v", b1, b2)
	}
	if !bytes.Equal(b1, []byte{1, 2, 3, 4, 5}) {
		t.Errorf("LoadBlob = %v", b1)
	}
}

func TestLoadEmptyTextAndBlob(t *testing.T) {
	conn := openTestConn(t)
	stmt := queryRow(t, conn, "SELECT '', x''")

	tok, err := stmt.Check(0, TypeText)
	if err != nil {
		t.Fatalf("check empty text: %v", err)
	}
	if tok.Len() != 0 {
		t.Errorf("empty text Len = %d", tok.Len())
	}
	txt, err := stmt.LoadText(tok)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if txt.Len() != 0 {
		t.Errorf("LoadText = %q, want empty", txt)
	}

	tok, err = stmt.Check(1, TypeBlob)
	if err != nil {
		t.Fatalf("check empty blob: %v", err)
	}
	blob, err := stmt.LoadBlob(tok)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(blob) != 0 {
		t.Errorf("LoadBlob = %v, want empty", blob)
	}
}

func TestLoadIntoFixedBuffer(t *testing.T) {
	conn := openTestConn(t)
	stmt := queryRow(t, conn, "SELECT x'0102030405'")

	tok, err := stmt.Check(0, TypeBlob)
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	// exact fit succeeds
	buf := make([]byte, 5)
	n, err := stmt.LoadInto(tok, buf)
	if err != nil {
		t.Fatalf("load into: %v", err)
	}
	if n != 5 || !bytes.Equal(buf, []byte{1, 2, 3, 4, 5}) {
		t.Errorf("LoadInto = %d, %v", n, buf)
	}

	// one byte short fails whole, never truncates
	short := make([]byte, 4)
	_, err = stmt.LoadInto(tok, short)
	wantCode(t, err, CodeMismatch)
	if !bytes.Equal(short, make([]byte, 4)) {
		t.Errorf("short buffer was written despite the error: %v", short)
	}
}

func TestWithRawBytes(t *testing.T) {
	conn := openTestConn(t)
	stmt := queryRow(t, conn, "SELECT x'cafe'")

	tok, err := stmt.Check(0, TypeBlob)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var got []byte
	err = stmt.WithRawBytes(tok, func(b []byte) error {
		got = append(got, b...)
		return nil
	})
	if err != nil {
		t.Fatalf("with raw bytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0xca, 0xfe}) {
		t.Errorf("raw bytes = %v", got)
	}
}

func TestAppendText(t *testing.T) {
	conn := openTestConn(t)
	stmt := queryRow(t, conn, "SELECT 'world'")

	tok, err := stmt.Check(0, TypeText)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	dst := []byte("hello ")
	dst, err = stmt.AppendText(tok, dst)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if string(dst) != "hello world" {
		t.Errorf("AppendText = %q", dst)
	}
}

func TestConsumeRejectsForeignTokenType(t *testing.T) {
	conn := openTestConn(t)
	stmt := queryRow(t, conn, "SELECT 1")

	tok, err := stmt.Check(0, TypeInteger)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	// an integer token is not loadable as text
	_, err = stmt.LoadText(tok)
	wantCode(t, err, CodeMisuse)
}
