package strictlite

import (
	"errors"
	"testing"
)

func TestCodeString(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{CodeOK, "OK"},
		{CodeMismatch, "MISMATCH"},
		{CodeMisuse, "MISUSE"},
		{CodeRange, "RANGE"},
		{CodeBusyTimeout, "BUSY_TIMEOUT"},
		{CodeConstraintUnique, "CONSTRAINT_UNIQUE"},
		{Code(9999), "UNKNOWN(9999)"},
	}
	for _, c := range cases {
		if got := c.code.String(); got != c.want {
			t.Errorf("Code(%d).String() = %q, want %q", int32(c.code), got, c.want)
		}
	}
}

func TestCodeBase(t *testing.T) {
	if got := CodeConstraintUnique.Base(); got != CodeConstraint {
		t.Fatalf("Base(CONSTRAINT_UNIQUE) = %s, want CONSTRAINT", got)
	}
	if got := CodeBusySnapshot.Base(); got != CodeBusy {
		t.Fatalf("Base(BUSY_SNAPSHOT) = %s, want BUSY", got)
	}
	if got := CodeMismatch.Base(); got != CodeMismatch {
		t.Fatalf("Base(MISMATCH) = %s, want MISMATCH", got)
	}
}

func TestErrorIsMatchesByFamily(t *testing.T) {
	err := errCode(CodeConstraintUnique, "duplicate key")
	if !errors.Is(err, &Error{Code: CodeConstraint}) {
		t.Errorf("extended code should match its primary family")
	}
	if !errors.Is(err, &Error{Code: CodeConstraintUnique}) {
		t.Errorf("extended code should match itself")
	}
	if errors.Is(err, &Error{Code: CodeBusy}) {
		t.Errorf("extended code must not match a foreign family")
	}
}

func TestErrCode(t *testing.T) {
	if got := ErrCode(nil); got != CodeOK {
		t.Errorf("ErrCode(nil) = %s, want OK", got)
	}
	if got := ErrCode(errCode(CodeRange, "x")); got != CodeRange {
		t.Errorf("ErrCode = %s, want RANGE", got)
	}
	if got := ErrCode(errors.New("plain")); got != CodeError {
		t.Errorf("ErrCode(plain error) = %s, want ERROR", got)
	}
}

func TestErrorMessageFormat(t *testing.T) {
	err := errCode(CodeMisuse, "statement is finalized")
	want := "strictlite: MISUSE: statement is finalized"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	bare := &Error{Code: CodeBusy}
	if bare.Error() != "strictlite: BUSY" {
		t.Errorf("Error() without message = %q", bare.Error())
	}
}
