package strictlite

import "fmt"

// Code is an engine result code.
//
// The set mirrors the engine's primary result codes plus the extended
// constraint, readonly and busy subcodes that callers commonly dispatch on.
// Extended codes embed their primary code in the low byte; use Base to get
// the family a code belongs to.
type Code int32

// primary result codes
const (
	CodeOK        Code = 0
	CodeError     Code = 1
	CodeInternal  Code = 2
	CodePerm      Code = 3
	CodeAbort     Code = 4
	CodeBusy      Code = 5
	CodeLocked    Code = 6
	CodeNoMem     Code = 7
	CodeReadOnly  Code = 8
	CodeInterrupt Code = 9
	CodeIOErr     Code = 10
	CodeCorrupt   Code = 11
	CodeNotFound  Code = 12
	CodeFull      Code = 13
	CodeCantOpen  Code = 14
	CodeProtocol  Code = 15
	CodeEmpty     Code = 16
	CodeSchema    Code = 17
	CodeTooBig    Code = 18
	// CodeConstraint reports an aborted statement due to a constraint
	// violation; the extended subcodes below identify which one.
	CodeConstraint Code = 19
	// CodeMismatch is the dominant error of the column protocol: the column's
	// current runtime type is not the one the caller asked for, or a narrowing
	// conversion would lose data. It is never recovered from locally.
	CodeMismatch Code = 20
	// CodeMisuse reports a contract violation: bad flag combinations, a
	// non-UTF-8 path, or consuming a column token after the statement moved.
	CodeMisuse Code = 21
	CodeNoLFS  Code = 22
	CodeAuth   Code = 23
	CodeFormat Code = 24
	// CodeRange reports a parameter or column index out of bounds.
	CodeRange  Code = 25
	CodeNotADB Code = 26

	// CodeRow and CodeDone are step outcomes, not errors.
	CodeRow  Code = 100
	CodeDone Code = 101
)

// extended result codes
const (
	CodeBusyRecovery         Code = CodeBusy | (1 << 8)
	CodeBusySnapshot         Code = CodeBusy | (2 << 8)
	CodeBusyTimeout          Code = CodeBusy | (3 << 8)
	CodeReadOnlyRecovery     Code = CodeReadOnly | (1 << 8)
	CodeReadOnlyCantLock     Code = CodeReadOnly | (2 << 8)
	CodeReadOnlyRollback     Code = CodeReadOnly | (3 << 8)
	CodeReadOnlyDBMoved      Code = CodeReadOnly | (4 << 8)
	CodeCantOpenNoTempDir    Code = CodeCantOpen | (1 << 8)
	CodeCantOpenIsDir        Code = CodeCantOpen | (2 << 8)
	CodeCantOpenSymlink      Code = CodeCantOpen | (6 << 8)
	CodeConstraintCheck      Code = CodeConstraint | (1 << 8)
	CodeConstraintCommitHook Code = CodeConstraint | (2 << 8)
	CodeConstraintForeignKey Code = CodeConstraint | (3 << 8)
	CodeConstraintFunction   Code = CodeConstraint | (4 << 8)
	CodeConstraintNotNull    Code = CodeConstraint | (5 << 8)
	CodeConstraintPrimaryKey Code = CodeConstraint | (6 << 8)
	CodeConstraintTrigger    Code = CodeConstraint | (7 << 8)
	CodeConstraintUnique     Code = CodeConstraint | (8 << 8)
	CodeConstraintVTab       Code = CodeConstraint | (9 << 8)
	CodeConstraintRowID      Code = CodeConstraint | (10 << 8)
	CodeConstraintPinned     Code = CodeConstraint | (11 << 8)
	CodeConstraintDataType   Code = CodeConstraint | (12 << 8)
)

// Base returns the primary code an extended code belongs to. For primary
// codes it returns the code itself.
func (c Code) Base() Code {
	return c & 0xff
}

var codeNames = map[Code]string{
	CodeOK:         "OK",
	CodeError:      "ERROR",
	CodeInternal:   "INTERNAL",
	CodePerm:       "PERM",
	CodeAbort:      "ABORT",
	CodeBusy:       "BUSY",
	CodeLocked:     "LOCKED",
	CodeNoMem:      "NOMEM",
	CodeReadOnly:   "READONLY",
	CodeInterrupt:  "INTERRUPT",
	CodeIOErr:      "IOERR",
	CodeCorrupt:    "CORRUPT",
	CodeNotFound:   "NOTFOUND",
	CodeFull:       "FULL",
	CodeCantOpen:   "CANTOPEN",
	CodeProtocol:   "PROTOCOL",
	CodeEmpty:      "EMPTY",
	CodeSchema:     "SCHEMA",
	CodeTooBig:     "TOOBIG",
	CodeConstraint: "CONSTRAINT",
	CodeMismatch:   "MISMATCH",
	CodeMisuse:     "MISUSE",
	CodeNoLFS:      "NOLFS",
	CodeAuth:       "AUTH",
	CodeFormat:     "FORMAT",
	CodeRange:      "RANGE",
	CodeNotADB:     "NOTADB",
	CodeRow:        "ROW",
	CodeDone:       "DONE",

	CodeBusyRecovery:         "BUSY_RECOVERY",
	CodeBusySnapshot:         "BUSY_SNAPSHOT",
	CodeBusyTimeout:          "BUSY_TIMEOUT",
	CodeReadOnlyRecovery:     "READONLY_RECOVERY",
	CodeReadOnlyCantLock:     "READONLY_CANTLOCK",
	CodeReadOnlyRollback:     "READONLY_ROLLBACK",
	CodeReadOnlyDBMoved:      "READONLY_DBMOVED",
	CodeCantOpenNoTempDir:    "CANTOPEN_NOTEMPDIR",
	CodeCantOpenIsDir:        "CANTOPEN_ISDIR",
	CodeCantOpenSymlink:      "CANTOPEN_SYMLINK",
	CodeConstraintCheck:      "CONSTRAINT_CHECK",
	CodeConstraintCommitHook: "CONSTRAINT_COMMITHOOK",
	CodeConstraintForeignKey: "CONSTRAINT_FOREIGNKEY",
	CodeConstraintFunction:   "CONSTRAINT_FUNCTION",
	CodeConstraintNotNull:    "CONSTRAINT_NOTNULL",
	CodeConstraintPrimaryKey: "CONSTRAINT_PRIMARYKEY",
	CodeConstraintTrigger:    "CONSTRAINT_TRIGGER",
	CodeConstraintUnique:     "CONSTRAINT_UNIQUE",
	CodeConstraintVTab:       "CONSTRAINT_VTAB",
	CodeConstraintRowID:      "CONSTRAINT_ROWID",
	CodeConstraintPinned:     "CONSTRAINT_PINNED",
	CodeConstraintDataType:   "CONSTRAINT_DATATYPE",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(c))
}
