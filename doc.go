// Package strictlite is a strictly typed, cgo-free wrapper around a shared
// sqlite3 library, loaded at runtime with purego.
//
// The engine types every stored value at runtime and silently converts
// between types during reads. strictlite refuses to take part in that: a
// column read happens in two phases. Check compares the column's runtime
// type against the caller's expectation and, on success, returns a Token
// that freezes the value's byte length. Load consumes the token and copies
// the value out. Reading an INTEGER column as text is an error, not a
// conversion.
//
//	stmt, err := conn.Prepare("SELECT id, name FROM users")
//	...
//	st, err := stmt.Step()
//	...
//	tok, err := stmt.Check(0, strictlite.TypeInteger)
//	if err != nil {
//		// the column held something other than an integer
//	}
//	id, err := stmt.LoadInt64(tok)
//
// Tokens are invalidated by anything that moves the statement. Step, Reset
// and every bind bump an internal generation counter; loading a token minted
// before the bump fails with CodeMisuse instead of reading memory the engine
// may have reused.
//
// One-shot helpers (Int64, Text, Scan, ScanStruct) wrap the same two-phase
// protocol and keep its semantics, including strict NULL handling: NULL is
// only readable through the Nullable variants or pointer destinations.
//
// The package also registers a database/sql driver under the name
// "strictlite" for code that wants the standard interface instead.
package strictlite
