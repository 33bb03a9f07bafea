package strictlite

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

// define opaque pointers as-is and accept them as exact arguments
type sqlite3_db_t struct{}
type sqlite3_stmt_t struct{}

type dbHandle *sqlite3_db_t
type stmtHandle *sqlite3_stmt_t

// define all necessary private C constants
// fundamental datatype codes reported by sqlite3_column_type
const (
	c_SQLITE_INTEGER int32 = 1
	c_SQLITE_FLOAT   int32 = 2
	c_SQLITE_TEXT    int32 = 3
	c_SQLITE_BLOB    int32 = 4
	c_SQLITE_NULL    int32 = 5
)

// sqlite3_destructor_type value telling the engine to copy bound data
// immediately: ((void*)-1). Bound text and blobs never share memory with the
// caller beyond the bind call itself.
var c_SQLITE_TRANSIENT = ^uintptr(0)

// then, define C extern methods
var (
	// always use low level types here - never mix them with exported public types
	c_sqlite3_open_v2 func(
		filename unsafe.Pointer, // const char*
		db unsafe.Pointer, // sqlite3**
		flags int32,
		vfs uintptr, // const char* | NULL
	) int32

	c_sqlite3_close_v2 func(
		db unsafe.Pointer, // sqlite3*
	) int32

	c_sqlite3_errmsg func(
		db unsafe.Pointer,
	) unsafe.Pointer // const char*

	c_sqlite3_errcode func(
		db unsafe.Pointer,
	) int32

	c_sqlite3_extended_errcode func(
		db unsafe.Pointer,
	) int32

	c_sqlite3_errstr func(
		code int32,
	) unsafe.Pointer // const char*

	c_sqlite3_prepare_v3 func(
		db unsafe.Pointer, // sqlite3*
		sql unsafe.Pointer, // const char*
		nbyte int32,
		prepFlags uint32,
		stmt unsafe.Pointer, // sqlite3_stmt**
		tail unsafe.Pointer, // const char**
	) int32

	c_sqlite3_step func(
		stmt unsafe.Pointer, // sqlite3_stmt*
	) int32

	c_sqlite3_reset func(
		stmt unsafe.Pointer,
	) int32

	c_sqlite3_finalize func(
		stmt unsafe.Pointer,
	) int32

	c_sqlite3_clear_bindings func(
		stmt unsafe.Pointer,
	) int32

	c_sqlite3_db_handle func(
		stmt unsafe.Pointer,
	) unsafe.Pointer // sqlite3*

	c_sqlite3_column_count func(
		stmt unsafe.Pointer,
	) int32

	c_sqlite3_column_name func(
		stmt unsafe.Pointer,
		index int32,
	) unsafe.Pointer // const char*

	c_sqlite3_column_type func(
		stmt unsafe.Pointer,
		index int32,
	) int32

	c_sqlite3_column_decltype func(
		stmt unsafe.Pointer,
		index int32,
	) unsafe.Pointer // const char*

	c_sqlite3_column_bytes func(
		stmt unsafe.Pointer,
		index int32,
	) int32

	c_sqlite3_column_int64 func(
		stmt unsafe.Pointer,
		index int32,
	) int64

	c_sqlite3_column_double func(
		stmt unsafe.Pointer,
		index int32,
	) float64

	c_sqlite3_column_text func(
		stmt unsafe.Pointer,
		index int32,
	) unsafe.Pointer // const unsigned char*

	c_sqlite3_column_blob func(
		stmt unsafe.Pointer,
		index int32,
	) unsafe.Pointer // const void*

	c_sqlite3_bind_parameter_count func(
		stmt unsafe.Pointer,
	) int32

	c_sqlite3_bind_parameter_index func(
		stmt unsafe.Pointer,
		name string, // const char*
	) int32

	c_sqlite3_bind_null func(
		stmt unsafe.Pointer,
		index int32,
	) int32

	c_sqlite3_bind_int64 func(
		stmt unsafe.Pointer,
		index int32,
		value int64,
	) int32

	c_sqlite3_bind_double func(
		stmt unsafe.Pointer,
		index int32,
		value float64,
	) int32

	c_sqlite3_bind_text func(
		stmt unsafe.Pointer,
		index int32,
		ptr unsafe.Pointer, // const char*
		n int32,
		destructor uintptr,
	) int32

	c_sqlite3_bind_blob func(
		stmt unsafe.Pointer,
		index int32,
		ptr unsafe.Pointer, // const void*
		n int32,
		destructor uintptr,
	) int32

	c_sqlite3_changes func(
		db unsafe.Pointer,
	) int32

	c_sqlite3_total_changes func(
		db unsafe.Pointer,
	) int32

	c_sqlite3_last_insert_rowid func(
		db unsafe.Pointer,
	) int64

	c_sqlite3_busy_handler func(
		db unsafe.Pointer,
		callback uintptr, // int (*)(void*, int)
		arg uintptr, // void*
	) int32

	c_sqlite3_busy_timeout func(
		db unsafe.Pointer,
		ms int32,
	) int32

	c_sqlite3_libversion func() unsafe.Pointer // const char*

	c_sqlite3_libversion_number func() int32
)

// implement a function to register extern methods from loaded lib
// DO NOT load the lib here - that is done lazily by ensureLibrary
func register_sqlite3(handle uintptr) {
	purego.RegisterLibFunc(&c_sqlite3_open_v2, handle, "sqlite3_open_v2")
	purego.RegisterLibFunc(&c_sqlite3_close_v2, handle, "sqlite3_close_v2")
	purego.RegisterLibFunc(&c_sqlite3_errmsg, handle, "sqlite3_errmsg")
	purego.RegisterLibFunc(&c_sqlite3_errcode, handle, "sqlite3_errcode")
	purego.RegisterLibFunc(&c_sqlite3_extended_errcode, handle, "sqlite3_extended_errcode")
	purego.RegisterLibFunc(&c_sqlite3_errstr, handle, "sqlite3_errstr")
	purego.RegisterLibFunc(&c_sqlite3_prepare_v3, handle, "sqlite3_prepare_v3")
	purego.RegisterLibFunc(&c_sqlite3_step, handle, "sqlite3_step")
	purego.RegisterLibFunc(&c_sqlite3_reset, handle, "sqlite3_reset")
	purego.RegisterLibFunc(&c_sqlite3_finalize, handle, "sqlite3_finalize")
	purego.RegisterLibFunc(&c_sqlite3_clear_bindings, handle, "sqlite3_clear_bindings")
	purego.RegisterLibFunc(&c_sqlite3_db_handle, handle, "sqlite3_db_handle")
	purego.RegisterLibFunc(&c_sqlite3_column_count, handle, "sqlite3_column_count")
	purego.RegisterLibFunc(&c_sqlite3_column_name, handle, "sqlite3_column_name")
	purego.RegisterLibFunc(&c_sqlite3_column_type, handle, "sqlite3_column_type")
	purego.RegisterLibFunc(&c_sqlite3_column_decltype, handle, "sqlite3_column_decltype")
	purego.RegisterLibFunc(&c_sqlite3_column_bytes, handle, "sqlite3_column_bytes")
	purego.RegisterLibFunc(&c_sqlite3_column_int64, handle, "sqlite3_column_int64")
	purego.RegisterLibFunc(&c_sqlite3_column_double, handle, "sqlite3_column_double")
	purego.RegisterLibFunc(&c_sqlite3_column_text, handle, "sqlite3_column_text")
	purego.RegisterLibFunc(&c_sqlite3_column_blob, handle, "sqlite3_column_blob")
	purego.RegisterLibFunc(&c_sqlite3_bind_parameter_count, handle, "sqlite3_bind_parameter_count")
	purego.RegisterLibFunc(&c_sqlite3_bind_parameter_index, handle, "sqlite3_bind_parameter_index")
	purego.RegisterLibFunc(&c_sqlite3_bind_null, handle, "sqlite3_bind_null")
	purego.RegisterLibFunc(&c_sqlite3_bind_int64, handle, "sqlite3_bind_int64")
	purego.RegisterLibFunc(&c_sqlite3_bind_double, handle, "sqlite3_bind_double")
	purego.RegisterLibFunc(&c_sqlite3_bind_text, handle, "sqlite3_bind_text")
	purego.RegisterLibFunc(&c_sqlite3_bind_blob, handle, "sqlite3_bind_blob")
	purego.RegisterLibFunc(&c_sqlite3_changes, handle, "sqlite3_changes")
	purego.RegisterLibFunc(&c_sqlite3_total_changes, handle, "sqlite3_total_changes")
	purego.RegisterLibFunc(&c_sqlite3_last_insert_rowid, handle, "sqlite3_last_insert_rowid")
	purego.RegisterLibFunc(&c_sqlite3_busy_handler, handle, "sqlite3_busy_handler")
	purego.RegisterLibFunc(&c_sqlite3_busy_timeout, handle, "sqlite3_busy_timeout")
	purego.RegisterLibFunc(&c_sqlite3_libversion, handle, "sqlite3_libversion")
	purego.RegisterLibFunc(&c_sqlite3_libversion_number, handle, "sqlite3_libversion_number")
}

// Helpers

// copyCString copies a NUL-terminated C string into Go memory.
func copyCString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for {
		b := *(*byte)(unsafe.Add(p, n))
		if b == 0 {
			break
		}
		n++
	}
	if n == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), n))
}

// copyBytes copies n bytes of engine memory into a fresh Go slice.
func copyBytes(p unsafe.Pointer, n int) []byte {
	if p == nil || n <= 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(p), n))
	return out
}

// cBytes allocates a NUL-terminated copy of s in Go memory. The returned
// pointer stays valid as long as the slice is reachable; keep the slice alive
// across the native call with runtime.KeepAlive.
func cBytes(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
