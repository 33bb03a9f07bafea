package strictlite

import (
	"runtime"
	"sync"
	"unicode/utf8"
	"unsafe"

	"github.com/ebitengine/purego"
)

// OpenFlags control how a database connection is opened. Exactly one of
// OpenReadOnly and OpenReadWrite must be set.
type OpenFlags int32

const (
	OpenReadOnly  OpenFlags = 0x00000001
	OpenReadWrite OpenFlags = 0x00000002
	OpenCreate    OpenFlags = 0x00000004
	OpenURI       OpenFlags = 0x00000040
	OpenMemory    OpenFlags = 0x00000080
	// OpenNoMutex selects the multi-thread engine mode: the engine does not
	// serialize access to this connection, the caller must.
	OpenNoMutex      OpenFlags = 0x00008000
	OpenFullMutex    OpenFlags = 0x00010000
	OpenSharedCache  OpenFlags = 0x00020000
	OpenPrivateCache OpenFlags = 0x00040000
	OpenNoFollow     OpenFlags = 0x01000000
	// OpenExtendedResultCodes makes step and prepare failures report extended
	// result codes without a separate opt-in call.
	OpenExtendedResultCodes OpenFlags = 0x02000000
)

// Conn is an open database connection. It owns the native handle; Close is
// close-when-idle, so statements still open keep the native handle alive
// until they are finalized.
//
// A Conn serializes its own bookkeeping but adds no locking around engine
// calls; pick OpenFullMutex or OpenNoMutex to choose who serializes those.
type Conn struct {
	db dbHandle

	mu     sync.Mutex
	closed bool
	busyID uintptr // busy-handler registry key, 0 when none installed
}

// Open opens a database at path. A path of ":memory:" (or the OpenMemory
// flag) yields a private in-memory database.
//
// Returns CodeMisuse when the flags request neither or both of read-only and
// read-write, or when path is not valid UTF-8; engine open failures are
// returned with the engine's own code and message.
func Open(path string, flags OpenFlags) (*Conn, error) {
	if err := ensureLibrary(); err != nil {
		return nil, err
	}
	if !utf8.ValidString(path) {
		return nil, errCode(CodeMisuse, "path is not valid UTF-8")
	}
	ro := flags&OpenReadOnly != 0
	rw := flags&OpenReadWrite != 0
	if ro == rw {
		return nil, errCode(CodeMisuse, "exactly one of OpenReadOnly and OpenReadWrite is required")
	}
	if ro && flags&OpenCreate != 0 {
		return nil, errCode(CodeMisuse, "OpenCreate requires OpenReadWrite")
	}

	cpath := cBytes(path)
	var db dbHandle
	rc := c_sqlite3_open_v2(unsafe.Pointer(&cpath[0]), unsafe.Pointer(&db), int32(flags), 0)
	runtime.KeepAlive(cpath)
	if rc != 0 {
		// the engine hands back a handle even on failure; read the error off
		// it and release it
		var err error
		if db != nil {
			err = dbError(db)
			c_sqlite3_close_v2(unsafe.Pointer(db))
		} else {
			err = rcError(rc)
		}
		return nil, err
	}
	log.Logf("[DEBUG] strictlite: opened %q (flags %#x)", path, int32(flags))
	return &Conn{db: db}, nil
}

// OpenInMemory opens a fresh private in-memory database.
func OpenInMemory() (*Conn, error) {
	return Open(":memory:", OpenReadWrite|OpenCreate)
}

// Close releases the connection. The native handle is closed once the last
// outstanding statement is finalized; the Conn itself is unusable immediately.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.dropBusyLocked()
	rc := c_sqlite3_close_v2(unsafe.Pointer(c.db))
	if rc != 0 {
		return rcError(rc)
	}
	return nil
}

func (c *Conn) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errCode(CodeMisuse, "connection is closed")
	}
	return nil
}

// Execute runs a batch of `;`-separated statements to completion, in order,
// re-preparing from the engine-reported tail after each statement. Empty
// statements between separators are skipped. The first failing statement's
// error is returned and the batch stops there; statements before it have
// already taken effect. The batch is not implicitly transactional.
func (c *Conn) Execute(sql string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	buf := cBytes(sql)
	defer runtime.KeepAlive(buf)
	base := uintptr(unsafe.Pointer(&buf[0]))
	offset := 0
	for offset < len(sql) {
		var stmt stmtHandle
		var tail uintptr
		rc := c_sqlite3_prepare_v3(
			unsafe.Pointer(c.db),
			unsafe.Add(unsafe.Pointer(&buf[0]), offset),
			int32(len(buf)-offset),
			0,
			unsafe.Pointer(&stmt),
			unsafe.Pointer(&tail),
		)
		if rc != 0 {
			return dbError(c.db)
		}
		advance := int(tail - (base + uintptr(offset)))
		if advance <= 0 {
			break
		}
		offset += advance
		if stmt == nil {
			// whitespace or comments between separators
			continue
		}
		if err := stepToCompletion(stmt, c.db); err != nil {
			c_sqlite3_finalize(unsafe.Pointer(stmt))
			return err
		}
		if rc := c_sqlite3_finalize(unsafe.Pointer(stmt)); rc != 0 {
			return dbError(c.db)
		}
	}
	return nil
}

func stepToCompletion(stmt stmtHandle, db dbHandle) error {
	for {
		switch Code(c_sqlite3_step(unsafe.Pointer(stmt))).Base() {
		case CodeRow:
			// discard the row, the batch API yields no data
		case CodeDone:
			return nil
		default:
			return dbError(db)
		}
	}
}

// Changes returns the number of rows changed by the most recent INSERT,
// UPDATE or DELETE on this connection.
func (c *Conn) Changes() int {
	return int(c_sqlite3_changes(unsafe.Pointer(c.db)))
}

// TotalChanges returns the number of rows changed since the connection was
// opened.
func (c *Conn) TotalChanges() int {
	return int(c_sqlite3_total_changes(unsafe.Pointer(c.db)))
}

// LastInsertRowID returns the rowid of the most recent successful INSERT.
func (c *Conn) LastInsertRowID() int64 {
	return c_sqlite3_last_insert_rowid(unsafe.Pointer(c.db))
}

// --- busy handler ---

// A single native trampoline dispatches every busy callback through a
// process-wide registry keyed by an opaque id. This keeps the number of
// purego callbacks constant and guarantees a freed handler is never entered:
// removal deletes the registry entry before the engine forgets the pointer.
var busyHandlers = struct {
	sync.Mutex
	m    map[uintptr]func(attempts int) bool
	next uintptr
}{m: make(map[uintptr]func(attempts int) bool), next: 1}

var (
	busyTrampolineOnce sync.Once
	busyTrampoline     uintptr
)

func busyTrampolinePtr() uintptr {
	busyTrampolineOnce.Do(func() {
		busyTrampoline = purego.NewCallback(func(arg uintptr, attempts int32) int32 {
			busyHandlers.Lock()
			fn := busyHandlers.m[arg]
			busyHandlers.Unlock()
			if fn == nil {
				return 0
			}
			if fn(int(attempts)) {
				log.Logf("[DEBUG] strictlite: busy, retry attempt %d", attempts)
				return 1
			}
			return 0
		})
	})
	return busyTrampoline
}

// SetBusyHandler installs fn as the busy callback: the engine invokes it when
// a resource is contended, with the number of attempts so far, and retries
// while it returns true. Installing replaces and releases any prior handler.
func (c *Conn) SetBusyHandler(fn func(attempts int) bool) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	busyHandlers.Lock()
	id := busyHandlers.next
	busyHandlers.next++
	busyHandlers.m[id] = fn
	busyHandlers.Unlock()

	rc := c_sqlite3_busy_handler(unsafe.Pointer(c.db), busyTrampolinePtr(), id)
	if rc != 0 {
		busyHandlers.Lock()
		delete(busyHandlers.m, id)
		busyHandlers.Unlock()
		return dbError(c.db)
	}
	c.dropBusyEntry(c.busyID)
	c.busyID = id
	return nil
}

// RemoveBusyHandler clears any installed busy callback; contended operations
// fail immediately with CodeBusy afterwards.
func (c *Conn) RemoveBusyHandler() error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	rc := c_sqlite3_busy_handler(unsafe.Pointer(c.db), 0, 0)
	if rc != 0 {
		return dbError(c.db)
	}
	c.dropBusyLocked()
	return nil
}

// SetBusyTimeout installs the engine's built-in time-based busy handler,
// replacing any handler set with SetBusyHandler. A timeout of 0 removes it.
func (c *Conn) SetBusyTimeout(ms int) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ms < 0 {
		ms = 0
	}
	rc := c_sqlite3_busy_timeout(unsafe.Pointer(c.db), int32(ms))
	if rc != 0 {
		return dbError(c.db)
	}
	c.dropBusyLocked()
	return nil
}

// dropBusyLocked releases the registry entry for the installed handler.
// Callers hold c.mu.
func (c *Conn) dropBusyLocked() {
	c.dropBusyEntry(c.busyID)
	c.busyID = 0
}

func (c *Conn) dropBusyEntry(id uintptr) {
	if id == 0 {
		return
	}
	busyHandlers.Lock()
	delete(busyHandlers.m, id)
	busyHandlers.Unlock()
}
