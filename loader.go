// Library resolution for the native SQLite engine.
//
// The engine is never bundled or linked: it is resolved at runtime from the
// host system and loaded with dlopen through purego. Resolution order:
//
//  1. the STRICTLITE_LIBRARY environment variable, if set, is used verbatim;
//  2. otherwise a list of conventional platform-specific library names is
//     tried in order until one loads.
//
// Loading happens at most once per process. Every entry point that needs the
// engine goes through ensureLibrary, so importing the package has no side
// effects and the error is reported where it can actually be handled.
package strictlite

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-pkgz/lgr"
)

// log is the package logger, silent unless SetLogger is called.
var log lgr.L = lgr.NoOp

// SetLogger routes the package's diagnostics (library resolution, busy-handler
// retries) to the given logger. Pass lgr.NoOp to silence it again.
func SetLogger(l lgr.L) {
	if l == nil {
		l = lgr.NoOp
	}
	log = l
}

// EnvLibraryPath names the environment variable that overrides library
// resolution with an explicit path to the SQLite shared library.
const EnvLibraryPath = "STRICTLITE_LIBRARY"

var (
	loadOnce sync.Once
	loadErr  error
)

// ensureLibrary loads the native library and registers all extern methods.
// Safe for concurrent use; only the first call does work.
func ensureLibrary() error {
	loadOnce.Do(func() {
		candidates := libraryCandidates()
		if p := os.Getenv(EnvLibraryPath); p != "" {
			candidates = append([]string{p}, candidates...)
		}

		var handle uintptr
		var firstErr error
		for _, name := range candidates {
			h, err := openLibrary(name)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				log.Logf("[DEBUG] strictlite: %q not loadable: %v", name, err)
				continue
			}
			log.Logf("[DEBUG] strictlite: loaded engine library %q", name)
			handle = h
			break
		}
		if handle == 0 {
			loadErr = fmt.Errorf("strictlite: unable to locate the SQLite library (set %s to an explicit path): %w",
				EnvLibraryPath, firstErr)
			return
		}
		register_sqlite3(handle)
	})
	return loadErr
}
