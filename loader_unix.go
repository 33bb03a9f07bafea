//go:build darwin || linux || freebsd

package strictlite

import "github.com/ebitengine/purego"

func openLibrary(name string) (uintptr, error) {
	return purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func libraryCandidates() []string {
	return []string{
		"libsqlite3.so.0",
		"libsqlite3.so",
		"libsqlite3.dylib",
		"/usr/lib/libsqlite3.dylib",
	}
}
