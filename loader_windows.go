//go:build windows

package strictlite

import "golang.org/x/sys/windows"

func openLibrary(name string) (uintptr, error) {
	h, err := windows.LoadLibrary(name)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func libraryCandidates() []string {
	return []string{
		"sqlite3.dll",
		"winsqlite3.dll",
	}
}
