package strictlite

// Version returns the engine's version string, e.g. "3.46.1".
func Version() (string, error) {
	if err := ensureLibrary(); err != nil {
		return "", err
	}
	return copyCString(c_sqlite3_libversion()), nil
}

// VersionNumber returns the engine's numeric version, e.g. 3046001.
func VersionNumber() (int, error) {
	if err := ensureLibrary(); err != nil {
		return 0, err
	}
	return int(c_sqlite3_libversion_number()), nil
}
