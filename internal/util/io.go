package util

import "os"

// EnsureDir creates path and any missing parents with mode 0750.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0750)
}
