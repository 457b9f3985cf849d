// Package apputil provides utility functions for file and directory
// operations.
package apputil

import (
	"os"
	"path/filepath"
)

// EnsureDir creates the directory portion of fileName and all parents if
// they don't exist.
func EnsureDir(fileName string) (err error) {
	dirName := filepath.Dir(fileName)
	if _, err = os.Stat(dirName); err != nil {
		if err = os.MkdirAll(dirName, os.ModePerm); err != nil {
			return
		}
	}
	return nil
}

// FileExists reports whether the named file or directory exists.
func FileExists(filePath string) bool {
	_, e := os.Stat(filePath)
	return e == nil
}
