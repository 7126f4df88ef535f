//go:build !linux

package fsutil

import (
	"os"
	"time"
)

// StatTimes returns the access and modification times of path. Platforms
// without a portable atime report the modification time for both.
func StatTimes(path string) (atime, mtime time.Time, err error) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return fi.ModTime(), fi.ModTime(), nil
}
