//go:build linux

package fsutil

import (
	"os"
	"syscall"
	"time"
)

// StatTimes returns the access and modification times of path.
func StatTimes(path string) (atime, mtime time.Time, err error) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	mtime = fi.ModTime()
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		atime = time.Unix(st.Atim.Sec, st.Atim.Nsec)
	} else {
		atime = mtime
	}
	return atime, mtime, nil
}
