//go:build windows

package lock

import "os"

// Windows gets no cross-process exclusion; the in-process mutex still applies.

func lockFile(f *os.File) error {
	return nil
}

func unlockFile(f *os.File) error {
	return nil
}
