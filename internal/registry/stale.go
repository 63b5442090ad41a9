package registry

import (
	"fmt"
	"os"
)

// NeedsRebuild reports whether the command's binary is missing or older than
// its source. The source must exist; otherwise ErrCommandNotFound is returned.
//
// Equal modification times count as up to date. On filesystems with coarse
// timestamp resolution an edit saved within the same tick as the last build
// is therefore not picked up until the source is touched again.
func (r *Registry) NeedsRebuild(name string) (bool, error) {
	src, err := r.statSource(name)
	if err != nil {
		return false, err
	}

	bin, err := r.fs.Stat(r.BinaryPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("checking binary for %s: %w", name, err)
	}

	return isStale(src, bin), nil
}

func isStale(src, bin os.FileInfo) bool {
	return bin.ModTime().Before(src.ModTime())
}
