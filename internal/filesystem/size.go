package filesystem

import (
	"errors"
	"io/fs"
)

// DirSize returns the number of bytes held by regular files below path.
//
// The result is a best-effort snapshot: entries that cannot be read contribute
// zero instead of failing the measurement, and a missing path measures 0.
// Symlinks are not followed.
func DirSize(fsys FileSystem, path string) int64 {
	var total int64

	_ = fsys.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && p != path {
				return fs.SkipDir
			}
			if errors.Is(err, fs.ErrNotExist) && p == path {
				return fs.SkipAll
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		total += info.Size()
		return nil
	})

	return total
}
