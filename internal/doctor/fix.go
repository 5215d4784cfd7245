package doctor

import (
	"fmt"
	"io/fs"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// fixAction is a pending chmod or mkdir.
type fixAction struct {
	path  string
	mkdir bool
	perm  fs.FileMode
}

func (a fixAction) apply(fsys afero.Fs) FixResult {
	result := FixResult{Path: a.path}

	if a.mkdir {
		if err := fsys.MkdirAll(a.path, a.perm); err != nil {
			result.Description = fmt.Sprintf("failed to create directory: %v", err)
			result.Error = errors.Wrapf(err, "creating %s", a.path)
			return result
		}
		result.Fixed = true
		result.Description = fmt.Sprintf("created with mode %04o", a.perm)
		return result
	}

	if err := fsys.Chmod(a.path, a.perm); err != nil {
		result.Description = fmt.Sprintf("failed to chmod %04o: %v", a.perm, err)
		result.Error = errors.Wrapf(err, "chmod %04o %s", a.perm, a.path)
		return result
	}
	result.Fixed = true
	result.Description = fmt.Sprintf("chmod %04o", a.perm)
	return result
}
