package minifier

import (
	"errors"
	"fmt"
	"io/fs"
)

// Operations a FileError can report.
const (
	OpValidate = "validate"
	OpOpen     = "open"
	OpRead     = "read"
	OpCreate   = "create"
	OpWrite    = "write"
)

var (
	// ErrNotStylesheet indicates a path that failed the .css admission check.
	ErrNotStylesheet = errors.New("input needs to be a .css file")

	errInvalidText  = errors.New("content is not valid UTF-8 text")
	errNoOutputDir  = errors.New("batch mode requires an output folder")
	errDuplicateOut = errors.New("output file name already used by another input")
)

// FileError records a failure while processing one file.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e.Op == OpValidate {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("couldn't %s file %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// outputError classifies a failed write into OpCreate or OpWrite.
func outputError(path string, err error) error {
	op := OpCreate
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Op == "write" {
		op = OpWrite
	}
	return &FileError{Op: op, Path: path, Err: err}
}
