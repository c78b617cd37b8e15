package matrix

import (
	"io"
)

// Status is the tri-state tag attached to an upload.
type Status int

// Status values match the numeric tags used at the component boundary.
const (
	StatusError   Status = -1
	StatusPending Status = 0
	StatusValid   Status = 1
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusPending:
		return "pending"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// ParsedFile wraps a model with the name of the file it came from and the
// status of the upload. It is replaced wholesale on every upload.
type ParsedFile struct {
	Name     string
	Matrix   Matrix
	Status   Status
	Warnings []Warning
	Err      error
}

// Pending returns the placeholder shown while name is being read.
func Pending(name string) ParsedFile {
	return ParsedFile{Name: name, Status: StatusPending}
}

// Failed returns a ParsedFile in the error state.
func Failed(name string, err error) ParsedFile {
	return ParsedFile{Name: name, Status: StatusError, Err: err}
}

// Load parses r into a ParsedFile. It never returns an error: failures are
// recorded in Status and Err.
func Load(name string, r io.Reader) ParsedFile {
	res, err := Parse(r)
	if err != nil {
		return Failed(name, err)
	}
	return ParsedFile{
		Name:     name,
		Matrix:   res.Matrix,
		Status:   StatusValid,
		Warnings: res.Warnings,
	}
}

// Ready reports whether the file parsed and has something to draw.
func (f ParsedFile) Ready() bool {
	return f.Status == StatusValid && !f.Matrix.IsEmpty()
}
