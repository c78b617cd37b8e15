package pipeline

import (
	"context"
	"io"
	"os"

	"github.com/matzehuels/upset/pkg/errors"
	"github.com/matzehuels/upset/pkg/httputil"
	"github.com/matzehuels/upset/pkg/matrix"
)

// Stdin is read when Options.Path is "-".
var Stdin io.Reader = os.Stdin

// ReadInput returns the raw input bytes named by opts. http(s) paths are
// downloaded with f, or with an uncached fetcher when f is nil.
func ReadInput(ctx context.Context, opts Options, f *httputil.Fetcher) ([]byte, error) {
	switch {
	case opts.Reader != nil:
		data, err := io.ReadAll(opts.Reader)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileRead, err, "read %s", opts.Name)
		}
		return data, nil
	case opts.Content != "":
		return []byte(opts.Content), nil
	case opts.Path == "-":
		data, err := io.ReadAll(Stdin)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileRead, err, "read stdin")
		}
		return data, nil
	case httputil.IsURL(opts.Path):
		if f == nil {
			f = httputil.NewFetcher(nil, opts.Logger)
		}
		data, _, err := f.Fetch(ctx, opts.Path)
		return data, err
	}
	data, err := os.ReadFile(opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "file not found: %s", opts.Path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileRead, err, "read %s", opts.Path)
	}
	return data, nil
}

// ParseContent parses raw input into a model.
func ParseContent(data []byte) (*matrix.Result, error) {
	return matrix.ParseString(string(data))
}

// InputName returns the display name for path.
func InputName(path string) string {
	if httputil.IsURL(path) {
		return httputil.BaseName(path)
	}
	return errors.BaseName(path)
}
