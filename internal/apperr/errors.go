// Package apperr defines the error kinds surfaced by publish and delete runs.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFrontmatter   = errors.New("frontmatter not found: provide a YAML frontmatter block")
	ErrMalformedFrontmatter = errors.New("malformed frontmatter")
	ErrAlreadyExists        = errors.New("already exists")
)

// Op names the remote step that produced a RemoteError.
type Op string

// Remote steps.
const (
	OpStorageUpload  Op = "storage upload"
	OpStorageDelete  Op = "storage delete"
	OpStorageList    Op = "storage list"
	OpMetadataUpsert Op = "metadata upsert"
	OpMetadataDelete Op = "metadata delete"
	OpMetadataList   Op = "metadata list"
)

// RemoteError is returned when the remote service answers with a non-2xx status.
type RemoteError struct {
	Op     Op
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed: %d - %s", e.Op, e.Status, e.Body)
}

// IsRemote reports whether err carries a RemoteError for the given step.
func IsRemote(err error, op Op) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Op == op
}

// IOError wraps a failure to read a local file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FrontmatterError is a YAML decode or field validation failure inside the
// frontmatter block. It matches ErrMalformedFrontmatter.
type FrontmatterError struct {
	Err error
}

func (e *FrontmatterError) Error() string {
	return fmt.Sprintf("parsing YAML frontmatter: %v", e.Err)
}

func (e *FrontmatterError) Unwrap() []error {
	return []error{ErrMalformedFrontmatter, e.Err}
}

// ConfigError reports an invalid or incomplete configuration.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
