package split

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDirective is returned for zero, negative or unparsable split tokens.
	ErrInvalidDirective = errors.New("cannot parse directive")
	// ErrEmptyDocument is returned when the source document has no pages.
	ErrEmptyDocument = errors.New("document has no pages")
	// ErrTooManyChunks is returned when a plan would exceed MaxChunks ranges.
	ErrTooManyChunks = errors.New("too many chunks")
)

// Kind identifies the stage of a run that failed.
type Kind string

const (
	KindLoad   Kind = "load"
	KindIO     Kind = "io"
	KindWrite  Kind = "write"
	KindVerify Kind = "verify"
)

// Error is a stage failure reported by a document collaborator. Chunk is the
// 1-based chunk index for write and verify failures and zero otherwise.
type Error struct {
	Kind  Kind
	Chunk int
	Path  string
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindLoad:
		return fmt.Sprintf("cannot load document %s: %v", e.Path, e.Err)
	case KindIO:
		return fmt.Sprintf("cannot create output directory %s: %v", e.Path, e.Err)
	case KindWrite:
		return fmt.Sprintf("cannot write chunk %d to %s: %v", e.Chunk, e.Path, e.Err)
	case KindVerify:
		return fmt.Sprintf("cannot verify chunk %d at %s: %v", e.Chunk, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err carries a stage Error of kind k.
func IsKind(err error, k Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == k
}
