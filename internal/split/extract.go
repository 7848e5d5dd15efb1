package split

import (
	"fmt"
	"path/filepath"
)

// Document is a loaded paginated document. Clone must return a working copy
// whose mutation never affects the receiver or other clones.
type Document interface {
	PageCount() int
	Clone() Document
	// RemovePages deletes the given 1-based pages, addressed by their
	// numbering before the call.
	RemovePages(ranges []PageRange) error
	Save(path string) error
}

// Loader opens a document from disk.
type Loader interface {
	Load(path string) (Document, error)
}

// Verifier checks a written chunk against the range it should hold.
type Verifier interface {
	Verify(path string, want PageRange) error
}

// Artifact describes one written chunk.
type Artifact struct {
	Index int       `json:"index"`
	Range PageRange `json:"range"`
	Path  string    `json:"path"`
}

// Extractor derives chunk documents from a shared, read-only source.
type Extractor struct {
	src      Document
	pages    int
	dir      string
	prefix   string
	ext      string
	verifier Verifier
}

// NewExtractor returns an Extractor writing into dir. Chunk files are named
// <prefix>_<index><ext>.
func NewExtractor(src Document, dir, prefix, ext string, verifier Verifier) *Extractor {
	return &Extractor{
		src:      src,
		pages:    src.PageCount(),
		dir:      dir,
		prefix:   prefix,
		ext:      ext,
		verifier: verifier,
	}
}

// ChunkPath returns the destination of the chunk with the given 1-based index.
func (e *Extractor) ChunkPath(index int) string {
	return filepath.Join(e.dir, fmt.Sprintf("%s_%d%s", e.prefix, index, e.ext))
}

// Extract writes the pages of r from the source into chunk index.
func (e *Extractor) Extract(index int, r PageRange) (Artifact, error) {
	path := e.ChunkPath(index)
	if r.Start < 1 || r.End > e.pages || r.Len() == 0 {
		return Artifact{}, &Error{Kind: KindWrite, Chunk: index, Path: path,
			Err: fmt.Errorf("range %s outside 1-%d", r, e.pages)}
	}

	work := e.src.Clone()
	if del := DeletionSet(r, e.pages); len(del) > 0 {
		if err := work.RemovePages(del); err != nil {
			return Artifact{}, &Error{Kind: KindWrite, Chunk: index, Path: path,
				Err: fmt.Errorf("remove pages: %w", err)}
		}
	}
	if err := work.Save(path); err != nil {
		return Artifact{}, &Error{Kind: KindWrite, Chunk: index, Path: path, Err: err}
	}

	if e.verifier != nil {
		if err := e.verifier.Verify(path, r); err != nil {
			return Artifact{}, &Error{Kind: KindVerify, Chunk: index, Path: path, Err: err}
		}
	}

	return Artifact{Index: index, Range: r, Path: path}, nil
}
