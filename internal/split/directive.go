package split

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects how a Directive is resolved into a chunk size.
type Mode int

const (
	// ModeFixedSize puts N pages in every chunk.
	ModeFixedSize Mode = iota
	// ModeChunkCount targets N chunks of ceil(pages/N) pages each.
	ModeChunkCount
)

// chunkCountPrefix marks a chunk-count token on the command line, e.g. "c5".
const chunkCountPrefix = "c"

// Directive is the user's splitting policy.
type Directive struct {
	Mode Mode
	N    int
}

// FixedSize returns a directive producing chunks of n pages.
func FixedSize(n int) Directive {
	return Directive{Mode: ModeFixedSize, N: n}
}

// ChunkCount returns a directive producing at most k evenly sized chunks.
func ChunkCount(k int) Directive {
	return Directive{Mode: ModeChunkCount, N: k}
}

// ParseDirective parses a bare page count ("30") or a chunk count ("c5").
func ParseDirective(token string) (Directive, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return Directive{}, fmt.Errorf("%w: empty split token", ErrInvalidDirective)
	}

	mode := ModeFixedSize
	digits := s
	if strings.HasPrefix(s, chunkCountPrefix) {
		mode = ModeChunkCount
		digits = strings.TrimPrefix(s, chunkCountPrefix)
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return Directive{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidDirective, token)
	}
	d := Directive{Mode: mode, N: n}
	if err := d.Validate(); err != nil {
		return Directive{}, err
	}
	return d, nil
}

// Validate reports ErrInvalidDirective for non-positive sizes or counts.
func (d Directive) Validate() error {
	switch d.Mode {
	case ModeFixedSize:
		if d.N < 1 {
			return fmt.Errorf("%w: pages per chunk must be at least 1, got %d", ErrInvalidDirective, d.N)
		}
	case ModeChunkCount:
		if d.N < 1 {
			return fmt.Errorf("%w: number of chunks must be at least 1, got %d", ErrInvalidDirective, d.N)
		}
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidDirective, d.Mode)
	}
	return nil
}

// ChunkSize resolves the directive into pages per chunk for a document of
// pageCount pages. A chunk count larger than pageCount still yields a size
// of at least one page.
func (d Directive) ChunkSize(pageCount int) (int, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	if d.Mode == ModeFixedSize {
		return d.N, nil
	}
	if pageCount <= 0 {
		return 0, fmt.Errorf("%w: %s resolves to an empty chunk size for %d pages", ErrInvalidDirective, d, pageCount)
	}
	return (pageCount-1)/d.N + 1, nil
}

// String renders the directive as its command-line token.
func (d Directive) String() string {
	if d.Mode == ModeChunkCount {
		return chunkCountPrefix + strconv.Itoa(d.N)
	}
	return strconv.Itoa(d.N)
}
