package split

import (
	"fmt"
	"strconv"
)

// PageRange is a 1-based, inclusive run of pages.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of pages in the range.
func (r PageRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether page p falls inside the range.
func (r PageRange) Contains(p int) bool {
	return p >= r.Start && p <= r.End
}

// String renders the range as a page selection, "4-6" or "10".
func (r PageRange) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// MaxChunks bounds the number of ranges a single plan may produce.
const MaxChunks = 1 << 20

// Plan partitions pages 1..pageCount into contiguous ranges according to d.
// The final range may be shorter than the chunk size. A document without
// pages is rejected with ErrEmptyDocument, and a plan of more than MaxChunks
// ranges with ErrTooManyChunks.
func Plan(pageCount int, d Directive) ([]PageRange, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if pageCount <= 0 {
		return nil, fmt.Errorf("%w (page count %d)", ErrEmptyDocument, pageCount)
	}

	size, err := d.ChunkSize(pageCount)
	if err != nil {
		return nil, err
	}

	n := (pageCount-1)/size + 1
	if n > MaxChunks {
		return nil, fmt.Errorf("%w: %s over %d pages yields %d chunks (limit %d)", ErrTooManyChunks, d, pageCount, n, MaxChunks)
	}

	ranges := make([]PageRange, 0, n)
	for start := 1; ; {
		end := pageCount
		if pageCount-start >= size {
			end = start + size - 1
		}
		ranges = append(ranges, PageRange{Start: start, End: end})
		if end >= pageCount {
			break
		}
		start = end + 1
	}
	return ranges, nil
}

// DeletionSet returns the pages of 1..pageCount outside keep, as at most two
// ranges: the pages before keep and the pages after it.
func DeletionSet(keep PageRange, pageCount int) []PageRange {
	var del []PageRange
	if keep.Start > 1 {
		del = append(del, PageRange{Start: 1, End: min(keep.Start-1, pageCount)})
	}
	if keep.End < pageCount {
		del = append(del, PageRange{Start: max(keep.End+1, 1), End: pageCount})
	}
	return del
}
