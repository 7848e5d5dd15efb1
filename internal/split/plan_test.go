package split

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

// deletedPages enumerates DeletionSet in increasing page order.
func deletedPages(keep PageRange, pageCount int) []int {
	var pages []int
	for _, r := range DeletionSet(keep, pageCount) {
		for p := r.Start; p <= r.End; p++ {
			pages = append(pages, p)
		}
	}
	return pages
}

func TestPlan_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		pages int
		d     Directive
		want  []PageRange
	}{
		{
			name:  "fixed size with remainder",
			pages: 10,
			d:     FixedSize(3),
			want:  []PageRange{{1, 3}, {4, 6}, {7, 9}, {10, 10}},
		},
		{
			name:  "chunk count",
			pages: 10,
			d:     ChunkCount(3),
			want:  []PageRange{{1, 4}, {5, 8}, {9, 10}},
		},
		{
			name:  "size larger than document",
			pages: 5,
			d:     FixedSize(10),
			want:  []PageRange{{1, 5}},
		},
		{
			name:  "one page per chunk",
			pages: 3,
			d:     FixedSize(1),
			want:  []PageRange{{1, 1}, {2, 2}, {3, 3}},
		},
		{
			name:  "more chunks than pages",
			pages: 3,
			d:     ChunkCount(5),
			want:  []PageRange{{1, 1}, {2, 2}, {3, 3}},
		},
		{
			name:  "single chunk",
			pages: 7,
			d:     ChunkCount(1),
			want:  []PageRange{{1, 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Plan(tt.pages, tt.d)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPlan_EmptyDocument(t *testing.T) {
	for _, d := range []Directive{FixedSize(3), ChunkCount(3)} {
		ranges, err := Plan(0, d)
		if !errors.Is(err, ErrEmptyDocument) {
			t.Errorf("%s: expected ErrEmptyDocument, got %v", d, err)
		}
		if ranges != nil {
			t.Errorf("%s: expected no ranges, got %v", d, ranges)
		}
	}
}

func TestPlan_InvalidDirective(t *testing.T) {
	for _, d := range []Directive{ChunkCount(0), FixedSize(0), FixedSize(-2), ChunkCount(-1)} {
		if _, err := Plan(10, d); !errors.Is(err, ErrInvalidDirective) {
			t.Errorf("%+v: expected ErrInvalidDirective, got %v", d, err)
		}
	}
}

func TestPlan_InvalidDirectiveWinsOverEmptyDocument(t *testing.T) {
	if _, err := Plan(0, ChunkCount(0)); !errors.Is(err, ErrInvalidDirective) {
		t.Errorf("expected ErrInvalidDirective, got %v", err)
	}
}

func TestPlan_ExactPartition(t *testing.T) {
	for pages := 1; pages <= 40; pages++ {
		for n := 1; n <= 45; n++ {
			for _, d := range []Directive{FixedSize(n), ChunkCount(n)} {
				ranges, err := Plan(pages, d)
				if err != nil {
					t.Fatalf("pages=%d %s: unexpected error: %v", pages, d, err)
				}
				next := 1
				for i, r := range ranges {
					if r.Start != next {
						t.Fatalf("pages=%d %s: range %d starts at %d, expected %d", pages, d, i, r.Start, next)
					}
					if r.Len() < 1 {
						t.Fatalf("pages=%d %s: range %d is empty", pages, d, i)
					}
					next = r.End + 1
				}
				if next != pages+1 {
					t.Fatalf("pages=%d %s: ranges end at %d, expected %d", pages, d, next-1, pages)
				}
			}
		}
	}
}

func TestPlan_FixedSizeChunkCount(t *testing.T) {
	for pages := 1; pages <= 30; pages++ {
		for n := 1; n <= 12; n++ {
			ranges, err := Plan(pages, FixedSize(n))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			chunks := (pages + n - 1) / n
			if len(ranges) != chunks {
				t.Fatalf("pages=%d n=%d: expected %d chunks, got %d", pages, n, chunks, len(ranges))
			}
			for i, r := range ranges[:len(ranges)-1] {
				if r.Len() != n {
					t.Errorf("pages=%d n=%d: chunk %d has %d pages, expected %d", pages, n, i+1, r.Len(), n)
				}
			}
			last := ranges[len(ranges)-1]
			if want := pages - n*(chunks-1); last.Len() != want {
				t.Errorf("pages=%d n=%d: last chunk has %d pages, expected %d", pages, n, last.Len(), want)
			}
		}
	}
}

func TestPlan_TargetChunkCount(t *testing.T) {
	for pages := 1; pages <= 30; pages++ {
		for k := 1; k <= 12; k++ {
			ranges, err := Plan(pages, ChunkCount(k))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			size := (pages + k - 1) / k
			want := (pages + size - 1) / size
			if len(ranges) != want {
				t.Errorf("pages=%d k=%d: expected %d chunks, got %d", pages, k, want, len(ranges))
			}
			if len(ranges) > k {
				t.Errorf("pages=%d k=%d: produced %d chunks, more than requested", pages, k, len(ranges))
			}
		}
	}
}

func TestPlan_Idempotent(t *testing.T) {
	a, err := Plan(97, ChunkCount(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Plan(97, ChunkCount(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical plans, got %v and %v", a, b)
	}
}

func TestDeletionSet(t *testing.T) {
	tests := []struct {
		keep  PageRange
		pages int
		want  []PageRange
	}{
		{PageRange{1, 3}, 10, []PageRange{{4, 10}}},
		{PageRange{4, 6}, 10, []PageRange{{1, 3}, {7, 10}}},
		{PageRange{10, 10}, 10, []PageRange{{1, 9}}},
		{PageRange{1, 5}, 5, nil},
	}
	for _, tt := range tests {
		got := DeletionSet(tt.keep, tt.pages)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("keep %s of %d: expected %v, got %v", tt.keep, tt.pages, tt.want, got)
		}
	}
}

func TestDeletedPages_ComplementOfRange(t *testing.T) {
	const pages = 12
	keep := PageRange{Start: 5, End: 8}
	deleted := deletedPages(keep, pages)

	seen := make(map[int]bool)
	for _, p := range deleted {
		if keep.Contains(p) {
			t.Errorf("page %d is retained but was scheduled for deletion", p)
		}
		seen[p] = true
	}
	for p := 1; p <= pages; p++ {
		if !keep.Contains(p) && !seen[p] {
			t.Errorf("page %d is outside the range but not deleted", p)
		}
	}
	if len(deleted)+keep.Len() != pages {
		t.Errorf("expected %d deleted pages, got %d", pages-keep.Len(), len(deleted))
	}
}

func TestPlan_HugePageCount(t *testing.T) {
	tests := []struct {
		name string
		d    Directive
		want []PageRange
	}{
		{
			name: "two equal chunks",
			d:    ChunkCount(2),
			want: []PageRange{{1, 1 << 62}, {1<<62 + 1, math.MaxInt}},
		},
		{
			name: "stride near the limit",
			d:    FixedSize(math.MaxInt / 2),
			want: []PageRange{{1, math.MaxInt / 2}, {math.MaxInt/2 + 1, math.MaxInt - 1}, {math.MaxInt, math.MaxInt}},
		},
		{
			name: "single chunk",
			d:    FixedSize(math.MaxInt),
			want: []PageRange{{1, math.MaxInt}},
		},
	}
	for _, tt := range tests {
		got, err := Plan(math.MaxInt, tt.d)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestPlan_TooManyChunks(t *testing.T) {
	for _, d := range []Directive{FixedSize(2), ChunkCount(math.MaxInt)} {
		if _, err := Plan(math.MaxInt, d); !errors.Is(err, ErrTooManyChunks) {
			t.Errorf("%s: expected ErrTooManyChunks, got %v", d, err)
		}
	}
	ranges, err := Plan(MaxChunks, FixedSize(1))
	if err != nil {
		t.Fatalf("unexpected error at the limit: %v", err)
	}
	if len(ranges) != MaxChunks {
		t.Errorf("expected %d ranges, got %d", MaxChunks, len(ranges))
	}
}

func TestPageRange_String(t *testing.T) {
	if got := (PageRange{4, 6}).String(); got != "4-6" {
		t.Errorf("expected %q, got %q", "4-6", got)
	}
	if got := (PageRange{10, 10}).String(); got != "10" {
		t.Errorf("expected %q, got %q", "10", got)
	}
}
