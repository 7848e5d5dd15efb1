package split

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultPrefix = "chunk"
	DefaultExt    = ".pdf"
)

// Request describes one split run.
type Request struct {
	Input     string
	OutputDir string
	Directive Directive

	// Prefix and Ext name the chunk files; empty values fall back to
	// DefaultPrefix and the input's extension (or DefaultExt).
	Prefix string
	Ext    string
}

// Runner plans a document and extracts every chunk.
type Runner struct {
	Loader   Loader
	Verifier Verifier
	Log      *slog.Logger

	// Concurrency bounds parallel extraction. Values <= 1 extract chunks
	// one at a time in increasing order.
	Concurrency int

	// OnPlan is called once the document has been planned, before any
	// chunk is written.
	OnPlan func(pageCount int, ranges []PageRange)

	// OnChunk is called once per written chunk. Calls never overlap; with
	// Concurrency > 1 they arrive in completion order.
	OnChunk func(Artifact)
}

// Run loads req.Input and splits it.
func (r *Runner) Run(ctx context.Context, req Request) ([]Artifact, error) {
	if err := req.Directive.Validate(); err != nil {
		return nil, err
	}
	doc, err := r.Loader.Load(req.Input)
	if err != nil {
		return nil, &Error{Kind: KindLoad, Path: req.Input, Err: err}
	}
	return r.Split(ctx, doc, req)
}

// Split plans doc and writes one chunk per planned range. The first failure
// aborts the run; chunks written before it are left in place.
func (r *Runner) Split(ctx context.Context, doc Document, req Request) ([]Artifact, error) {
	log := r.logger().With("input", req.Input, "split", req.Directive.String())

	pageCount := doc.PageCount()
	ranges, err := Plan(pageCount, req.Directive)
	if err != nil {
		return nil, err
	}
	log.Debug("planned chunks", "pages", pageCount, "chunks", len(ranges))
	if r.OnPlan != nil {
		r.OnPlan(pageCount, ranges)
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, &Error{Kind: KindIO, Path: req.OutputDir, Err: err}
	}

	ext := req.Ext
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(req.Input))
	}
	if ext == "" {
		ext = DefaultExt
	}
	prefix := req.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	ex := NewExtractor(doc, req.OutputDir, prefix, ext, r.Verifier)

	var reportMu sync.Mutex
	report := func(a Artifact) {
		reportMu.Lock()
		defer reportMu.Unlock()
		log.Info("saved chunk", "chunk", a.Index, "start", a.Range.Start, "end", a.Range.End, "path", a.Path)
		if r.OnChunk != nil {
			r.OnChunk(a)
		}
	}

	if r.Concurrency <= 1 {
		out := make([]Artifact, 0, len(ranges))
		for i, pr := range ranges {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			a, err := ex.Extract(i+1, pr)
			if err != nil {
				return out, err
			}
			report(a)
			out = append(out, a)
		}
		return out, nil
	}

	out := make([]Artifact, len(ranges))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Concurrency)
	for i, pr := range ranges {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := ex.Extract(i+1, pr)
			if err != nil {
				return err
			}
			report(a)
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return written(out), err
	}
	return out, nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.New(slog.DiscardHandler)
}

// written drops the slots of chunks that never completed.
func written(arts []Artifact) []Artifact {
	out := arts[:0:0]
	for _, a := range arts {
		if a.Index != 0 {
			out = append(out, a)
		}
	}
	return out
}
