package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/pagesplit/internal/pdfdoc"
	"github.com/dgallion1/pagesplit/internal/split"
)

// Worker processes a single split job.
type Worker struct {
	log    *slog.Logger
	runner *split.Runner
}

func NewWorker(log *slog.Logger, chunkConcurrency int, verify bool) *Worker {
	r := &split.Runner{
		Log:         log,
		Concurrency: chunkConcurrency,
	}
	if verify {
		r.Verifier = pdfdoc.Verifier{}
	}
	return &Worker{log: log, runner: r}
}

// Process loads the uploaded document and writes its chunks into the job's
// output directory. Any failure fails the whole job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Load
	job.SetStatus(StatusLoading, "loading")
	doc, err := pdfdoc.Parse(job.FileData())
	if err != nil {
		log.Error("load failed", "error", err)
		job.AddError((&split.Error{Kind: split.KindLoad, Path: job.Filename, Err: err}).Error())
		job.SetStatus(StatusFailed, "loading")
		return
	}
	// The parsed document owns the bytes from here on.
	job.SetFileData(nil)

	// Phase 2: Split
	r := *w.runner
	r.Log = log
	r.OnPlan = func(pages int, ranges []split.PageRange) {
		job.SetPlan(pages, len(ranges))
		job.SetStatus(StatusSplitting, "splitting")
	}
	r.OnChunk = job.AddChunk

	arts, err := r.Split(ctx, doc, split.Request{
		Input:     job.Filename,
		OutputDir: job.OutputDir,
		Directive: job.Directive,
		Ext:       split.DefaultExt,
	})
	if err != nil {
		log.Error("split failed", "error", err, "written", len(arts))
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, failedPhase(err))
		return
	}

	log.Info("split complete", "pages", doc.PageCount(), "chunks", len(arts))
	job.SetStatus(StatusCompleted, fmt.Sprintf("wrote %d chunks", len(arts)))
}

// failedPhase names the step a split error came from.
func failedPhase(err error) string {
	switch {
	case errors.Is(err, split.ErrInvalidDirective),
		errors.Is(err, split.ErrEmptyDocument),
		errors.Is(err, split.ErrTooManyChunks):
		return "planning"
	case split.IsKind(err, split.KindVerify):
		return "verifying"
	default:
		return "splitting"
	}
}
