package pipeline

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/pagesplit/internal/split"
)

// JobStatus represents the state of a split job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusLoading   JobStatus = "loading"
	StatusSplitting JobStatus = "splitting"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks the state of a single document split.
type Job struct {
	mu sync.Mutex

	ID        string          `json:"job_id"`
	Filename  string          `json:"filename"`
	Directive split.Directive `json:"-"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	OutputDir   string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	chunks   []split.Artifact
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	PageCount     int      `json:"page_count"`
	TotalChunks   int      `json:"total_chunks"`
	ChunksWritten int      `json:"chunks_written"`
	Errors        []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs and returns them so their output can be
// discarded.
func (s *JobStore) Cleanup() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var expired []*Job
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
			expired = append(expired, job)
		}
	}
	return expired
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetPlan records the page count and number of planned chunks.
func (j *Job) SetPlan(pages, chunks int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PageCount = pages
	j.Progress.TotalChunks = chunks
	j.UpdatedAt = time.Now()
}

// AddChunk records a written chunk.
func (j *Job) AddChunk(a split.Artifact) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.chunks = append(j.chunks, a)
	j.Progress.ChunksWritten++
	j.UpdatedAt = time.Now()
}

// Chunk returns the written chunk with the given 1-based index.
func (j *Job) Chunk(index int) (split.Artifact, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, a := range j.chunks {
		if a.Index == index {
			return a, true
		}
	}
	return split.Artifact{}, false
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// ChunkInfo is the public view of a written chunk.
type ChunkInfo struct {
	Index     int    `json:"index"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
	File      string `json:"file"`
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string      `json:"job_id"`
	Filename    string      `json:"filename"`
	Split       string      `json:"split"`
	Status      JobStatus   `json:"status"`
	Phase       string      `json:"phase"`
	ContentHash string      `json:"content_hash,omitempty"`
	Progress    Progress    `json:"progress"`
	Chunks      []ChunkInfo `json:"chunks"`
}

// Snapshot returns a JSON-safe copy of the job state. Chunks are listed in
// index order.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)

	chunks := make([]ChunkInfo, 0, len(j.chunks))
	for _, a := range j.chunks {
		chunks = append(chunks, ChunkInfo{
			Index:     a.Index,
			StartPage: a.Range.Start,
			EndPage:   a.Range.End,
			File:      filepath.Base(a.Path),
		})
	}
	slices.SortFunc(chunks, func(a, b ChunkInfo) int { return a.Index - b.Index })

	return JobSnapshot{
		ID:          j.ID,
		Filename:    j.Filename,
		Split:       j.Directive.String(),
		Status:      j.Status,
		Phase:       j.Phase,
		ContentHash: j.ContentHash,
		Progress: Progress{
			PageCount:     j.Progress.PageCount,
			TotalChunks:   j.Progress.TotalChunks,
			ChunksWritten: j.Progress.ChunksWritten,
			Errors:        errs,
		},
		Chunks: chunks,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
