package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/pagesplit/internal/pipeline"
	"github.com/dgallion1/pagesplit/internal/split"
	"github.com/go-chi/chi/v5"
)

type planRequest struct {
	PageCount int    `json:"page_count"`
	Split     string `json:"split"`
}

// handlePlan previews the ranges a directive produces without touching any
// document.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.PageCount > s.cfg.MaxPlanPages {
		jsonError(w, fmt.Sprintf("page_count exceeds limit (%d pages)", s.cfg.MaxPlanPages), http.StatusBadRequest)
		return
	}
	d, err := split.ParseDirective(req.Split)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ranges, err := split.Plan(req.PageCount, d)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	size, _ := d.ChunkSize(req.PageCount)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"page_count": req.PageCount,
		"split":      d.String(),
		"chunk_size": size,
		"chunks":     len(ranges),
		"ranges":     ranges,
	})
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	d, err := split.ParseDirective(r.FormValue("split"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if ext := strings.ToLower(filepath.Ext(filename)); ext != split.DefaultExt {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", ext), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	job := s.orchestrator.NewJob(filename, d, data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"split":    d.String(),
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/split/%s/status", job.ID),
	})
}

func (s *Server) handleSplitStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 1 {
		jsonError(w, "chunk index must be a positive integer", http.StatusBadRequest)
		return
	}
	a, ok := job.Chunk(index)
	if !ok {
		jsonError(w, fmt.Sprintf("chunk %d not available", index), http.StatusNotFound)
		return
	}

	f, err := openChunk(a.Path)
	if err != nil {
		s.log.Error("open chunk", "job_id", job.ID, "chunk", index, "error", err)
		jsonError(w, "chunk file unavailable", http.StatusGone)
		return
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		jsonError(w, "chunk file unavailable", http.StatusGone)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(a.Path)))
	w.Header().Set("X-Page-Range", a.Range.String())
	http.ServeContent(w, r, filepath.Base(a.Path), stat.ModTime(), f)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}

func openChunk(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !stat.Mode().IsRegular() {
		f.Close()
		return nil, errors.New("not a regular file")
	}
	return f, nil
}
