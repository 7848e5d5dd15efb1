// Package pdfdoc adapts PDF files to the split.Document contract.
//
// A Document holds the complete file image in memory. Page removal rewrites
// the image through pdfcpu, so clones never share mutable state.
package pdfdoc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgallion1/pagesplit/internal/split"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	_ split.Document = (*Document)(nil)
	_ split.Loader   = Loader{}
	_ split.Verifier = Verifier{}
)

var disableConfigDir sync.Once

// newConfiguration returns a fresh pdfcpu configuration. pdfcpu records the
// running command on the configuration, so calls never share one.
func newConfiguration() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	// Classic xref tables keep the output readable by simpler PDF readers.
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// Document is an in-memory PDF.
type Document struct {
	data  []byte
	pages int
}

// Loader opens PDFs from disk.
type Loader struct{}

func (Loader) Load(path string) (split.Document, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Load reads and validates the PDF at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return Parse(data)
}

// Parse validates data as a PDF and counts its pages.
func Parse(data []byte) (*Document, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	return &Document{data: data, pages: ctx.PageCount}, nil
}

func (d *Document) PageCount() int {
	return d.pages
}

func (d *Document) Clone() split.Document {
	return &Document{data: bytes.Clone(d.data), pages: d.pages}
}

// RemovePages deletes the given pages, numbered as in the current image.
func (d *Document) RemovePages(ranges []split.PageRange) error {
	if len(ranges) == 0 {
		return nil
	}
	selection := make([]string, 0, len(ranges))
	removed := 0
	for _, r := range ranges {
		if r.Start < 1 || r.End > d.pages || r.Len() == 0 {
			return fmt.Errorf("page range %s outside 1-%d", r, d.pages)
		}
		selection = append(selection, r.String())
		removed += r.Len()
	}

	var out bytes.Buffer
	if err := api.RemovePages(bytes.NewReader(d.data), &out, selection, newConfiguration()); err != nil {
		return fmt.Errorf("pdfcpu remove pages %v: %w", selection, err)
	}
	d.data = out.Bytes()
	d.pages -= removed
	return nil
}

// Save writes the document to path. The file is written under a temporary
// name in the same directory and renamed into place.
func (d *Document) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pagesplit-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(d.data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename chunk: %w", err)
	}
	return nil
}
