package pdfdoc

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dgallion1/pagesplit/internal/split"
	pdflib "github.com/ledongthuc/pdf"
)

// openReader parses data with ledongthuc/pdf, independently of pdfcpu.
func openReader(data []byte) (*pdflib.Reader, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return reader, nil
}

// Verifier checks that a written chunk opens and holds the expected number
// of pages.
type Verifier struct{}

func (Verifier) Verify(path string, want split.PageRange) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read chunk: %w", err)
	}
	reader, err := openReader(data)
	if err != nil {
		return err
	}
	if got := reader.NumPage(); got != want.Len() {
		return fmt.Errorf("chunk holds %d pages, expected %d (pages %s)", got, want.Len(), want)
	}
	return nil
}
