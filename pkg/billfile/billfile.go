// Package billfile stores rendered bills as plain text files, with an
// optional PDF copy, under a bills directory.
package billfile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/afero"
)

const nameLayout = "20060102_150405"

// Writer writes bill files to a filesystem. Use afero.NewOsFs in production
// and afero.NewMemMapFs in tests.
type Writer struct {
	fs     afero.Fs
	dir    string
	prefix string
	pdf    bool
}

// NewWriter creates a bill file writer rooted at dir.
func NewWriter(fs afero.Fs, dir, prefix string, withPDF bool) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{fs: fs, dir: dir, prefix: prefix, pdf: withPDF}
}

// Filename returns the text file name for a bill issued at issuedAt,
// e.g. bill_RPP_20261018_101530.txt.
func (w *Writer) Filename(issuedAt time.Time) string {
	return fmt.Sprintf("bill_%s_%s.txt", w.prefix, issuedAt.Format(nameLayout))
}

// Write stores the bill text and returns the text file name. When PDF output
// is enabled a .pdf with the same base name is written next to it.
func (w *Writer) Write(issuedAt time.Time, text string) (string, error) {
	if err := w.fs.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("billfile: create %s: %w", w.dir, err)
	}

	name := w.Filename(issuedAt)
	if err := afero.WriteFile(w.fs, filepath.Join(w.dir, name), []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("billfile: write %s: %w", name, err)
	}

	if w.pdf {
		pdfName := strings.TrimSuffix(name, ".txt") + ".pdf"
		data, err := RenderPDF(text)
		if err != nil {
			return "", err
		}
		if err := afero.WriteFile(w.fs, filepath.Join(w.dir, pdfName), data, 0o644); err != nil {
			return "", fmt.Errorf("billfile: write %s: %w", pdfName, err)
		}
	}

	return name, nil
}

// Read returns the stored text of a bill file.
func (w *Writer) Read(name string) (string, error) {
	data, err := afero.ReadFile(w.fs, filepath.Join(w.dir, filepath.Base(name)))
	if err != nil {
		return "", fmt.Errorf("billfile: read %s: %w", name, err)
	}
	return string(data), nil
}

// RenderPDF lays fixed-width bill text onto an A4 page in a monospace font
// so the columns line up as they do on paper.
func RenderPDF(text string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	pdf.SetFont("Courier", "", 10)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, line := range strings.Split(text, "\n") {
		pdf.CellFormat(0, 4.5, tr(line), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("billfile: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
