package extract

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/rotisserie/eris"
)

// PdfToText extracts layout-preserved text from PDFs via the pdftotext CLI
// tool. Every call is bounded by a per-document timeout so one malformed
// input cannot stall a batch.
type PdfToText struct {
	binPath string
	timeout time.Duration
}

// NewPdfToText creates a PdfToText runner. Empty binPath defaults to
// "pdftotext"; a non-positive timeout defaults to 30s.
func NewPdfToText(binPath string, timeout time.Duration) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PdfToText{binPath: binPath, timeout: timeout}
}

// Run executes pdftotext -layout on the given PDF and returns stdout.
func (p *PdfToText) Run(ctx context.Context, pdfPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binPath, "-layout", pdfPath, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", eris.Wrapf(ctx.Err(), "extract: pdftotext timed out for %s", pdfPath)
		}
		return "", eris.Wrapf(err, "extract: pdftotext failed for %s: %s", pdfPath, stderr.String())
	}

	return stdout.String(), nil
}
