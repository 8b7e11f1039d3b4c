package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/dzikrimr/tugasmk/config"
)

// Extractor produces per-page text from contract PDFs. Digitally produced
// PDFs are read from their embedded text layer; scanned ones go through an
// OCR pass.
type Extractor struct {
	config *config.OCRConfig
}

func NewExtractor(cfg *config.OCRConfig) *Extractor {
	return &Extractor{config: cfg}
}

// Extract returns one cleaned text string per page. If the PDF has no usable
// text layer, the OCR binary is invoked as a fallback.
func (e *Extractor) Extract(ctx context.Context, pdfBytes []byte) ([]string, error) {
	if len(pdfBytes) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}

	pages, err := extractTextLayer(pdfBytes)
	if err == nil && len(pages) > 0 {
		return pages, nil
	}

	return e.runOCR(ctx, pdfBytes)
}

// extractTextLayer reads the embedded text of each page. Pages without text
// are skipped; scanned documents therefore produce an empty result and fall
// through to OCR.
func extractTextLayer(content []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = CleanText(text)
		if text == "" {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// runOCR invokes the OCR binary with a sidecar text file and splits the
// sidecar into pages on form feeds.
func (e *Extractor) runOCR(ctx context.Context, pdfBytes []byte) ([]string, error) {
	input, err := os.CreateTemp("", "contract-input-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp input: %w", err)
	}
	defer os.Remove(input.Name())
	defer input.Close()

	if _, err := input.Write(pdfBytes); err != nil {
		return nil, fmt.Errorf("write temp input: %w", err)
	}

	sidecar, err := os.CreateTemp("", "contract-sidecar-*.txt")
	if err != nil {
		return nil, fmt.Errorf("create sidecar: %w", err)
	}
	defer os.Remove(sidecar.Name())
	defer sidecar.Close()

	output, err := os.CreateTemp("", "contract-ocr-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(output.Name())
	defer output.Close()

	timeout := time.Duration(e.config.TimeoutSeconds) * time.Second
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"--sidecar", sidecar.Name(),
		"--quiet",
		"--force-ocr",
		"--language", e.config.Language,
		input.Name(), output.Name(),
	}

	cmd := exec.CommandContext(cmdCtx, e.config.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w - %s", e.config.Binary, err, stderr.String())
	}

	data, err := os.ReadFile(sidecar.Name())
	if err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}

	return splitSidecar(data), nil
}

// splitSidecar cuts the OCR sidecar text into per-page chunks. The OCR tool
// separates pages with a form feed.
func splitSidecar(data []byte) []string {
	var pages []string
	for _, chunk := range strings.Split(string(data), "\f") {
		text := CleanText(chunk)
		if text == "" {
			continue
		}
		pages = append(pages, text)
	}
	return pages
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText collapses newlines and runs of whitespace into single spaces.
func CleanText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
