package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ocrPDF renders every page to a PNG and OCRs each one. Page texts are
// joined with a single newline so the result reads like one document.
func (t *Tesseract) ocrPDF(ctx context.Context, data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	tmpDir, err := os.MkdirTemp("", "fehu-pdf-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.Image(i)
		if err != nil {
			return "", fmt.Errorf("render pdf page %d: %w", i+1, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("encode pdf page %d: %w", i+1, err)
		}
		path := filepath.Join(tmpDir, fmt.Sprintf("page-%03d.png", i+1))
		if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
			return "", fmt.Errorf("write pdf page %d: %w", i+1, err)
		}
		txt, err := t.ocrFile(ctx, path)
		if err != nil {
			return "", err
		}
		pages = append(pages, txt)
	}
	return strings.Join(pages, "\n"), nil
}
