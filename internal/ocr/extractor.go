// Package ocr turns uploaded receipt files into plain text by shelling out
// to the tesseract binary. PDFs are rasterized page by page before OCR.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Extractor produces the raw text of a receipt file. An unsupported MIME
// type yields empty text and no error; the caller decides what an empty
// extraction means.
type Extractor interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Config holds the external-binary settings for Tesseract.
type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Lang      string // default "eng"
}

// Tesseract is the exec-based Extractor.
type Tesseract struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewTesseract creates an Extractor that shells out to tesseract.
func NewTesseract(cfg Config, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Tesseract{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// ExtractText dispatches on MIME type. JPEG and PNG bytes go straight to
// tesseract; PDFs are rendered to page images first. Anything else returns
// empty text without error.
func (t *Tesseract) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch mt {
	case "image/jpeg", "image/png":
		return t.ocrImage(ctx, data, extForMIME(mt))
	case "application/pdf":
		return t.ocrPDF(ctx, data)
	default:
		t.logger.Debug("skipping unsupported mime type", "mime_type", mimeType)
		return "", nil
	}
}

// ocrImage writes the bytes to a temp file and runs
// tesseract <file> stdout -l <lang>.
func (t *Tesseract) ocrImage(ctx context.Context, data []byte, ext string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "fehu-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "receipt"+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write temp image: %w", err)
	}
	return t.ocrFile(ctx, path)
}

func (t *Tesseract) ocrFile(ctx context.Context, path string) (string, error) {
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, path, "stdout", "-l", t.cfg.Lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

func extForMIME(mt string) string {
	if mt == "image/png" {
		return ".png"
	}
	return ".jpg"
}
