// Package ingest watches an inbox directory and feeds dropped receipt
// files through the ingestion pipeline.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/fehu/internal/apperr"
	"github.com/starford/fehu/internal/models"
)

// processedDir is created under the inbox; handled files are moved there.
const processedDir = "processed"

// settleDelay debounces per-file events so a file still being copied into
// the inbox is not read half-written.
const settleDelay = 500 * time.Millisecond

// Ingester is the slice of the service layer the watcher needs.
type Ingester interface {
	Ingest(ctx context.Context, owner string, data []byte, mimeType string) (*models.Receipt, error)
}

var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

// Watch starts an fsnotify watcher on the inbox directory and processes
// dropped files until ctx is cancelled. Files already present at startup
// are processed first. Every handled file, including duplicates and files
// that yield no text, is moved to the processed subdirectory; only files
// that fail with a transient error stay in place.
func Watch(ctx context.Context, svc Ingester, inbox, owner string, logger *slog.Logger) error {
	if err := os.MkdirAll(filepath.Join(inbox, processedDir), 0o755); err != nil {
		return fmt.Errorf("ingest: create processed dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(inbox); err != nil {
		return fmt.Errorf("ingest: watch inbox: %w", err)
	}

	logger.Info("watcher: started", slog.String("inbox", inbox), slog.String("owner", owner))

	// Sweep files that were already waiting.
	entries, err := os.ReadDir(inbox)
	if err != nil {
		return fmt.Errorf("ingest: read inbox: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			processFile(ctx, svc, inbox, e.Name(), owner, logger)
		}
	}

	// Per-path debounce: the timer fires settleDelay after the last event.
	pending := make(map[string]*time.Timer)
	ready := make(chan string, 16)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case name := <-ready:
			delete(pending, name)
			processFile(ctx, svc, inbox, name, owner, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if _, supported := mimeByExt[strings.ToLower(filepath.Ext(name))]; !supported {
				continue
			}
			if t, exists := pending[name]; exists {
				t.Reset(settleDelay)
				continue
			}
			n := name
			pending[name] = time.AfterFunc(settleDelay, func() {
				select {
				case ready <- n:
				case <-ctx.Done():
				}
			})

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", werr.Error()))
		}
	}
}

// processFile ingests one inbox file and moves it to processed on any
// terminal outcome.
func processFile(ctx context.Context, svc Ingester, inbox, name, owner string, logger *slog.Logger) {
	mimeType, supported := mimeByExt[strings.ToLower(filepath.Ext(name))]
	if !supported {
		return
	}
	src := filepath.Join(inbox, name)
	data, err := os.ReadFile(src)
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("file", name), slog.String("error", err.Error()))
		return
	}

	rec, err := svc.Ingest(ctx, owner, data, mimeType)
	switch {
	case err == nil:
		logger.Info("watcher: ingested", slog.String("file", name), slog.Int64("receipt_id", rec.ID))
	case errors.Is(err, apperr.ErrDuplicate):
		logger.Info("watcher: duplicate skipped", slog.String("file", name))
	case errors.Is(err, apperr.ErrNoText):
		logger.Warn("watcher: no text extracted", slog.String("file", name))
	default:
		// Transient failure: leave the file for a later retry.
		logger.Error("watcher: ingest failed", slog.String("file", name), slog.String("error", err.Error()))
		return
	}

	dst := filepath.Join(inbox, processedDir, name)
	if _, statErr := os.Stat(dst); statErr == nil {
		dst = filepath.Join(inbox, processedDir,
			fmt.Sprintf("%d-%s", time.Now().UnixNano(), name))
	}
	if err := os.Rename(src, dst); err != nil {
		logger.Warn("watcher: move failed", slog.String("file", name), slog.String("error", err.Error()))
	}
}
