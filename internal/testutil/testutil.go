// Package testutil provides shared test helpers for setting up databases
// and archives.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/fehu/internal/storage"
	"github.com/starford/fehu/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "fehu-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestArchive creates a temporary archive directory with a storage.Archive.
func TestArchive(t *testing.T) (string, storage.Archive) {
	t.Helper()
	dir := t.TempDir()
	arch, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, arch
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
