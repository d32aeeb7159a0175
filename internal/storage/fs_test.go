package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempArchive(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempArchive(t)
	content := []byte{0xff, 0xd8, 0xff, 0xe0}
	if err := s.Write("ab/abcd.jpg", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("ab/abcd.jpg")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %x", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempArchive(t)
	_ = s.Write("de/del.png", []byte("bye"))
	if err := s.Delete("de/del.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("de/del.png"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempArchive(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.jpg",
		"/etc/shadow",
		"",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempArchive(t)
	_ = s.Write("aa/a.jpg", []byte("original"))
	if err := s.Write("aa/a.jpg", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("aa/a.jpg")
	if string(got) != "updated" {
		t.Errorf("content = %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, "aa", ".fehu-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/fehu-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "fehu-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestPathFor(t *testing.T) {
	sum := "abcdef0123"
	cases := []struct {
		mime string
		ext  string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"application/pdf", ".pdf"},
		{"application/octet-stream", ".jpg"},
	}
	for _, c := range cases {
		got := PathFor(sum, c.mime)
		want := filepath.Join("ab", sum+c.ext)
		if got != want {
			t.Errorf("PathFor(%q) = %q, want %q", c.mime, got, want)
		}
	}
	if !strings.HasPrefix(PathFor(sum, "image/png"), "ab") {
		t.Error("sharding prefix missing")
	}
}
