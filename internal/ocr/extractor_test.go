package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// stubRunner records invocations and returns canned output.
type stubRunner struct {
	out   string
	err   error
	calls [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	if s.err != nil {
		return nil, []byte("boom"), s.err
	}
	return []byte(s.out), nil, nil
}

func testExtractor(r Runner) *Tesseract {
	t := NewTesseract(Config{}, nil)
	t.runner = r
	return t
}

func TestExtractText_Image(t *testing.T) {
	stub := &stubRunner{out: "Corner Store\nTotal: $5.50\n"}
	ex := testExtractor(stub)

	got, err := ex.ExtractText(context.Background(), []byte("jpegbytes"), "image/jpeg")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Corner Store\nTotal: $5.50\n" {
		t.Errorf("text = %q", got)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(stub.calls))
	}
	call := stub.calls[0]
	if call[0] != "tesseract" {
		t.Errorf("binary = %q, want tesseract", call[0])
	}
	if !strings.HasSuffix(call[1], ".jpg") {
		t.Errorf("input file = %q, want .jpg suffix", call[1])
	}
	want := []string{"stdout", "-l", "eng"}
	for i, w := range want {
		if call[2+i] != w {
			t.Errorf("arg %d = %q, want %q", 2+i, call[2+i], w)
		}
	}
}

func TestExtractText_PNGExtension(t *testing.T) {
	stub := &stubRunner{out: "x"}
	ex := testExtractor(stub)

	if _, err := ex.ExtractText(context.Background(), []byte("pngbytes"), "image/png"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(stub.calls[0][1], ".png") {
		t.Errorf("input file = %q, want .png suffix", stub.calls[0][1])
	}
}

func TestExtractText_UnsupportedMIME(t *testing.T) {
	stub := &stubRunner{out: "should not run"}
	ex := testExtractor(stub)

	got, err := ex.ExtractText(context.Background(), []byte("plain"), "text/plain")
	if err != nil {
		t.Fatalf("unsupported mime must not error: %v", err)
	}
	if got != "" {
		t.Errorf("text = %q, want empty", got)
	}
	if len(stub.calls) != 0 {
		t.Errorf("tesseract invoked %d times for unsupported mime", len(stub.calls))
	}
}

func TestExtractText_RunnerError(t *testing.T) {
	stub := &stubRunner{err: errors.New("exit status 1")}
	ex := testExtractor(stub)

	_, err := ex.ExtractText(context.Background(), []byte("jpegbytes"), "image/jpeg")
	if err == nil {
		t.Fatal("want error from failing tesseract")
	}
	if !strings.Contains(err.Error(), "tesseract") {
		t.Errorf("error = %v, want tesseract wrapping", err)
	}
}

func TestNewTesseract_Defaults(t *testing.T) {
	ex := NewTesseract(Config{}, nil)
	if ex.cfg.Tesseract != "tesseract" {
		t.Errorf("binary = %q", ex.cfg.Tesseract)
	}
	if ex.cfg.Lang != "eng" {
		t.Errorf("lang = %q", ex.cfg.Lang)
	}
}
