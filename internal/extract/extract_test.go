package extract

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/assessgen/backend/internal/config"
)

const sampleText = "Photosynthesis converts light energy into chemical energy stored in glucose.\n"

func testFetcher(objects ObjectStore) *Fetcher {
	return NewFetcher(config.FetchConfig{Timeout: 2 * time.Second, MaxBytes: 1024}, objects)
}

func passthrough(data []byte) (string, error) { return string(data), nil }

func TestFetcher_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.pdf":
			w.Write([]byte("%PDF-bytes"))
		case "/big.pdf":
			w.Write([]byte(strings.Repeat("x", 2048)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := testFetcher(nil)

	data, err := f.Fetch(context.Background(), srv.URL+"/ok.pdf")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if string(data) != "%PDF-bytes" {
		t.Errorf("unexpected body %q", data)
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/missing.pdf"); err == nil {
		t.Error("expected error for 404")
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/big.pdf"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	f := NewFetcher(config.FetchConfig{Timeout: 50 * time.Millisecond}, nil)
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected timeout error")
	}
}

func TestFetcher_UnsupportedScheme(t *testing.T) {
	f := testFetcher(nil)
	for _, ref := range []string{"ftp://host/file.pdf", "/local/file.pdf", "s3://bucket/key.pdf"} {
		if _, err := f.Fetch(context.Background(), ref); err == nil {
			t.Errorf("%s: expected error", ref)
		}
	}
}

type memoryStore map[string]string

func (m memoryStore) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	body, ok := m[bucket+"/"+key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestFetcher_ObjectStore(t *testing.T) {
	f := testFetcher(memoryStore{"materials/module-1/intro.pdf": "%PDF-object"})

	data, err := f.Fetch(context.Background(), "s3://materials/module-1/intro.pdf")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if string(data) != "%PDF-object" {
		t.Errorf("unexpected body %q", data)
	}

	if _, err := f.Fetch(context.Background(), "s3://materials/missing.pdf"); err == nil {
		t.Error("expected error for missing object")
	}
	if _, err := f.Fetch(context.Background(), "s3://materials/"); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestExtractor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/full.pdf":
			w.Write([]byte(sampleText))
		case "/short.pdf":
			w.Write([]byte("   too short   \n"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	e := NewExtractor(testFetcher(nil))
	e.parse = passthrough

	text, err := e.Extract(context.Background(), srv.URL+"/full.pdf")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if text != sampleText {
		t.Errorf("unexpected text %q", text)
	}

	tests := []struct {
		name    string
		ref     string
		wantErr error
	}{
		{"short text", srv.URL + "/short.pdf", ErrInsufficientText},
		{"server error", srv.URL + "/broken.pdf", nil},
	}
	for _, tt := range tests {
		_, err := e.Extract(context.Background(), tt.ref)
		var ee *ExtractionError
		if !errors.As(err, &ee) {
			t.Errorf("%s: expected ExtractionError, got %v", tt.name, err)
			continue
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestExtractor_ParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a PDF document at all"))
	}))
	defer srv.Close()

	_, err := NewExtractor(testFetcher(nil)).Extract(context.Background(), srv.URL)
	var ee *ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if ee.Ref != srv.URL {
		t.Errorf("expected ref %q, got %q", srv.URL, ee.Ref)
	}
}

func TestPDFText_Malformed(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("plain text"),
		[]byte("%PDF-1.4\n%%EOF"),
	}
	for _, in := range inputs {
		if _, err := PDFText(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}
