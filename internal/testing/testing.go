// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/services"
)

// MockStyler is a test double for [services.Styler].
//
// Each method delegates to the corresponding func field when set; calls are
// counted so tests can assert that an operation did or did not hit the network.
type MockStyler struct {
	StyleImageFunc func(ctx context.Context, req models.StyleRequest) (*models.StyleResult, error)
	CreditsFunc    func(ctx context.Context) (*services.CreditsInfo, error)
	DownloadFunc   func(ctx context.Context, filename, destPath string) error

	StyleImageCalls int
	Base            string
}

func (m *MockStyler) StyleImage(ctx context.Context, req models.StyleRequest) (*models.StyleResult, error) {
	m.StyleImageCalls++
	if m.StyleImageFunc != nil {
		return m.StyleImageFunc(ctx, req)
	}
	return &models.StyleResult{CanonicalURL: "http://example.com/out/styled.png"}, nil
}

func (m *MockStyler) Credits(ctx context.Context) (*services.CreditsInfo, error) {
	if m.CreditsFunc != nil {
		return m.CreditsFunc(ctx)
	}
	return &services.CreditsInfo{Kind: "guest"}, nil
}

func (m *MockStyler) DownloadImage(ctx context.Context, filename, destPath string) error {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, filename, destPath)
	}
	return nil
}

func (m *MockStyler) BaseURL() string {
	if m.Base != "" {
		return m.Base
	}
	return "http://example.com"
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// TinyPNG is a valid 1x1 PNG, small enough to inline in image tests.
var TinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53, 0xde, 0x00, 0x00, 0x00,
	0x0c, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0xf8, 0xcf, 0xc0, 0x00,
	0x00, 0x03, 0x01, 0x01, 0x00, 0xc9, 0xfe, 0x92, 0xef, 0x00, 0x00, 0x00,
	0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// MustWritePNG writes TinyPNG to dir with the given name and returns the path.
func MustWritePNG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, TinyPNG, 0644); err != nil {
		t.Fatalf("Failed to write test image %s: %v", path, err)
	}
	return path
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
