package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/shared"
	s2stest "github.com/snap2style/s2s/internal/testing"
)

func TestBatchStyleImages(t *testing.T) {
	t.Run("styles every image", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"a.png", "b.png", "c.png"} {
			s2stest.MustWritePNG(t, dir, name)
		}

		var mu sync.Mutex
		var seen []string
		styler := &s2stest.MockStyler{
			StyleImageFunc: func(ctx context.Context, req models.StyleRequest) (*models.StyleResult, error) {
				mu.Lock()
				seen = append(seen, req.File.Filename)
				mu.Unlock()
				return &models.StyleResult{CanonicalURL: "http://example.com/out/" + req.File.Filename}, nil
			},
		}

		result, err := BatchStyleImages(context.Background(), nil, styler, dir, BatchOpts{
			Style:     "minimal",
			RateLimit: 1000,
		})
		if err != nil {
			t.Fatalf("failed to run batch: %v", err)
		}

		if result.TotalImages != 3 || result.Successful != 3 || result.Failed != 0 {
			t.Errorf("unexpected summary: %+v", result)
		}
		if len(seen) != 3 {
			t.Errorf("expected 3 styling calls, got %d", len(seen))
		}
	})

	t.Run("per-image failures don't stop the run", func(t *testing.T) {
		dir := t.TempDir()
		s2stest.MustWritePNG(t, dir, "good.png")
		s2stest.MustWritePNG(t, dir, "bad.png")

		styler := &s2stest.MockStyler{
			StyleImageFunc: func(ctx context.Context, req models.StyleRequest) (*models.StyleResult, error) {
				if req.File.Filename == "bad.png" {
					return nil, fmt.Errorf("%w: rejected", shared.ErrRemoteRejected)
				}
				return &models.StyleResult{CanonicalURL: "http://example.com/out/good.png"}, nil
			},
		}

		result, err := BatchStyleImages(context.Background(), nil, styler, dir, BatchOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("failed to run batch: %v", err)
		}

		if result.Successful != 1 || result.Failed != 1 {
			t.Errorf("expected 1 success and 1 failure, got %+v", result)
		}

		for _, res := range result.Results {
			if res.Filename == "bad.png" && res.Success {
				t.Error("bad.png should have failed")
			}
			if res.Filename == "good.png" && !res.Success {
				t.Errorf("good.png should have succeeded: %v", res.Error)
			}
		}
	})

	t.Run("unreadable file fails individually", func(t *testing.T) {
		dir := t.TempDir()
		s2stest.MustWritePNG(t, dir, "good.png")

		// Oversized relative to the cap below.
		big := make([]byte, 2048)
		copy(big, s2stest.TinyPNG)
		if err := os.WriteFile(filepath.Join(dir, "huge.png"), big, 0644); err != nil {
			t.Fatalf("failed to write oversized file: %v", err)
		}

		styler := &s2stest.MockStyler{}
		result, err := BatchStyleImages(context.Background(), nil, styler, dir, BatchOpts{
			RateLimit:      1000,
			MaxUploadBytes: 1024,
		})
		if err != nil {
			t.Fatalf("failed to run batch: %v", err)
		}

		if result.Successful != 1 || result.Failed != 1 {
			t.Errorf("expected oversized file to fail alone, got %+v", result)
		}
		for _, res := range result.Results {
			if res.Filename == "huge.png" && !errors.Is(res.Error, shared.ErrFileTooLarge) {
				t.Errorf("expected ErrFileTooLarge for huge.png, got %v", res.Error)
			}
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := BatchStyleImages(context.Background(), nil, &s2stest.MockStyler{}, t.TempDir(), BatchOpts{})
		if !errors.Is(err, shared.ErrNoImage) {
			t.Errorf("expected ErrNoImage, got %v", err)
		}
	})

	t.Run("nil styler", func(t *testing.T) {
		_, err := BatchStyleImages(context.Background(), nil, nil, t.TempDir(), BatchOpts{})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("progress updates emitted", func(t *testing.T) {
		dir := t.TempDir()
		s2stest.MustWritePNG(t, dir, "a.png")

		prog := make(chan ProgressUpdate, 20)
		styler := &s2stest.MockStyler{}

		if _, err := BatchStyleImages(context.Background(), prog, styler, dir, BatchOpts{RateLimit: 1000}); err != nil {
			t.Fatalf("failed to run batch: %v", err)
		}
		close(prog)

		var sawRead, sawComplete bool
		for update := range prog {
			switch update.Phase {
			case ReadImage:
				sawRead = true
			case BatchStyle:
				sawComplete = true
			}
		}
		if !sawRead || !sawComplete {
			t.Errorf("expected read and completion updates, got read=%v complete=%v", sawRead, sawComplete)
		}
	})
}
