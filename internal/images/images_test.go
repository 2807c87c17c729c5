package images

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snap2style/s2s/internal/shared"
	s2stest "github.com/snap2style/s2s/internal/testing"
)

func TestDetectImageType(t *testing.T) {
	tc := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{
			name:     "png extension",
			filename: "photo.png",
			data:     nil,
			want:     "image/png",
		},
		{
			name:     "jpeg extension",
			filename: "photo.jpg",
			data:     nil,
			want:     "image/jpeg",
		},
		{
			name:     "no extension sniffs content",
			filename: "photo",
			data:     s2stest.TinyPNG,
			want:     "image/png",
		},
		{
			name:     "no extension plain text",
			filename: "notes",
			data:     []byte("just some text"),
			want:     "text/plain; charset=utf-8",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectImageType(tt.filename, tt.data)
			if got != tt.want {
				t.Errorf("DetectImageType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDataURL(t *testing.T) {
	got := DataURL("image/png", []byte{1, 2, 3})
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("unexpected data URL prefix: %v", got)
	}
}

func TestReadImage(t *testing.T) {
	t.Run("valid png", func(t *testing.T) {
		path := s2stest.MustWritePNG(t, t.TempDir(), "room.png")

		pending, err := ReadImage(path, 0, 0)
		if err != nil {
			t.Fatalf("failed to read image: %v", err)
		}

		if pending.Filename != "room.png" {
			t.Errorf("expected filename room.png, got %s", pending.Filename)
		}
		if pending.ContentType != "image/png" {
			t.Errorf("expected image/png, got %s", pending.ContentType)
		}
		if pending.Size != int64(len(s2stest.TinyPNG)) {
			t.Errorf("expected size %d, got %d", len(s2stest.TinyPNG), pending.Size)
		}
		if pending.Width != 1 || pending.Height != 1 {
			t.Errorf("expected 1x1 dimensions, got %dx%d", pending.Width, pending.Height)
		}
		if !strings.HasPrefix(pending.PreviewDataURL, "data:image/") {
			t.Errorf("expected preview data URL, got %q", pending.PreviewDataURL[:min(len(pending.PreviewDataURL), 40)])
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadImage("/nonexistent/room.png", 0, 0)
		if !errors.Is(err, shared.ErrFileRead) {
			t.Errorf("expected ErrFileRead, got %v", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		_, err := ReadImage(t.TempDir(), 0, 0)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("oversized file", func(t *testing.T) {
		path := s2stest.MustWritePNG(t, t.TempDir(), "room.png")

		_, err := ReadImage(path, 10, 0)
		if !errors.Is(err, shared.ErrFileTooLarge) {
			t.Errorf("expected ErrFileTooLarge, got %v", err)
		}
	})

	t.Run("non-image rejected", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "notes.txt")
		if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}

		_, err := ReadImage(path, 0, 0)
		if !errors.Is(err, shared.ErrInvalidImageType) {
			t.Errorf("expected ErrInvalidImageType, got %v", err)
		}
	})

	t.Run("declared image with undecodable bytes still loads", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "broken.png")
		if err := os.WriteFile(path, []byte("not real png bytes"), 0644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}

		pending, err := ReadImage(path, 0, 0)
		if err != nil {
			t.Fatalf("expected declared image to load, got %v", err)
		}
		if pending.Width != 0 || pending.Height != 0 {
			t.Errorf("expected zero dimensions for undecodable image, got %dx%d", pending.Width, pending.Height)
		}
		if pending.PreviewDataURL == "" {
			t.Error("expected raw-bytes preview fallback")
		}
	})
}

func TestListImages(t *testing.T) {
	t.Run("filters to image extensions", func(t *testing.T) {
		tmpDir := t.TempDir()
		s2stest.MustWritePNG(t, tmpDir, "b.png")
		s2stest.MustWritePNG(t, tmpDir, "a.jpg")
		if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
		if err := os.Mkdir(filepath.Join(tmpDir, "sub.png"), 0755); err != nil {
			t.Fatalf("failed to create subdirectory: %v", err)
		}

		paths, err := ListImages(tmpDir)
		if err != nil {
			t.Fatalf("failed to list images: %v", err)
		}

		if len(paths) != 2 {
			t.Fatalf("expected 2 images, got %d: %v", len(paths), paths)
		}
		if filepath.Base(paths[0]) != "a.jpg" || filepath.Base(paths[1]) != "b.png" {
			t.Errorf("expected sorted [a.jpg b.png], got %v", paths)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := ListImages("/nonexistent/dir"); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
