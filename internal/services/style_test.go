package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/shared"
)

func testPendingImage() *models.PendingImage {
	return &models.PendingImage{
		Path:        "/tmp/room.png",
		Filename:    "room.png",
		ContentType: "image/png",
		Size:        4,
		Data:        []byte{1, 2, 3, 4},
	}
}

func TestStyleImage(t *testing.T) {
	t.Run("successful submission", func(t *testing.T) {
		var gotStyle, gotInstructions, gotFilename, gotPartType, gotCacheControl string
		var gotCookie *http.Cookie

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/style-image" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			gotCacheControl = r.Header.Get("Cache-Control")
			gotCookie, _ = r.Cookie("s2s_auth")

			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("failed to parse multipart form: %v", err)
			}
			gotStyle = r.FormValue("style")
			gotInstructions = r.FormValue("instructions")

			file, header, err := r.FormFile("file")
			if err != nil {
				t.Fatalf("failed to read file part: %v", err)
			}
			defer file.Close()
			gotFilename = header.Filename
			gotPartType = header.Header.Get("Content-Type")

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"styledUrls": ["/static/results/out.png"], "filename": "out.png", "style": "minimal", "note": "guest preview"}`))
		}))
		defer server.Close()

		service := NewStyleService(server.URL, server.Client())
		service.SetAuthCookie("tok123")

		result, err := service.StyleImage(context.Background(), models.StyleRequest{
			Style:        "minimal",
			Instructions: "warm light",
			File:         testPendingImage(),
		})
		if err != nil {
			t.Fatalf("failed to style image: %v", err)
		}

		if gotStyle != "minimal" || gotInstructions != "warm light" {
			t.Errorf("form fields not forwarded: style=%q instructions=%q", gotStyle, gotInstructions)
		}
		if gotFilename != "room.png" || gotPartType != "image/png" {
			t.Errorf("file part wrong: filename=%q type=%q", gotFilename, gotPartType)
		}
		if gotCacheControl != "no-store" {
			t.Errorf("expected Cache-Control no-store, got %q", gotCacheControl)
		}
		if gotCookie == nil || gotCookie.Value != "tok123" {
			t.Errorf("expected session cookie to be attached, got %v", gotCookie)
		}

		if result.CanonicalURL != server.URL+"/static/results/out.png" {
			t.Errorf("expected absolute canonical URL, got %s", result.CanonicalURL)
		}
		if result.DownloadURL != server.URL+"/download/out.png" {
			t.Errorf("unexpected download URL: %s", result.DownloadURL)
		}
		if result.Note != "guest preview" {
			t.Errorf("expected note to be carried, got %q", result.Note)
		}
	})

	t.Run("absolute styled URL kept as is", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"styledUrls": ["https://cdn.example.com/out.png"]}`))
		}))
		defer server.Close()

		service := NewStyleService(server.URL, server.Client())
		result, err := service.StyleImage(context.Background(), models.StyleRequest{File: testPendingImage()})
		if err != nil {
			t.Fatalf("failed to style image: %v", err)
		}
		if result.CanonicalURL != "https://cdn.example.com/out.png" {
			t.Errorf("absolute URL should not be rewritten: %s", result.CanonicalURL)
		}
	})

	t.Run("nil file rejected before network", func(t *testing.T) {
		service := NewStyleService("http://127.0.0.1:1", nil)
		_, err := service.StyleImage(context.Background(), models.StyleRequest{})
		if !errors.Is(err, shared.ErrNoImage) {
			t.Errorf("expected ErrNoImage, got %v", err)
		}
	})

	t.Run("empty styledUrls", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"styledUrls": []}`))
		}))
		defer server.Close()

		service := NewStyleService(server.URL, server.Client())
		_, err := service.StyleImage(context.Background(), models.StyleRequest{File: testPendingImage()})
		if !errors.Is(err, shared.ErrNoImageReturned) {
			t.Errorf("expected ErrNoImageReturned, got %v", err)
		}
	})

	t.Run("backend rejection carries message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			w.Write([]byte(`{"error": "No credits remaining"}`))
		}))
		defer server.Close()

		service := NewStyleService(server.URL, server.Client())
		_, err := service.StyleImage(context.Background(), models.StyleRequest{File: testPendingImage()})
		if !errors.Is(err, shared.ErrRemoteRejected) {
			t.Fatalf("expected ErrRemoteRejected, got %v", err)
		}
		if !strings.Contains(err.Error(), "No credits remaining") {
			t.Errorf("expected backend message in error, got %v", err)
		}
	})
}

func TestExtractErrorMessage(t *testing.T) {
	tc := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{
			name:   "error key",
			body:   `{"error": "bad style"}`,
			status: 400,
			want:   "bad style",
		},
		{
			name:   "detail key",
			body:   `{"detail": "validation failed"}`,
			status: 422,
			want:   "validation failed",
		},
		{
			name:   "message key",
			body:   `{"message": "try later"}`,
			status: 503,
			want:   "try later",
		},
		{
			name:   "error preferred over detail",
			body:   `{"detail": "d", "error": "e"}`,
			status: 400,
			want:   "e",
		},
		{
			name:   "non-JSON body",
			body:   `<html>Internal Server Error</html>`,
			status: 500,
			want:   "HTTP 500",
		},
		{
			name:   "empty values fall through",
			body:   `{"error": "", "detail": ""}`,
			status: 502,
			want:   "HTTP 502",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractErrorMessage([]byte(tt.body), tt.status)
			if got != tt.want {
				t.Errorf("ExtractErrorMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCredits(t *testing.T) {
	t.Run("user credits", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/credits" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Write([]byte(`{"kind": "user", "email": "u@example.com", "verified": true, "free_credits": 3, "daily_limit": 10, "used_last_24h": 2}`))
		}))
		defer server.Close()

		service := NewStyleService(server.URL, server.Client())
		info, err := service.Credits(context.Background())
		if err != nil {
			t.Fatalf("failed to get credits: %v", err)
		}

		if info.Kind != "user" || info.FreeCredits != 3 {
			t.Errorf("unexpected credits payload: %+v", info)
		}
		if info.NextAvailableTS != nil {
			t.Errorf("expected nil next_available_ts, got %v", *info.NextAvailableTS)
		}
	})

	t.Run("guest credits with cooldown", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"kind": "guest", "guest_credits": 0, "daily_limit": 3, "used_last_24h": 3, "next_available_ts": 1700000000.5}`))
		}))
		defer server.Close()

		service := NewStyleService(server.URL, server.Client())
		info, err := service.Credits(context.Background())
		if err != nil {
			t.Fatalf("failed to get credits: %v", err)
		}
		if info.NextAvailableTS == nil || *info.NextAvailableTS != 1700000000.5 {
			t.Errorf("expected next_available_ts, got %v", info.NextAvailableTS)
		}
	})
}

func TestEnvCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/env-check" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"provider": "stability", "stability_key": true, "google_oauth": false, "public_base_url": "https://snap2style.example.com"}`))
	}))
	defer server.Close()

	service := NewStyleService(server.URL, server.Client())
	info, err := service.EnvCheck(context.Background())
	if err != nil {
		t.Fatalf("failed to get env-check: %v", err)
	}

	if info.Provider != "stability" || !info.StabilityKey || info.GoogleOAuth {
		t.Errorf("unexpected env payload: %+v", info)
	}
}

func TestDownloadImage(t *testing.T) {
	t.Run("writes file", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/download/out.png" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Write([]byte("image bytes"))
		}))
		defer server.Close()

		dest := filepath.Join(t.TempDir(), "out.png")
		service := NewStyleService(server.URL, server.Client())

		if err := service.DownloadImage(context.Background(), "out.png", dest); err != nil {
			t.Fatalf("failed to download image: %v", err)
		}

		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("failed to read downloaded file: %v", err)
		}
		if string(data) != "image bytes" {
			t.Errorf("unexpected file contents: %q", data)
		}
	})

	t.Run("missing filename", func(t *testing.T) {
		service := NewStyleService("http://127.0.0.1:1", nil)
		err := service.DownloadImage(context.Background(), "", "out.png")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("backend 404", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "not found"}`))
		}))
		defer server.Close()

		service := NewStyleService(server.URL, server.Client())
		err := service.DownloadImage(context.Background(), "missing.png", filepath.Join(t.TempDir(), "x.png"))
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}
