package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	t.Run("headers and cookie header", func(t *testing.T) {
		cmd := `curl 'http://127.0.0.1:8000/credits' \
  -H 'Accept: application/json' \
  -H 'Cookie: s2s_auth=tok123; other=x'`

		session, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("failed to parse curl command: %v", err)
		}

		if session.Headers["Accept"] != "application/json" {
			t.Errorf("expected Accept header, got %v", session.Headers)
		}
		if session.Cookie != "s2s_auth=tok123; other=x" {
			t.Errorf("unexpected cookie: %v", session.Cookie)
		}
	})

	t.Run("cookie via -b flag", func(t *testing.T) {
		cmd := `curl 'http://127.0.0.1:8000/credits' -b 's2s_auth=fromflag'`

		session, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("failed to parse curl command: %v", err)
		}
		if session.Cookie != "s2s_auth=fromflag" {
			t.Errorf("unexpected cookie: %v", session.Cookie)
		}
	})

	t.Run("no headers returns error", func(t *testing.T) {
		if _, err := ParseCurlCommand([]byte("curl http://example.com")); err == nil {
			t.Error("expected error for curl command without headers")
		}
	})
}

func TestAuthToken(t *testing.T) {
	tc := []struct {
		name   string
		cookie string
		want   string
	}{
		{
			name:   "auth cookie present",
			cookie: "other=x; s2s_auth=tok123; more=y",
			want:   "tok123",
		},
		{
			name:   "auth cookie first",
			cookie: "s2s_auth=tok123",
			want:   "tok123",
		},
		{
			name:   "no auth cookie",
			cookie: "other=x",
			want:   "",
		},
		{
			name:   "empty cookie",
			cookie: "",
			want:   "",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			session := &CurlSession{Cookie: tt.cookie}
			if got := session.AuthToken(); got != tt.want {
				t.Errorf("AuthToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCurlFile(t *testing.T) {
	t.Run("reads session from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "session.sh")
		content := `curl 'http://127.0.0.1:8000/credits' -H 'Cookie: s2s_auth=filetok'`

		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write curl file: %v", err)
		}

		session, err := ParseCurlFile(path)
		if err != nil {
			t.Fatalf("failed to parse curl file: %v", err)
		}
		if session.AuthToken() != "filetok" {
			t.Errorf("expected token filetok, got %v", session.AuthToken())
		}
	})

	t.Run("missing file returns error", func(t *testing.T) {
		if _, err := ParseCurlFile("/nonexistent/session.sh"); err == nil {
			t.Error("expected error for missing curl file")
		}
	})
}
