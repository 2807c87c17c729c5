// Styling service client for POST /style-image and GET /download/{name}.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/shared"
)

const authCookieName = "s2s_auth"

// StyleService implements [Styler] against the Snap2Style HTTP backend.
type StyleService struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// NewStyleService creates a new styling client. An empty baseURL falls back
// to the local development server.
func NewStyleService(baseURL string, client *http.Client) *StyleService {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000"
	}
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	return &StyleService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// SetAuthCookie attaches a session token to subsequent requests.
// An empty token reverts to guest requests.
func (s *StyleService) SetAuthCookie(token string) {
	s.authToken = token
}

// BaseURL returns the service's base URL.
func (s *StyleService) BaseURL() string {
	return s.baseURL
}

// StyleImage submits the pending image as multipart form data.
//
// The returned result carries the canonical absolute URL and the download
// link; the cache-busted display URL is derived by the caller.
func (s *StyleService) StyleImage(ctx context.Context, req models.StyleRequest) (*models.StyleResult, error) {
	if req.File == nil {
		return nil, shared.ErrNoImage
	}
	if err := req.File.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidImageType, err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("style", req.Style); err != nil {
		return nil, fmt.Errorf("failed to write style field: %w", err)
	}
	if err := writer.WriteField("instructions", req.Instructions); err != nil {
		return nil, fmt.Errorf("failed to write instructions field: %w", err)
	}

	part, err := createFilePart(writer, req.File.Filename, req.File.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(req.File.Data); err != nil {
		return nil, fmt.Errorf("failed to write file data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/style-image", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Cache-Control", "no-store")
	s.attachSession(httpReq)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", shared.ErrRemoteRejected, ExtractErrorMessage(respBody, resp.StatusCode))
	}

	var payload struct {
		StyledUrls []string `json:"styledUrls"`
		Filename   string   `json:"filename"`
		Style      string   `json:"style"`
		Note       string   `json:"note"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("%w: undecodable response body", shared.ErrNoImageReturned)
	}
	if len(payload.StyledUrls) == 0 || payload.StyledUrls[0] == "" {
		return nil, shared.ErrNoImageReturned
	}

	// Only the first URL is used.
	canonical := shared.AbsoluteURL(s.baseURL, payload.StyledUrls[0])

	return &models.StyleResult{
		CanonicalURL: canonical,
		DownloadURL:  shared.DownloadURL(s.baseURL, canonical),
		Filename:     payload.Filename,
		Style:        payload.Style,
		Note:         payload.Note,
	}, nil
}

// Credits retrieves credit state for the current session (or guest).
func (s *StyleService) Credits(ctx context.Context) (*CreditsInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/credits", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.attachSession(httpReq)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", shared.ErrAPIRequest, ExtractErrorMessage(respBody, resp.StatusCode))
	}

	var info CreditsInfo
	if err := json.Unmarshal(respBody, &info); err != nil {
		return nil, fmt.Errorf("failed to decode credits: %w", err)
	}

	return &info, nil
}

// EnvCheck retrieves backend diagnostics from GET /env-check.
func (s *StyleService) EnvCheck(ctx context.Context) (*EnvInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/env-check", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	var info EnvInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode env-check: %w", err)
	}

	return &info, nil
}

// DownloadImage fetches GET /download/{filename} into destPath.
func (s *StyleService) DownloadImage(ctx context.Context, filename, destPath string) error {
	if filename == "" {
		return fmt.Errorf("%w: filename", shared.ErrMissingArgument)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/download/"+filename, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	s.attachSession(httpReq)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, ExtractErrorMessage(respBody, resp.StatusCode))
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}

	return nil
}

// attachSession adds the auth cookie to a request when a session is set.
func (s *StyleService) attachSession(req *http.Request) {
	if s.authToken != "" {
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: s.authToken})
	}
}

// createFilePart creates the "file" form part with an explicit content type.
func createFilePart(writer *multipart.Writer, filename, contentType string) (io.Writer, error) {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)
	return writer.CreatePart(header)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// ExtractErrorMessage pulls a human-readable message out of an error
// response body, trying error, detail, then message, and falling back to
// the HTTP status.
func ExtractErrorMessage(body []byte, status int) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"error", "detail", "message"} {
			if v, ok := payload[key].(string); ok && v != "" {
				return v
			}
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}
