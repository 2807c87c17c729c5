// Auth client for the /auth/* endpoints.
//
// The backend issues a session cookie on login/register; the value is
// captured here and persisted by the caller so styling requests can attach
// it (credentials included).
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/snap2style/s2s/internal/shared"
)

// AuthResult is the outcome of a login, registration, or OTP verification.
type AuthResult struct {
	Token   string // s2s_auth cookie value, empty if the backend set none
	Message string // optional human-readable message from the backend
}

// AuthService talks to the backend's auth endpoints.
type AuthService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAuthService creates a new auth client.
func NewAuthService(baseURL string, client *http.Client) *AuthService {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &AuthService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// Login authenticates with email and password.
func (a *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return a.postCredentials(ctx, "/auth/login", email, password)
}

// Register creates a new account. The backend logs the new user in
// immediately and sends a verification email.
func (a *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	return a.postCredentials(ctx, "/auth/register", email, password)
}

// Logout invalidates the session server-side.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, ExtractErrorMessage(body, resp.StatusCode))
	}

	return nil
}

// RequestOTP asks the backend to email a one-time verification code.
func (a *AuthService) RequestOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}

	_, err := a.postJSON(ctx, "/auth/request-otp", map[string]string{"email": email})
	return err
}

// VerifyOTP submits a 6-digit code and returns the authenticated session.
func (a *AuthService) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return nil, fmt.Errorf("%w: code must be 6 digits", shared.ErrInvalidInput)
	}

	return a.postJSON(ctx, "/auth/verify-otp", map[string]string{"email": email, "code": code})
}

// GoogleStartURL returns the backend's Google sign-in entry point, opened
// in the user's browser.
func (a *AuthService) GoogleStartURL() string {
	return a.baseURL + "/auth/google/start"
}

// GoogleIDTokenLogin exchanges a Google ID token for a backend session.
func (a *AuthService) GoogleIDTokenLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	if idToken == "" {
		return nil, fmt.Errorf("%w: id_token", shared.ErrMissingArgument)
	}
	return a.postJSON(ctx, "/auth/google-idtoken", map[string]string{"id_token": idToken})
}

// postCredentials posts an email/password pair and captures the session cookie.
func (a *AuthService) postCredentials(ctx context.Context, path, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password", shared.ErrMissingCredentials)
	}

	return a.postJSON(ctx, path, map[string]string{"email": email, "password": password})
}

// postJSON posts a JSON body to path and returns the session cookie (if
// any) plus the backend's message.
func (a *AuthService) postJSON(ctx context.Context, path string, payload map[string]string) (*AuthResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", shared.ErrAuthFailed, ExtractErrorMessage(body, resp.StatusCode))
	}

	result := &AuthResult{Token: sessionCookie(resp)}

	var msg struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &msg); err == nil {
		result.Message = msg.Message
	}

	return result, nil
}

// sessionCookie extracts the s2s_auth cookie from a response.
func sessionCookie(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == authCookieName {
			return cookie.Value
		}
	}
	return ""
}
