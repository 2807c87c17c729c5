package services

import (
	"context"

	"github.com/snap2style/s2s/internal/models"
)

// Styler defines the interface for the remote styling service.
type Styler interface {
	// StyleImage submits an image with a style and free-text instructions,
	// returning the styled result with an absolute canonical URL.
	StyleImage(ctx context.Context, req models.StyleRequest) (*models.StyleResult, error)

	// Credits retrieves the caller's credit and daily-limit state.
	Credits(ctx context.Context) (*CreditsInfo, error)

	// DownloadImage fetches a styled image by filename into destPath.
	DownloadImage(ctx context.Context, filename, destPath string) error

	// BaseURL returns the service's base URL.
	BaseURL() string
}

// CreditsInfo is the payload of GET /credits for users and guests.
type CreditsInfo struct {
	Kind            string   `json:"kind"` // "user" or "guest"
	Email           string   `json:"email,omitempty"`
	Verified        bool     `json:"verified"`
	FreeCredits     int      `json:"free_credits,omitempty"`
	GuestCredits    int      `json:"guest_credits,omitempty"`
	DailyLimit      int      `json:"daily_limit"`
	UsedLast24h     int      `json:"used_last_24h"`
	NextAvailableTS *float64 `json:"next_available_ts"`
}

// EnvInfo is the payload of GET /env-check diagnostics.
type EnvInfo struct {
	Provider      string `json:"provider"`
	StabilityKey  bool   `json:"stability_key"`
	PublicBaseURL string `json:"public_base_url"`
	GoogleOAuth   bool   `json:"google_oauth"`
}
