package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API         APIConfig         `toml:"api"`
	Database    DatabaseConfig    `toml:"database"`
	Upload      UploadConfig      `toml:"upload"`
	Defaults    DefaultsConfig    `toml:"defaults"`
	Server      ServerConfig      `toml:"server"`
	Credentials CredentialsConfig `toml:"credentials"`
}

// APIConfig contains settings for the remote styling service.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// UploadConfig contains local upload constraints.
//
// MaxBytes mirrors the backend's 8 MiB cap so oversized files are rejected
// before a network call is made.
type UploadConfig struct {
	MaxBytes     int64 `toml:"max_bytes"`
	PreviewMaxPx int   `toml:"preview_max_px"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DefaultsConfig contains default submission parameters.
type DefaultsConfig struct {
	Style string `toml:"style"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Google GoogleConfig `toml:"google"`
}

// GoogleConfig contains Google OAuth credentials for the sign-in flow.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnvOverrides loads a .env file (best effort) and applies environment
// variable overrides to the config.
//
// S2S_API_URL takes precedence over the configured base URL, matching the
// backend's PUBLIC_BASE_URL override.
func ApplyEnvOverrides(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("S2S_API_URL"); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv("S2S_DB_PATH"); v != "" {
		config.Database.Path = v
	}
	if v := os.Getenv("S2S_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			config.Upload.MaxBytes = n
		}
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		config.Credentials.Google.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		config.Credentials.Google.ClientSecret = v
	}
}
