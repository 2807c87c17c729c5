package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/snap2style/s2s/internal/services"
	"github.com/snap2style/s2s/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}
	shared.ApplyEnvOverrides(config)

	timeout := time.Duration(config.API.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Styler:     services.NewStyleService(config.API.BaseURL, httpClient),
		Auth:       services.NewAuthService(config.API.BaseURL, httpClient),
		API:        services.NewAPIService(config.API.BaseURL, httpClient),
		HTTPClient: httpClient,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "s2s",
		Usage:    "Style room photos with the Snap2Style service",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
