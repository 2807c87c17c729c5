package main

import (
	"context"
	"time"

	"github.com/snap2style/s2s/internal/formatter"
	"github.com/snap2style/s2s/internal/repositories"
	"github.com/urfave/cli/v3"
)

// HistoryList prints the most recent generation records.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := repositories.NewGenerationLogRepository(db).List(limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		r.writePlain("No generations recorded yet.\n")
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, true)
	}

	r.writePlain("Recent generations:\n\n")
	for i, record := range records {
		r.writePlain("%d. [%s] %s (%s)\n", i+1, record.CreatedAt.Format("2006-01-02 15:04"), record.Style, record.Status)
		if record.ResultURL != "" {
			r.writePlain("   %s\n", record.ResultURL)
		}
	}
	return nil
}

// HistoryExport writes the full generation history to a file.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := repositories.NewGenerationLogRepository(db).List(0)
	if err != nil {
		return err
	}

	r.logger.Info("exporting history", "format", format, "rows", len(records))

	path, err := formatter.WriteHistoryExport(records, format, output)
	if err != nil {
		return err
	}

	r.writePlain("✓ History exported to %s (%d rows)\n", path, len(records))
	return nil
}

// Credits reports remaining styling credits for the session or guest.
func (r *Runner) Credits(ctx context.Context, cmd *cli.Command) error {
	if db, err := r.openDatabase(); err == nil {
		r.attachSession(db)
		db.Close()
	}

	info, err := r.styler.Credits(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(info, true)
	}

	if info.Kind == "user" {
		r.writePlain("Account: %s (verified: %v)\n", info.Email, info.Verified)
		r.writePlain("Free credits: %d\n", info.FreeCredits)
	} else {
		r.writePlain("Guest session\n")
		r.writePlain("Guest credits: %d\n", info.GuestCredits)
	}

	r.writePlain("Daily limit: %d (used in last 24h: %d)\n", info.DailyLimit, info.UsedLast24h)
	if info.NextAvailableTS != nil {
		next := time.Unix(int64(*info.NextAvailableTS), 0)
		r.writePlain("Next credit available: %s\n", next.Format(time.RFC1123))
	}
	return nil
}

// EnvCheck prints backend configuration diagnostics.
func (r *Runner) EnvCheck(ctx context.Context, cmd *cli.Command) error {
	info, err := r.styler.EnvCheck(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Backend: %s\n", r.styler.BaseURL())
	r.writePlain("  Provider: %s\n", info.Provider)
	r.writePlain("  Styling key configured: %v\n", info.StabilityKey)
	r.writePlain("  Google OAuth configured: %v\n", info.GoogleOAuth)
	if info.PublicBaseURL != "" {
		r.writePlain("  Public base URL: %s\n", info.PublicBaseURL)
	}
	return nil
}
