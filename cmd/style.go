package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/snap2style/s2s/internal/formatter"
	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/repositories"
	"github.com/snap2style/s2s/internal/shared"
	"github.com/snap2style/s2s/internal/workflow"
	"github.com/urfave/cli/v3"
)

// StyleRun styles a single image and prints the result URLs.
func (r *Runner) StyleRun(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: image path", shared.ErrMissingArgument)
	}

	style := cmd.String("style")
	if style == "" {
		style = r.config.Defaults.Style
	}
	instructions := cmd.String("instructions")
	useJSON := cmd.Bool("json")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()
	r.attachSession(db)

	controller := r.newController(db)

	r.logger.Info("selecting image", "path", path)
	if err := controller.SelectFile(path); err != nil {
		return err
	}

	pending := controller.Pending()
	r.logger.Info("image pinned", "type", pending.ContentType, "bytes", pending.Size)

	prog := make(chan workflow.ProgressUpdate, 50)
	done := r.printProgress(prog)

	result, err := controller.Submit(ctx, prog, style, instructions)
	close(prog)
	<-done

	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(map[string]string{
			"url":          result.CanonicalURL,
			"display_url":  result.DisplayURL,
			"download_url": result.DownloadURL,
			"style":        result.Style,
			"note":         result.Note,
		}, true)
	}

	r.writePlain("✓ Image styled as %s\n", result.Style)
	r.writePlain("  Image: %s\n", result.DisplayURL)
	r.writePlain("  Download: %s\n", result.DownloadURL)
	if result.Note != "" {
		r.writePlain("  Note: %s\n", result.Note)
	}
	return nil
}

// StyleBatch styles every image in a directory concurrently.
func (r *Runner) StyleBatch(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg("dir")
	if dir == "" {
		dir = "."
	}

	style := cmd.String("style")
	if style == "" {
		style = r.config.Defaults.Style
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()
	r.attachSession(db)

	prog := make(chan workflow.ProgressUpdate, 50)
	done := r.printProgress(prog)

	result, err := workflow.BatchStyleImages(ctx, prog, r.styler, dir, workflow.BatchOpts{
		Style:          style,
		Instructions:   cmd.String("instructions"),
		NumWorkers:     cmd.Int("workers"),
		RateLimit:      cmd.Float("rate"),
		MaxUploadBytes: r.config.Upload.MaxBytes,
	})
	close(prog)
	<-done

	if err != nil {
		return err
	}

	history := repositories.NewGenerationLogRepository(db)
	for _, res := range result.Results {
		record := models.GenerationRecord{Style: style, Status: "error"}
		if res.Success {
			record.Status = "success"
			record.ResultURL = res.Result.CanonicalURL
		}
		if err := history.Append(record); err != nil {
			r.logger.Warn("failed to log generation", "error", err)
		}
	}

	manifestPath := cmd.String("manifest")
	if err := formatter.WriteBatchManifest(result, manifestPath); err != nil {
		return fmt.Errorf("batch completed but failed to write manifest: %w", err)
	}

	r.writePlainln("✓ Batch complete: %d styled, %d failed (of %d)", result.Successful, result.Failed, result.TotalImages)
	r.writePlain("Manifest: %s\n", manifestPath)
	return nil
}

// StyleLast shows the most recent persisted result with a fresh display URL.
func (r *Runner) StyleLast(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	controller := r.newController(db)
	if err := controller.RestoreOnLoad(); err != nil {
		return err
	}

	result := controller.Last()
	if result == nil {
		r.writePlain("No styled result stored yet. Run 's2s style run <image>' first.\n")
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]string{
			"url":          result.CanonicalURL,
			"display_url":  result.DisplayURL,
			"download_url": result.DownloadURL,
			"style":        result.Style,
		}, true)
	}

	r.writePlain("Last styled result:\n")
	r.writePlain("  Style: %s\n", result.Style)
	r.writePlain("  Image: %s\n", result.DisplayURL)
	r.writePlain("  Download: %s\n", result.DownloadURL)
	return nil
}

// StyleReset clears workflow state; with --purge it also deletes stored results.
func (r *Runner) StyleReset(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	controller := r.newController(db)
	controller.Reset()

	if cmd.Bool("purge") {
		purged, err := controller.Purge()
		if err != nil {
			return err
		}
		r.writePlain("✓ Workflow reset, %d stored result(s) deleted\n", purged)
		return nil
	}

	r.writePlain("✓ Workflow reset. Stored results kept; use --purge to delete them.\n")
	return nil
}

// Download fetches a styled image by filename or URL to a local file.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: filename or URL", shared.ErrMissingArgument)
	}

	if strings.Contains(name, "/") {
		name = shared.FilenameFromURL(name)
	}

	dest := cmd.String("output")
	if dest == "" {
		dest = name
	}

	if db, err := r.openDatabase(); err == nil {
		r.attachSession(db)
		db.Close()
	}

	r.logger.Info("downloading styled image", "name", name, "dest", dest)
	if err := r.styler.DownloadImage(ctx, name, dest); err != nil {
		return err
	}

	r.writePlain("✓ Saved to %s\n", dest)
	return nil
}

// printProgress consumes progress updates and prints each message. The
// returned channel closes once the progress channel is drained.
func (r *Runner) printProgress(prog <-chan workflow.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("%s\n", update.Message)
		}
	}()

	return done
}
