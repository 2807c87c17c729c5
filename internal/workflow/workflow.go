// package workflow implements the upload workflow: select a local image,
// submit it to the styling service, and manage the persisted last result.
//
// The Controller is the single owner of workflow state. Operations emit
// progress updates via channels for non-blocking status reporting to CLI/UI
// layers.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/snap2style/s2s/internal/images"
	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/repositories"
	"github.com/snap2style/s2s/internal/services"
	"github.com/snap2style/s2s/internal/shared"
)

// ControllerOpts configures a Controller.
type ControllerOpts struct {
	MaxUploadBytes int64            // Client-side size cap; <= 0 disables it
	PreviewMaxPx   int              // Longest preview edge; <= 0 uses the images default
	Now            func() time.Time // Clock override for tests
}

// Controller drives the image styling workflow.
//
// State transitions: SelectFile pins a pending image and its preview;
// Submit posts it and records the result; Reset clears the in-memory view.
// At most one submission is in flight at a time.
type Controller struct {
	styler  services.Styler
	results *repositories.ResultRepository
	history *repositories.GenerationLogRepository
	opts    ControllerOpts

	mu         sync.Mutex
	submitting bool
	pending    *models.PendingImage
	last       *models.StyleResult
	restored   bool
}

// NewController creates a Controller. The repositories may be nil, in which
// case results are not persisted and RestoreOnLoad is a no-op.
func NewController(styler services.Styler, results *repositories.ResultRepository, history *repositories.GenerationLogRepository, opts ControllerOpts) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Controller{
		styler:  styler,
		results: results,
		history: history,
		opts:    opts,
	}
}

// SelectFile reads the image at path and pins it as the pending upload.
//
// A failed read or a non-image file leaves the previous pending image and
// the last result untouched. The preview data URL is derived once here and
// cached on the pending image.
func (c *Controller) SelectFile(path string) error {
	pending, err := images.ReadImage(path, c.opts.MaxUploadBytes, c.opts.PreviewMaxPx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = pending
	return nil
}

// Pending returns the currently pinned image, or nil.
func (c *Controller) Pending() *models.PendingImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Preview returns the cached preview data URL of the pinned image.
func (c *Controller) Preview() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return ""
	}
	return c.pending.PreviewDataURL
}

// Last returns the current result view, or nil when none is loaded.
func (c *Controller) Last() *models.StyleResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Submit posts the pending image to the styling service.
//
// Fails with [shared.ErrNoImage] when nothing is pinned and with
// [shared.ErrSubmissionInFlight] when another submission is running; neither
// failure touches the network. On success the canonical result is persisted
// and the display URL carries a fresh cache-busting timestamp. The pending
// image stays pinned whether the submission succeeds or fails.
func (c *Controller) Submit(ctx context.Context, prog chan<- ProgressUpdate, style, instructions string) (*models.StyleResult, error) {
	if c.styler == nil {
		return nil, fmt.Errorf("%w: styling service not initialized", shared.ErrServiceUnavailable)
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, shared.ErrSubmissionInFlight
	}
	if c.pending == nil {
		c.mu.Unlock()
		return nil, shared.ErrNoImage
	}
	c.submitting = true
	pending := c.pending
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	sendProgress(prog, uploadingUpdate(pending.Filename, style))

	result, err := c.styler.StyleImage(ctx, models.StyleRequest{
		Style:        style,
		Instructions: instructions,
		File:         pending,
	})
	if err != nil {
		c.logGeneration(style, instructions, "", "error")
		return nil, err
	}

	result.DisplayURL = shared.CacheBust(result.CanonicalURL, c.opts.Now())
	sendProgress(prog, uploadedUpdate(result.CanonicalURL))

	if c.results != nil {
		sendProgress(prog, persistUpdate())
		persisted := models.NewPersistedResult(0, *result, pending.Filename, pending.Width, pending.Height)
		if err := c.results.Create(persisted); err != nil {
			return result, fmt.Errorf("styled but failed to save result: %w", err)
		}
	}

	c.logGeneration(style, instructions, result.CanonicalURL, "success")

	c.mu.Lock()
	c.last = result
	c.mu.Unlock()

	return result, nil
}

// Reset clears the pending image, its preview, and the in-memory result
// view. The persisted result is untouched; use [Controller.Purge] to delete it.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = nil
	c.last = nil
}

// Purge soft-deletes all persisted results and clears the in-memory view.
func (c *Controller) Purge() (int, error) {
	c.Reset()

	if c.results == nil {
		return 0, nil
	}
	return c.results.Purge()
}

// RestoreOnLoad loads the most recent persisted result into the controller.
//
// Intended to run once at startup; calling it again is a no-op. No network
// call is made and no pending image is required. A missing result is not an
// error.
func (c *Controller) RestoreOnLoad() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.restored || c.results == nil {
		return nil
	}

	persisted, err := c.results.Latest()
	if err != nil {
		if err == shared.ErrNoResult {
			c.restored = true
			return nil
		}
		return fmt.Errorf("failed to restore last result: %w", err)
	}

	result := persisted.Restore()
	result.DisplayURL = shared.CacheBust(result.CanonicalURL, c.opts.Now())

	c.last = &result
	c.restored = true
	return nil
}

// logGeneration appends a history row; history is best effort and never
// fails the submission.
func (c *Controller) logGeneration(style, instructions, resultURL, status string) {
	if c.history == nil {
		return
	}

	_ = c.history.Append(models.GenerationRecord{
		Style:           style,
		InstructionsLen: len(instructions),
		ResultURL:       resultURL,
		Status:          status,
	})
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
