package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/snap2style/s2s/internal/images"
	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/services"
	"github.com/snap2style/s2s/internal/shared"
	"golang.org/x/time/rate"
)

// BatchOpts contains configuration for bulk styling runs.
type BatchOpts struct {
	Style          string  // Style applied to every image
	Instructions   string  // Free-text instructions applied to every image
	NumWorkers     int     // Concurrent workers (default: 3)
	RateLimit      float64 // Requests per second (default: 1)
	MaxUploadBytes int64   // Client-side size cap per image
}

// BatchJob is one image queued for styling.
type BatchJob struct {
	Path    string
	Pending *models.PendingImage
}

// ImageStyleResult is the outcome of styling a single image in a batch.
type ImageStyleResult struct {
	Path     string
	Filename string
	Success  bool
	Result   *models.StyleResult
	Error    error
}

// BatchResult summarizes a bulk styling run.
type BatchResult struct {
	TotalImages int
	Successful  int
	Failed      int
	Results     []ImageStyleResult
}

// BatchStyleImages styles every image under dir concurrently with rate
// limiting and progress tracking.
//
// A worker pool posts images while the producer reads files from disk;
// unreadable or oversized files fail individually without stopping the run.
func BatchStyleImages(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	styler services.Styler,
	dir string,
	opts BatchOpts,
) (*BatchResult, error) {
	if styler == nil {
		return nil, fmt.Errorf("%w: styling service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1.0
	}

	paths, err := images.ListImages(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no images found in %s", shared.ErrNoImage, dir)
	}

	result := &BatchResult{
		TotalImages: len(paths),
		Results:     make([]ImageStyleResult, 0, len(paths)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan BatchJob, len(paths))
	results := make(chan ImageStyleResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go styleWorker(ctx, &wg, styler, limiter, jobs, results, opts)
	}

	go func() {
		for i, path := range paths {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			sendProgress(prog, batchReadingUpdate(i+1, len(paths), path))

			pending, err := images.ReadImage(path, opts.MaxUploadBytes, 0)
			if err != nil {
				results <- ImageStyleResult{
					Path:     path,
					Filename: filepath.Base(path),
					Success:  false,
					Error:    err,
				}
				continue
			}

			jobs <- BatchJob{Path: path, Pending: pending}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.Successful++
			sendProgress(prog, batchCompletedUpdate(completed, len(paths), res.Filename, res.Result.CanonicalURL))
		} else {
			result.Failed++
			sendProgress(prog, batchFailedUpdate(completed, len(paths), res.Filename, res.Error))
		}
	}

	return result, nil
}

// styleWorker is a worker goroutine that styles images from the jobs channel.
func styleWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	styler services.Styler,
	limiter *rate.Limiter,
	jobs <-chan BatchJob,
	results chan<- ImageStyleResult,
	opts BatchOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			results <- ImageStyleResult{
				Path:     job.Path,
				Filename: job.Pending.Filename,
				Success:  false,
				Error:    err,
			}
			continue
		}

		styled, err := styler.StyleImage(ctx, models.StyleRequest{
			Style:        opts.Style,
			Instructions: opts.Instructions,
			File:         job.Pending,
		})

		results <- ImageStyleResult{
			Path:     job.Path,
			Filename: job.Pending.Filename,
			Success:  err == nil,
			Result:   styled,
			Error:    err,
		}
	}
}
