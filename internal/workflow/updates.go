package workflow

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ReadImage Phase = iota
	Upload
	Persist
	Restore
	BatchStyle
)

func (p Phase) String() string {
	switch p {
	case ReadImage:
		return "read_image"
	case Upload:
		return "upload"
	case Persist:
		return "persist"
	case Restore:
		return "restore"
	case BatchStyle:
		return "batch_style"
	default:
		return ""
	}
}

func uploadingUpdate(filename, style string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Upload,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Styling %s as %s...", filename, style),
	}
}

func uploadedUpdate(url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Upload,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Styled image ready: %s", url),
	}
}

func persistUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Persist,
		Step:    1,
		Total:   1,
		Message: "Saving result locally...",
	}
}

func batchReadingUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadImage,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Reading %s...", step, total, path),
	}
}

func batchCompletedUpdate(step, total int, filename, url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchStyle,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, filename, url),
	}
}

func batchFailedUpdate(step, total int, filename string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchStyle,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, filename, err),
	}
}
