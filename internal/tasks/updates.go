package tasks

import "fmt"

// ProgressUpdate represents a progress event during a pipeline run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Pipeline phase enumeration
type Phase int

const (
	ResolveUser Phase = iota
	Discover
	Download
	Upload
	Notify
	Cleanup
)

func (p Phase) String() string {
	switch p {
	case ResolveUser:
		return "resolve_user"
	case Discover:
		return "discover"
	case Download:
		return "download"
	case Upload:
		return "upload"
	case Notify:
		return "notify"
	case Cleanup:
		return "cleanup"
	default:
		return ""
	}
}

func resolveUserUpdate(email string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveUser,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving account for %s...", email),
	}
}

func discoverUpdate(meetingName string, days int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Discover,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Searching the last %d days for %q...", days, meetingName),
	}
}

func discoveredUpdate(matched, considered int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Discover,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d matching recordings (of %d)", matched, considered),
	}
}

func downloadUpdate(step, total int, topic string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Download,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Downloading: %s...", step, total, topic),
	}
}

func downloadedUpdate(step, total, files int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Download,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Downloaded %d files", step, total, files),
	}
}

func uploadUpdate(step, total int, partition string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Upload,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Uploading %s...", step, total, partition),
	}
}

func notifyUpdate(step, total int, fileName string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Notify,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Announcing: %s", step, total, fileName),
	}
}

func cleanupUpdate(step, total int, dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Cleanup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Cleaning up %s", step, total, dir),
	}
}

func recordingDoneUpdate(step, total int, result *RecordingResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Cleanup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, result.Topic),
		Data:    result,
	}
}

func recordingFailedUpdate(step, total int, result *RecordingResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Cleanup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, result.Topic, result.Err),
		Data:    result,
	}
}
