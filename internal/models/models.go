package models

import (
	"time"
)

// Credential is an API session token paired with the instant it must be
// refreshed. Owned exclusively by the token manager; the stored expiry
// already has the refresh safety margin subtracted.
type Credential struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the credential can still be used at instant now.
func (c *Credential) Valid(now time.Time) bool {
	return c != nil && c.AccessToken != "" && now.Before(c.ExpiresAt)
}

// User represents a resolved Zoom user. Resolved once per run, immutable
// thereafter.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName returns the user's full name for logging.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Recording represents one meeting's set of associated files sharing a
// topic and a start/end window, as returned by the recordings API.
type Recording struct {
	ID        int64           `json:"id"`
	UUID      string          `json:"uuid"`
	Topic     string          `json:"topic"`
	StartTime time.Time       `json:"start_time"`
	Duration  int             `json:"duration"` // declared duration in minutes
	Files     []RecordingFile `json:"recording_files"`
}

// RecordingFile is a single media or artifact stream within a recording.
type RecordingFile struct {
	ID          string    `json:"id"`
	Type        string    `json:"recording_type"`
	DownloadURL string    `json:"download_url"`
	FileSize    int64     `json:"file_size"`
	Start       time.Time `json:"recording_start"`
	End         time.Time `json:"recording_end"`
}

// ComputedDuration derives a duration in minutes from the span between the
// earliest file start and the latest file end, rounded up. Returns 0 when
// the recording has no files with usable timestamps.
func (r *Recording) ComputedDuration() int {
	var earliest, latest time.Time
	for _, f := range r.Files {
		if f.Start.IsZero() || f.End.IsZero() {
			continue
		}
		if earliest.IsZero() || f.Start.Before(earliest) {
			earliest = f.Start
		}
		if latest.IsZero() || f.End.After(latest) {
			latest = f.End
		}
	}
	if earliest.IsZero() || latest.IsZero() || !latest.After(earliest) {
		return 0
	}
	span := latest.Sub(earliest)
	return int((span + time.Minute - 1) / time.Minute)
}

// EffectiveDuration is the longer of the declared duration and the
// duration computed from file timestamps; the pipeline's processing
// threshold applies to this value.
func (r *Recording) EffectiveDuration() int {
	if computed := r.ComputedDuration(); computed > r.Duration {
		return computed
	}
	return r.Duration
}

// DatePartition returns the YYYY-MM-DD key for the recording's start time
// in the given location, under which its files are grouped locally and
// remotely.
func (r *Recording) DatePartition(loc *time.Location) string {
	return r.StartTime.In(loc).Format("2006-01-02")
}

// DownloadedFile describes a recording file written to local disk,
// consumed by the uploader and removed by cleanup after a successful
// transfer.
type DownloadedFile struct {
	Name          string    // output file name including extension
	Path          string    // absolute or working-dir-relative local path
	DatePartition string    // YYYY-MM-DD key in the target timezone
	RecordingTime time.Time // original recording start timestamp (UTC)
	Size          int64     // observed byte size on disk
}

// RemoteLocation identifies where a recording's files live remotely.
type RemoteLocation struct {
	RemoteName    string
	BasePath      string
	DatePartition string
}

// Dir returns the rclone-style remote directory, e.g.
// "recordingdrive:Recordings/Meetings/2024-06-20".
func (l RemoteLocation) Dir() string {
	return l.RemoteName + ":" + l.RelativePath()
}

// RelativePath returns the remote path without the remote handle prefix.
func (l RemoteLocation) RelativePath() string {
	if l.BasePath == "" {
		return l.DatePartition
	}
	return l.BasePath + "/" + l.DatePartition
}

// NotificationMessage is the content of a single upload announcement.
type NotificationMessage struct {
	RecordingName string
	FileName      string
	RemoteID      string // Drive file ID, or a synthesized remote path fallback
}
