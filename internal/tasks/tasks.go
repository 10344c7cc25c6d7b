package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zdx/internal/models"
	"github.com/desertthunder/zdx/internal/services"
	"github.com/desertthunder/zdx/internal/shared"
)

// Status is the lifecycle state of a single recording within a run.
type Status string

const (
	StatusPending        Status = "pending"
	StatusSkipped        Status = "skipped"
	StatusDownloading    Status = "downloading"
	StatusDownloaded     Status = "downloaded"
	StatusDownloadFailed Status = "download_failed"
	StatusUploading      Status = "uploading"
	StatusUploaded       Status = "uploaded"
	StatusUploadFailed   Status = "upload_failed"
	StatusNotifying      Status = "notifying"
	StatusCleaning       Status = "cleaning"
	StatusDone           Status = "done"
)

// Discovery resolves the account and lists its recordings.
type Discovery interface {
	ResolveUser(ctx context.Context, email string) (*models.User, error)
	ListRecordings(ctx context.Context, userID string, from, to time.Time) ([]models.Recording, error)
}

// Downloader retrieves a recording's files to local disk.
type Downloader interface {
	ProcessRecording(ctx context.Context, rec models.Recording, meetingName string) ([]models.DownloadedFile, error)
}

// Uploader moves a local date-partition folder to the remote and resolves
// remote identifiers for uploaded files.
type Uploader interface {
	UploadDirectory(ctx context.Context, localPath, datePartition string) (string, error)
	ResolveRemoteID(ctx context.Context, datePartition, fileName string) (string, error)
}

// Notifier announces an uploaded video.
type Notifier interface {
	Notify(ctx context.Context, msg models.NotificationMessage) error
}

// Cleaner removes a recording's local working directory.
type Cleaner interface {
	Purge(root string) error
}

// RecordingResult records one recording's passage through the pipeline.
type RecordingResult struct {
	Topic      string
	StartTime  time.Time
	Status     Status
	Files      []models.DownloadedFile
	RemotePath string // remote path relative to the remote handle, set after upload
	Notified   int    // video files announced
	Err        error  // terminal error for failed statuses
}

// RunResult aggregates a full pipeline run.
type RunResult struct {
	RunID      string
	User       *models.User
	Considered int // recordings returned for the window
	Matched    int // recordings matching the meeting name
	Filtered   int // matches excluded by the duration threshold
	Recordings []RecordingResult
	Uploaded   int
	Failed     int
}

// RunOptions are the per-invocation parameters of a pipeline run.
type RunOptions struct {
	MeetingName string
	Email       string
	Days        int
	Notify      bool
}

// TransferEngine orchestrates the recording transfer pipeline. Failures
// are isolated per recording: one recording failing to download or
// upload never stops the rest of the run.
type TransferEngine struct {
	discovery   Discovery
	downloads   Downloader
	uploads     Uploader
	notifier    Notifier
	cleaner     Cleaner
	loc         *time.Location
	minDuration int
	logger      *log.Logger
	now         func() time.Time
}

// EngineOpts configures a TransferEngine.
type EngineOpts struct {
	Discovery   Discovery
	Downloader  Downloader
	Uploader    Uploader
	Notifier    Notifier
	Cleaner     Cleaner
	Location    *time.Location
	MinDuration int // minutes; recordings strictly shorter are skipped
	Logger      *log.Logger
	Now         func() time.Time
}

// NewTransferEngine creates a TransferEngine with the provided services.
func NewTransferEngine(opts EngineOpts) *TransferEngine {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &TransferEngine{
		discovery:   opts.Discovery,
		downloads:   opts.Downloader,
		uploads:     opts.Uploader,
		notifier:    opts.Notifier,
		cleaner:     opts.Cleaner,
		loc:         opts.Location,
		minDuration: opts.MinDuration,
		logger:      opts.Logger,
		now:         opts.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *TransferEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run executes the full pipeline: resolve the account, discover matching
// recordings in the window, then walk each through download, upload,
// notification, and cleanup.
func (e *TransferEngine) Run(ctx context.Context, opts RunOptions, progress chan<- ProgressUpdate) (*RunResult, error) {
	if e.discovery == nil {
		return nil, fmt.Errorf("%w: discovery service not initialized", shared.ErrServiceUnavailable)
	}
	if e.downloads == nil || e.uploads == nil {
		return nil, fmt.Errorf("%w: transfer services not initialized", shared.ErrServiceUnavailable)
	}

	result := &RunResult{RunID: shared.GenerateID()}

	e.sendProgress(progress, resolveUserUpdate(opts.Email))
	user, err := e.discovery.ResolveUser(ctx, opts.Email)
	if err != nil {
		return nil, err
	}
	result.User = user
	e.logger.Info("resolved account", "run", result.RunID, "user", user.DisplayName(), "email", opts.Email)

	e.sendProgress(progress, discoverUpdate(opts.MeetingName, opts.Days))
	to := e.now()
	from := to.AddDate(0, 0, -opts.Days)
	recordings, err := e.discovery.ListRecordings(ctx, user.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}
	result.Considered = len(recordings)

	matched := services.FilterByTopic(recordings, opts.MeetingName)
	result.Matched = len(matched)
	e.sendProgress(progress, discoveredUpdate(len(matched), len(recordings)))

	var eligible []models.Recording
	for _, rec := range matched {
		if rec.EffectiveDuration() < e.minDuration {
			e.logger.Info("skipping short recording",
				"topic", rec.Topic, "start", rec.StartTime, "minutes", rec.EffectiveDuration())
			result.Filtered++
			result.Recordings = append(result.Recordings, RecordingResult{
				Topic:     rec.Topic,
				StartTime: rec.StartTime,
				Status:    StatusSkipped,
			})
			continue
		}
		eligible = append(eligible, rec)
	}

	total := len(eligible)
	for i, rec := range eligible {
		rr := e.processRecording(ctx, rec, opts, i+1, total, progress)
		result.Recordings = append(result.Recordings, rr)

		switch rr.Status {
		case StatusDone:
			result.Uploaded++
			e.sendProgress(progress, recordingDoneUpdate(i+1, total, &rr))
		default:
			result.Failed++
			e.sendProgress(progress, recordingFailedUpdate(i+1, total, &rr))
		}
	}

	return result, nil
}

// processRecording walks one recording through the state machine. The
// returned result's status is terminal: done, skipped, or one of the
// failure states.
func (e *TransferEngine) processRecording(ctx context.Context, rec models.Recording, opts RunOptions, step, total int, progress chan<- ProgressUpdate) RecordingResult {
	rr := RecordingResult{
		Topic:     rec.Topic,
		StartTime: rec.StartTime,
		Status:    StatusPending,
	}
	partition := rec.DatePartition(e.loc)

	rr.Status = StatusDownloading
	e.sendProgress(progress, downloadUpdate(step, total, rec.Topic))

	files, err := e.downloads.ProcessRecording(ctx, rec, opts.MeetingName)
	if err != nil {
		e.logger.Error("download failed", "topic", rec.Topic, "err", err)
		rr.Status = StatusDownloadFailed
		rr.Err = err
		return rr
	}
	if len(files) == 0 {
		e.logger.Warn("no files downloaded, skipping recording", "topic", rec.Topic, "start", rec.StartTime)
		rr.Status = StatusDownloadFailed
		return rr
	}
	rr.Status = StatusDownloaded
	rr.Files = files
	e.sendProgress(progress, downloadedUpdate(step, total, len(files)))

	localDir := filepath.Dir(files[0].Path)

	rr.Status = StatusUploading
	e.sendProgress(progress, uploadUpdate(step, total, partition))

	remotePath, err := e.uploads.UploadDirectory(ctx, localDir, partition)
	if err != nil {
		// Local files are kept so a later run can retry; the checksum
		// copy skips anything that already made it across.
		e.logger.Error("upload failed, keeping local files", "topic", rec.Topic, "dir", localDir, "err", err)
		rr.Status = StatusUploadFailed
		rr.Err = err
		return rr
	}
	rr.Status = StatusUploaded
	rr.RemotePath = remotePath

	if opts.Notify && e.notifier != nil {
		rr.Status = StatusNotifying
		rr.Notified = e.announceVideos(ctx, rec.Topic, remotePath, partition, files, step, total, progress)
	}

	rr.Status = StatusCleaning
	e.sendProgress(progress, cleanupUpdate(step, total, localDir))
	if e.cleaner != nil {
		if err := e.cleaner.Purge(localDir); err != nil {
			e.logger.Warn("cleanup failed", "dir", localDir, "err", err)
		}
	}

	rr.Status = StatusDone
	return rr
}

// announceVideos sends one notification per uploaded video file. Remote
// identifier lookup falls back to the remote path when the backend
// returns no usable metadata; delivery failures are logged and never
// fail the recording.
func (e *TransferEngine) announceVideos(ctx context.Context, topic, remotePath, partition string, files []models.DownloadedFile, step, total int, progress chan<- ProgressUpdate) int {
	sent := 0
	for _, f := range files {
		if !services.IsVideoFile(f.Name) {
			continue
		}

		e.sendProgress(progress, notifyUpdate(step, total, f.Name))

		remoteID, err := e.uploads.ResolveRemoteID(ctx, partition, f.Name)
		if err != nil {
			e.logger.Warn("could not resolve remote file ID, using path fallback", "file", f.Name, "err", err)
			remoteID = remotePath + "/" + f.Name
		}

		msg := models.NotificationMessage{
			RecordingName: topic,
			FileName:      f.Name,
			RemoteID:      remoteID,
		}
		if err := e.notifier.Notify(ctx, msg); err != nil {
			e.logger.Warn("notification delivery failed", "file", f.Name, "err", err)
			continue
		}
		sent++
	}
	return sent
}
