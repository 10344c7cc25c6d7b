package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zdx/internal/models"
	"github.com/desertthunder/zdx/internal/shared"
)

// downloadChunkSize is the fixed read size for streaming recording
// content to disk.
const downloadChunkSize = 1 << 20 // 1 MiB

// Downloader retrieves a recording's files into the local date-partition
// folder, naming them per the classification rules.
type Downloader struct {
	tokens *TokenManager
	client *http.Client
	dir    string
	loc    *time.Location
	dryRun bool
	logger *log.Logger
}

// DownloaderOpts configures a Downloader.
type DownloaderOpts struct {
	Config     *shared.Config
	Tokens     *TokenManager
	HTTPClient *http.Client
	Location   *time.Location
	DryRun     bool
	Logger     *log.Logger
}

// NewDownloader creates a Downloader writing under the configured
// download directory.
func NewDownloader(opts DownloaderOpts) *Downloader {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Downloader{
		tokens: opts.Tokens,
		client: opts.HTTPClient,
		dir:    opts.Config.Transfer.DownloadDir,
		loc:    opts.Location,
		dryRun: opts.DryRun || opts.Config.Transfer.DryRun,
		logger: opts.Logger,
	}
}

// Fetch streams the remote content at downloadURL to dest in fixed-size
// chunks. When the advertised content length is nonzero and the byte
// count written does not match it, the partial file is removed and an
// incomplete-transfer error returned. In dry-run mode no network call is
// made and skipped is true.
func (d *Downloader) Fetch(ctx context.Context, downloadURL, dest string) (skipped bool, err error) {
	if d.dryRun {
		d.logger.Info("dry run: would download", "url", downloadURL, "dest", dest)
		return true, nil
	}

	cred, err := d.tokens.Token(ctx)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := d.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrTransferFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("%w: download status %d", shared.ErrTransferFailed, resp.StatusCode)
	}

	written, err := d.writeChunks(resp.Body, dest)
	if err != nil {
		os.Remove(dest)
		return false, fmt.Errorf("%w: %v", shared.ErrTransferFailed, err)
	}

	if resp.ContentLength > 0 && written != resp.ContentLength {
		os.Remove(dest)
		return false, fmt.Errorf("%w: wrote %d of %d bytes", shared.ErrIncompleteTransfer, written, resp.ContentLength)
	}

	return false, nil
}

// writeChunks copies body to a new file at dest and returns the byte
// count written.
func (d *Downloader) writeChunks(body io.Reader, dest string) (int64, error) {
	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	buf := make([]byte, downloadChunkSize)
	written, err := io.CopyBuffer(f, body, buf)
	if err != nil {
		return written, err
	}
	return written, f.Sync()
}

// ProcessRecording downloads every classifiable file of the recording into
// the date-partition folder. Files are grouped by type tag; unknown types
// are skipped with a warning; within a multi-file group names carry a
// 1-indexed ordinal suffix. An empty result means nothing was retrievable
// for this recording.
func (d *Downloader) ProcessRecording(ctx context.Context, rec models.Recording, meetingName string) ([]models.DownloadedFile, error) {
	localStart := rec.StartTime.In(d.loc)
	base := BaseName(localStart, meetingName)
	partition := rec.DatePartition(d.loc)

	folder := filepath.Join(d.dir, partition)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download folder: %w", err)
	}

	var order []string
	groups := make(map[string][]models.RecordingFile)
	for _, f := range rec.Files {
		tag := strings.ToLower(f.Type)
		if _, seen := groups[tag]; !seen {
			order = append(order, tag)
		}
		groups[tag] = append(groups[tag], f)
	}

	var downloaded []models.DownloadedFile
	for _, tag := range order {
		ext, ok := ExtensionFor(tag)
		if !ok {
			d.logger.Warn("unknown recording file type", "type", tag, "topic", rec.Topic)
			continue
		}

		group := groups[tag]
		for i, f := range group {
			name := FileName(base, ext, i+1, len(group))
			dest := filepath.Join(folder, name)

			skipped, err := d.Fetch(ctx, f.DownloadURL, dest)
			if err != nil {
				return nil, err
			}
			if skipped {
				continue
			}

			info, err := os.Stat(dest)
			if err != nil {
				return nil, fmt.Errorf("failed to stat downloaded file: %w", err)
			}

			d.logger.Info("downloaded", "file", name, "bytes", info.Size())
			downloaded = append(downloaded, models.DownloadedFile{
				Name:          name,
				Path:          dest,
				DatePartition: partition,
				RecordingTime: rec.StartTime,
				Size:          info.Size(),
			})
		}
	}

	return downloaded, nil
}
