// rclone client for moving recordings to durable remote storage
//
// rclone is invoked as an external process; subcommand semantics per
// https://rclone.org/commands/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zdx/internal/models"
	"github.com/desertthunder/zdx/internal/shared"
)

// connectivityTimeout bounds the remote listing probe so a wedged remote
// reports failure instead of blocking the run.
const connectivityTimeout = 30 * time.Second

// remoteIDAliases is the priority-ordered list of metadata field names the
// remote file identifier is known to appear under. A case-insensitive
// scan for keys containing "id" is the fallback.
var remoteIDAliases = []string{"ID", "Id", "id"}

// CommandRunner executes the external transfer tool and returns its
// stdout. Implementations wrap a non-zero exit in the returned error.
type CommandRunner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// execRunner runs the rclone binary found on PATH.
type execRunner struct {
	binary string
}

func (r execRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return stdout.Bytes(), fmt.Errorf("rclone %s: %w: %s", args[0], err, detail)
		}
		return stdout.Bytes(), fmt.Errorf("rclone %s: %w", args[0], err)
	}
	return stdout.Bytes(), nil
}

// RcloneClient moves local files to the configured remote handle and
// resolves remote identifiers for uploaded files.
type RcloneClient struct {
	remoteName string
	basePath   string
	runner     CommandRunner
	logger     *log.Logger
}

// RcloneOpts configures an RcloneClient.
type RcloneOpts struct {
	RemoteName string
	BasePath   string
	Runner     CommandRunner // defaults to the rclone binary on PATH
	Logger     *log.Logger
}

// NewRcloneClient creates an RcloneClient and verifies both that the tool
// is available and that the named remote is configured.
func NewRcloneClient(ctx context.Context, opts RcloneOpts) (*RcloneClient, error) {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	if opts.Runner == nil {
		binary, err := exec.LookPath("rclone")
		if err != nil {
			return nil, fmt.Errorf("%w: rclone not installed or not in PATH", shared.ErrToolUnavailable)
		}
		opts.Runner = execRunner{binary: binary}
	}

	c := &RcloneClient{
		remoteName: opts.RemoteName,
		basePath:   opts.BasePath,
		runner:     opts.Runner,
		logger:     opts.Logger,
	}

	remotes, err := c.listRemotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrToolUnavailable, err)
	}

	for _, name := range remotes {
		if name == c.remoteName {
			c.logger.Info("rclone remote configured", "remote", c.remoteName)
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: remote %q is not configured (available: %s)",
		shared.ErrInvalidConfig, c.remoteName, strings.Join(remotes, ", "))
}

// listRemotes returns the remote handle names rclone knows about.
func (c *RcloneClient) listRemotes(ctx context.Context) ([]string, error) {
	out, err := c.runner.Run(ctx, "listremotes")
	if err != nil {
		return nil, err
	}

	var remotes []string
	for _, line := range strings.Split(string(out), "\n") {
		if name := strings.TrimSuffix(strings.TrimSpace(line), ":"); name != "" {
			remotes = append(remotes, name)
		}
	}
	return remotes, nil
}

// BasePath returns the configured base path on the remote.
func (c *RcloneClient) BasePath() string {
	return c.basePath
}

// Location returns the remote location for a date partition.
func (c *RcloneClient) Location(datePartition string) models.RemoteLocation {
	return models.RemoteLocation{
		RemoteName:    c.remoteName,
		BasePath:      c.basePath,
		DatePartition: datePartition,
	}
}

// EnsureDirectory creates the remote directory if missing. rclone mkdir
// is invocation-idempotent, so a non-zero exit is logged as a warning
// rather than treated as fatal.
func (c *RcloneClient) EnsureDirectory(ctx context.Context, remotePath string) error {
	if _, err := c.runner.Run(ctx, "mkdir", remotePath); err != nil {
		c.logger.Warn("remote directory creation returned non-zero exit", "path", remotePath, "err", err)
	}
	return nil
}

// UploadDirectory copies the entire local directory to the remote date
// partition in a single batch transfer, skipping files whose checksums
// already match. Returns the remote path relative to the remote handle.
func (c *RcloneClient) UploadDirectory(ctx context.Context, localPath, datePartition string) (string, error) {
	loc := c.Location(datePartition)

	c.logger.Info("creating remote directory", "dir", loc.Dir())
	c.EnsureDirectory(ctx, loc.Dir())

	c.logger.Info("uploading directory", "local", localPath, "remote", loc.Dir())
	if _, err := c.runner.Run(ctx, "copy", localPath, loc.Dir(), "--checksum"); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrTransferFailed, err)
	}

	return loc.RelativePath(), nil
}

// ResolveRemoteID lists remote metadata for an uploaded file and extracts
// its identifier, tolerating the field-name spellings different backends
// emit.
func (c *RcloneClient) ResolveRemoteID(ctx context.Context, datePartition, fileName string) (string, error) {
	remotePath := c.Location(datePartition).Dir() + "/" + fileName

	out, err := c.runner.Run(ctx, "lsjson", remotePath)
	if err != nil {
		return "", fmt.Errorf("failed to list remote metadata: %w", err)
	}

	var entries []map[string]any
	if err := json.Unmarshal(out, &entries); err != nil {
		return "", fmt.Errorf("failed to parse remote metadata: %w", err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("%w: no entries for %q in %q", shared.ErrMetadataNotFound, fileName, datePartition)
	}

	meta := entries[0]
	for _, alias := range remoteIDAliases {
		if id, ok := meta[alias].(string); ok && id != "" {
			return id, nil
		}
	}
	for key, val := range meta {
		if !strings.Contains(strings.ToLower(key), "id") {
			continue
		}
		if id, ok := val.(string); ok && id != "" {
			return id, nil
		}
	}

	return "", fmt.Errorf("%w: no identifier field in metadata for %q", shared.ErrMetadataNotFound, fileName)
}

// CheckFileExists reports whether a file is already present in the remote
// date partition.
func (c *RcloneClient) CheckFileExists(ctx context.Context, fileName, datePartition string) bool {
	remotePath := c.Location(datePartition).Dir() + "/" + fileName

	out, err := c.runner.Run(ctx, "lsf", remotePath)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) != ""
}

// RemoteInfo returns the remote's configuration as key/value pairs.
func (c *RcloneClient) RemoteInfo(ctx context.Context) (map[string]string, error) {
	out, err := c.runner.Run(ctx, "config", "show", c.remoteName)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote config: %w", err)
	}

	info := make(map[string]string)
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		if key, value, found := strings.Cut(line, "="); found {
			info[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	return info, nil
}

// TestConnectivity attempts a bounded-time top-level listing of the
// remote. Failures and timeouts report false rather than an error.
func (c *RcloneClient) TestConnectivity(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, connectivityTimeout)
	defer cancel()

	if _, err := c.runner.Run(ctx, "lsd", c.remoteName+":"); err != nil {
		c.logger.Error("failed to connect to remote", "remote", c.remoteName, "err", err)
		return false
	}

	c.logger.Info("connected to remote", "remote", c.remoteName)
	return true
}
