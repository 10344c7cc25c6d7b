package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/desertthunder/zdx/internal/services"
	"github.com/desertthunder/zdx/internal/shared"
	"github.com/desertthunder/zdx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// loadConfig reads the config file named by the --config flag and applies
// any command-line overrides.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	path := cmd.String("config")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s (run `zdx init` to create one)", shared.ErrMissingConfig, path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if remote := cmd.String("remote"); remote != "" {
		config.Rclone.RemoteName = remote
	}
	if basePath := cmd.String("base-path"); basePath != "" {
		config.Rclone.BasePath = basePath
	}
	if cmd.Bool("dry-run") {
		config.Transfer.DryRun = true
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// buildEngine assembles the full pipeline from configuration: token
// manager, recording discovery, downloader, rclone uploader, notifier,
// and cleanup.
func (r *Runner) buildEngine(ctx context.Context, config *shared.Config) (*tasks.TransferEngine, error) {
	loc, err := config.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", shared.ErrInvalidConfig, config.Transfer.Timezone)
	}

	tokens := services.NewTokenManager(services.TokenManagerOpts{
		Config:     config,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})
	zoom := services.NewZoomService(services.ZoomServiceOpts{
		Config:     config,
		Tokens:     tokens,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})
	downloader := services.NewDownloader(services.DownloaderOpts{
		Config:     config,
		Tokens:     tokens,
		HTTPClient: r.httpClient,
		Location:   loc,
		Logger:     r.logger,
	})

	rclone, err := services.NewRcloneClient(ctx, services.RcloneOpts{
		RemoteName: config.Rclone.RemoteName,
		BasePath:   config.Rclone.BasePath,
		Logger:     r.logger,
	})
	if err != nil {
		return nil, err
	}

	slack := services.NewSlackClient(services.SlackOpts{
		WebhookURL: config.Slack.WebhookURL,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})

	return tasks.NewTransferEngine(tasks.EngineOpts{
		Discovery:   zoom,
		Downloader:  downloader,
		Uploader:    rclone,
		Notifier:    slack,
		Cleaner:     tasks.NewCleanupManager(r.logger),
		Location:    loc,
		MinDuration: config.Transfer.MinDurationMinutes,
		Logger:      r.logger,
	}), nil
}

func runOptions(cmd *cli.Command) tasks.RunOptions {
	return tasks.RunOptions{
		MeetingName: cmd.String("name"),
		Email:       cmd.String("email"),
		Days:        int(cmd.Int("days")),
		Notify:      !cmd.Bool("no-notify"),
	}
}

// TransferRun executes the full pipeline from the command line.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	engine, err := r.buildEngine(ctx, config)
	if err != nil {
		return err
	}

	opts := runOptions(cmd)
	r.logger.Info("starting transfer run", "meeting", opts.MeetingName, "days", opts.Days, "dry_run", config.Transfer.DryRun)
	r.writePlain("Searching the last %d days for %q...\n\n", opts.Days, opts.MeetingName)

	// Drain progress on a side goroutine so engine updates never block
	progressCh := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progressCh {
			switch update.Phase {
			case tasks.Download:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.Upload:
				r.writePlain("📤 %s\n", update.Message)
			case tasks.Notify:
				r.writePlain("🔔 %s\n", update.Message)
			case tasks.Cleanup:
				r.writePlain("🧹 %s\n", update.Message)
			default:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, opts, progressCh)
	close(progressCh)
	wg.Wait()

	if err != nil {
		if errors.Is(err, shared.ErrUserNotFound) {
			r.logger.Error("no Zoom user found", "email", opts.Email)
			r.writePlainln("No Zoom user found for %s", opts.Email)
			return nil
		}
		return err
	}

	if result.Matched == 0 {
		r.logger.Info("no recordings matched", "meeting", opts.MeetingName, "considered", result.Considered)
		r.writePlainln("No recordings matching %q in the last %d days.", opts.MeetingName, opts.Days)
		return nil
	}

	r.writePlain("\n")
	r.writePlainHeader("Transfer Complete")
	r.writePlain("Account: %s\n", result.User.DisplayName())
	r.writePlain("Matched: %d recordings\n", result.Matched)
	r.writePlain("Uploaded: %d\n", result.Uploaded)
	r.writePlain("Skipped (too short): %d\n", result.Filtered)
	if result.Failed > 0 {
		r.writePlain("Failed: %d\n", result.Failed)
		for _, rec := range result.Recordings {
			if rec.Err != nil {
				r.writePlain("  - %s (%s): %v\n", rec.Topic, rec.Status, rec.Err)
			}
		}
	}

	return nil
}

// Check verifies rclone availability, remote configuration, and
// connectivity.
func (r *Runner) Check(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	rclone, err := services.NewRcloneClient(ctx, services.RcloneOpts{
		RemoteName: config.Rclone.RemoteName,
		BasePath:   config.Rclone.BasePath,
		Logger:     r.logger,
	})
	if err != nil {
		return err
	}

	r.writePlainHeader("Remote Check")
	r.writePlain("Remote: %s\n", config.Rclone.RemoteName)
	r.writePlain("Base path: %s\n", rclone.BasePath())

	if info, err := rclone.RemoteInfo(ctx); err != nil {
		r.logger.Warn("could not read remote configuration", "err", err)
	} else {
		for key, value := range info {
			r.writePlain("  %s = %s\n", key, value)
		}
	}

	if !rclone.TestConnectivity(ctx) {
		r.writePlainln("✗ Remote is not reachable")
		return fmt.Errorf("%w: remote %q is not reachable", shared.ErrServiceUnavailable, config.Rclone.RemoteName)
	}

	r.writePlainln("✓ Remote is reachable")
	return nil
}

// Init writes the example configuration file.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("created config file", "path", path)
	r.writePlain("Created %s. Fill in your Zoom credentials before running.\n", path)
	return nil
}
