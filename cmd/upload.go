package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/relist-app/relist/internal/api"
	"github.com/relist-app/relist/internal/drafts"
	"github.com/relist-app/relist/internal/poller"
	"github.com/relist-app/relist/internal/upload"
)

func newUploadCmd(configPath *string) *cobra.Command {
	var photosPerItem int

	cmd := &cobra.Command{
		Use:   "upload <photo>...",
		Short: "Upload photos and track analysis into draft listings",
		Long: `Uploads the given photos as one batch, waits for the analysis job to
finish, and reports the resulting draft listings.

Photos are validated locally before anything is sent: only common image
formats are accepted, each file must be 15 MB or smaller, and one batch
holds at most 500 photos.`,
		Example: `  # Group every 4 photos into one listing (the default)
  relist upload shoes/*.jpg

  # One listing per photo
  relist upload --photos-per-item 1 img1.jpg img2.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if photosPerItem > 0 {
				cfg.PhotosPerListing = photosPerItem
			}

			batch := upload.NewBatch()
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				if err := batch.Add(path, data); err != nil {
					if errors.Is(err, upload.ErrBatchFull) {
						return err
					}
					// A rejected file never blocks the rest of the selection.
					slog.Warn("Skipping file", "path", path, "reason", err)
				}
			}
			if batch.Len() == 0 {
				return upload.ErrBatchEmpty
			}

			client := api.NewClient(cfg.BaseURL, cfg.SessionCookie)
			jobID, err := batch.Submit(cmd.Context(), client, cfg.PhotosPerListing)
			if err != nil {
				return fmt.Errorf("batch submission failed (your files are unchanged, retry with the same command): %w", err)
			}

			store := drafts.NewStore(client)

			var failMessage string
			p := poller.New(client, cfg.PollInterval)
			p.OnProgress = func(percent int) {
				slog.Info("Analyzing photos", "job_id", jobID, "progress", fmt.Sprintf("%d%%", percent))
			}
			p.OnCompleted = func() {
				batch.Reset()
				if err := store.Load(cmd.Context(), ""); err != nil {
					slog.Error("Failed to load drafts after completion", "err", err)
				}
			}
			p.OnFailed = func(message string) {
				failMessage = message
			}

			if err := p.Start(cmd.Context(), jobID); err != nil {
				return err
			}
			<-p.Done()

			switch p.State() {
			case poller.StateCompleted:
				fmt.Printf("Batch analyzed. %d drafts ready for review (relist drafts list).\n", len(store.Drafts()))
				return nil
			case poller.StateFailed:
				return fmt.Errorf("batch analysis failed: %s", failMessage)
			default:
				return fmt.Errorf("upload interrupted")
			}
		},
	}

	cmd.Flags().IntVar(&photosPerItem, "photos-per-item", 0, "Photos grouped into each listing (default from config)")

	return cmd
}
