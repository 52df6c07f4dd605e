package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/bookpipe/internal/pipeline"
)

func newUploadCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload downloaded books to cloud storage",
		Long: `Upload completed books that have no cloud link yet, make them
shareable, and record the links in the metadata store. Books that fail stay
eligible for the next run.

Configure a backend first (cloud.backend: s3 or github).

Examples:
  bookpipe upload                 Next batch (batch.upload, default 3)
  bookpipe upload --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := cloudStorage()
			if err != nil {
				return err
			}
			if st == nil {
				return fmt.Errorf("cloud storage not configured (set cloud.backend to s3 or github)")
			}

			if len(pipeline.UploadCandidates(store.GetAll())) == 0 {
				ok("Nothing to upload: every downloaded book has a cloud link")
				return nil
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			u := newUploader(st)
			run := func(ctx context.Context) ([]pipeline.Result, error) {
				return u.Run(ctx, limit)
			}
			results, err := runBatch(ctx, cmd, "Uploading to "+cfg.Cloud.Backend, uploaderHooks(u), run)
			printCounts("Uploaded", results)
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum books to upload (default: batch.upload)")
	return cmd
}
