package app

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRemoveCmd() *cobra.Command {
	var deleteFiles bool

	cmd := &cobra.Command{
		Use:     "remove <id>...",
		Aliases: []string{"rm"},
		Short:   "Remove books from the metadata store",
		Long: `Remove books from the metadata store.

Downloaded files stay in the library unless --delete-files is given.
Cloud copies are never touched.

Examples:
  bookpipe remove 123
  bookpipe remove 123 456 --delete-files`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var missing int
			for _, id := range args {
				rec, found := store.GetByID(id)
				if !found {
					missing++
					fmt.Fprintf(cmd.ErrOrStderr(), "not found: %s\n", id)
					continue
				}
				if _, err := store.Remove(id); err != nil {
					return fmt.Errorf("removing %s: %w", id, err)
				}
				if deleteFiles {
					for _, p := range []string{rec.LocalPath, rec.CoverLocalPath} {
						// Only files inside the library are deleted.
						if p == "" || lib.Path(filepath.Base(p)) != filepath.Clean(p) {
							continue
						}
						if err := lib.Remove(filepath.Base(p)); err != nil {
							logger.Warn("could not delete file", zap.String("path", p), zap.Error(err))
						}
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", id, rec.Title)
			}
			if missing > 0 {
				return fmt.Errorf("%d id(s) not found", missing)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&deleteFiles, "delete-files", false, "Also delete the downloaded book and cover")
	return cmd
}
