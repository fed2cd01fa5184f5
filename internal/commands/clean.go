package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftersoft/janitord/internal/engine"
)

func newCleanCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Run one cleanup cycle and report what was deleted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			cleaner, err := newCleaner(cfg, log)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			dry := dryRun || cfg.DryRun
			deleted, err := cleaner.Clean(ctx, dry)
			if err != nil {
				return fmt.Errorf("cleanup cycle: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(deleted) == 0 {
				logInfo(out, "Nothing to delete.")
				return nil
			}
			verb := "Deleted"
			if dry {
				verb = "Would delete"
			}
			for _, d := range deleted {
				kind := "file"
				if d.IsDir {
					kind = "dir "
				}
				fmt.Fprintf(out, "%s %s %s %s\n",
					prefix(),
					deleteStyle.Sprint(verb),
					subtleStyle.Sprintf("[%s]", kind),
					infoStyle.Sprint(d.Path),
				)
			}
			logInfo(out, fmt.Sprintf("%s %d entries (%s).", verb, len(deleted), humanBytes(totalSize(deleted))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report deletions without touching storage")
	return cmd
}

func totalSize(deleted []engine.Deletion) int64 {
	var n int64
	for _, d := range deleted {
		n += d.Size
	}
	return n
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
