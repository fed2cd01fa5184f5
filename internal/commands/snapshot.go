package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/driftersoft/janitord/internal/engine"
)

func newSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the current tree of the watched directory without deleting anything",
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

			root, err := cleaner.Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("snapshot: %w", err)
			}

			printTree(cmd.OutOrStdout(), root, 0)
			return nil
		},
	}
	return cmd
}

func printTree(out io.Writer, e *engine.Entry, depth int) {
	indent := strings.Repeat("  ", depth)
	md := e.Metadata()
	switch {
	case md == nil:
		fmt.Fprintf(out, "%s%s %s\n", indent, e.Name(), errorStyle.Sprint("(unreadable)"))
	case md.IsDir:
		fmt.Fprintf(out, "%s%s\n", indent, dirStyle.Sprint(e.Name()+"/"))
	default:
		fmt.Fprintf(out, "%s%s %s\n", indent, e.Name(), subtleStyle.Sprintf("(%s)", humanBytes(md.Size)))
	}
	for _, c := range e.Children() {
		printTree(out, c, depth+1)
	}
}
