package commands

import "github.com/spf13/cobra"

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "janitord",
		Short:         "Directory retention daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "path to the config file")

	root.AddCommand(newRunCommand())
	root.AddCommand(newCleanCommand())
	root.AddCommand(newSnapshotCommand())

	return root
}

func Execute() error {
	return NewRootCommand().Execute()
}
