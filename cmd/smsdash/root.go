package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "smsdash",
		Short:        "SMS dashboard with an audit log file",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newLogCmd())
	return root
}
