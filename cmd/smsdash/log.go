package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/LeventeLantos/sms-dashboard/internal/config"
	"github.com/LeventeLantos/sms-dashboard/internal/repo"
)

// The log commands work on the file directly and skip the admin password;
// shell access to the host already implies it.
func newLogCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect or edit the SMS audit log file",
	}
	cmd.PersistentFlags().StringVar(&path, "file", "", "log file path (default $LOG_FILE or sms_log.txt)")

	store := func() *repo.FileLogRepo {
		if path == "" {
			path = config.LogFileFromEnv()
		}
		return repo.NewFileLogRepo(path)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "view",
		Short: "Print the log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := store().ReadAll(cmd.Context())
			if errors.Is(err, repo.ErrLogNotFound) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Log file not found.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Truncate the log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store().Truncate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All logs cleared")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-line <n>",
		Short: "Delete one 1-based line from the log file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("line number %q is not an integer: %w", args[0], err)
			}
			if err := store().DeleteLine(cmd.Context(), n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Line %d deleted\n", n)
			return nil
		},
	})

	return cmd
}
