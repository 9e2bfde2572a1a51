package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aretw0/wikicard/internal/cli"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or edit the distribution history",
}

var historyCheckCmd = &cobra.Command{
	Use:   "check <page-id>",
	Short: "Report whether an article was already distributed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), cmd, cli.AppOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		seen, err := app.Bot.Seen(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if seen {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: distributed\n", args[0])
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: not distributed\n", args[0])
		}
		return nil
	},
}

var historyRecordCmd = &cobra.Command{
	Use:   "record <page-id> <title>",
	Short: "Mark an article as distributed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), cmd, cli.AppOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		// Failures are logged by the bot, never returned.
		app.Bot.MarkDistributed(cmd.Context(), args[0], args[1], uuid.NewString())
		cli.PrintSystemMessage(cmd.ErrOrStderr(), "Recorded %s (%s)", args[0], args[1])
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyCheckCmd, historyRecordCmd)
	rootCmd.AddCommand(historyCmd)
}
