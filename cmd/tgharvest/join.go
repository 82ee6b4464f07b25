package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// joinCmd represents the join command
var joinCmd = &cobra.Command{
	Use:   "join <channel>",
	Short: "Join a channel by username or invite link",
	Long: `Join a channel so its history becomes harvestable.

The channel can be given as a @username, a t.me/+... invite link, or a
t.me/joinchat/... invite link.`,
	Example: `  tgharvest join @somechannel
  tgharvest join https://t.me/+AbCdEfGh123`,
	Args: cobra.ExactArgs(1),
	RunE: runJoin,
}

func init() {
	rootCmd.AddCommand(joinCmd)
}

func runJoin(cmd *cobra.Command, args []string) error {
	client, err := newTelegramClient()
	if err != nil {
		return err
	}

	return client.Run(cmd.Context(), func(ctx context.Context) error {
		if err := client.Join(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Joined %s\n", args[0])
		return nil
	})
}
