package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// channelsCmd represents the channels command
var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the channels available to harvest",
	Args:  cobra.NoArgs,
	RunE:  runChannels,
}

func init() {
	rootCmd.AddCommand(channelsCmd)
}

func runChannels(cmd *cobra.Command, args []string) error {
	client, err := newTelegramClient()
	if err != nil {
		return err
	}

	return client.Run(cmd.Context(), func(ctx context.Context) error {
		channels, err := client.Channels(ctx)
		if err != nil {
			return err
		}
		if len(channels) == 0 {
			fmt.Println("No channels found for this account.")
			return nil
		}

		for _, ch := range channels {
			kind := "group"
			if ch.Broadcast {
				kind = "channel"
			}
			fmt.Printf("%-12d %-8s %s\n", ch.ID, kind, ch.Title)
		}
		return nil
	})
}
