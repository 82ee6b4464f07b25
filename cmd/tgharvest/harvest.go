package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tgharvest/pkg/errors"
	"tgharvest/pkg/harvest"
	"tgharvest/pkg/models"
	"tgharvest/pkg/telegram"
)

var (
	harvestDest   string
	harvestPhotos int
	harvestVideos int
	harvestAll    bool
)

// harvestCmd represents the harvest command
var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Download media from your channels",
	Long: `Harvest scans the channels you are a member of, counts the photos and
videos each one holds, and downloads up to the requested number of each.

Channels and per-channel counts are chosen interactively unless --all,
--photos and --videos are given. With --dest, every downloaded file is
republished to that channel as it completes.`,
	Example: `  # Pick channels and counts interactively
  tgharvest harvest

  # Take 20 photos and 5 videos from every channel, mirror to @archive
  tgharvest harvest --all --photos 20 --videos 5 --dest @archive`,
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)

	harvestCmd.Flags().StringVarP(&harvestDest, "dest", "d", "", "channel to republish downloads to (@username)")
	harvestCmd.Flags().IntVarP(&harvestPhotos, "photos", "p", -1, "photos to download per channel")
	harvestCmd.Flags().IntVarP(&harvestVideos, "videos", "V", -1, "videos to download per channel")
	harvestCmd.Flags().BoolVarP(&harvestAll, "all", "a", false, "harvest every channel without prompting")
}

// telegramSource adapts the Telegram client to the harvester's Source
// interface; only History needs wrapping, the rest of the client's
// method set matches directly.
type telegramSource struct {
	*telegram.Client
}

func (s telegramSource) History(ch models.Channel, pageSize int) harvest.Scanner {
	return s.Client.History(ch, pageSize)
}

func runHarvest(cmd *cobra.Command, args []string) error {
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
			return fmt.Errorf("no channels found for this account")
		}

		plan, err := buildPlan(channels)
		if err != nil {
			return err
		}
		if len(plan.Channels) == 0 {
			fmt.Println("Nothing selected.")
			return nil
		}

		h := harvest.New(cfg, telegramSource{client})
		results, err := h.Run(ctx, plan)
		printResults(results)
		if err != nil && errors.IsFatal(err) {
			return fmt.Errorf("session lost authorization, run 'tgharvest auth login': %w", err)
		}
		return err
	})
}

// buildPlan turns flags and interactive answers into a harvest plan.
func buildPlan(channels []models.Channel) (harvest.Plan, error) {
	reader := bufio.NewReader(os.Stdin)

	selected := channels
	if !harvestAll {
		printChannels(channels)
		fmt.Print("Channels to harvest (e.g. 1,3,5 or 'all'): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return harvest.Plan{}, fmt.Errorf("read selection: %w", err)
		}
		selected, err = selectChannels(channels, strings.TrimSpace(line))
		if err != nil {
			return harvest.Plan{}, err
		}
	}

	requested := make(map[int64]models.RequestedCounts, len(selected))
	for _, ch := range selected {
		counts := models.RequestedCounts{Photos: harvestPhotos, Videos: harvestVideos}
		if counts.Photos < 0 {
			n, err := promptCount(reader, fmt.Sprintf("Photos from %q", ch.Title))
			if err != nil {
				return harvest.Plan{}, err
			}
			counts.Photos = n
		}
		if counts.Videos < 0 {
			n, err := promptCount(reader, fmt.Sprintf("Videos from %q", ch.Title))
			if err != nil {
				return harvest.Plan{}, err
			}
			counts.Videos = n
		}
		requested[ch.ID] = counts
	}

	dest := strings.TrimSpace(harvestDest)
	if dest == "" && !harvestAll {
		fmt.Print("Republish to channel (blank to skip): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return harvest.Plan{}, fmt.Errorf("read destination: %w", err)
		}
		dest = strings.TrimSpace(line)
	}

	return harvest.Plan{Channels: selected, Requested: requested, Destination: dest}, nil
}

func printChannels(channels []models.Channel) {
	fmt.Println("\nYour channels:")
	for i, ch := range channels {
		kind := "group"
		if ch.Broadcast {
			kind = "channel"
		}
		fmt.Printf("  %2d. %s (%s)\n", i+1, ch.Title, kind)
	}
	fmt.Println()
}

// selectChannels parses a comma separated list of 1-based indexes.
func selectChannels(channels []models.Channel, input string) ([]models.Channel, error) {
	if strings.EqualFold(input, "all") {
		return channels, nil
	}
	if input == "" {
		return nil, nil
	}

	seen := make(map[int]bool)
	var selected []models.Channel
	for _, part := range strings.Split(input, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || idx < 1 || idx > len(channels) {
			return nil, fmt.Errorf("invalid channel selection %q", strings.TrimSpace(part))
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		selected = append(selected, channels[idx-1])
	}
	return selected, nil
}

func promptCount(reader *bufio.Reader, label string) (int, error) {
	for {
		fmt.Printf("%s (0 for none): ", label)
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("read count: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 0 {
			fmt.Println("Enter a non-negative number.")
			continue
		}
		return n, nil
	}
}

func printResults(results []harvest.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Println("\nHarvest summary:")
	for _, res := range results {
		switch {
		case res.Summary.Err != nil:
			fmt.Printf("  %s: %d photos, %d videos (failed: %v)\n",
				res.Channel.Title, res.Summary.Photos, res.Summary.Videos, res.Summary.Err)
		default:
			fmt.Printf("  %s: %d photos, %d videos (of %d/%d available)\n",
				res.Channel.Title, res.Summary.Photos, res.Summary.Videos,
				res.Available.Photos, res.Available.Videos)
		}
	}
}
