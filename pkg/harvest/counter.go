package harvest

import (
	"context"

	"tgharvest/pkg/media"
	"tgharvest/pkg/models"
)

// Count drains a full scan of the channel and tallies downloadable media
// by kind. The duration filter is deliberately not applied here: a video
// counts as available even if the fetch pass later skips it for length.
// On error the partial tally is returned alongside it.
func Count(ctx context.Context, scanner Scanner) (models.Available, error) {
	var avail models.Available
	for {
		select {
		case <-ctx.Done():
			return avail, ctx.Err()
		default:
		}

		page, err := scanner.Next(ctx)
		if err != nil {
			return avail, err
		}
		if len(page) == 0 {
			return avail, nil
		}

		for _, msg := range page {
			switch media.Classify(msg).Kind {
			case models.KindPhoto:
				avail.Photos++
			case models.KindVideo:
				avail.Videos++
			}
		}
	}
}
