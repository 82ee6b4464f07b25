package harvest

import (
	"context"

	"tgharvest/pkg/models"
)

// Scanner pages through one channel's history, newest first. An empty
// page means the scan is exhausted. Scanners are single-use; each pass
// over a channel needs a fresh one.
type Scanner interface {
	Next(ctx context.Context) ([]models.Message, error)
}

// Source is the Telegram-facing surface the harvester needs: opening
// history scans and moving media bytes in both directions.
type Source interface {
	History(ch models.Channel, pageSize int) Scanner
	TargetPath(msg models.Message, dir string) string
	Download(ctx context.Context, msg models.Message, path string) error
	Publish(ctx context.Context, destination, path string, kind models.Kind) models.PublishOutcome
}
