package harvest

import (
	"context"

	"tgharvest/internal/fetcher"
	"tgharvest/pkg/config"
	"tgharvest/pkg/errors"
	"tgharvest/pkg/logger"
	"tgharvest/pkg/models"
	"tgharvest/pkg/storage"
)

// Plan is one harvest run: which channels to scan, how much to take from
// each, and where downloads get republished. An empty Destination means
// download only.
type Plan struct {
	Channels    []models.Channel
	Requested   map[int64]models.RequestedCounts
	Destination string
}

// Result is the outcome for one channel in a run.
type Result struct {
	Channel   models.Channel
	Available models.Available
	Summary   models.FetchSummary
}

// Harvester orchestrates the count-then-download protocol across the
// channels of a plan.
type Harvester struct {
	source  Source
	storage *storage.Manager
	fetcher *fetcher.ConcurrentFetcher
	config  *config.Config
	logger  logger.Logger
}

// New creates a Harvester over the given source.
func New(cfg *config.Config, source Source) *Harvester {
	log := logger.GetLogger()
	storageManager := storage.NewManager(cfg.Download.MediaDir)

	pool := fetcher.NewConcurrentFetcher(
		cfg.Download.Workers,
		source,
		source,
		storageManager,
		cfg.Download.MaxVideoDuration,
		log,
	)

	return &Harvester{
		source:  source,
		storage: storageManager,
		fetcher: pool,
		config:  cfg,
		logger:  log,
	}
}

// Run executes the plan channel by channel. A channel failure is recorded
// in its result and the run moves on; a fatal failure stops the run with
// the results gathered so far.
func (h *Harvester) Run(ctx context.Context, plan Plan) ([]Result, error) {
	results := make([]Result, 0, len(plan.Channels))

	for _, ch := range plan.Channels {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		res := h.runChannel(ctx, plan, ch)
		results = append(results, res)

		if res.Summary.Err != nil {
			logger.LogChannelError(ch.Title, res.Summary.Err)
			if errors.IsFatal(res.Summary.Err) {
				return results, errors.Fatal("harvest", res.Summary.Err)
			}
		}
	}
	return results, nil
}

// runChannel runs both passes for one channel: a full counting scan, then
// a fresh scan feeding the download workers. The two scans are separate
// snapshots of a moving history; the quota is sized from the first and
// enforced on the second.
func (h *Harvester) runChannel(ctx context.Context, plan Plan, ch models.Channel) Result {
	pageSize := h.config.Download.PageSize

	avail, err := Count(ctx, h.source.History(ch, pageSize))
	if err != nil {
		return Result{
			Channel:   ch,
			Available: avail,
			Summary:   models.FetchSummary{Err: errors.Channel("count media", err)},
		}
	}

	req := plan.Requested[ch.ID]
	quota := models.NewQuota(minInt(req.Photos, avail.Photos), minInt(req.Videos, avail.Videos))

	h.logger.InfoWithFields("Counted channel media", map[string]interface{}{
		"channel":          ch.Title,
		"photos_available": avail.Photos,
		"videos_available": avail.Videos,
		"photos_requested": req.Photos,
		"videos_requested": req.Videos,
	})

	dir, err := h.storage.ChannelDir(ch.Title)
	if err != nil {
		return Result{
			Channel:   ch,
			Available: avail,
			Summary:   models.FetchSummary{Err: errors.Channel("create channel directory", err)},
		}
	}

	summary := h.fetcher.Fetch(ctx, ch, h.source.History(ch, pageSize), quota, dir, plan.Destination)

	h.logger.InfoWithFields("Channel harvest finished", map[string]interface{}{
		"channel": ch.Title,
		"photos":  summary.Photos,
		"videos":  summary.Videos,
	})

	return Result{Channel: ch, Available: avail, Summary: summary}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
