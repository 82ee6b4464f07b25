package fetcher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tgharvest/pkg/errors"
	"tgharvest/pkg/logger"
	"tgharvest/pkg/media"
	"tgharvest/pkg/models"
)

// DefaultWorkers bounds in-flight downloads when no explicit worker count
// is configured.
const DefaultWorkers = 5

// Scanner pages through a channel's history. An empty page means the
// scan is exhausted.
type Scanner interface {
	Next(ctx context.Context) ([]models.Message, error)
}

// Downloader fetches one message's media to a local path.
type Downloader interface {
	TargetPath(msg models.Message, dir string) string
	Download(ctx context.Context, msg models.Message, path string) error
}

// Publisher forwards a downloaded file to a destination channel.
type Publisher interface {
	Publish(ctx context.Context, destination, path string, kind models.Kind) models.PublishOutcome
}

// Storage answers whether a target path already holds a finished download.
type Storage interface {
	Exists(path string) bool
}

// ConcurrentFetcher runs the download pass for one channel: a bounded
// pool of workers draining pages from a scanner, each item charged
// against the shared quota before any bytes move.
type ConcurrentFetcher struct {
	workers          int
	downloader       Downloader
	publisher        Publisher
	storage          Storage
	maxVideoDuration time.Duration
	logger           logger.Logger
}

// NewConcurrentFetcher creates a fetcher with the given worker bound.
// Non-positive worker counts fall back to DefaultWorkers.
func NewConcurrentFetcher(
	workers int,
	downloader Downloader,
	publisher Publisher,
	storage Storage,
	maxVideoDuration time.Duration,
	log logger.Logger,
) *ConcurrentFetcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &ConcurrentFetcher{
		workers:          workers,
		downloader:       downloader,
		publisher:        publisher,
		storage:          storage,
		maxVideoDuration: maxVideoDuration,
		logger:           log,
	}
}

// runState is the per-Fetch shared state. A fresh one per call keeps
// concurrent fetches of different channels independent.
type runState struct {
	channel     models.Channel
	quota       *models.Quota
	dir         string
	destination string

	mu   sync.Mutex
	seen map[int]bool

	photos atomic.Int64
	videos atomic.Int64

	photosOut sync.Once
	videosOut sync.Once

	fatalOnce sync.Once
	fatalErr  error
	cancel    context.CancelFunc
}

func (r *runState) markSeen(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen[id] {
		return false
	}
	r.seen[id] = true
	return true
}

func (r *runState) fail(err error) {
	r.fatalOnce.Do(func() {
		r.fatalErr = err
		r.cancel()
	})
}

// Fetch drains the scanner, downloading media until the quota or the
// history runs out. Item failures are logged and skipped; a scan failure
// or a fatal error ends the channel with the partial tally in the
// summary. Publish outcomes never affect the tally or the quota.
func (f *ConcurrentFetcher) Fetch(
	ctx context.Context,
	channel models.Channel,
	scanner Scanner,
	quota *models.Quota,
	dir string,
	destination string,
) models.FetchSummary {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	run := &runState{
		channel:     channel,
		quota:       quota,
		dir:         dir,
		destination: destination,
		seen:        make(map[int]bool),
		cancel:      cancel,
	}

	jobs := make(chan models.Message, f.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < f.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				f.process(ctx, run, msg)
			}
		}()
	}

	var scanErr error
feed:
	for {
		if quota.Remaining(models.KindPhoto) == 0 && quota.Remaining(models.KindVideo) == 0 {
			break
		}
		page, err := scanner.Next(ctx)
		if err != nil {
			scanErr = err
			break
		}
		if len(page) == 0 {
			break
		}
		for _, msg := range page {
			select {
			case jobs <- msg:
			case <-ctx.Done():
				break feed
			}
		}
	}
	close(jobs)
	wg.Wait()

	summary := models.FetchSummary{
		Photos: int(run.photos.Load()),
		Videos: int(run.videos.Load()),
	}
	switch {
	case run.fatalErr != nil:
		summary.Err = run.fatalErr
	case scanErr != nil:
		summary.Err = errors.Channel("scan history", scanErr)
	}
	return summary
}

// process handles a single message: classify, filter, charge the quota,
// then download and optionally publish.
func (f *ConcurrentFetcher) process(ctx context.Context, run *runState, msg models.Message) {
	kind := media.Classify(msg)
	if kind.Kind == models.KindNone {
		return
	}
	if !run.markSeen(msg.ID) {
		return
	}

	if kind.Kind == models.KindVideo && f.maxVideoDuration > 0 &&
		kind.DurationKnown && kind.Duration > int(f.maxVideoDuration.Seconds()) {
		f.logger.DebugWithFields("Skipping video over duration limit", map[string]interface{}{
			"channel":    run.channel.Title,
			"message_id": msg.ID,
			"duration":   kind.Duration,
		})
		return
	}

	if !run.quota.TryConsume(kind.Kind) {
		f.logExhausted(run, kind.Kind)
		return
	}

	// The quota unit stays spent from here on, even for duplicates and
	// failed downloads.
	path := f.downloader.TargetPath(msg, run.dir)
	if f.storage.Exists(path) {
		logger.LogDownload(run.channel.Title, msg.ID, kind.Kind.String(), false, nil)
		return
	}

	if err := f.downloader.Download(ctx, msg, path); err != nil {
		logger.LogDownload(run.channel.Title, msg.ID, kind.Kind.String(), false, err)
		if errors.IsFatal(err) {
			run.fail(err)
		}
		return
	}

	switch kind.Kind {
	case models.KindPhoto:
		run.photos.Add(1)
	case models.KindVideo:
		run.videos.Add(1)
	}
	logger.LogDownload(run.channel.Title, msg.ID, kind.Kind.String(), true, nil)

	if run.destination != "" && f.publisher != nil {
		outcome := f.publisher.Publish(ctx, run.destination, path, kind.Kind)
		logger.LogPublish(run.destination, path, outcome.Success, outcome.Reason)
	}
}

// logExhausted reports quota exhaustion once per kind per run; after
// that, further hits of the same kind are silently skipped.
func (f *ConcurrentFetcher) logExhausted(run *runState, kind models.Kind) {
	note := func() {
		f.logger.InfoWithFields("Quota exhausted", map[string]interface{}{
			"channel": run.channel.Title,
			"kind":    kind.String(),
		})
	}
	switch kind {
	case models.KindPhoto:
		run.photosOut.Do(note)
	case models.KindVideo:
		run.videosOut.Do(note)
	}
}
