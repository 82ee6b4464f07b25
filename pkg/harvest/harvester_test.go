package harvest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"tgharvest/pkg/config"
	"tgharvest/pkg/errors"
	"tgharvest/pkg/models"
)

// sliceScanner serves fixed pages, then exhaustion or a terminal error.
type sliceScanner struct {
	pages [][]models.Message
	err   error
}

func (s *sliceScanner) Next(ctx context.Context) ([]models.Message, error) {
	if len(s.pages) == 0 {
		return nil, s.err
	}
	page := s.pages[0]
	s.pages = s.pages[1:]
	return page, nil
}

// stubSource hands out a fresh scanner per History call, so the counting
// pass and the fetch pass each get a full scan.
type stubSource struct {
	mu        sync.Mutex
	histories map[int64][][]models.Message
	scanErrs  map[int64]error
	dlErrs    map[int]error
	published []string
}

func newStubSource() *stubSource {
	return &stubSource{
		histories: make(map[int64][][]models.Message),
		scanErrs:  make(map[int64]error),
		dlErrs:    make(map[int]error),
	}
}

func (s *stubSource) History(ch models.Channel, pageSize int) Scanner {
	if err := s.scanErrs[ch.ID]; err != nil {
		return &sliceScanner{err: err}
	}
	pages := make([][]models.Message, len(s.histories[ch.ID]))
	copy(pages, s.histories[ch.ID])
	return &sliceScanner{pages: pages}
}

func (s *stubSource) TargetPath(msg models.Message, dir string) string {
	return filepath.Join(dir, strconv.Itoa(msg.ID)+".dat")
}

func (s *stubSource) Download(ctx context.Context, msg models.Message, path string) error {
	s.mu.Lock()
	err := s.dlErrs[msg.ID]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte("media"), 0644)
}

func (s *stubSource) Publish(ctx context.Context, destination, path string, kind models.Kind) models.PublishOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, path)
	return models.PublishOutcome{Success: true}
}

func (s *stubSource) publishedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

func photoMsg(id int) models.Message {
	return models.Message{ID: id, Attachment: &models.Attachment{Photo: true}}
}

func videoMsg(id, duration int) models.Message {
	return models.Message{ID: id, Attachment: &models.Attachment{
		MimeType:    "video/mp4",
		Duration:    duration,
		HasDuration: true,
	}}
}

func textMsg(id int) models.Message {
	return models.Message{ID: id}
}

func mixedHistory(photos, videos int) [][]models.Message {
	var page []models.Message
	id := 1000
	for i := 0; i < photos; i++ {
		page = append(page, photoMsg(id))
		id--
	}
	for i := 0; i < videos; i++ {
		page = append(page, videoMsg(id, 60))
		id--
	}
	return [][]models.Message{page}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Download.MediaDir = t.TempDir()
	return cfg
}

func TestRunDownloadsRequestedCounts(t *testing.T) {
	source := newStubSource()
	source.histories[1] = mixedHistory(10, 5)

	h := New(testConfig(t), source)
	results, err := h.Run(context.Background(), Plan{
		Channels:  []models.Channel{{ID: 1, Title: "alpha"}},
		Requested: map[int64]models.RequestedCounts{1: {Photos: 3, Videos: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	res := results[0]
	if res.Available.Photos != 10 || res.Available.Videos != 5 {
		t.Errorf("unexpected availability: %+v", res.Available)
	}
	if res.Summary.Photos != 3 || res.Summary.Videos != 2 {
		t.Errorf("expected 3 photos and 2 videos, got %+v", res.Summary)
	}
}

func TestRunClampsRequestToAvailable(t *testing.T) {
	source := newStubSource()
	source.histories[1] = mixedHistory(4, 0)

	h := New(testConfig(t), source)
	results, err := h.Run(context.Background(), Plan{
		Channels:  []models.Channel{{ID: 1, Title: "alpha"}},
		Requested: map[int64]models.RequestedCounts{1: {Photos: 10}},
	})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if results[0].Summary.Photos != 4 {
		t.Errorf("expected all 4 available photos, got %d", results[0].Summary.Photos)
	}
}

func TestRunWritesIntoChannelDirectory(t *testing.T) {
	source := newStubSource()
	source.histories[1] = mixedHistory(2, 0)

	cfg := testConfig(t)
	h := New(cfg, source)
	_, err := h.Run(context.Background(), Plan{
		Channels:  []models.Channel{{ID: 1, Title: "alpha"}},
		Requested: map[int64]models.RequestedCounts{1: {Photos: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(cfg.Download.MediaDir, "alpha"))
	if err != nil {
		t.Fatalf("channel directory missing: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 files in channel dir, got %d", len(entries))
	}
}

func TestRunChannelFailureDoesNotStopOthers(t *testing.T) {
	source := newStubSource()
	source.scanErrs[1] = fmt.Errorf("CHANNEL_PRIVATE")
	source.histories[2] = mixedHistory(2, 0)

	h := New(testConfig(t), source)
	results, err := h.Run(context.Background(), Plan{
		Channels: []models.Channel{
			{ID: 1, Title: "broken"},
			{ID: 2, Title: "healthy"},
		},
		Requested: map[int64]models.RequestedCounts{
			1: {Photos: 5},
			2: {Photos: 2},
		},
	})
	if err != nil {
		t.Fatalf("channel failure must not fail the run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected both channels in results, got %d", len(results))
	}
	if results[0].Summary.Err == nil {
		t.Error("expected error recorded for broken channel")
	}
	if results[1].Summary.Err != nil || results[1].Summary.Photos != 2 {
		t.Errorf("healthy channel should have completed: %+v", results[1].Summary)
	}
}

func TestRunFatalErrorAbortsRemainingChannels(t *testing.T) {
	source := newStubSource()
	source.scanErrs[1] = fmt.Errorf("history: %w", errors.ErrUnauthorized)
	source.histories[2] = mixedHistory(2, 0)

	h := New(testConfig(t), source)
	results, err := h.Run(context.Background(), Plan{
		Channels: []models.Channel{
			{ID: 1, Title: "first"},
			{ID: 2, Title: "second"},
		},
		Requested: map[int64]models.RequestedCounts{
			1: {Photos: 1},
			2: {Photos: 1},
		},
	})
	if err == nil {
		t.Fatal("expected fatal run error")
	}
	if !errors.IsFatal(err) {
		t.Errorf("expected fatal classification, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("second channel must not be processed after a fatal error, got %d results", len(results))
	}
}

func TestRunPublishesWhenDestinationSet(t *testing.T) {
	source := newStubSource()
	source.histories[1] = mixedHistory(2, 1)

	h := New(testConfig(t), source)
	_, err := h.Run(context.Background(), Plan{
		Channels:    []models.Channel{{ID: 1, Title: "alpha"}},
		Requested:   map[int64]models.RequestedCounts{1: {Photos: 2, Videos: 1}},
		Destination: "@mirror",
	})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if source.publishedCount() != 3 {
		t.Errorf("expected 3 publishes, got %d", source.publishedCount())
	}
}

func TestRunItemFailureKeepsChannelGoing(t *testing.T) {
	source := newStubSource()
	source.histories[1] = [][]models.Message{
		{photoMsg(3), photoMsg(2), photoMsg(1)},
	}
	source.dlErrs[2] = fmt.Errorf("FILE_REFERENCE_EXPIRED")

	h := New(testConfig(t), source)
	results, err := h.Run(context.Background(), Plan{
		Channels:  []models.Channel{{ID: 1, Title: "alpha"}},
		Requested: map[int64]models.RequestedCounts{1: {Photos: 3}},
	})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if results[0].Summary.Err != nil {
		t.Errorf("item failure must not fail the channel: %v", results[0].Summary.Err)
	}
	if results[0].Summary.Photos != 2 {
		t.Errorf("expected 2 photos despite one failure, got %d", results[0].Summary.Photos)
	}
}

func TestRunPhotoOnlyChannelYieldsNoVideos(t *testing.T) {
	source := newStubSource()
	source.histories[1] = mixedHistory(10, 0)

	h := New(testConfig(t), source)
	results, err := h.Run(context.Background(), Plan{
		Channels:  []models.Channel{{ID: 1, Title: "alpha"}},
		Requested: map[int64]models.RequestedCounts{1: {Photos: 5, Videos: 5}},
	})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if results[0].Summary.Photos != 5 || results[0].Summary.Videos != 0 {
		t.Errorf("expected {5, 0}, got %+v", results[0].Summary)
	}
}

func TestRunLongVideoCountedButNotDownloaded(t *testing.T) {
	source := newStubSource()
	source.histories[1] = [][]models.Message{
		{videoMsg(3, 120), videoMsg(2, 700), videoMsg(1, 50)},
	}

	h := New(testConfig(t), source)
	results, err := h.Run(context.Background(), Plan{
		Channels:  []models.Channel{{ID: 1, Title: "alpha"}},
		Requested: map[int64]models.RequestedCounts{1: {Videos: 5}},
	})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	// The counting pass sees all three videos; the fetch pass skips the
	// 700 second one.
	if results[0].Available.Videos != 3 {
		t.Errorf("expected 3 videos counted, got %d", results[0].Available.Videos)
	}
	if results[0].Summary.Videos != 2 {
		t.Errorf("expected 2 videos downloaded, got %d", results[0].Summary.Videos)
	}
}

func TestRunZeroRequestDownloadsNothing(t *testing.T) {
	source := newStubSource()
	source.histories[1] = mixedHistory(5, 5)

	h := New(testConfig(t), source)
	results, err := h.Run(context.Background(), Plan{
		Channels:  []models.Channel{{ID: 1, Title: "alpha"}},
		Requested: map[int64]models.RequestedCounts{1: {}},
	})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if results[0].Summary.Photos != 0 || results[0].Summary.Videos != 0 {
		t.Errorf("expected nothing downloaded, got %+v", results[0].Summary)
	}
}
