package harvest

import (
	"context"
	"fmt"
	"testing"

	"tgharvest/pkg/models"
)

func TestCountTalliesByKind(t *testing.T) {
	scanner := &sliceScanner{pages: [][]models.Message{
		{photoMsg(6), videoMsg(5, 30), textMsg(4)},
		{photoMsg(3), photoMsg(2), videoMsg(1, 45)},
	}}

	avail, err := Count(context.Background(), scanner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avail.Photos != 3 {
		t.Errorf("expected 3 photos, got %d", avail.Photos)
	}
	if avail.Videos != 2 {
		t.Errorf("expected 2 videos, got %d", avail.Videos)
	}
}

func TestCountIgnoresDurationLimit(t *testing.T) {
	// A two hour video still counts as available; only the fetch pass
	// filters on duration.
	scanner := &sliceScanner{pages: [][]models.Message{
		{videoMsg(2, 7200), videoMsg(1, 10)},
	}}

	avail, err := Count(context.Background(), scanner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avail.Videos != 2 {
		t.Errorf("expected both videos counted, got %d", avail.Videos)
	}
}

func TestCountEmptyHistory(t *testing.T) {
	avail, err := Count(context.Background(), &sliceScanner{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avail.Photos != 0 || avail.Videos != 0 {
		t.Errorf("expected zero tally, got %+v", avail)
	}
}

func TestCountReturnsPartialTallyOnError(t *testing.T) {
	scanner := &sliceScanner{
		pages: [][]models.Message{{photoMsg(2), photoMsg(1)}},
		err:   fmt.Errorf("CHANNEL_PRIVATE"),
	}

	avail, err := Count(context.Background(), scanner)
	if err == nil {
		t.Fatal("expected scan error")
	}
	if avail.Photos != 2 {
		t.Errorf("expected partial tally 2, got %d", avail.Photos)
	}
}

func TestCountStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Count(ctx, &sliceScanner{pages: [][]models.Message{{photoMsg(1)}}})
	if err == nil {
		t.Fatal("expected context error")
	}
}
