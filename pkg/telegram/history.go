package telegram

import (
	"context"
	"fmt"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"tgharvest/pkg/errors"
	"tgharvest/pkg/models"
)

// HistoryScanner walks one channel's message history from newest to
// oldest, one page at a time. A scanner is finite and single-use: once it
// reports an empty page it is exhausted, and a new pass needs a fresh
// scanner. Two passes over the same channel are independent scans, not a
// snapshot: messages arriving between passes make the second pass see
// different history. The count-then-download protocol accepts that gap.
type HistoryScanner struct {
	client   *Client
	channel  models.Channel
	peer     tg.InputPeerClass
	pageSize int
	offsetID int
	done     bool
}

// History starts a new scan over the channel's history.
func (c *Client) History(ch models.Channel, pageSize int) *HistoryScanner {
	return &HistoryScanner{
		client:   c,
		channel:  ch,
		peer:     inputPeer(ch),
		pageSize: pageSize,
	}
}

// Next returns the next page of messages, strictly older than everything
// returned before. An empty page means the history is exhausted.
func (s *HistoryScanner) Next(ctx context.Context) ([]models.Message, error) {
	// A raw page can consist entirely of service messages. Keep going so
	// an empty return always means exhaustion.
	for !s.done {
		page, err := s.fetchPage(ctx)
		if err != nil {
			return nil, err
		}
		if len(page) > 0 {
			return page, nil
		}
	}
	return nil, nil
}

func (s *HistoryScanner) fetchPage(ctx context.Context) ([]models.Message, error) {
	if s.client.limiter != nil {
		if err := s.client.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	result, err := s.client.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:     s.peer,
		OffsetID: s.offsetID,
		Limit:    s.pageSize,
	})
	if err != nil {
		if auth.IsUnauthorized(err) {
			return nil, fmt.Errorf("fetch history: %w", errors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	var raw []tg.MessageClass
	switch r := result.(type) {
	case *tg.MessagesMessages:
		raw = r.Messages
	case *tg.MessagesMessagesSlice:
		raw = r.Messages
	case *tg.MessagesChannelMessages:
		raw = r.Messages
	default:
		return nil, fmt.Errorf("unexpected history response: %T", result)
	}

	if len(raw) == 0 {
		s.done = true
		return nil, nil
	}

	page := make([]models.Message, 0, len(raw))
	for _, m := range raw {
		// The offset must advance past service and empty messages too,
		// or pagination would loop on them forever.
		s.offsetID = m.GetID()

		msg, ok := m.(*tg.Message)
		if !ok {
			continue
		}
		page = append(page, models.Message{
			ID:         msg.ID,
			Attachment: extractAttachment(msg.Media),
		})
	}

	s.client.log.WithFields(map[string]interface{}{
		"channel":   s.channel.Title,
		"page_size": len(page),
		"offset_id": s.offsetID,
	}).Debug("Fetched history page")

	return page, nil
}
