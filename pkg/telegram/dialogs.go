package telegram

import (
	"context"
	"fmt"

	"github.com/gotd/td/tg"

	"tgharvest/pkg/models"
)

// Channels lists the groups and broadcast channels the session is a member
// of. Private dialogs are not harvestable and are filtered out.
func (c *Client) Channels(ctx context.Context) ([]models.Channel, error) {
	result, err := c.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      100,
	})
	if err != nil {
		return nil, fmt.Errorf("get dialogs: %w", err)
	}

	var (
		dialogs     []tg.DialogClass
		chatClasses []tg.ChatClass
	)
	switch r := result.(type) {
	case *tg.MessagesDialogs:
		dialogs = r.Dialogs
		chatClasses = r.Chats
	case *tg.MessagesDialogsSlice:
		dialogs = r.Dialogs
		chatClasses = r.Chats
	default:
		return nil, fmt.Errorf("unexpected dialogs response: %T", result)
	}

	chatMap := make(map[int64]*tg.Chat)
	channelMap := make(map[int64]*tg.Channel)
	for _, ch := range chatClasses {
		switch v := ch.(type) {
		case *tg.Chat:
			chatMap[v.ID] = v
		case *tg.Channel:
			channelMap[v.ID] = v
		}
	}

	var channels []models.Channel
	for _, d := range dialogs {
		dialog, ok := d.(*tg.Dialog)
		if !ok {
			continue
		}

		switch peer := dialog.Peer.(type) {
		case *tg.PeerChat:
			group, exists := chatMap[peer.ChatID]
			if !exists || group.Left {
				continue
			}
			channels = append(channels, models.Channel{
				ID:    group.ID,
				Title: group.Title,
			})

		case *tg.PeerChannel:
			channel, exists := channelMap[peer.ChannelID]
			if !exists || channel.Left {
				continue
			}
			channels = append(channels, models.Channel{
				ID:         channel.ID,
				AccessHash: channel.AccessHash,
				Title:      channel.Title,
				Broadcast:  channel.Broadcast,
			})
		}
	}

	c.log.WithField("count", len(channels)).Debug("Listed joined channels")
	return channels, nil
}
