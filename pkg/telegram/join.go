package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/gotd/td/tg"
)

// Join makes the session a member of a channel, given either a @username
// or an invite link. Joining is a one-shot side operation, independent of
// the harvest pipeline.
func (c *Client) Join(ctx context.Context, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("empty channel reference")
	}

	if hash, ok := inviteHash(ref); ok {
		if _, err := c.api.MessagesImportChatInvite(ctx, hash); err != nil {
			return fmt.Errorf("import invite %q: %w", ref, err)
		}
		c.log.WithField("invite", ref).Info("Joined channel via invite link")
		return nil
	}

	username := strings.TrimPrefix(ref, "@")
	resolved, err := c.api.ContactsResolveUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", ref, err)
	}

	for _, chat := range resolved.Chats {
		channel, ok := chat.(*tg.Channel)
		if !ok {
			continue
		}
		_, err := c.api.ChannelsJoinChannel(ctx, &tg.InputChannel{
			ChannelID:  channel.ID,
			AccessHash: channel.AccessHash,
		})
		if err != nil {
			return fmt.Errorf("join %q: %w", ref, err)
		}
		c.log.WithField("channel", channel.Title).Info("Joined channel")
		return nil
	}

	return fmt.Errorf("%q did not resolve to a channel", ref)
}

// inviteHash extracts the hash from t.me invite link forms.
func inviteHash(ref string) (string, bool) {
	for _, prefix := range []string{
		"https://t.me/+",
		"https://t.me/joinchat/",
		"t.me/+",
		"t.me/joinchat/",
	} {
		if strings.HasPrefix(ref, prefix) {
			return strings.TrimPrefix(ref, prefix), true
		}
	}
	return "", false
}
