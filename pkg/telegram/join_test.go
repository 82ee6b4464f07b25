package telegram

import (
	"context"
	"fmt"
	"testing"

	"github.com/gotd/td/bin"
	"github.com/gotd/td/tg"

	"tgharvest/pkg/logger"
)

// joinInvoker answers the raw API calls Join makes, recording what it saw.
type joinInvoker struct {
	resolved   tg.ContactsResolvedPeer
	resolveErr error

	gotUsername   string
	gotInviteHash string
	joinedChannel int64
}

func (i *joinInvoker) Invoke(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
	switch req := input.(type) {
	case *tg.ContactsResolveUsernameRequest:
		if i.resolveErr != nil {
			return i.resolveErr
		}
		i.gotUsername = req.Username
		*output.(*tg.ContactsResolvedPeer) = i.resolved
		return nil
	case *tg.ChannelsJoinChannelRequest:
		channel, ok := req.Channel.(*tg.InputChannel)
		if !ok {
			return fmt.Errorf("unexpected channel input %T", req.Channel)
		}
		i.joinedChannel = channel.ChannelID
		output.(*tg.UpdatesBox).Updates = &tg.Updates{}
		return nil
	case *tg.MessagesImportChatInviteRequest:
		i.gotInviteHash = req.Hash
		output.(*tg.UpdatesBox).Updates = &tg.Updates{}
		return nil
	default:
		return fmt.Errorf("unexpected request %T", input)
	}
}

func joinClient(inv *joinInvoker) *Client {
	return &Client{api: tg.NewClient(inv), log: logger.GetLogger()}
}

func TestJoinResolvesUsername(t *testing.T) {
	inv := &joinInvoker{
		resolved: tg.ContactsResolvedPeer{
			Chats: []tg.ChatClass{
				&tg.Channel{ID: 77, AccessHash: 88, Title: "somechannel"},
			},
		},
	}
	c := joinClient(inv)

	if err := c.Join(context.Background(), "@somechannel"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.gotUsername != "somechannel" {
		t.Errorf("expected @ stripped before resolving, got %q", inv.gotUsername)
	}
	if inv.joinedChannel != 77 {
		t.Errorf("expected join of channel 77, got %d", inv.joinedChannel)
	}
}

func TestJoinInviteLink(t *testing.T) {
	inv := &joinInvoker{}
	c := joinClient(inv)

	if err := c.Join(context.Background(), "https://t.me/+AbCd123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.gotInviteHash != "AbCd123" {
		t.Errorf("expected invite hash AbCd123, got %q", inv.gotInviteHash)
	}
	if inv.gotUsername != "" {
		t.Error("invite links must not go through username resolution")
	}
}

func TestJoinResolveFailure(t *testing.T) {
	inv := &joinInvoker{resolveErr: fmt.Errorf("USERNAME_NOT_OCCUPIED")}
	c := joinClient(inv)

	if err := c.Join(context.Background(), "@missing"); err == nil {
		t.Fatal("expected resolve error to propagate")
	}
}

func TestJoinNonChannelResult(t *testing.T) {
	inv := &joinInvoker{
		resolved: tg.ContactsResolvedPeer{
			Users: []tg.UserClass{&tg.User{ID: 5}},
		},
	}
	c := joinClient(inv)

	if err := c.Join(context.Background(), "someuser"); err == nil {
		t.Fatal("expected error when the name resolves to a user, not a channel")
	}
	if inv.joinedChannel != 0 {
		t.Error("nothing should be joined for a non-channel result")
	}
}
