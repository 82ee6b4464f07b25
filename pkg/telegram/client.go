// Package telegram wraps the gotd MTProto client with the operations the
// harvest pipeline needs: dialog listing, history pagination, media
// download, publishing and channel joins.
package telegram

import (
	"context"
	"fmt"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/tg"

	"tgharvest/pkg/auth"
	"tgharvest/pkg/errors"
	"tgharvest/pkg/logger"
	"tgharvest/pkg/models"
	"tgharvest/pkg/ratelimit"
)

// Client is a connected Telegram user session.
type Client struct {
	creds       *auth.Credentials
	sessionPath string
	limiter     ratelimit.Limiter
	log         logger.Logger

	client *telegram.Client
	api    *tg.Client
}

// NewClient creates a client for the given credentials. Nothing connects
// until Run is called.
func NewClient(creds *auth.Credentials, sessionPath string, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Client{
		creds:       creds,
		sessionPath: sessionPath,
		limiter:     limiter,
		log:         log,
	}
}

// Run connects, verifies the stored session is authorized, and invokes fn
// with a live API. An unauthorized session is fatal: the caller gets
// errors.ErrUnauthorized and no pipeline work starts.
func (c *Client) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return c.run(ctx, func(ctx context.Context) error {
		status, err := c.client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}
		if !status.Authorized {
			return errors.ErrUnauthorized
		}

		self, err := c.client.Self(ctx)
		if err != nil {
			return fmt.Errorf("fetch self: %w", err)
		}
		c.log.WithFields(map[string]interface{}{
			"user_id": self.ID,
			"phone":   c.creds.Phone,
		}).Info("Session authorized")

		return fn(ctx)
	})
}

func (c *Client) run(ctx context.Context, fn func(ctx context.Context) error) error {
	c.client = telegram.NewClient(c.creds.APIID, c.creds.APIHash, telegram.Options{
		SessionStorage: &FileSessionStorage{Path: c.sessionPath},
		DCList:         dcs.Prod(),
	})

	return c.client.Run(ctx, func(ctx context.Context) error {
		c.api = c.client.API()
		return fn(ctx)
	})
}

// API exposes the raw client for call sites inside this package.
func (c *Client) API() *tg.Client {
	return c.api
}

// inputPeer maps a harvested channel onto the wire peer type. Legacy
// groups have no access hash.
func inputPeer(ch models.Channel) tg.InputPeerClass {
	if ch.AccessHash != 0 {
		return &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}
	}
	return &tg.InputPeerChat{ChatID: ch.ID}
}
