package telegram

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

// LoginPrompter collects the interactive pieces of the sign-in flow from
// the operator.
type LoginPrompter interface {
	Code() (string, error)
	Password() (string, error)
}

// Login runs the code/password sign-in flow and persists the session. It
// is a no-op when the stored session is already authorized.
func (c *Client) Login(ctx context.Context, prompter LoginPrompter) error {
	return c.run(ctx, func(ctx context.Context) error {
		status, err := c.client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}
		if status.Authorized {
			c.log.Info("Session already authorized")
			return nil
		}

		c.log.WithField("phone", c.creds.Phone).Info("Sending login code")
		sentCode, err := c.client.Auth().SendCode(ctx, c.creds.Phone, auth.SendCodeOptions{})
		if err != nil {
			return fmt.Errorf("send code: %w", err)
		}
		sent, ok := sentCode.(*tg.AuthSentCode)
		if !ok {
			return fmt.Errorf("unexpected sent code type: %T", sentCode)
		}

		code, err := prompter.Code()
		if err != nil {
			return fmt.Errorf("read code: %w", err)
		}

		_, err = c.client.Auth().SignIn(ctx, c.creds.Phone, code, sent.PhoneCodeHash)
		if stderrors.Is(err, auth.ErrPasswordAuthNeeded) {
			password, perr := prompter.Password()
			if perr != nil {
				return fmt.Errorf("read password: %w", perr)
			}
			if _, err := c.client.Auth().Password(ctx, password); err != nil {
				return fmt.Errorf("2fa password: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("sign in: %w", err)
		}

		self, err := c.client.Self(ctx)
		if err != nil {
			return fmt.Errorf("fetch self: %w", err)
		}
		c.log.WithField("user_id", self.ID).Info("Authorization complete")
		return nil
	})
}

// AuthStatus reports whether the stored session is authorized.
func (c *Client) AuthStatus(ctx context.Context) (bool, error) {
	var authorized bool
	err := c.run(ctx, func(ctx context.Context) error {
		status, err := c.client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}
		authorized = status.Authorized
		return nil
	})
	return authorized, err
}
