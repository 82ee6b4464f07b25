package telegram

import (
	"context"
	"path/filepath"

	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/uploader"

	"tgharvest/pkg/models"
)

// Publish uploads a local file to the destination channel. One attempt,
// no retry: a failed publish is reported back and the batch moves on.
func (c *Client) Publish(ctx context.Context, destination, path string, kind models.Kind) models.PublishOutcome {
	upl := uploader.NewUploader(c.api)
	sender := message.NewSender(c.api).WithUploader(upl)

	file, err := upl.FromPath(ctx, path)
	if err != nil {
		return models.PublishOutcome{Reason: "upload: " + err.Error()}
	}

	target := sender.Resolve(destination)

	switch kind {
	case models.KindVideo:
		document := message.UploadedDocument(file).
			Filename(filepath.Base(path)).
			MIME(mimeForPath(path)).
			Video()
		if _, err := target.Media(ctx, document); err != nil {
			return models.PublishOutcome{Reason: "send video: " + err.Error()}
		}
	default:
		if _, err := target.Media(ctx, message.UploadedPhoto(file)); err != nil {
			return models.PublishOutcome{Reason: "send photo: " + err.Error()}
		}
	}

	return models.PublishOutcome{Success: true}
}

func mimeForPath(path string) string {
	switch filepath.Ext(path) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	default:
		return "video/mp4"
	}
}
