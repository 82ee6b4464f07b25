// Package media classifies message attachments into the categories the
// harvest pipeline cares about.
package media

import (
	"strings"

	"tgharvest/pkg/models"
)

// Classify maps a message's attachment to a MediaKind. It is deterministic
// and side-effect free.
//
// A document whose declared content type contains "video" is a Video; its
// duration comes from the declared attributes when present, otherwise it is
// recorded as unknown. A photo attachment is a Photo. Everything else,
// including messages without media, is None.
func Classify(msg models.Message) models.MediaKind {
	att := msg.Attachment
	if att == nil {
		return models.MediaKind{Kind: models.KindNone}
	}

	if strings.Contains(att.MimeType, "video") {
		return models.MediaKind{
			Kind:          models.KindVideo,
			Duration:      att.Duration,
			DurationKnown: att.HasDuration,
		}
	}

	if att.Photo || strings.HasPrefix(att.MimeType, "image/") {
		return models.MediaKind{Kind: models.KindPhoto}
	}

	return models.MediaKind{Kind: models.KindNone}
}
