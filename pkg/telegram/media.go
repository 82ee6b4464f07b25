package telegram

import (
	"github.com/gotd/td/tg"

	"tgharvest/pkg/models"
)

// extractAttachment reduces a wire media object to the facts the pipeline
// needs. Media kinds the harvester never downloads (polls, contacts,
// locations, web pages) come back as nil.
func extractAttachment(media tg.MessageMediaClass) *models.Attachment {
	if media == nil {
		return nil
	}

	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := m.Photo.(*tg.Photo)
		if !ok {
			return nil
		}
		return &models.Attachment{
			Photo: true,
			Ref: models.MediaRef{
				PhotoID:         photo.ID,
				PhotoAccessHash: photo.AccessHash,
				PhotoFileRef:    photo.FileReference,
				PhotoThumbSize:  largestPhotoSize(photo.Sizes),
			},
		}

	case *tg.MessageMediaDocument:
		doc, ok := m.Document.(*tg.Document)
		if !ok {
			return nil
		}

		att := &models.Attachment{
			MimeType: doc.MimeType,
			Ref: models.MediaRef{
				DocID:         doc.ID,
				DocAccessHash: doc.AccessHash,
				DocFileRef:    doc.FileReference,
			},
		}
		for _, attr := range doc.Attributes {
			if video, ok := attr.(*tg.DocumentAttributeVideo); ok {
				att.Duration = int(video.Duration)
				att.HasDuration = true
			}
		}
		return att
	}

	return nil
}

// largestPhotoSize picks the photo size type with the most pixels, falling
// back to any cached or stripped size.
func largestPhotoSize(sizes []tg.PhotoSizeClass) string {
	var best *tg.PhotoSize
	for _, s := range sizes {
		if sz, ok := s.(*tg.PhotoSize); ok {
			if best == nil || sz.W*sz.H > best.W*best.H {
				best = sz
			}
		}
	}
	if best != nil {
		return best.Type
	}
	for _, s := range sizes {
		switch sz := s.(type) {
		case *tg.PhotoStrippedSize:
			return sz.Type
		case *tg.PhotoCachedSize:
			return sz.Type
		}
	}
	return ""
}
