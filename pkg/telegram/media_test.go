package telegram

import (
	"testing"

	"github.com/gotd/td/tg"
)

func TestExtractAttachmentPhoto(t *testing.T) {
	media := &tg.MessageMediaPhoto{
		Photo: &tg.Photo{
			ID:            111,
			AccessHash:    222,
			FileReference: []byte{1, 2, 3},
			Sizes: []tg.PhotoSizeClass{
				&tg.PhotoSize{Type: "m", W: 320, H: 240},
				&tg.PhotoSize{Type: "y", W: 1280, H: 960},
			},
		},
	}

	att := extractAttachment(media)
	if att == nil {
		t.Fatal("expected attachment for photo media")
	}
	if !att.Photo {
		t.Error("expected Photo flag")
	}
	if att.Ref.PhotoID != 111 || att.Ref.PhotoAccessHash != 222 {
		t.Errorf("unexpected photo ref: %+v", att.Ref)
	}
	if att.Ref.PhotoThumbSize != "y" {
		t.Errorf("expected largest size y, got %q", att.Ref.PhotoThumbSize)
	}
}

func TestExtractAttachmentVideoDocument(t *testing.T) {
	media := &tg.MessageMediaDocument{
		Document: &tg.Document{
			ID:         333,
			AccessHash: 444,
			MimeType:   "video/mp4",
			Attributes: []tg.DocumentAttributeClass{
				&tg.DocumentAttributeVideo{Duration: 120.5},
				&tg.DocumentAttributeFilename{FileName: "clip.mp4"},
			},
		},
	}

	att := extractAttachment(media)
	if att == nil {
		t.Fatal("expected attachment for video document")
	}
	if att.Photo {
		t.Error("video document must not be flagged as photo")
	}
	if att.MimeType != "video/mp4" {
		t.Errorf("unexpected mime type %q", att.MimeType)
	}
	if !att.HasDuration || att.Duration != 120 {
		t.Errorf("expected known duration 120, got %d (known=%v)", att.Duration, att.HasDuration)
	}
	if att.Ref.DocID != 333 {
		t.Errorf("unexpected doc ref: %+v", att.Ref)
	}
}

func TestExtractAttachmentVideoWithoutDuration(t *testing.T) {
	media := &tg.MessageMediaDocument{
		Document: &tg.Document{
			ID:       555,
			MimeType: "video/webm",
		},
	}

	att := extractAttachment(media)
	if att == nil {
		t.Fatal("expected attachment")
	}
	if att.HasDuration {
		t.Error("expected unknown duration when no video attribute is declared")
	}
}

func TestExtractAttachmentIgnoresOtherMedia(t *testing.T) {
	cases := []tg.MessageMediaClass{
		nil,
		&tg.MessageMediaGeo{},
		&tg.MessageMediaContact{},
		&tg.MessageMediaWebPage{},
		&tg.MessageMediaPhoto{}, // photo field not a *tg.Photo
	}

	for _, media := range cases {
		if att := extractAttachment(media); att != nil {
			t.Errorf("expected nil attachment for %T, got %+v", media, att)
		}
	}
}
