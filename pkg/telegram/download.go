package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"tgharvest/pkg/errors"
	"tgharvest/pkg/models"
)

const downloadChunkSize = 1024 * 1024

// TargetPath returns the local path a message's media downloads to. The
// name is derived from the message ID, so a rerun over the same channel
// produces the same paths and the existence check catches duplicates.
func (c *Client) TargetPath(msg models.Message, dir string) string {
	return filepath.Join(dir, strconv.Itoa(msg.ID)+extensionFor(msg.Attachment))
}

// Download fetches the message's media into path. The data lands in a
// temporary file first so a partial download never shows up as an
// existing path.
func (c *Client) Download(ctx context.Context, msg models.Message, path string) error {
	att := msg.Attachment
	if att == nil {
		return fmt.Errorf("message %d has no attachment", msg.ID)
	}

	var loc tg.InputFileLocationClass
	switch {
	case att.Photo:
		if att.Ref.PhotoThumbSize == "" {
			return fmt.Errorf("message %d: no photo size available", msg.ID)
		}
		loc = &tg.InputPhotoFileLocation{
			ID:            att.Ref.PhotoID,
			AccessHash:    att.Ref.PhotoAccessHash,
			FileReference: att.Ref.PhotoFileRef,
			ThumbSize:     att.Ref.PhotoThumbSize,
		}
	default:
		if att.Ref.DocID == 0 {
			return fmt.Errorf("message %d: no document info available", msg.ID)
		}
		loc = &tg.InputDocumentFileLocation{
			ID:            att.Ref.DocID,
			AccessHash:    att.Ref.DocAccessHash,
			FileReference: att.Ref.DocFileRef,
		}
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if err := c.downloadTo(ctx, loc, f); err != nil {
		_ = f.Close()
		_ = os.Remove(tempPath)
		if auth.IsUnauthorized(err) {
			return fmt.Errorf("download message %d: %w", msg.ID, errors.ErrUnauthorized)
		}
		return fmt.Errorf("download message %d: %w", msg.ID, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("close file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

// downloadTo streams the file location into f in 1MB chunks.
func (c *Client) downloadTo(ctx context.Context, loc tg.InputFileLocationClass, f *os.File) error {
	offset := int64(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := c.api.UploadGetFile(ctx, &tg.UploadGetFileRequest{
			Location: loc,
			Offset:   offset,
			Limit:    downloadChunkSize,
		})
		if err != nil {
			return err
		}

		file, ok := result.(*tg.UploadFile)
		if !ok {
			return fmt.Errorf("unexpected upload response: %T", result)
		}

		if len(file.Bytes) == 0 {
			return nil
		}
		if _, err := f.Write(file.Bytes); err != nil {
			return err
		}
		if len(file.Bytes) < downloadChunkSize {
			return nil
		}
		offset += int64(len(file.Bytes))
	}
}

// extensionFor maps an attachment to a file extension, favoring the
// declared content type.
func extensionFor(att *models.Attachment) string {
	if att == nil {
		return ".bin"
	}
	if att.Photo {
		return ".jpg"
	}

	switch att.MimeType {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/jpeg":
		return ".jpg"
	}

	if strings.HasPrefix(att.MimeType, "video/") {
		return ".mp4"
	}
	if strings.HasPrefix(att.MimeType, "image/") {
		return ".jpg"
	}
	return ".bin"
}
