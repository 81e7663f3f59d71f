package usecase

import (
	"context"
	"encoding/base64"
	"log"

	emaildomain "maildigest-backend/internal/email/domain"
)

// flatPart is one leaf of the flattened MIME tree.
type flatPart struct {
	filename     string
	mimeType     string
	attachmentID string
	data         []byte
}

func (p flatPart) isAttachment() bool {
	return p.filename != "" && p.attachmentID != ""
}

// flattenParts walks the provider MIME tree depth-first and returns its
// leaves in document order. Attachment bytes are downloaded only when
// downloadAttachments is set; a failed download falls back to whatever was
// inline and never aborts the walk.
func (u *hydrationUsecase) flattenParts(ctx context.Context, userID, messageID string, part *emaildomain.RawPart, downloadAttachments bool) []flatPart {
	if part == nil {
		return nil
	}

	if part.IsMultipart() {
		var parts []flatPart
		for _, child := range part.Parts {
			parts = append(parts, u.flattenParts(ctx, userID, messageID, child, downloadAttachments)...)
		}
		return parts
	}

	leaf := flatPart{
		filename: part.Filename,
		mimeType: part.MimeType,
	}
	if part.Body != nil {
		leaf.attachmentID = part.Body.AttachmentID
		leaf.data = decodeInlineData(part.Body.Data)
	}

	if leaf.isAttachment() && downloadAttachments {
		data, err := u.provider.GetAttachment(ctx, userID, messageID, leaf.attachmentID)
		switch {
		case err != nil:
			log.Printf("[Hydrator] Attachment fetch failed for message %s part %q: %v, keeping inline data", messageID, leaf.filename, err)
		case len(data) == 0:
			log.Printf("[Hydrator] Attachment fetch returned no data for message %s part %q, keeping inline data", messageID, leaf.filename)
		default:
			leaf.data = data
		}
	}

	return []flatPart{leaf}
}

// decodeInlineData decodes the provider's base64url payload. Providers also
// hand this field over empty or already gone, so decode failures just mean
// no inline data.
func decodeInlineData(data string) []byte {
	if data == "" {
		return nil
	}
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return nil
	}
	return decoded
}
