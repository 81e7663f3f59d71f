package usecase

import (
	"log"
	"strings"

	emaildomain "maildigest-backend/internal/email/domain"
)

// normalizeMessage builds the StandardizedEmail skeleton from a raw message
// and its flattened parts.
//
// Body selection is first-match-wins: the first text/plain leaf, else the
// first text/html leaf. Attachment leaves are kept in encounter order;
// anything that is neither text nor an attachment carries nothing worth
// summarizing and is dropped.
func normalizeMessage(raw *emaildomain.RawMessage, parts []flatPart) *emaildomain.StandardizedEmail {
	headers := headerMap(raw)

	email := &emaildomain.StandardizedEmail{
		MessageID:  raw.ID,
		From:       headers["from"],
		To:         headers["to"],
		Subject:    headers["subject"],
		ReceivedAt: headers["date"],
		Snippet:    raw.Snippet,
	}

	var plainBody, htmlBody string
	for _, part := range parts {
		switch {
		case part.isAttachment():
			email.Attachments = append(email.Attachments, emaildomain.Attachment{
				Filename:     part.filename,
				Mimetype:     part.mimeType,
				AttachmentID: part.attachmentID,
				Data:         part.data,
			})
		case isMimeType(part.mimeType, "text/plain"):
			if plainBody == "" {
				plainBody = string(part.data)
			}
		case isMimeType(part.mimeType, "text/html"):
			if htmlBody == "" {
				htmlBody = string(part.data)
			}
		default:
			log.Printf("[Normalizer] Dropping part with unrecognized mimetype %q in message %s", part.mimeType, raw.ID)
		}
	}

	if plainBody != "" {
		email.Body = plainBody
	} else {
		email.Body = htmlBody
	}

	return email
}

// headerMap lowercases every header name once so lookups are
// case-insensitive.
func headerMap(raw *emaildomain.RawMessage) map[string]string {
	headers := make(map[string]string)
	if raw.Payload == nil {
		return headers
	}
	for _, h := range raw.Payload.Headers {
		name := strings.ToLower(h.Name)
		if _, ok := headers[name]; !ok {
			headers[name] = h.Value
		}
	}
	return headers
}

// isMimeType matches a part mimetype against a bare type, tolerating
// parameter suffixes like "; charset=utf-8".
func isMimeType(mimeType, want string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return mimeType == want || strings.HasPrefix(mimeType, want+";")
}
