package domain

import "context"

// RawThread is a provider-shaped thread: an id and its messages in provider
// order, newest first.
type RawThread struct {
	ID       string
	Messages []*RawMessage
}

// RawMessage is a provider-shaped message with its nested MIME payload tree.
type RawMessage struct {
	ID           string
	ThreadID     string
	Snippet      string
	InternalDate int64
	Payload      *RawPart
}

// RawPart is one node of the provider MIME tree. A part with children is a
// multipart container; a part without children is a leaf carrying either
// inline content or an attachment reference.
type RawPart struct {
	MimeType string
	Filename string
	Headers  []RawHeader
	Body     *RawBody
	Parts    []*RawPart
}

// IsMultipart reports whether the part is a container node.
func (p *RawPart) IsMultipart() bool {
	return p != nil && len(p.Parts) > 0
}

// RawHeader is a single MIME header as reported by the provider.
type RawHeader struct {
	Name  string
	Value string
}

// RawBody carries the leaf payload: base64url-encoded inline data, or an
// attachment id for lazy download, or both.
type RawBody struct {
	AttachmentID string
	Data         string
	Size         int64
}

// MailProvider is the external email provider boundary. Implementations
// must preserve the provider's newest-first message ordering inside threads;
// the thread key resolver depends on it.
type MailProvider interface {
	ListThreadIDs(ctx context.Context, userID string) ([]string, error)
	GetThread(ctx context.Context, userID, threadID string) (*RawThread, error)
	GetAttachment(ctx context.Context, userID, messageID, attachmentID string) ([]byte, error)
}
