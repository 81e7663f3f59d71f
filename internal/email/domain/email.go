package domain

// StandardizedEmail is the normalized, summarized form of a single provider
// message. It is persisted as a schemaless document keyed by MessageID and
// updated with merge semantics, so concurrent hydration runs converge.
type StandardizedEmail struct {
	MessageID   string       `json:"messageId"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	ReceivedAt  string       `json:"receivedAt"`
	Snippet     string       `json:"snippet,omitempty"`
	Body        string       `json:"body,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	DBThreadKey string       `json:"dbThreadKey,omitempty"`
}

// IsSummarized reports whether the email already carries a cached summary.
// A summarized email is frozen except for DBThreadKey, which the repair
// step may still correct.
func (e *StandardizedEmail) IsSummarized() bool {
	return e != nil && e.Summary != ""
}

// Attachment is one attachment of a StandardizedEmail. Data and Text exist
// only during hydration; the json:"-" tags keep raw bytes and extracted text
// out of every persisted document.
type Attachment struct {
	Filename     string `json:"filename"`
	Mimetype     string `json:"mimetype"`
	AttachmentID string `json:"attachmentId"`
	Data         []byte `json:"-"`
	Text         string `json:"-"`
	Summary      string `json:"summary,omitempty"`
}
