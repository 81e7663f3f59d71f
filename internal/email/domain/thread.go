package domain

// StandardizedThread is the cached thread-level view. MessageIDs mirrors the
// provider order (newest first) and records the message set the summary was
// computed over; a summary is only valid for exactly that set.
type StandardizedThread struct {
	DBThreadKey string   `json:"dbThreadKey"`
	MessageIDs  []string `json:"messageIds"`
	Summary     string   `json:"summary,omitempty"`
	Snippet     string   `json:"snippet,omitempty"`

	// Messages holds the hydrated member emails, attached at read time in
	// provider order. Never persisted with the thread document.
	Messages []*StandardizedEmail `json:"-"`
}
