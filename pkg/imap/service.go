// Package imap adapts a plain IMAP mailbox to the MailProvider contract.
// IMAP has no native thread objects, so messages are grouped by canonical
// subject and each group becomes one thread, newest message first.
package imap

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	emaildomain "maildigest-backend/internal/email/domain"
)

// fetchWindow caps how many recent messages one refresh pulls.
const fetchWindow = 200

type Service struct {
	host     string
	port     string
	username string
	password string
	useTLS   bool

	mu          sync.Mutex
	threads     map[string]*emaildomain.RawThread
	attachments map[string][]byte
}

func NewService(host, port, username, password string, useTLS bool) *Service {
	return &Service{
		host:        host,
		port:        port,
		username:    username,
		password:    password,
		useTLS:      useTLS,
		threads:     make(map[string]*emaildomain.RawThread),
		attachments: make(map[string][]byte),
	}
}

func (s *Service) connect() (*client.Client, error) {
	addr := s.host + ":" + s.port

	var c *client.Client
	var err error
	if s.useTLS {
		c, err = client.DialTLS(addr, nil)
	} else {
		c, err = client.Dial(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := c.Login(s.username, s.password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("IMAP authentication failed for %s: %w", s.username, err)
	}
	return c, nil
}

// ListThreadIDs refreshes the mailbox snapshot and returns the thread ids,
// newest thread first. GetThread and GetAttachment serve from the snapshot
// taken here, which keeps the three calls of one hydration batch coherent.
func (s *Service) ListThreadIDs(ctx context.Context, userID string) ([]string, error) {
	messages, err := s.fetchRecent(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]*emaildomain.RawThread)
	var order []string
	for _, msg := range messages {
		key := msg.ThreadID
		thread, ok := grouped[key]
		if !ok {
			thread = &emaildomain.RawThread{ID: key}
			grouped[key] = thread
			order = append(order, key)
		}
		thread.Messages = append(thread.Messages, msg)
	}

	// Hydration assumes newest-first message order inside each thread.
	for _, thread := range grouped {
		sort.SliceStable(thread.Messages, func(i, j int) bool {
			return thread.Messages[i].InternalDate > thread.Messages[j].InternalDate
		})
	}

	s.mu.Lock()
	s.threads = grouped
	s.mu.Unlock()

	return order, nil
}

// GetThread returns a thread from the current snapshot.
func (s *Service) GetThread(ctx context.Context, userID, threadID string) (*emaildomain.RawThread, error) {
	s.mu.Lock()
	thread, ok := s.threads[threadID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown thread %q, list threads first", threadID)
	}
	return thread, nil
}

// GetAttachment returns attachment bytes captured during the snapshot fetch.
func (s *Service) GetAttachment(ctx context.Context, userID, messageID, attachmentID string) ([]byte, error) {
	s.mu.Lock()
	data, ok := s.attachments[attachmentID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown attachment %q on message %s", attachmentID, messageID)
	}
	return data, nil
}

// fetchRecent pulls the newest messages from INBOX and converts each into a
// provider-shaped raw message.
func (s *Service) fetchRecent(ctx context.Context) ([]*emaildomain.RawMessage, error) {
	c, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Logout() }()

	mbox, err := c.Select("INBOX", true)
	if err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	from := uint32(1)
	if mbox.Messages > fetchWindow {
		from = mbox.Messages - fetchWindow + 1
	}
	seqset := new(imap.SeqSet)
	seqset.AddRange(from, mbox.Messages)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, messages)
	}()

	var raws []*emaildomain.RawMessage
	for msg := range messages {
		raw, err := s.convertMessage(msg, section)
		if err != nil {
			log.Printf("[IMAP] Skipping unparseable message uid %d: %v", msg.Uid, err)
			continue
		}
		raws = append(raws, raw)
	}

	if err := <-done; err != nil {
		return raws, fmt.Errorf("fetching messages: %w", err)
	}
	return raws, nil
}

// convertMessage parses one RFC822 message into the raw tree the walker
// consumes. Inline payloads are re-encoded base64url so both providers look
// identical downstream; attachment bytes are stashed for GetAttachment.
func (s *Service) convertMessage(msg *imap.Message, section *imap.BodySectionName) (*emaildomain.RawMessage, error) {
	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("no body section")
	}

	mr, err := mail.CreateReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing message: %w", err)
	}

	env := msg.Envelope
	if env == nil {
		return nil, fmt.Errorf("no envelope")
	}

	messageID := strings.Trim(env.MessageId, "<>")
	if messageID == "" {
		messageID = fmt.Sprintf("imap-%d", msg.Uid)
	}

	root := &emaildomain.RawPart{
		MimeType: "multipart/mixed",
		Headers: []emaildomain.RawHeader{
			{Name: "From", Value: formatAddresses(env.From)},
			{Name: "To", Value: formatAddresses(env.To)},
			{Name: "Subject", Value: env.Subject},
			{Name: "Date", Value: env.Date.Format("Mon, 02 Jan 2006 15:04:05 -0700")},
		},
	}

	partIndex := 0
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading part: %w", err)
		}

		data, err := io.ReadAll(p.Body)
		if err != nil {
			return nil, fmt.Errorf("reading part body: %w", err)
		}
		partIndex++

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := h.ContentType()
			root.Parts = append(root.Parts, &emaildomain.RawPart{
				MimeType: ct,
				Body: &emaildomain.RawBody{
					Data: base64.URLEncoding.EncodeToString(data),
					Size: int64(len(data)),
				},
			})
		case *mail.AttachmentHeader:
			ct, _, _ := h.ContentType()
			filename, _ := h.Filename()
			attachmentID := fmt.Sprintf("%s/%d", messageID, partIndex)

			s.mu.Lock()
			s.attachments[attachmentID] = data
			s.mu.Unlock()

			root.Parts = append(root.Parts, &emaildomain.RawPart{
				MimeType: ct,
				Filename: filename,
				Body: &emaildomain.RawBody{
					AttachmentID: attachmentID,
					Size:         int64(len(data)),
				},
			})
		}
	}

	raw := &emaildomain.RawMessage{
		ID:           messageID,
		ThreadID:     canonicalSubject(env.Subject, messageID),
		Snippet:      "",
		InternalDate: env.Date.UnixMilli(),
		Payload:      root,
	}
	return raw, nil
}

func formatAddresses(addrs []*imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a.PersonalName != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", a.PersonalName, a.Address()))
		} else {
			parts = append(parts, a.Address())
		}
	}
	return strings.Join(parts, ", ")
}

// canonicalSubject strips reply/forward prefixes so a conversation maps to
// one thread id. Messages with no usable subject stand alone.
func canonicalSubject(subject, fallback string) string {
	s := strings.TrimSpace(strings.ToLower(subject))
	for {
		trimmed := s
		for _, prefix := range []string{"re:", "fwd:", "fw:"} {
			trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		}
		if trimmed == s {
			break
		}
		s = trimmed
	}
	if s == "" {
		return fallback
	}
	return "subject:" + s
}
