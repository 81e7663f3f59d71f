package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"sort"
	"time"

	emaildomain "maildigest-backend/internal/email/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// TokenSourceFunc resolves the OAuth tokens for a user.
type TokenSourceFunc func(ctx context.Context, userID string) (accessToken, refreshToken string, err error)

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc func(userID string, token *oauth2.Token) error

// Service is the Gmail-backed MailProvider.
type Service struct {
	clientID       string
	clientSecret   string
	tokens         TokenSourceFunc
	onTokenRefresh TokenUpdateFunc
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	userID   string
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(s.userID, t); err != nil {
			log.Printf("[Gmail] Failed to persist refreshed token for user %s: %v", s.userID, err)
		}
	}
	return t, nil
}

func NewService(clientID, clientSecret string, tokens TokenSourceFunc, onTokenRefresh TokenUpdateFunc) *Service {
	return &Service{
		clientID:       clientID,
		clientSecret:   clientSecret,
		tokens:         tokens,
		onTokenRefresh: onTokenRefresh,
	}
}

// gmailService creates a Gmail client with the user's tokens
func (s *Service) gmailService(ctx context.Context, userID string) (*gmail.Service, error) {
	accessToken, refreshToken, err := s.tokens(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve tokens for user %s: %w", userID, err)
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}

	// Only force refresh if we have a refresh token
	if refreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	tokenSource := config.TokenSource(ctx, token)

	// Wrap token source to detect refreshes
	wrappedSource := &notifyTokenSource{
		src:      tokenSource,
		current:  token,
		userID:   userID,
		callback: s.onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}

	return srv, nil
}

// ListThreadIDs returns the ids of the user's threads.
func (s *Service) ListThreadIDs(ctx context.Context, userID string) ([]string, error) {
	srv, err := s.gmailService(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp, err := srv.Users.Threads.List("me").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list threads: %v", err)
	}

	ids := make([]string, 0, len(resp.Threads))
	for _, t := range resp.Threads {
		ids = append(ids, t.Id)
	}
	return ids, nil
}

// GetThread fetches a thread with full message payloads. Gmail reports
// thread messages oldest first; hydration assumes newest first, so the
// adapter reorders by internal date before handing the thread over.
func (s *Service) GetThread(ctx context.Context, userID, threadID string) (*emaildomain.RawThread, error) {
	srv, err := s.gmailService(ctx, userID)
	if err != nil {
		return nil, err
	}

	thread, err := srv.Users.Threads.Get("me", threadID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve thread %s: %v", threadID, err)
	}

	raw := &emaildomain.RawThread{ID: thread.Id}
	for _, msg := range thread.Messages {
		raw.Messages = append(raw.Messages, convertGmailMessage(msg))
	}

	sort.SliceStable(raw.Messages, func(i, j int) bool {
		return raw.Messages[i].InternalDate > raw.Messages[j].InternalDate
	})

	return raw, nil
}

// GetAttachment downloads and decodes one attachment's bytes.
func (s *Service) GetAttachment(ctx context.Context, userID, messageID, attachmentID string) ([]byte, error) {
	srv, err := s.gmailService(ctx, userID)
	if err != nil {
		return nil, err
	}

	attachPart, err := srv.Users.Messages.Attachments.Get("me", messageID, attachmentID).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve attachment: %v", err)
	}

	data, err := base64.URLEncoding.DecodeString(attachPart.Data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode attachment data: %v", err)
	}

	return data, nil
}

// Helper functions

func convertGmailMessage(msg *gmail.Message) *emaildomain.RawMessage {
	return &emaildomain.RawMessage{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		Snippet:      msg.Snippet,
		InternalDate: msg.InternalDate,
		Payload:      convertGmailPart(msg.Payload),
	}
}

func convertGmailPart(part *gmail.MessagePart) *emaildomain.RawPart {
	if part == nil {
		return nil
	}

	raw := &emaildomain.RawPart{
		MimeType: part.MimeType,
		Filename: part.Filename,
	}
	for _, h := range part.Headers {
		raw.Headers = append(raw.Headers, emaildomain.RawHeader{Name: h.Name, Value: h.Value})
	}
	if part.Body != nil {
		raw.Body = &emaildomain.RawBody{
			AttachmentID: part.Body.AttachmentId,
			Data:         part.Body.Data,
			Size:         part.Body.Size,
		}
	}
	for _, child := range part.Parts {
		raw.Parts = append(raw.Parts, convertGmailPart(child))
	}
	return raw
}
