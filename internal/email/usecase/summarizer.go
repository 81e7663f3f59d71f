package usecase

import (
	"context"
	"fmt"
	"strings"

	emaildomain "maildigest-backend/internal/email/domain"
)

// generateSummaries fills in every missing attachment summary and then the
// whole-email summary, in that order: the email prompt embeds the attachment
// summaries as context, so the ordering is a correctness requirement rather
// than a preference.
func (u *hydrationUsecase) generateSummaries(ctx context.Context, email *emaildomain.StandardizedEmail) error {
	for i := range email.Attachments {
		att := &email.Attachments[i]
		if att.Summary != "" {
			continue
		}

		text, err := u.extractor.ExtractText(ctx, att.Filename, att.Mimetype, att.Data)
		if err != nil {
			return fmt.Errorf("extract text from %q: %w", att.Filename, err)
		}
		if len(strings.TrimSpace(text)) < u.cfg.MinExtractedTextLen {
			// Below the viability threshold extraction is assumed to have
			// silently failed; caching a summary built on it would be
			// permanent, so the whole message hydration fails instead.
			return fmt.Errorf("extracted text from %q is %d chars, below minimum %d: treating as extraction failure",
				att.Filename, len(strings.TrimSpace(text)), u.cfg.MinExtractedTextLen)
		}
		att.Text = text

		summary, err := u.summarizeWithTimeout(ctx, func(ctx context.Context) (string, error) {
			return u.summarizer.SummarizeAttachment(ctx, att.Filename, att.Mimetype, text)
		})
		if err != nil {
			return fmt.Errorf("summarize attachment %q: %w", att.Filename, err)
		}
		att.Summary = summary
	}

	summary, err := u.summarizeWithTimeout(ctx, func(ctx context.Context) (string, error) {
		return u.summarizer.SummarizeEmail(ctx, renderEmailPrompt(email))
	})
	if err != nil {
		return fmt.Errorf("summarize email: %w", err)
	}
	email.Summary = summary

	return nil
}

// summarizeWithTimeout bounds one AI call with the configured timeout. A
// timeout propagates like any other collaborator failure; retries belong to
// the calling scheduler, not here.
func (u *hydrationUsecase) summarizeWithTimeout(ctx context.Context, call func(ctx context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, u.cfg.AITimeout)
	defer cancel()
	return call(ctx)
}

// renderEmailPrompt flattens the email into the structured text the
// summarizer consumes: headers, body, then per-attachment summaries.
func renderEmailPrompt(email *emaildomain.StandardizedEmail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", email.Subject)
	fmt.Fprintf(&b, "From: %s\n", email.From)
	if email.ReceivedAt != "" {
		fmt.Fprintf(&b, "Date: %s\n", email.ReceivedAt)
	}
	b.WriteString("\n")
	b.WriteString(email.Body)

	for _, att := range email.Attachments {
		fmt.Fprintf(&b, "\n\nAttachment %q (%s): %s", att.Filename, att.Mimetype, att.Summary)
	}

	return b.String()
}
