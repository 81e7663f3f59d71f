package imap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalSubject(t *testing.T) {
	assert.Equal(t, "subject:project kickoff", canonicalSubject("Project Kickoff", "m1"))
	assert.Equal(t, "subject:project kickoff", canonicalSubject("Re: Project Kickoff", "m2"))
	assert.Equal(t, "subject:project kickoff", canonicalSubject("RE: FWD: re: Project Kickoff", "m3"))
	assert.Equal(t, "subject:project kickoff", canonicalSubject("Fw: project kickoff  ", "m4"))
	assert.Equal(t, "m5", canonicalSubject("", "m5"), "subjectless messages stand alone")
	assert.Equal(t, "m6", canonicalSubject("Re:", "m6"))
}

func TestGetThreadUnknownID(t *testing.T) {
	s := NewService("imap.example.com", "993", "user", "pass", true)

	_, err := s.GetThread(context.Background(), "user", "subject:nope")
	require.Error(t, err)
}

func TestGetAttachmentUnknownID(t *testing.T) {
	s := NewService("imap.example.com", "993", "user", "pass", true)

	_, err := s.GetAttachment(context.Background(), "user", "m1", "m1/2")
	require.Error(t, err)
}
