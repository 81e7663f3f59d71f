package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, "gmail", cfg.MailProvider)
	assert.Equal(t, "auto", cfg.AIProvider)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaBaseURL)
	assert.Equal(t, 100, cfg.ExtractMinTextLen)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, 15*time.Minute, cfg.HydrateInterval)
	assert.Empty(t, cfg.HydrateUsers)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("EXTRACT_MIN_TEXT_LEN", "250")
	t.Setenv("AI_TIMEOUT", "45s")
	t.Setenv("HYDRATE_USERS", "alice@example.com, bob@example.com,")
	t.Setenv("IMAP_TLS", "false")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.StoreBackend)
	assert.Equal(t, 250, cfg.ExtractMinTextLen)
	assert.Equal(t, 45*time.Second, cfg.AITimeout)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, cfg.HydrateUsers)
	assert.False(t, cfg.IMAPTLS)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("EXTRACT_MIN_TEXT_LEN", "lots")
	t.Setenv("AI_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 100, cfg.ExtractMinTextLen)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
}
