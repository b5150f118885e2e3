package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendWelcome_DevModeOnlyLogs(t *testing.T) {
	s := NewEmailService("re_key", "noreply@example.com", "http://localhost:8090", "Craftfolio", true)

	require.NoError(t, s.SendWelcome(t.Context(), "ada@example.com", "Ada"))
	assert.Nil(t, s.client)
}

func TestSendWelcome_WithoutKey(t *testing.T) {
	s := NewEmailService("", "noreply@example.com", "https://craftfolio.app", "Craftfolio", false)

	err := s.SendWelcome(t.Context(), "ada@example.com", "Ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RESEND_API_KEY")
}

func TestWelcomeTemplate(t *testing.T) {
	subject, body := welcomeEmailTemplate("Ada", "https://craftfolio.app/dashboard", "Craftfolio")

	assert.Contains(t, subject, "Craftfolio")
	assert.Contains(t, body, "Ada")
	assert.Contains(t, body, "https://craftfolio.app/dashboard")
}
