package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderKnownTemplate(t *testing.T) {
	subject, body, err := render(TemplateReviewDecision, map[string]interface{}{
		"display_name": "Ada",
		"decision":     "approved",
		"notes":        "Welcome aboard.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Your onboarding review decision", subject)
	assert.Contains(t, body, "Ada")
	assert.Contains(t, body, "approved")
	assert.Contains(t, body, "Welcome aboard.")
}

func TestRenderScrubsMissingKeys(t *testing.T) {
	_, body, err := render(TemplateReviewDecision, map[string]interface{}{
		"display_name": "Ada",
		"decision":     "rejected",
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "<no value>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := render(TemplateKind("nonexistent"), nil)
	assert.Error(t, err)
}

func TestRenderAllTemplates(t *testing.T) {
	payload := map[string]interface{}{
		"display_name": "Ada",
		"decision":     "approved",
		"notes":        "ok",
		"message":      "finish step 3",
		"session_type": "welcome_call",
		"scheduled_at": "Mon, 01 Sep 2026 10:00:00 UTC",
		"subject_name": "Grace",
	}
	for kind := range templates {
		subject, body, err := render(kind, payload)
		require.NoError(t, err, "template %s", kind)
		assert.NotEmpty(t, subject, "template %s", kind)
		assert.NotEmpty(t, body, "template %s", kind)
	}
}
