package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact_BearerToken(t *testing.T) {
	out, fired := Redact("Authorization: Bearer sk-abcdef1234567890")
	assert.Contains(t, fired, "bearer")
	assert.Contains(t, fired, "sk_prefixed")
	assert.NotContains(t, out, "abcdef1234567890")
}

func TestRedact_NoMatchLeavesTextUnchanged(t *testing.T) {
	out, fired := Redact("lithium battery demand is rising in 2024")
	assert.Empty(t, fired)
	assert.Equal(t, "lithium battery demand is rising in 2024", out)
}

func TestRedact_ApiKeyAssignment(t *testing.T) {
	out, fired := Redact("api_key: 1234567890abcdef")
	assert.Contains(t, fired, "api_key")
	assert.NotContains(t, out, "1234567890abcdef")
}
