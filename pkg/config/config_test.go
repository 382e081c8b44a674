package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_PassesValidation(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "in-memory", cfg.StorageKind)
	assert.Equal(t, "stub", cfg.RetrievalKind)
	assert.Equal(t, float32(0.75), cfg.FactCheck.MinConfidence)
}

func TestApplyYAML_OverridesOnlySetFields(t *testing.T) {
	cfg := Default()
	err := cfg.applyYAML(&YAMLConfig{
		Admission: &AdmissionYAML{MaxConcurrency: 10},
		FactCheck: &FactCheckYAML{MinConfidence: 0.9},
	})
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.MaxConcurrency)
	assert.Equal(t, float32(0.9), cfg.FactCheck.MinConfidence)
	// VerificationCount/TimeoutMs were left unset and must keep their defaults.
	assert.Equal(t, 3, cfg.FactCheck.VerificationCount)
	assert.Equal(t, int64(20000), cfg.FactCheck.TimeoutMs)
}

func TestApplyYAML_ReadOnlyRootFalseOverridesDefaultTrue(t *testing.T) {
	cfg := Default()
	require.True(t, cfg.Sandbox.ReadOnlyRoot)

	f := false
	err := cfg.applyYAML(&YAMLConfig{
		Sandbox: &SandboxYAML{ReadOnlyRoot: &f},
	})
	require.NoError(t, err)
	assert.False(t, cfg.Sandbox.ReadOnlyRoot)
}

func TestValidate_RejectsRelationalStorageWithoutURL(t *testing.T) {
	cfg := Default()
	cfg.StorageKind = "relational"
	err := cfg.Validate()
	require.Error(t, err)
}

func TestValidate_RejectsUnknownRetrievalKind(t *testing.T) {
	cfg := Default()
	cfg.RetrievalKind = "unknown"
	err := cfg.Validate()
	require.Error(t, err)
}
