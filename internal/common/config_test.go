package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("FORCE_LOCAL", "true")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 20*time.Second, cfg.QA.Timeout)
	assert.False(t, cfg.QA.Enabled)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Batch.ProcessTimeout)
	assert.Equal(t, "./results", cfg.Batch.OutputDir)
	assert.Equal(t, 0.5, cfg.Pipeline.VerificationThreshold)
	assert.Equal(t, 0.4, cfg.Pipeline.MinTemplateConfidence)
	assert.Equal(t, 50, cfg.Pipeline.MinPageTextChars)
	assert.Equal(t, 400, cfg.OCR.RenderDPI)
	assert.Equal(t, "magick", cfg.OCR.HeicConverter)
	assert.Equal(t, "./templates", cfg.Templates.Dir)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("FORCE_LOCAL", "true")
	t.Setenv("GEMINI_TIMEOUT", "90s")
	t.Setenv("BATCH_WORKERS", "2")
	t.Setenv("VERIFICATION_THRESHOLD", "0.75")
	t.Setenv("QA_ENABLED", "true")
	t.Setenv("QA_BASE_URL", "http://127.0.0.1:9000")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.Equal(t, 0.75, cfg.Pipeline.VerificationThreshold)
	assert.True(t, cfg.QA.Enabled)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.QA.BaseURL)
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("FORCE_LOCAL", "false")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.Equal(t, CodeConfigError, CodeOf(err))
}

func validConfig() *Config {
	cfg := &Config{}
	cfg.Pipeline.ForceLocal = true
	cfg.Pipeline.VerificationThreshold = 0.5
	cfg.Pipeline.MinTemplateConfidence = 0.4
	cfg.QA.MinAnswerConfidence = 0.1
	cfg.Batch.Workers = 4
	return cfg
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("workers must be positive", func(t *testing.T) {
		cfg := validConfig()
		cfg.Batch.Workers = 0

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BATCH_WORKERS")
	})

	t.Run("thresholds must sit inside the unit interval", func(t *testing.T) {
		cfg := validConfig()
		cfg.Pipeline.VerificationThreshold = 1.5
		cfg.QA.MinAnswerConfidence = -0.2

		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "VERIFICATION_THRESHOLD")
		assert.Contains(t, err.Error(), "QA_MIN_ANSWER_CONFIDENCE")
	})
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "150ms")
	assert.Equal(t, 150*time.Millisecond, getEnvAsDuration("SOME_TIMEOUT", time.Second))

	t.Setenv("SOME_TIMEOUT", "not-a-duration")
	assert.Equal(t, time.Second, getEnvAsDuration("SOME_TIMEOUT", time.Second))

	assert.Equal(t, time.Second, getEnvAsDuration("UNSET_TIMEOUT_VAR", time.Second))
}
