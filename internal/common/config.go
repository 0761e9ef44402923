package common

import (
	"os"
	"time"

	"github.com/Netflix/go-env"
)

// Config holds all application configuration
type Config struct {
	OCR       OCRConfig
	LLM       LLMConfig
	QA        QAConfig
	Pipeline  PipelineConfig
	Batch     BatchConfig
	Templates TemplateConfig
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	TessdataDir      string `env:"TESSDATA_PREFIX"`
	ArtifactCacheDir string `env:"ARTIFACT_CACHE_DIR,default=./tmp"`
	RenderDPI        int    `env:"OCR_RENDER_DPI,default=400"`
	HeicConverter    string `env:"HEIC_CONVERTER,default=magick"`
}

// LLMConfig holds configuration for the external extraction service
type LLMConfig struct {
	Model       string  `env:"GEMINI_MODEL,default=gemini-2.0-flash"`
	APIKey      string  `env:"GEMINI_API_KEY"`
	BaseURL     string  `env:"GEMINI_BASE_URL,default=https://generativelanguage.googleapis.com/v1beta"`
	Temperature float32 `env:"GEMINI_TEMPERATURE,default=0.0"`
	Timeout     time.Duration
}

// QAConfig holds configuration for the local question-answering sidecar
type QAConfig struct {
	Enabled             bool    `env:"QA_ENABLED,default=false"`
	BaseURL             string  `env:"QA_BASE_URL,default=http://127.0.0.1:8750"`
	MinAnswerConfidence float32 `env:"QA_MIN_ANSWER_CONFIDENCE,default=0.1"`
	Timeout             time.Duration
}

// PipelineConfig holds routing and verification thresholds
type PipelineConfig struct {
	ForceLocal            bool    `env:"FORCE_LOCAL,default=false"`
	StrictVerification    bool    `env:"STRICT_VERIFICATION,default=false"`
	MinTemplateConfidence float64 `env:"MIN_TEMPLATE_CONFIDENCE,default=0.4"`
	VerificationThreshold float64 `env:"VERIFICATION_THRESHOLD,default=0.5"`
	MinPageTextChars      int     `env:"MIN_PAGE_TEXT_CHARS,default=50"`
}

// BatchConfig holds worker pool and output settings for batch runs
type BatchConfig struct {
	Workers        int    `env:"BATCH_WORKERS,default=4"`
	QueueSize      int    `env:"BATCH_QUEUE_SIZE,default=64"`
	OutputDir      string `env:"BATCH_OUTPUT_DIR,default=./results"`
	ProcessTimeout time.Duration
}

// TemplateConfig holds the reference template registry settings
type TemplateConfig struct {
	Dir       string `env:"TEMPLATE_DIR,default=./templates"`
	CachePath string `env:"TEMPLATE_CACHE_PATH,default=./templates/match_cache.db"`
}

// LoadConfig loads configuration from environment variables. Duration fields
// do not round-trip through struct tags and are parsed separately.
func LoadConfig() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, NewAppError(CodeConfigError, "failed to read environment", err)
	}

	cfg.LLM.Timeout = getEnvAsDuration("GEMINI_TIMEOUT", 45*time.Second)
	cfg.QA.Timeout = getEnvAsDuration("QA_TIMEOUT", 20*time.Second)
	cfg.Batch.ProcessTimeout = getEnvAsDuration("BATCH_PROCESS_TIMEOUT", 5*time.Minute)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if !c.Pipeline.ForceLocal && c.LLM.APIKey == "" {
		return NewAppError(CodeConfigError, "GEMINI_API_KEY is required unless FORCE_LOCAL=true", ErrInvalidInput)
	}
	if c.Batch.Workers <= 0 {
		return NewAppError(CodeConfigError, "BATCH_WORKERS must be positive", ErrInvalidInput)
	}
	v := NewValidator().
		Field("VERIFICATION_THRESHOLD", c.Pipeline.VerificationThreshold, Confidence).
		Field("MIN_TEMPLATE_CONFIDENCE", c.Pipeline.MinTemplateConfidence, Confidence).
		Field("QA_MIN_ANSWER_CONFIDENCE", c.QA.MinAnswerConfidence, Confidence)
	if v.HasErrors() {
		return NewAppError(CodeConfigError, v.ErrorMessage(), ErrValidation)
	}
	return nil
}
