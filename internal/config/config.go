package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the recorder server.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Redis   RedisConfig
	Grader  GraderConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	UploadMaxBytes  int64
	RateLimitPerMin int
}

type StorageConfig struct {
	// Dir is the media root: flat <name>.<ext> recordings with sibling
	// <name>.json results, plus a sessions/ subtree.
	Dir       string
	StaticDir string
}

type RedisConfig struct {
	URL string
}

type GraderConfig struct {
	Provider          string
	Timeout           time.Duration
	Workers           int
	QueueSize         int
	ExtractAudio      bool
	QuestionsFile     string
	ExpectedQuestions int
	OpenAI            OpenAIConfig
}

type OpenAIConfig struct {
	APIKey string
	// TranscribeModel is the speech-to-text model.
	TranscribeModel string
	// ScoringModels is an ordered fallback list; the first model that
	// accepts the request wins.
	ScoringModels []string
	BaseURL       string
}

var validProviders = map[string]bool{
	"openai": true,
	"mock":   true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("RECORDER_PORT", 8080),
			Env:             envString("RECORDER_ENV", "development"),
			UploadMaxBytes:  envInt64("UPLOAD_MAX_BYTES", 256<<20),
			RateLimitPerMin: envInt("RATE_LIMIT_PER_MIN", 60),
		},
		Storage: StorageConfig{
			Dir:       os.Getenv("STORAGE_DIR"),
			StaticDir: envString("STATIC_DIR", "static"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Grader: GraderConfig{
			Provider:          os.Getenv("GRADER_PROVIDER"),
			Timeout:           envDurationSecs("GRADER_TIMEOUT_SECS", 120*time.Second),
			Workers:           envInt("GRADER_WORKERS", 4),
			QueueSize:         envInt("GRADER_QUEUE_SIZE", 64),
			ExtractAudio:      envBool("EXTRACT_AUDIO", false),
			QuestionsFile:     envString("QUESTIONS_FILE", "questions.yaml"),
			ExpectedQuestions: envInt("EXPECTED_QUESTIONS", 5),
			OpenAI: OpenAIConfig{
				APIKey:          os.Getenv("OPENAI_API_KEY"),
				TranscribeModel: envString("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
				ScoringModels:   envList("OPENAI_SCORING_MODELS", []string{"gpt-4o-mini", "gpt-4o"}),
				BaseURL:         os.Getenv("OPENAI_BASE_URL"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Storage.Dir == "" {
		return fmt.Errorf("STORAGE_DIR is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Grader.Provider == "" {
		return fmt.Errorf("GRADER_PROVIDER is required")
	}
	if !validProviders[c.Grader.Provider] {
		return fmt.Errorf("GRADER_PROVIDER must be one of openai, mock; got %q", c.Grader.Provider)
	}

	if c.Grader.Provider == "openai" && c.Grader.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when GRADER_PROVIDER is openai")
	}

	if c.Grader.Workers < 1 {
		return fmt.Errorf("GRADER_WORKERS must be at least 1, got %d", c.Grader.Workers)
	}
	if c.Grader.QueueSize < 1 {
		return fmt.Errorf("GRADER_QUEUE_SIZE must be at least 1, got %d", c.Grader.QueueSize)
	}
	if c.Grader.ExpectedQuestions < 1 {
		return fmt.Errorf("EXPECTED_QUESTIONS must be at least 1, got %d", c.Grader.ExpectedQuestions)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
