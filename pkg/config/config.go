// Package config loads the runtime configuration for the stream backend from
// environment variables. Every knob has a working default so a bare
// `BOSON_API_KEYS=... calliope` boots against a local Redis; the API keys are
// the only required setting.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	Boson  BosonConfig
	Redis  RedisConfig
	Stream StreamConfig
	Audio  AudioConfig
	Server ServerConfig
}

// BosonConfig holds the Boson API endpoint, credentials, and model names.
type BosonConfig struct {
	// APIKeys is the pool of keys rotated across requests. At least one
	// key is required.
	APIKeys []string

	// BaseURL is the OpenAI-compatible endpoint serving all three models.
	BaseURL string

	// TTSModel generates speech audio from text.
	TTSModel string

	// LLMModel rewrites the live script on viewer interrupts.
	LLMModel string

	// STTModel transcribes candidate audio for valid-sampling scoring.
	STTModel string
}

// RedisConfig holds the connection settings for the shared state store.
type RedisConfig struct {
	// URL in redis:// form, including database number.
	URL string
}

// StreamConfig drives the processor loop and script rewriting.
type StreamConfig struct {
	// DefaultPersona is the streamer voice used when a script line or
	// interrupt does not name one.
	DefaultPersona string

	// GiftPrompt is the instruction handed to the script rewriter when a
	// viewer sends a gift.
	GiftPrompt string

	// LoopInterval is the idle sleep between processor iterations.
	LoopInterval time.Duration

	// ResetOnBoot forces a full state reset at startup instead of only
	// seeding empty state.
	ResetOnBoot bool
}

// AudioConfig controls TTS candidate generation and local WAV persistence.
type AudioConfig struct {
	// SaveWAV writes every synthesized chunk to OutputDir as a WAV file.
	SaveWAV bool

	// BestOf is the number of TTS candidates generated per script line.
	BestOf int

	// ValidSampling scores candidates by transcription accuracy and keeps
	// the best instead of the first.
	ValidSampling bool

	// ReferenceDir holds the persona voice samples ({persona}_voice.wav).
	ReferenceDir string

	// BestsDir holds hand-picked renditions that bypass synthesis
	// ({persona}_{line}_best.wav).
	BestsDir string

	// OutputDir receives saved WAV files when SaveWAV is on.
	OutputDir string
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	HTTPPort string
	LogLevel string
}

// Load resolves the configuration from the process environment.
func Load() (*Config, error) {
	keys := splitKeys(os.Getenv("BOSON_API_KEYS"))
	if len(keys) == 0 {
		return nil, ErrMissingAPIKeys
	}

	loopInterval, err := getEnvSeconds("PROCESSOR_LOOP_INTERVAL", 0.5)
	if err != nil {
		return nil, err
	}

	bestOf, err := getEnvInt("TTS_BEST_OF", 5)
	if err != nil {
		return nil, err
	}

	return &Config{
		Boson: BosonConfig{
			APIKeys:  keys,
			BaseURL:  getEnv("BOSON_BASE_URL", "https://hackathon.boson.ai/v1"),
			TTSModel: getEnv("TTS_MODEL", "higgs-audio-generation-Hackathon"),
			LLMModel: getEnv("LLM_MODEL", "Qwen3-32B-non-thinking-Hackathon"),
			STTModel: getEnv("STT_MODEL", "higgs-audio-understanding-Hackathon"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		Stream: StreamConfig{
			DefaultPersona: getEnv("DEFAULT_STREAMER_PERSONA", "speed"),
			GiftPrompt:     getEnv("DEFAULT_GIFT_PROMPT", DefaultGiftPrompt),
			LoopInterval:   loopInterval,
			ResetOnBoot:    getEnvBool("RESET_ON_BOOT", false),
		},
		Audio: AudioConfig{
			SaveWAV:       getEnvBool("SAVE_TTS_WAV", false),
			BestOf:        bestOf,
			ValidSampling: getEnvBool("TTS_VALID_SAMPLING", false),
			ReferenceDir:  getEnv("REFERENCE_AUDIO_DIR", "assets/reference_audio"),
			BestsDir:      getEnv("BESTS_AUDIO_DIR", "assets/bests"),
			OutputDir:     getEnv("OUTPUT_AUDIO_DIR", "output"),
		},
		Server: ServerConfig{
			HTTPPort: getEnv("HTTP_PORT", "8000"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

// splitKeys parses a comma-separated key list, dropping empty segments so a
// trailing comma does not produce a blank credential.
func splitKeys(raw string) []string {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}

// getEnvSeconds parses a float number of seconds into a duration.
func getEnvSeconds(key string, defaultValue float64) (time.Duration, error) {
	seconds := defaultValue
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		seconds = parsed
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
