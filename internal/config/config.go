package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the namespace prefix for all Intervox environment variables.
const EnvPrefix = "INTERVOX_"

// Config holds all application configuration. Secrets (API keys) are loaded
// exclusively from environment variables and never appear in the config file.
type Config struct {
	HTTPAddr      string `yaml:"http_addr"`
	DBPath        string `yaml:"db_path"`
	AudioDir      string `yaml:"audio_dir"`
	ReportDir     string `yaml:"report_dir"`
	QuestionCount int    `yaml:"question_count"`

	// Models are "provider/model" strings routed to the matching SDK.
	TextModel string `yaml:"text_model"`
	TTSModel  string `yaml:"tts_model"`
	STTModel  string `yaml:"stt_model"`

	VoiceEnglish string `yaml:"voice_english"`
	VoiceArabic  string `yaml:"voice_arabic"`

	GDriveFolderID        string `yaml:"gdrive_folder_id"`
	GoogleCredentialsFile string `yaml:"google_credentials_file"`

	// Secrets come from env vars only and are never serialized to YAML.
	GeminiAPIKey    string `yaml:"-"`
	OpenAIAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
	DeepgramAPIKey  string `yaml:"-"`
}

func defaults() Config {
	return Config{
		HTTPAddr:              "127.0.0.1:8179",
		DBPath:                "data/intervox.db",
		AudioDir:              "data/audio",
		ReportDir:             "data/reports",
		QuestionCount:         5,
		TextModel:             "gemini/gemini-2.5-flash",
		TTSModel:              "gemini/gemini-2.5-flash-preview-tts",
		STTModel:              "nova-2",
		VoiceEnglish:          "Kore",
		VoiceArabic:           "Puck",
		GoogleCredentialsFile: "./service-account.json",
	}
}

// Load reads configuration from a YAML file (if it exists), applies
// environment variable overrides, loads secrets, and validates the result.
// It returns the config, any validation warnings, and an error if the file
// exists but cannot be read or parsed.
func Load(path string) (Config, []string, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, nil, fmt.Errorf("read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	loadSecrets(&cfg)

	warnings := validate(&cfg)
	return cfg, warnings, nil
}

// APIKeyFor returns the secret for a text model provider name.
func (c *Config) APIKeyFor(provider string) string {
	switch provider {
	case "gemini":
		return c.GeminiAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv(EnvPrefix + "DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvPrefix + "AUDIO_DIR"); v != "" {
		cfg.AudioDir = v
	}
	if v := os.Getenv(EnvPrefix + "REPORT_DIR"); v != "" {
		cfg.ReportDir = v
	}
	if v := os.Getenv(EnvPrefix + "QUESTION_COUNT"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.QuestionCount = n
		}
	}
	if v := os.Getenv(EnvPrefix + "TEXT_MODEL"); v != "" {
		cfg.TextModel = v
	}
	if v := os.Getenv(EnvPrefix + "TTS_MODEL"); v != "" {
		cfg.TTSModel = v
	}
	if v := os.Getenv(EnvPrefix + "STT_MODEL"); v != "" {
		cfg.STTModel = v
	}
	if v := os.Getenv(EnvPrefix + "VOICE_ENGLISH"); v != "" {
		cfg.VoiceEnglish = v
	}
	if v := os.Getenv(EnvPrefix + "VOICE_ARABIC"); v != "" {
		cfg.VoiceArabic = v
	}
	if v := os.Getenv(EnvPrefix + "GDRIVE_FOLDER_ID"); v != "" {
		cfg.GDriveFolderID = v
	}
	if v := os.Getenv(EnvPrefix + "GOOGLE_CREDENTIALS_FILE"); v != "" {
		cfg.GoogleCredentialsFile = v
	}
}

func loadSecrets(cfg *Config) {
	cfg.GeminiAPIKey = os.Getenv(EnvPrefix + "GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv(EnvPrefix + "OPENAI_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv(EnvPrefix + "ANTHROPIC_API_KEY")
	cfg.DeepgramAPIKey = os.Getenv(EnvPrefix + "DEEPGRAM_API_KEY")
}

func validate(cfg *Config) []string {
	var warnings []string

	provider, _, ok := strings.Cut(cfg.TextModel, "/")
	if !ok {
		warnings = append(warnings, fmt.Sprintf("Invalid text_model %q; expected provider/model.", cfg.TextModel))
	} else if cfg.APIKeyFor(provider) == "" {
		warnings = append(warnings, fmt.Sprintf("%s API key not configured; question generation and evaluation are disabled. Set %s%s_API_KEY.",
			strings.ToUpper(provider[:1])+provider[1:], EnvPrefix, strings.ToUpper(provider)))
	}
	if cfg.GeminiAPIKey == "" {
		warnings = append(warnings, "Gemini API key not configured; question read-out is disabled. Set "+EnvPrefix+"GEMINI_API_KEY.")
	}
	if cfg.DeepgramAPIKey == "" {
		warnings = append(warnings, "Deepgram API key not configured; voice answers are disabled. Set "+EnvPrefix+"DEEPGRAM_API_KEY.")
	}

	return warnings
}
