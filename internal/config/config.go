package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "UTC"
	configPathEnv      = "DDSCANNER_CONFIG"
	redditClientIDEnv  = "REDDIT_CLIENT_ID"
	redditSecretEnv    = "REDDIT_CLIENT_SECRET"
	redditUserAgentEnv = "REDDIT_USER_AGENT"
	ollamaEndpointEnv  = "OLLAMA_ENDPOINT"
	ollamaModelEnv     = "OLLAMA_MODEL"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Reddit        RedditConfig       `yaml:"reddit"`
	Sweep         SweepConfig        `yaml:"sweep"`
	Ollama        OllamaConfig       `yaml:"ollama"`
	Store         StoreConfig        `yaml:"store"`
	Server        ServerConfig       `yaml:"server"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RedditConfig wires feed API credentials. All three values are required
// and usually come from the environment or a .env file.
type RedditConfig struct {
	ClientID     string `yaml:"clientId" validate:"required"`
	ClientSecret string `yaml:"clientSecret" validate:"required"`
	UserAgent    string `yaml:"userAgent" validate:"required"`
	TimeoutSec   int    `yaml:"timeoutSecs" validate:"gt=0"`
}

// SweepConfig describes one batch run: which feeds, which orderings, and
// the filter settings.
type SweepConfig struct {
	Subreddits     []string `yaml:"subreddits" validate:"min=1"`
	Orderings      []string `yaml:"orderings" validate:"min=1,dive,oneof=new hot top rising"`
	PostLimit      int      `yaml:"postLimit" validate:"gt=0"`
	ScoreThreshold int      `yaml:"scoreThreshold"`
	TopWindow      string   `yaml:"topWindow" validate:"oneof=hour day week month year all"`
	FlairsToIgnore []string `yaml:"flairsToIgnore"`
}

// OllamaOptions are generation parameters forwarded verbatim to the model.
type OllamaOptions struct {
	NumCtx        int      `yaml:"numCtx" json:"num_ctx"`
	Temperature   float64  `yaml:"temperature" json:"temperature"`
	TopP          float64  `yaml:"topP" json:"top_p"`
	TopK          int      `yaml:"topK" json:"top_k"`
	RepeatPenalty float64  `yaml:"repeatPenalty" json:"repeat_penalty"`
	Seed          int      `yaml:"seed" json:"seed"`
	Stop          []string `yaml:"stop" json:"stop"`
}

// OllamaConfig defines how to contact the local text-generation endpoint.
// An empty endpoint disables enrichment.
type OllamaConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	Model      string        `yaml:"model"`
	TimeoutSec int           `yaml:"timeoutSecs" validate:"gt=0"`
	Options    OllamaOptions `yaml:"options"`
}

// StoreConfig locates the signal log file.
type StoreConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// ServerConfig describes the read-side listing server.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	TopN     int            `yaml:"topN" validate:"gt=0"`
}

// TelegramConfig wires all data required to send digests. Both fields
// empty disables the notifier.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig defines when recurring sweeps run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression" validate:"required"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present), applies environment
// overrides, and validates the result. A validation failure is fatal at
// startup, before any sweep begins.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if envPath := os.Getenv(configPathEnv); envPath != "" {
		path = envPath
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.bindTimezone(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks structural constraints, including the fixed ordering
// set and the presence of feed credentials.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(redditClientIDEnv); v != "" {
		c.Reddit.ClientID = v
	}
	if v := os.Getenv(redditSecretEnv); v != "" {
		c.Reddit.ClientSecret = v
	}
	if v := os.Getenv(redditUserAgentEnv); v != "" {
		c.Reddit.UserAgent = v
	}
	if v := os.Getenv(ollamaEndpointEnv); v != "" {
		c.Ollama.Endpoint = v
	}
	if v := os.Getenv(ollamaModelEnv); v != "" {
		c.Ollama.Model = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() error {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("unknown timezone %s: %w", tz, err)
	}
	c.Scheduler.location = loc
	return nil
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Reddit:  RedditConfig{TimeoutSec: 20},
		Sweep: SweepConfig{
			Subreddits: []string{
				"stocks",
				"wallstreetbets",
				"smallstreetbets",
				"investing",
				"stockmarket",
				"options",
				"daytrading",
				"algotrading",
			},
			Orderings:      []string{"new", "hot", "top"},
			PostLimit:      1000,
			ScoreThreshold: 20,
			TopWindow:      "week",
			FlairsToIgnore: []string{
				"off-topic",
				"discussion",
				"question",
				"news",
				"broad market news",
				"shitpost",
				"meme",
			},
		},
		Ollama: OllamaConfig{
			Endpoint:   "http://localhost:11434",
			Model:      "llama3",
			TimeoutSec: 120,
			Options: OllamaOptions{
				NumCtx:        4096,
				Temperature:   0.2,
				TopP:          0.9,
				TopK:          40,
				RepeatPenalty: 1.1,
				Seed:          1337,
				Stop:          []string{"}\n", "\n\n"},
			},
		},
		Store:  StoreConfig{Path: "dd_log.jsonl"},
		Server: ServerConfig{Addr: ":8000"},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
			TopN:     10,
		},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
	}
}
