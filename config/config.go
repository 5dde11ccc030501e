package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go-mod.ewintr.nl/ytsum/storage"
	"gopkg.in/yaml.v3"
)

const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

type Postgres struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

func (p Postgres) Info() storage.PostgresInfo {
	return storage.PostgresInfo{
		Host:     p.Host,
		Port:     p.Port,
		User:     p.User,
		Password: p.Password,
		Database: p.Database,
	}
}

type Config struct {
	LLMProvider   string `yaml:"llm_provider"`
	LLMModel      string `yaml:"llm_model"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	MaxTokens     int    `yaml:"max_tokens"`
	DefaultPrompt string `yaml:"default_prompt"`
	// LLMRate is the number of summaries the queue generates per minute.
	LLMRate int `yaml:"llm_rate"`

	Storage    string   `yaml:"storage"`
	SQLitePath string   `yaml:"sqlite_path"`
	RedisURL   string   `yaml:"redis_url"`
	Postgres   Postgres `yaml:"postgres"`

	WeaviateScheme string `yaml:"weaviate_scheme"`
	WeaviateHost   string `yaml:"weaviate_host"`
	WeaviateAPIKey string `yaml:"weaviate_api_key"`

	MinifluxEndpoint string        `yaml:"miniflux_endpoint"`
	MinifluxAPIKey   string        `yaml:"miniflux_apikey"`
	FetchInterval    time.Duration `yaml:"fetch_interval"`

	YoutubeAPIKey string `yaml:"youtube_api_key"`
	APIPort       int    `yaml:"api_port"`
}

// APIKey returns the key for the configured provider.
func (c Config) APIKey() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

func Default() Config {
	return Config{
		LLMProvider: "gemini",
		MaxTokens:   4000,
		LLMRate:     10,
		Storage:     StorageSQLite,
		SQLitePath:  filepath.Join(dataDir(), "ytsum", "summaries.db"),
		RedisURL:    "redis://localhost:6379/0",
		Postgres: Postgres{
			Host:     "localhost",
			Port:     "5432",
			User:     "ytsum",
			Password: "ytsum",
			Database: "ytsum",
		},
		WeaviateScheme:   "http",
		MinifluxEndpoint: "",
		FetchInterval:    time.Minute,
		APIPort:          8080,
	}
}

// DefaultPath is the preferences file that is read when no other is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ytsum", "config.yaml")
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

type LookupFunc func(string) (string, bool)

// Load reads the yaml file at path on top of the defaults, then lets the
// environment override it. An empty path skips the file, a missing file is
// only an error when required is set.
func Load(path string, required bool, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist) && !required:
		case err != nil:
			return Config{}, fmt.Errorf("could not read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("could not parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	getParam := func(param, def string) string {
		if val, ok := lookup(param); ok {
			return val
		}
		return def
	}
	intParam := func(param string, def int) (int, error) {
		val, ok := lookup(param)
		if !ok {
			return def, nil
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid value for %s: %w", param, err)
		}
		return n, nil
	}

	c.LLMProvider = getParam("LLM_PROVIDER", c.LLMProvider)
	c.LLMModel = getParam("LLM_MODEL", c.LLMModel)
	c.GeminiAPIKey = getParam("GEMINI_API_KEY", c.GeminiAPIKey)
	c.OpenAIAPIKey = getParam("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.DefaultPrompt = getParam("DEFAULT_PROMPT", c.DefaultPrompt)
	c.Storage = getParam("STORAGE", c.Storage)
	c.SQLitePath = getParam("SQLITE_PATH", c.SQLitePath)
	c.RedisURL = getParam("REDIS_URL", c.RedisURL)
	c.Postgres.Host = getParam("POSTGRES_HOST", c.Postgres.Host)
	c.Postgres.Port = getParam("POSTGRES_PORT", c.Postgres.Port)
	c.Postgres.User = getParam("POSTGRES_USER", c.Postgres.User)
	c.Postgres.Password = getParam("POSTGRES_PASSWORD", c.Postgres.Password)
	c.Postgres.Database = getParam("POSTGRES_DB", c.Postgres.Database)
	c.WeaviateScheme = getParam("WEAVIATE_SCHEME", c.WeaviateScheme)
	c.WeaviateHost = getParam("WEAVIATE_HOST", c.WeaviateHost)
	c.WeaviateAPIKey = getParam("WEAVIATE_API_KEY", c.WeaviateAPIKey)
	c.MinifluxEndpoint = getParam("MINIFLUX_ENDPOINT", c.MinifluxEndpoint)
	c.MinifluxAPIKey = getParam("MINIFLUX_APIKEY", c.MinifluxAPIKey)
	c.YoutubeAPIKey = getParam("YOUTUBE_API_KEY", c.YoutubeAPIKey)

	var err error
	if c.MaxTokens, err = intParam("MAX_TOKENS", c.MaxTokens); err != nil {
		return err
	}
	if c.LLMRate, err = intParam("LLM_RATE", c.LLMRate); err != nil {
		return err
	}
	if c.APIPort, err = intParam("API_PORT", c.APIPort); err != nil {
		return err
	}
	if val, ok := lookup("FETCH_INTERVAL"); ok {
		if c.FetchInterval, err = time.ParseDuration(val); err != nil {
			return fmt.Errorf("invalid value for FETCH_INTERVAL: %w", err)
		}
	}

	return nil
}

func (c Config) validate() error {
	switch c.LLMProvider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLMProvider)
	}
	switch c.Storage {
	case StorageSQLite, StoragePostgres, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.MaxTokens <= 0 || c.MaxTokens > math.MaxInt32 {
		return fmt.Errorf("max tokens must be between 1 and %d, got %d", math.MaxInt32, c.MaxTokens)
	}
	if c.LLMRate <= 0 {
		return fmt.Errorf("llm rate must be positive, got %d", c.LLMRate)
	}
	if c.FetchInterval <= 0 {
		return fmt.Errorf("fetch interval must be positive, got %s", c.FetchInterval)
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("invalid api port %d", c.APIPort)
	}

	return nil
}
