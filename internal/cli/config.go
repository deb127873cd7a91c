package cli

import (
	"context"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/depexplain/depexplain/pkg/cache"
	dperrors "github.com/depexplain/depexplain/pkg/errors"
	"github.com/depexplain/depexplain/pkg/explain"
	"github.com/depexplain/depexplain/pkg/integrations/gemini"
	"github.com/depexplain/depexplain/pkg/integrations/hfinference"
	"github.com/depexplain/depexplain/pkg/rules"
)

// Provider names accepted in config and --provider.
const (
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
	ProviderNone        = "none"
)

// duration wraps time.Duration for TOML decoding from strings like "10s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Config is the depexplain configuration file, read from
// ~/.config/depexplain/config.toml by default.
type Config struct {
	LLM    LLMConfig    `toml:"llm"`
	Cache  CacheConfig  `toml:"cache"`
	Rules  RulesConfig  `toml:"rules"`
	Server ServerConfig `toml:"server"`
}

// LLMConfig selects and configures the explanation provider.
type LLMConfig struct {
	Provider string   `toml:"provider"` // huggingface, gemini, or none
	Model    string   `toml:"model"`
	Timeout  duration `toml:"timeout"`

	// Tokens come from the environment (HF_API_TOKEN, GEMINI_API_KEY),
	// never from the config file.
	hfToken   string
	geminiKey string
}

// CacheConfig configures the explanation cache backend.
type CacheConfig struct {
	Dir      string   `toml:"dir"`
	TTL      duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
	Disabled bool     `toml:"disabled"`
}

// RulesConfig points at additional rule tables merged over the builtin one.
type RulesConfig struct {
	Paths []string `toml:"paths"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

func defaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Provider: ProviderHuggingFace,
			Timeout:  duration{explain.DefaultTimeout},
		},
		Cache: CacheConfig{
			TTL: duration{7 * 24 * time.Hour},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields the defaults. Environment variables
// override file settings.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = configPath(); err != nil {
			path = ""
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if explicit || !os.IsNotExist(err) {
				return cfg, dperrors.Wrap(dperrors.ErrCodeInvalidConfig, err, "reading config %s", path)
			}
		}
	}

	cfg.LLM.hfToken = os.Getenv("HF_API_TOKEN")
	cfg.LLM.geminiKey = os.Getenv("GEMINI_API_KEY")
	if v := os.Getenv("DEPEXPLAIN_REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv("DEPEXPLAIN_MONGO_URI"); v != "" {
		cfg.Server.MongoURI = v
	}

	switch cfg.LLM.Provider {
	case ProviderHuggingFace, ProviderGemini, ProviderNone:
	default:
		return cfg, dperrors.New(dperrors.ErrCodeInvalidConfig, "unknown llm provider %q", cfg.LLM.Provider)
	}
	return cfg, nil
}

// newCacheBackend builds the cache backend from config. Failures degrade to
// a null cache with a warning rather than aborting the command.
func newCacheBackend(cfg CacheConfig, logger *log.Logger) cache.Cache {
	if cfg.Disabled {
		return cache.NewNullCache()
	}
	if cfg.RedisURL != "" {
		backend, err := cache.NewRedisCache(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		return backend
	}

	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache()
		}
	}
	backend, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Warn("file cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	return backend
}

// newProvider builds the explanation provider from config. Returns nil (use
// templates only) when the provider is "none" or its credentials are
// missing. The second return value closes the provider if needed.
func newProvider(ctx context.Context, cfg Config, backend cache.Cache, logger *log.Logger) (explain.Provider, func(), error) {
	noop := func() {}

	switch cfg.LLM.Provider {
	case ProviderNone:
		return nil, noop, nil

	case ProviderGemini:
		if cfg.LLM.geminiKey == "" {
			logger.Warn("GEMINI_API_KEY not set, using template explanations")
			return nil, noop, nil
		}
		client, err := gemini.NewClient(ctx, cfg.LLM.geminiKey, cfg.LLM.Model)
		if err != nil {
			return nil, noop, err
		}
		return client, func() { _ = client.Close() }, nil

	default:
		var opts []hfinference.Option
		if cfg.LLM.Model != "" {
			opts = append(opts, hfinference.WithModel(cfg.LLM.Model))
		}
		client := hfinference.NewClient(backend, cache.NewDefaultKeyer(), cfg.Cache.TTL.Duration, cfg.LLM.hfToken, opts...)
		return client, noop, nil
	}
}

// loadRules builds the rule table: builtin rules plus any extra tables from
// config and command-line flags.
func loadRules(cfg RulesConfig, extra []string) (*rules.Table, error) {
	table := rules.Builtin()
	for _, path := range append(append([]string{}, cfg.Paths...), extra...) {
		loaded, err := rules.Load(path)
		if err != nil {
			return nil, err
		}
		if table, err = table.Merge(loaded); err != nil {
			return nil, err
		}
	}
	return table, nil
}
