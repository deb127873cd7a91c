package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LLM.Provider != ProviderHuggingFace {
		t.Errorf("provider = %q, want huggingface", cfg.LLM.Provider)
	}
	if cfg.LLM.Timeout.Duration != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.LLM.Timeout.Duration)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[llm]
provider = "gemini"
model = "gemini-1.5-pro"
timeout = "5s"

[cache]
ttl = "24h"
redis_url = "redis://localhost:6379/0"

[rules]
paths = ["extra.toml"]

[server]
addr = ":9090"
mongo_uri = "mongodb://localhost:27017"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LLM.Provider != ProviderGemini {
		t.Errorf("provider = %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gemini-1.5-pro" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout.Duration != 5*time.Second {
		t.Errorf("timeout = %v", cfg.LLM.Timeout.Duration)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL.Duration)
	}
	if cfg.Cache.RedisURL == "" {
		t.Error("redis url not read")
	}
	if len(cfg.Rules.Paths) != 1 || cfg.Rules.Paths[0] != "extra.toml" {
		t.Errorf("rule paths = %v", cfg.Rules.Paths)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HF_API_TOKEN", "hf-token")
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("DEPEXPLAIN_REDIS_URL", "redis://env:6379")
	t.Setenv("DEPEXPLAIN_MONGO_URI", "mongodb://env:27017")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LLM.hfToken != "hf-token" {
		t.Errorf("hf token = %q", cfg.LLM.hfToken)
	}
	if cfg.LLM.geminiKey != "gm-key" {
		t.Errorf("gemini key = %q", cfg.LLM.geminiKey)
	}
	if cfg.Cache.RedisURL != "redis://env:6379" {
		t.Errorf("redis url = %q", cfg.Cache.RedisURL)
	}
	if cfg.Server.MongoURI != "mongodb://env:27017" {
		t.Errorf("mongo uri = %q", cfg.Server.MongoURI)
	}
}

func TestLoadConfigInvalidProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[llm]\nprovider = \"openai\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestLoadRulesWithExtraTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.toml")
	content := `
[[rule]]
id = "numpy-2-requires-scipy-111"
severity = "medium"
reason = "scipy<1.11 was built against the numpy 1.x ABI"

[rule.left]
name = "numpy"
range = ">=2.0"

[rule.right]
name = "scipy"
range = "<1.11"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := loadRules(RulesConfig{}, []string{path})
	if err != nil {
		t.Fatalf("loadRules: %v", err)
	}
	if len(table.ForPair("numpy", "scipy")) != 1 {
		t.Error("extra rule not merged")
	}
	if len(table.ForPair("pytorch-lightning", "torch")) != 1 {
		t.Error("builtin rules lost in merge")
	}
}
