package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	LLMProvider     string // openai, anthropic, ollama
	LLMModel        string
	OpenAIKey       string
	AnthropicKey    string // API key (X-Api-Key header)
	AnthropicToken  string // OAuth token (Authorization: Bearer header)
	OllamaBaseURL   string
	UserName        string
	CustomRulesFile string
	OutputDir       string // where action records are dropped
	MCPHost         string
	MCPPort         string
	DiscordToken    string
}

func Load() *Config {
	// Prefer a local .env; fall back to the installed config.
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load(ConfigFile())
	}

	return &Config{
		LLMProvider:     envOr("FAF_LLM_PROVIDER", "openai"),
		LLMModel:        os.Getenv("FAF_MODEL"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicToken:  os.Getenv("ANTHROPIC_AUTH_TOKEN"),
		OllamaBaseURL:   envOr("OLLAMA_BASE_URL", "http://localhost:11434/v1"),
		UserName:        envOr("FAF_USER_NAME", "Unknown"),
		CustomRulesFile: os.Getenv("FAF_CUSTOM_RULES_FILE"),
		OutputDir:       envOr("FAF_JSON_OUTPUT_PATH", "."),
		MCPHost:         envOr("FAF_MCP_HOST", "127.0.0.1"),
		MCPPort:         envOr("FAF_MCP_PORT", "5000"),
		DiscordToken:    os.Getenv("DISCORD_BOT_TOKEN"),
	}
}

// CustomRules reads the optional extra-rules file. A missing file means
// no extra rules; any other read failure is reported.
func (c *Config) CustomRules() (string, error) {
	if c.CustomRulesFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.CustomRulesFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading custom rules file: %w", err)
	}
	return string(data), nil
}

// CheckCredentials verifies the selected provider has credentials.
// Ollama runs without any.
func (c *Config) CheckCredentials() error {
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is not set")
		}
	case "anthropic":
		if c.AnthropicKey == "" && c.AnthropicToken == "" {
			return fmt.Errorf("neither ANTHROPIC_API_KEY nor ANTHROPIC_AUTH_TOKEN is set")
		}
	}
	return nil
}

// ConfigDir is where the installed service keeps its settings.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".faf")
}

func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
