package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// APIConfig configures the connection to the RAG backend.
type APIConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// QueryConfig configures question submission.
type QueryConfig struct {
	TopK int `yaml:"top_k"`
}

// LogConfig configures the diagnostics log file. Stdout belongs to the TUI,
// so logs always go to a file.
type LogConfig struct {
	File  string `yaml:"file"`
	Debug bool   `yaml:"debug"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	API   APIConfig   `yaml:"api"`
	Query QueryConfig `yaml:"query"`
	Log   LogConfig   `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./ragchat.yaml first, then ~/.config/ragchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/ragchat/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "ragchat.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		API:   APIConfig{BaseURL: "http://localhost:8000/api", TimeoutSecs: 30},
		Query: QueryConfig{TopK: 4},
		Log:   LogConfig{File: "ragchat.log"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000/api"
	}
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = 30
	}
	if cfg.Query.TopK == 0 {
		cfg.Query.TopK = 4
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "ragchat.log"
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("RAGCHAT_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
}
