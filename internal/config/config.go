package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type FirebaseConfig struct {
	Project string `yaml:"project"`
	APIKey  string `yaml:"api_key"`
}

type Config struct {
	APIBaseURL    string         `yaml:"api_base_url"`
	S3ProxyPrefix string         `yaml:"s3_proxy_prefix"`
	Firebase      FirebaseConfig `yaml:"firebase"`
	PrefsPath     string         `yaml:"prefs_path"`
	SessionPath   string         `yaml:"session_path"`
	Salt          string         `yaml:"salt"`
	Theme         string         `yaml:"theme"`
}

func DefaultConfigPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "config.yml"
	}
	return filepath.Join(filepath.Dir(exe), "config.yml")
}

func DefaultPrefsPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "fieldnotes.db"
	}
	return filepath.Join(filepath.Dir(exe), "fieldnotes.db")
}

func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		PrefsPath: DefaultPrefsPath(),
		Theme:     "dark",
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.PrefsPath == "" {
		cfg.PrefsPath = DefaultPrefsPath()
	}
	cfg.PrefsPath = expandHome(cfg.PrefsPath)
	cfg.SessionPath = expandHome(cfg.SessionPath)

	return cfg, nil
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, path[1:])
}

func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) GetSalt() ([]byte, error) {
	if c.Salt == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(c.Salt)
}

func (c *Config) SetSalt(salt []byte) {
	c.Salt = base64.StdEncoding.EncodeToString(salt)
}
