package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration. Values resolve in priority order:
// defaults, then the optional yaml file, then environment variables.
type Config struct {
	Port        string `yaml:"port"`
	DataDir     string `yaml:"data_dir"`
	DBPath      string `yaml:"db_path"`
	Development bool   `yaml:"development"`

	// VeoAPIKey is the free-tier credential used for first attempts against
	// the Veo family. The user's own key is supplied at runtime via settings.
	VeoAPIKey  string `yaml:"veo_api_key"`
	VeoBaseURL string `yaml:"veo_base_url"`

	SoraBaseURL string `yaml:"sora_base_url"`
}

func defaults() *Config {
	return &Config{
		Port:    "8080",
		DataDir: "./videos",
		DBPath:  "./videoarena.db",
	}
}

// Load reads configuration from the yaml file at path (skipped when path is
// empty or the file does not exist) and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setEnv(&c.Port, "PORT")
	setEnv(&c.DataDir, "DATA_DIR")
	setEnv(&c.DBPath, "DB_PATH")
	setEnv(&c.VeoAPIKey, "VEO_API_KEY")
	setEnv(&c.VeoBaseURL, "VEO_BASE_URL")
	setEnv(&c.SoraBaseURL, "SORA_BASE_URL")
	if os.Getenv("DEVELOPMENT") == "true" {
		c.Development = true
	}
}

func setEnv(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}
