// Package config loads config.yaml, applies defaults and environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"cancerdetect/logging"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
		RateLimit      struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"http"`
	Log       logging.Config `yaml:"log"`
	Artifacts struct {
		// Source is "file", "sqlite3" or "postgres".
		Source       string        `yaml:"source"`
		Dir          string        `yaml:"dir"`
		ModelFile    string        `yaml:"model_file"`
		ScalerFile   string        `yaml:"scaler_file"`
		FeaturesFile string        `yaml:"features_file"`
		DSN          string        `yaml:"dsn"`
		Watch        bool          `yaml:"watch"`
		Debounce     time.Duration `yaml:"debounce"`
	} `yaml:"artifacts"`
	Pipeline struct {
		CacheSize int `yaml:"cache_size"`
	} `yaml:"pipeline"`
	Page struct {
		Layout          string `yaml:"layout"`
		Columns         int    `yaml:"columns"`
		Padding         int    `yaml:"padding"`
		ShowHeader      *bool  `yaml:"show_header"`
		Title           string `yaml:"title"`
		Subtitle        string `yaml:"subtitle"`
		IntroMarkdown   string `yaml:"intro_markdown"`
		BackgroundImage string `yaml:"background_image"`
		TitleCaseLabels bool   `yaml:"title_case_labels"`
	} `yaml:"page"`
}

// Load reads path (a missing file is not an error; defaults apply), then a
// .env file if present, then environment overrides.
func Load(path string) (*Config, error) {
	var config Config
	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return nil, err
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	_ = godotenv.Load()
	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	switch c.Artifacts.Source {
	case "file":
	case "sqlite3", "postgres":
		if c.Artifacts.DSN == "" {
			return fmt.Errorf("artifacts.dsn is required for source %q", c.Artifacts.Source)
		}
	default:
		return fmt.Errorf("unknown artifact source %q", c.Artifacts.Source)
	}
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.Http.Port)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Http.Port == 0 {
		c.Http.Port = 8501
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = 30 * time.Second
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.Http.MaxBodyBytes == 0 {
		c.Http.MaxBodyBytes = 64 << 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Artifacts.Source == "" {
		c.Artifacts.Source = "file"
	}
	if c.Artifacts.Dir == "" {
		c.Artifacts.Dir = "."
	}
	if c.Artifacts.ModelFile == "" {
		c.Artifacts.ModelFile = "breast_cancer_model.json"
	}
	if c.Artifacts.ScalerFile == "" {
		c.Artifacts.ScalerFile = "scaler.json"
	}
	if c.Artifacts.FeaturesFile == "" {
		c.Artifacts.FeaturesFile = "feature_names.json"
	}
	if c.Artifacts.Debounce == 0 {
		c.Artifacts.Debounce = 500 * time.Millisecond
	}
	if c.Page.Layout == "" {
		c.Page.Layout = "classic"
	}
	if c.Page.Title == "" {
		c.Page.Title = "Cancer Detection System"
	}
	if c.Page.Subtitle == "" {
		c.Page.Subtitle = "Machine Learning Based Cancer Detection"
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Http.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ARTIFACT_DIR"); v != "" {
		c.Artifacts.Dir = v
	}
	if v := os.Getenv("ARTIFACT_DSN"); v != "" {
		c.Artifacts.DSN = v
	}
	if v := os.Getenv("ARTIFACT_SOURCE"); v != "" {
		c.Artifacts.Source = v
	}
	if v := os.Getenv("PAGE_LAYOUT"); v != "" {
		c.Page.Layout = v
	}
	return nil
}
