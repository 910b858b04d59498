package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "QUIV"

// Config holds all quiv settings.
type Config struct {
	GitHub GitHubConfig `mapstructure:"github"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Git    GitConfig    `mapstructure:"git"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// GitHubConfig configures the REST API client.
type GitHubConfig struct {
	APIURL string `mapstructure:"api_url"`
	Token  string `mapstructure:"token"`
}

// HTTPConfig bounds network calls.
type HTTPConfig struct {
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// GitConfig configures the sparse-checkout transport.
type GitConfig struct {
	Binary  string        `mapstructure:"binary"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultPath returns the config file read when none is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "quiv", "config.yaml")
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{APIURL: "https://api.github.com"},
		HTTP:   HTTPConfig{ConnectTimeout: 10 * time.Second, Timeout: 30 * time.Second},
		Git:    GitConfig{Binary: "git", Timeout: 5 * time.Minute},
	}
}

func newViper() *viper.Viper {
	d := Default()

	v := viper.New()
	v.SetDefault("github.api_url", d.GitHub.APIURL)
	v.SetDefault("github.token", d.GitHub.Token)
	v.SetDefault("http.connect_timeout", d.HTTP.ConnectTimeout)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("git.binary", d.Git.Binary)
	v.SetDefault("git.timeout", d.Git.Timeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("github.token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")
	return v
}

// Load reads settings from configFile, or from DefaultPath when configFile
// is empty and that file exists, then applies environment overrides and
// validates the result.
func Load(configFile string) (*Config, error) {
	v := newViper()

	switch {
	case configFile != "":
		v.SetConfigFile(configFile)
	default:
		if path := DefaultPath(); fileExists(path) {
			v.SetConfigFile(path)
			configFile = path
		}
	}

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.ConfigError(fmt.Sprintf("cannot read config file %s", configFile), err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, errors.ConfigError("invalid configuration", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError("invalid configuration", err)
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks timeouts, the API URL and the git binary.
func (c *Config) Validate() error {
	u, err := url.Parse(c.GitHub.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("github.api_url must be an absolute http(s) URL, got %q", c.GitHub.APIURL)
	}
	if c.HTTP.ConnectTimeout <= 0 {
		return fmt.Errorf("http.connect_timeout must be positive, got %s", c.HTTP.ConnectTimeout)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout)
	}
	if c.Git.Timeout <= 0 {
		return fmt.Errorf("git.timeout must be positive, got %s", c.Git.Timeout)
	}
	if strings.TrimSpace(c.Git.Binary) == "" {
		return fmt.Errorf("git.binary must not be empty")
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
