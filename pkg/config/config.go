package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	// DefaultBaseURL is where the multi-agent backend listens in development
	DefaultBaseURL = "http://localhost:8000/api/"

	// DefaultReadBuffer is the chunk size used when reading a reply stream
	DefaultReadBuffer = 4096
)

// Config represents the application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
	UI      UIConfig      `mapstructure:"ui"`
	Agents  AgentsConfig  `mapstructure:"agents"`
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"-"`
	TimeoutStr string        `mapstructure:"timeout"` // For parsing string duration
	Streaming  bool          `mapstructure:"streaming"`
	ReadBuffer int           `mapstructure:"read_buffer"`
}

// AuthConfig holds the bearer token settings
type AuthConfig struct {
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token_file"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	LogFile  string `mapstructure:"log_file"`
	Preserve bool   `mapstructure:"preserve"`
	Level    string `mapstructure:"level"`
}

// UIConfig holds terminal rendering settings
type UIConfig struct {
	WordWrap  int    `mapstructure:"word_wrap"`
	CodeStyle string `mapstructure:"code_style"`
}

// AgentsConfig holds the agent profile table
type AgentsConfig struct {
	Profiles []AgentProfileConfig `mapstructure:"profiles"`
}

// AgentProfileConfig is a single agent profile as written in settings.yaml
type AgentProfileConfig struct {
	Key   string `mapstructure:"key"`
	Name  string `mapstructure:"name"`
	Color string `mapstructure:"color"`
}

// DefaultProfiles mirrors the agents the backend currently routes between
func DefaultProfiles() []AgentProfileConfig {
	return []AgentProfileConfig{
		{Key: "triage", Name: "Real Estate Query Triage Agent", Color: "#6b93b5"},
		{Key: "issues", Name: "Property Issue Detector", Color: "#eb8755"},
		{Key: "tenancy", Name: "Tenancy Agreement Expert", Color: "#93b56b"},
		{Key: "clarify", Name: "Query Clarification Agent", Color: "#976bb5"},
	}
}

var (
	// Global config instance
	cfg   *Config
	cfgMu sync.RWMutex
)

// Get returns the global config instance
func Get() *Config {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	if cfg == nil {
		panic("config not initialized")
	}
	return cfg
}

// Load loads configuration from file and environment
func Load(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			xdgConfigHome = filepath.Join(home, ".config")
		}

		viper.AddConfigPath("./.realty") // Check project directory first
		viper.AddConfigPath(filepath.Join(xdgConfigHome, ".realty"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings.yaml")
	}

	viper.SetEnvPrefix("realty")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnvironmentVariables()

	// A missing settings file is fine, defaults apply
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	loaded, err := decode()
	if err != nil {
		return nil, err
	}

	cfgMu.Lock()
	cfg = loaded
	cfgMu.Unlock()

	return loaded, nil
}

func decode() (*Config, error) {
	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := processDurations(c); err != nil {
		return nil, fmt.Errorf("failed to process durations: %w", err)
	}

	normalize(c)
	return c, nil
}

// Watch reloads the config whenever the settings file changes and hands the
// fresh value to onChange. Reload errors keep the previous config.
func Watch(onChange func(*Config, error)) {
	if viper.ConfigFileUsed() == "" {
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		reloaded, err := decode()
		if err == nil {
			cfgMu.Lock()
			cfg = reloaded
			cfgMu.Unlock()
		}
		if onChange != nil {
			onChange(reloaded, err)
		}
	})
	viper.WatchConfig()
}

// setDefaults sets all default configuration values
func setDefaults() {
	// API defaults
	viper.SetDefault("api.base_url", DefaultBaseURL)
	viper.SetDefault("api.timeout", "30s")
	viper.SetDefault("api.streaming", true)
	viper.SetDefault("api.read_buffer", DefaultReadBuffer)

	// Auth defaults
	viper.SetDefault("auth.token", "")
	viper.SetDefault("auth.token_file", "")

	// Logging defaults
	viper.SetDefault("logging.log_file", "./.realty/system.log")
	viper.SetDefault("logging.preserve", false)
	viper.SetDefault("logging.level", "info")

	// UI defaults
	viper.SetDefault("ui.word_wrap", 100)
	viper.SetDefault("ui.code_style", "monokai")

	viper.SetDefault("agents.profiles", profilesAsMaps(DefaultProfiles()))
}

func profilesAsMaps(profiles []AgentProfileConfig) []map[string]any {
	out := make([]map[string]any, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, map[string]any{"key": p.Key, "name": p.Name, "color": p.Color})
	}
	return out
}

// bindEnvironmentVariables binds REALTY_ prefixed variables to viper keys
func bindEnvironmentVariables() {
	viper.BindEnv("api.base_url", "REALTY_BASE_URL", "REALTY_API_BASE_URL")
	viper.BindEnv("api.timeout", "REALTY_API_TIMEOUT")
	viper.BindEnv("api.streaming", "REALTY_STREAMING")
	viper.BindEnv("auth.token", "REALTY_TOKEN", "REALTY_AUTH_TOKEN")
	viper.BindEnv("auth.token_file", "REALTY_TOKEN_FILE")
	viper.BindEnv("logging.log_file", "REALTY_LOG_FILE")
	viper.BindEnv("logging.level", "REALTY_LOG_LEVEL")
	viper.BindEnv("logging.preserve", "REALTY_LOG_PRESERVE")
	viper.BindEnv("ui.code_style", "REALTY_CODE_STYLE")
}

// processDurations converts string durations to time.Duration
func processDurations(c *Config) error {
	if c.API.TimeoutStr != "" {
		d, err := time.ParseDuration(c.API.TimeoutStr)
		if err != nil {
			return fmt.Errorf("invalid api.timeout: %w", err)
		}
		c.API.Timeout = d
	} else if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	return nil
}

func normalize(c *Config) {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(c.API.BaseURL, "/") {
		c.API.BaseURL += "/"
	}
	if c.API.ReadBuffer <= 0 {
		c.API.ReadBuffer = DefaultReadBuffer
	}
	if len(c.Agents.Profiles) == 0 {
		c.Agents.Profiles = DefaultProfiles()
	}
}

// GetConfigFileUsed returns the path to the config file being used
func GetConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// TokenFilePath returns where the persisted bearer token lives
func (c *Config) TokenFilePath() string {
	if c.Auth.TokenFile != "" {
		return c.Auth.TokenFile
	}
	return BuildSettingsPath("auth_token")
}

// Set replaces the global config instance
func Set(c *Config) {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	cfg = c
}
