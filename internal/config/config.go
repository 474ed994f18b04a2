// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/digoaraujo/Testy/internal/locator"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Locator() LocatorConfig
	Browser() BrowserConfig

	// Browser Setters
	SetBrowserHeadless(bool)
	SetBrowserRemoteURL(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	LocatorCfg LocatorConfig `mapstructure:"locator" yaml:"locator"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
}

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Locator() LocatorConfig { return c.LocatorCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }

// -- Browser Setters --
func (c *Config) SetBrowserHeadless(b bool)      { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserRemoteURL(url string) { c.BrowserCfg.RemoteURL = url }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// LocatorConfig tunes element resolution and the retry budgets of interactions.
type LocatorConfig struct {
	DefaultTimeout    time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`
	PollInterval      time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	RetryAttempts     int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	ReadRetryAttempts int           `mapstructure:"read_retry_attempts" yaml:"read_retry_attempts"`
	RetryPause        time.Duration `mapstructure:"retry_pause" yaml:"retry_pause"`
	// MinCharsToType is the longest value typed key by key. -1 disables pasting.
	MinCharsToType   int      `mapstructure:"min_chars_to_type" yaml:"min_chars_to_type"`
	LogParamsExclude []string `mapstructure:"log_params_exclude" yaml:"log_params_exclude"`
	LogXPath         bool     `mapstructure:"log_xpath" yaml:"log_xpath"`
}

// Settings converts the configuration into executor settings.
func (l LocatorConfig) Settings() locator.Settings {
	return locator.Settings{
		DefaultTimeout:    l.DefaultTimeout,
		PollInterval:      l.PollInterval,
		RetryAttempts:     l.RetryAttempts,
		ReadRetryAttempts: l.ReadRetryAttempts,
		RetryPause:        l.RetryPause,
		MinCharsToType:    l.MinCharsToType,
		LogParamsExclude:  append([]string(nil), l.LogParamsExclude...),
		LogXPath:          l.LogXPath,
	}
}

// BrowserConfig holds settings for the Chrome instance driven over CDP.
type BrowserConfig struct {
	Headless bool   `mapstructure:"headless" yaml:"headless"`
	ExecPath string `mapstructure:"exec_path" yaml:"exec_path"`
	// RemoteURL attaches to an already running Chrome through its DevTools websocket.
	RemoteURL         string        `mapstructure:"remote_url" yaml:"remote_url"`
	Args              []string      `mapstructure:"args" yaml:"args"`
	WindowWidth       int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight      int           `mapstructure:"window_height" yaml:"window_height"`
	GrantClipboard    bool          `mapstructure:"grant_clipboard" yaml:"grant_clipboard"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// ActionTimeout bounds every single CDP round trip.
	ActionTimeout time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "testy")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Locator --
	defaults := locator.DefaultSettings()
	v.SetDefault("locator.default_timeout", defaults.DefaultTimeout)
	v.SetDefault("locator.poll_interval", defaults.PollInterval)
	v.SetDefault("locator.retry_attempts", defaults.RetryAttempts)
	v.SetDefault("locator.read_retry_attempts", defaults.ReadRetryAttempts)
	v.SetDefault("locator.retry_pause", defaults.RetryPause)
	v.SetDefault("locator.min_chars_to_type", defaults.MinCharsToType)
	v.SetDefault("locator.log_params_exclude", defaults.LogParamsExclude)
	v.SetDefault("locator.log_xpath", defaults.LogXPath)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.grant_clipboard", true)
	v.SetDefault("browser.navigation_timeout", "30s")
	v.SetDefault("browser.action_timeout", "5s")
}

// EnvPrefix prefixes every environment override, e.g. TESTY_LOCATOR_RETRY_ATTEMPTS.
const EnvPrefix = "TESTY"

// BindEnv lets environment variables override any key known to v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.LocatorCfg.Validate(); err != nil {
		return fmt.Errorf("locator configuration invalid: %w", err)
	}
	if err := c.BrowserCfg.Validate(); err != nil {
		return fmt.Errorf("browser configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the locator timings and budgets.
func (l *LocatorConfig) Validate() error {
	if l.DefaultTimeout < 0 {
		return fmt.Errorf("default_timeout must not be negative")
	}
	if l.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be a positive duration")
	}
	if l.RetryAttempts <= 0 || l.ReadRetryAttempts <= 0 {
		return fmt.Errorf("retry_attempts and read_retry_attempts must be positive integers")
	}
	if l.RetryPause < 0 {
		return fmt.Errorf("retry_pause must not be negative")
	}
	if l.MinCharsToType < -1 {
		return fmt.Errorf("min_chars_to_type must be -1 or greater")
	}
	return nil
}

// Validate checks the browser settings.
func (b *BrowserConfig) Validate() error {
	if b.WindowWidth <= 0 || b.WindowHeight <= 0 {
		return fmt.Errorf("window_width and window_height must be positive integers")
	}
	if b.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation_timeout must be a positive duration")
	}
	if b.ActionTimeout <= 0 {
		return fmt.Errorf("action_timeout must be a positive duration")
	}
	return nil
}
