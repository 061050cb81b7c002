package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/Lin-Jiong-HDU/nlsh/internal/command"
	"github.com/Lin-Jiong-HDU/nlsh/internal/core/security"
	"github.com/Lin-Jiong-HDU/nlsh/internal/session"
)

const (
	ConfigFileName = "config"
	ConfigFileType = "yaml"
	NlshDirName    = ".nlsh"
	EnvPrefix      = "NLSH"
)

// Supported backend providers.
const (
	ProviderOllama    = "ollama"
	ProviderOllamaCLI = "ollama-cli"
	ProviderOpenAI    = "openai"
)

// Config holds the application configuration
type Config struct {
	AI        AIConfig        `mapstructure:"ai"`
	Interpret InterpretConfig `mapstructure:"interpret"`
	Session   SessionConfig   `mapstructure:"session"`
	Shell     ShellConfig     `mapstructure:"shell"`
	Security  security.Policy `mapstructure:"security"`
	Backup    BackupConfig    `mapstructure:"backup"`
	Plugins   PluginsConfig   `mapstructure:"plugins"`
	Logging   LoggingConfig   `mapstructure:"logging"`

	dir string
}

// AIConfig holds generative backend configuration
type AIConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
	Timeout  int    `mapstructure:"timeout"`
	CacheTTL int    `mapstructure:"cache_ttl"`
}

// TimeoutDuration returns the per-call backend timeout.
func (c AIConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// CacheTTLDuration returns the reply cache lifetime; zero disables caching.
func (c AIConfig) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// InterpretConfig holds the confidence tiers of the AI fallback
type InterpretConfig struct {
	LowFloor        float64 `mapstructure:"low_floor"`
	AcceptThreshold float64 `mapstructure:"accept_threshold"`
	MaxSuggestions  int     `mapstructure:"max_suggestions"`
}

// SessionConfig holds session defaults
type SessionConfig struct {
	DefaultMode string `mapstructure:"default_mode"`
}

// ShellConfig holds command execution settings
type ShellConfig struct {
	Dialect string `mapstructure:"dialect"`
	Timeout int    `mapstructure:"timeout"`
}

// TimeoutDuration returns the command timeout.
func (c ShellConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// BackupConfig holds the backup ledger location
type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

// PluginsConfig holds plugin discovery settings
type PluginsConfig struct {
	Dir     string `mapstructure:"dir"`
	Enabled bool   `mapstructure:"enabled"`
}

// LoggingConfig holds diagnostic and action log settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

// Dir returns the directory the config was loaded from.
func (c *Config) Dir() string {
	return c.dir
}

// HistoryFile returns the REPL history path.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.dir, "history")
}

// Mode returns the parsed default session mode.
func (c *Config) Mode() session.Mode {
	m, err := session.ParseMode(c.Session.DefaultMode)
	if err != nil {
		return session.Beginner
	}
	return m
}

// Dialect returns the parsed shell dialect for this host.
func (c *Config) Dialect() command.Dialect {
	d, err := command.ParseDialect(c.Shell.Dialect, runtime.GOOS)
	if err != nil {
		return command.DetectDialect(runtime.GOOS)
	}
	return d
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	switch c.AI.Provider {
	case ProviderOllama, ProviderOllamaCLI, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("ai.provider: unsupported provider %q", c.AI.Provider))
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, errors.New("ai.timeout must be positive"))
	}
	if c.AI.CacheTTL < 0 {
		errs = append(errs, errors.New("ai.cache_ttl must not be negative"))
	}

	ic := c.Interpret
	if ic.LowFloor < 0 || ic.AcceptThreshold > 1 || ic.LowFloor > ic.AcceptThreshold {
		errs = append(errs, fmt.Errorf("interpret: need 0 <= low_floor (%g) <= accept_threshold (%g) <= 1",
			ic.LowFloor, ic.AcceptThreshold))
	}
	if ic.MaxSuggestions < 1 {
		errs = append(errs, errors.New("interpret.max_suggestions must be at least 1"))
	}

	if _, err := session.ParseMode(c.Session.DefaultMode); err != nil {
		errs = append(errs, fmt.Errorf("session.default_mode: %w", err))
	}
	if _, err := command.ParseDialect(c.Shell.Dialect, runtime.GOOS); err != nil {
		errs = append(errs, fmt.Errorf("shell.dialect: %w", err))
	}
	if c.Shell.Timeout <= 0 {
		errs = append(errs, errors.New("shell.timeout must be positive"))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}

// GetConfigDir returns the nlsh config directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, NlshDirName), nil
}

// InitConfig loads the configuration from the default directory.
func InitConfig() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadConfig(configDir)
}

// LoadConfig loads config.yaml from configDir, applying defaults and
// NLSH_* environment overrides. A missing file is not an error.
func LoadConfig(configDir string) (*Config, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(configDir)
	setDefaults(v, configDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.dir = configDir
	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	cfg.Backup.Dir = expandHome(cfg.Backup.Dir)
	cfg.Plugins.Dir = expandHome(cfg.Plugins.Dir)
	cfg.Logging.Dir = expandHome(cfg.Logging.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func newViper(configDir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(configDir)
	return v
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("ai.provider", ProviderOllama)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "phi")
	v.SetDefault("ai.base_url", "http://localhost:11434")
	v.SetDefault("ai.timeout", 10)
	v.SetDefault("ai.cache_ttl", 300)

	v.SetDefault("interpret.low_floor", 0.3)
	v.SetDefault("interpret.accept_threshold", 0.6)
	v.SetDefault("interpret.max_suggestions", 3)

	v.SetDefault("session.default_mode", string(session.Beginner))

	v.SetDefault("shell.dialect", "auto")
	v.SetDefault("shell.timeout", 60)

	v.SetDefault("security.protected_paths", []string{})

	v.SetDefault("backup.dir", filepath.Join(configDir, "backups"))

	v.SetDefault("plugins.dir", filepath.Join(configDir, "plugins"))
	v.SetDefault("plugins.enabled", true)

	v.SetDefault("logging.level", "error")
	v.SetDefault("logging.dir", filepath.Join(configDir, "logs"))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// SaveConfig writes cfg to config.yaml in the directory it was loaded
// from, or the default directory.
func SaveConfig(cfg *Config) error {
	configDir := cfg.dir
	if configDir == "" {
		var err error
		if configDir, err = GetConfigDir(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(configDir)

	v.Set("ai.provider", cfg.AI.Provider)
	v.Set("ai.api_key", cfg.AI.APIKey)
	v.Set("ai.model", cfg.AI.Model)
	v.Set("ai.base_url", cfg.AI.BaseURL)
	v.Set("ai.timeout", cfg.AI.Timeout)
	v.Set("ai.cache_ttl", cfg.AI.CacheTTL)

	v.Set("interpret.low_floor", cfg.Interpret.LowFloor)
	v.Set("interpret.accept_threshold", cfg.Interpret.AcceptThreshold)
	v.Set("interpret.max_suggestions", cfg.Interpret.MaxSuggestions)

	v.Set("session.default_mode", cfg.Session.DefaultMode)

	v.Set("shell.dialect", cfg.Shell.Dialect)
	v.Set("shell.timeout", cfg.Shell.Timeout)

	v.Set("security.protected_paths", cfg.Security.ProtectedPaths)

	v.Set("backup.dir", cfg.Backup.Dir)
	v.Set("plugins.dir", cfg.Plugins.Dir)
	v.Set("plugins.enabled", cfg.Plugins.Enabled)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.dir", cfg.Logging.Dir)

	configPath := filepath.Join(configDir, ConfigFileName+"."+ConfigFileType)
	return v.WriteConfigAs(configPath)
}
