package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	configDirName  = ".care"
	configName     = "config"
	configType     = "toml"
	DefaultBaseURL = "http://localhost:5000"
	DefaultTimeout = 30 * time.Second
)

const (
	KeyBaseURL        = "portal.base_url"
	KeyTimeout        = "portal.timeout"
	KeyProfilesPath   = "profiles.path"
	KeyProfile        = "profile"
	KeySessionBackend = "session.backend"
	KeySessionDir     = "session.dir"
	KeyLogLevel       = "log.level"
)

const (
	SessionBackendAuto = "auto"
	SessionBackendFile = "file"
	SessionBackendPass = "pass"
)

var ErrInvalidSessionBackend = errors.New("invalid session backend")

type Config struct {
	Portal   PortalConfig   `mapstructure:"portal"`
	Profiles ProfilesConfig `mapstructure:"profiles"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
	Profile  string         `mapstructure:"profile"`

	v *viper.Viper
}

type PortalConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ProfilesConfig struct {
	Path string `mapstructure:"path"`
}

type SessionConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Options locates the configuration. Home defaults to the user's home
// directory; File, when set, replaces ~/.care/config.toml.
type Options struct {
	Home string
	File string
}

func Load(opts Options) (*Config, error) {
	home := opts.Home
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
	}
	configDir := filepath.Join(home, configDirName)

	v := viper.New()
	v.SetConfigType(configType)
	if opts.File != "" {
		v.SetConfigFile(expandHome(opts.File, home))
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(configDir)
	}

	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyProfilesPath, filepath.Join(configDir, "profiles.toml"))
	v.SetDefault(KeyProfile, "")
	v.SetDefault(KeySessionBackend, SessionBackendAuto)
	v.SetDefault(KeySessionDir, filepath.Join(configDir, "sessions"))
	v.SetDefault(KeyLogLevel, zerolog.WarnLevel.String())

	_ = v.BindEnv(KeyBaseURL, "CARE_BASE_URL")
	_ = v.BindEnv(KeyProfile, "CARE_PROFILE")
	_ = v.BindEnv(KeyLogLevel, "CARE_LOG_LEVEL")
	_ = v.BindEnv(KeySessionBackend, "CARE_SESSION_BACKEND")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Profiles.Path = expandHome(cfg.Profiles.Path, home)
	cfg.Session.Dir = expandHome(cfg.Session.Dir, home)
	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	v.Set(KeyProfilesPath, cfg.Profiles.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Session.Backend {
	case SessionBackendAuto, SessionBackendFile, SessionBackendPass:
	default:
		return fmt.Errorf("%w %q (want auto, file or pass)", ErrInvalidSessionBackend, c.Session.Backend)
	}
	if c.Portal.Timeout <= 0 {
		return fmt.Errorf("portal timeout must be positive, got %s", c.Portal.Timeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Viper exposes the loaded settings to adapters that read their own keys.
func (c *Config) Viper() *viper.Viper {
	if c.v == nil {
		c.v = viper.New()
		c.v.Set(KeyProfilesPath, c.Profiles.Path)
	}
	return c.v
}

func (c *Config) Level() (zerolog.Level, error) {
	raw := strings.TrimSpace(c.Log.Level)
	if raw == "" {
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", raw, err)
	}
	return level, nil
}

// NewLogger builds the console logger used by every command. verbose forces
// debug output regardless of the configured level.
func (c *Config) NewLogger(out io.Writer, verbose bool) zerolog.Logger {
	level, err := c.Level()
	if err != nil {
		level = zerolog.WarnLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func expandHome(path string, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
