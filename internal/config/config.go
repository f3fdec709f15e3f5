// Package config loads memo settings from defaults, an optional YAML file and
// MEMO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. MEMO_GATEWAY__MODE.
const EnvPrefix = "MEMO"

type Config struct {
	DataDir   string  `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	ExportDir string  `mapstructure:"export_dir" yaml:"export_dir" validate:"required"`
	Notify    bool    `mapstructure:"notify" yaml:"notify"`
	Log       Log     `mapstructure:"log" yaml:"log"`
	Store     Store   `mapstructure:"store" yaml:"store"`
	Capture   Capture `mapstructure:"capture" yaml:"capture"`
	Gateway   Gateway `mapstructure:"gateway" yaml:"gateway"`
	Worker    Worker  `mapstructure:"worker" yaml:"worker"`
}

type Log struct {
	Path       string `mapstructure:"path" yaml:"path"`
	Level      string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" validate:"gte=0"`
}

type Store struct {
	Backend string `mapstructure:"backend" yaml:"backend" validate:"oneof=sqlite redis"`
	Path    string `mapstructure:"path" yaml:"path"`
	Redis   Redis  `mapstructure:"redis" yaml:"redis"`
}

type Redis struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	DB       int    `mapstructure:"db" yaml:"db" validate:"gte=0"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

type Capture struct {
	Backend       string        `mapstructure:"backend" yaml:"backend" validate:"oneof=system synthetic"`
	FlushInterval time.Duration `mapstructure:"flush_interval" yaml:"flush_interval" validate:"gt=0"`
	SampleRate    int           `mapstructure:"sample_rate" yaml:"sample_rate" validate:"gte=8000"`
	FFmpeg        FFmpeg        `mapstructure:"ffmpeg" yaml:"ffmpeg"`
}

type FFmpeg struct {
	Binary      string `mapstructure:"binary" yaml:"binary"`
	Format      string `mapstructure:"format" yaml:"format"`
	Front       string `mapstructure:"front" yaml:"front"`
	Rear        string `mapstructure:"rear" yaml:"rear"`
	AudioFormat string `mapstructure:"audio_format" yaml:"audio_format"`
	Audio       string `mapstructure:"audio" yaml:"audio"`
}

type Gateway struct {
	Mode     string        `mapstructure:"mode" yaml:"mode" validate:"oneof=simulated http"`
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint" validate:"required_if=Mode http,omitempty,url"`
	Token    string        `mapstructure:"token" yaml:"token,omitempty"`
	Delay    time.Duration `mapstructure:"delay" yaml:"delay" validate:"gte=0"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

type Worker struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval" validate:"gt=0"`
	MaxAge   time.Duration `mapstructure:"max_age" yaml:"max_age" validate:"gt=0"`
}

// Dir returns the default directory for the config file and local data.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "memo")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", Dir())
	v.SetDefault("export_dir", ".")
	v.SetDefault("notify", false)

	v.SetDefault("log__path", "")
	v.SetDefault("log__level", "info")
	v.SetDefault("log__max_size_mb", 10)
	v.SetDefault("log__max_backups", 3)

	v.SetDefault("store__backend", "sqlite")
	v.SetDefault("store__path", "")
	v.SetDefault("store__redis__addr", "localhost:6379")
	v.SetDefault("store__redis__password", "")
	v.SetDefault("store__redis__db", 0)
	v.SetDefault("store__redis__prefix", "memo:")

	v.SetDefault("capture__backend", "system")
	v.SetDefault("capture__flush_interval", "100ms")
	v.SetDefault("capture__sample_rate", 16000)
	v.SetDefault("capture__ffmpeg__binary", "ffmpeg")
	v.SetDefault("capture__ffmpeg__format", "v4l2")
	v.SetDefault("capture__ffmpeg__front", "/dev/video0")
	v.SetDefault("capture__ffmpeg__rear", "/dev/video1")
	v.SetDefault("capture__ffmpeg__audio_format", "alsa")
	v.SetDefault("capture__ffmpeg__audio", "default")

	v.SetDefault("gateway__mode", "simulated")
	v.SetDefault("gateway__endpoint", "")
	v.SetDefault("gateway__token", "")
	v.SetDefault("gateway__delay", "3s")
	v.SetDefault("gateway__timeout", "2m")

	v.SetDefault("worker__interval", "10m")
	v.SetDefault("worker__max_age", "24h")
}

// Load reads configuration. An empty path looks for config.yaml in Dir and
// tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.fillPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) fillPaths() {
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.DataDir, "memo.sqlite")
	}
	if c.Log.Path == "" {
		c.Log.Path = filepath.Join(c.DataDir, "memo.log")
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Store.Backend == "redis" && strings.TrimSpace(c.Store.Redis.Addr) == "" {
		return errors.New("invalid config: store.redis.addr is required for the redis backend")
	}
	return nil
}

// YAML renders the effective configuration. Secrets are left out.
func (c *Config) YAML() ([]byte, error) {
	redacted := *c
	redacted.Gateway.Token = ""
	redacted.Store.Redis.Password = ""
	return yaml.Marshal(&redacted)
}
