// Package config loads the service configuration from flags, environment
// variables prefixed FOLIO_ and an optional folio.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "FOLIO"

type Config struct {
	Addr     string `mapstructure:"addr"`
	DiagAddr string `mapstructure:"diag_addr"`

	// Routes prints the route docs and exits.
	Routes bool `mapstructure:"routes"`
	// Import loads a document export from this file and exits.
	Import string `mapstructure:"import"`

	Store   StoreConfig   `mapstructure:"store"`
	Likes   LikesConfig   `mapstructure:"likes"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Uploads UploadsConfig `mapstructure:"uploads"`
	Log     LogConfig     `mapstructure:"log"`
}

type StoreConfig struct {
	Driver  string `mapstructure:"driver"` // memory | postgres
	DSN     string `mapstructure:"dsn"`
	Migrate bool   `mapstructure:"migrate"`
}

type LikesConfig struct {
	Driver   string `mapstructure:"driver"` // memory | redis
	RedisURL string `mapstructure:"redis_url"`
}

// AuthConfig describes the single operator account. With no email set the
// admin surface stays closed.
type AuthConfig struct {
	Email        string        `mapstructure:"email"`
	PasswordHash string        `mapstructure:"password_hash"`
	Secret       string        `mapstructure:"secret"`
	Issuer       string        `mapstructure:"issuer"`
	TTL          time.Duration `mapstructure:"ttl"`
}

type UploadsConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load parses args (without the program name) and merges them over the
// config file, the environment and the defaults, in that order of
// precedence.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("folio", pflag.ContinueOnError)
	fs.String("addr", ":3333", "application address")
	fs.String("diag-addr", ":9999", "diagnostics address (metrics)")
	fs.Bool("routes", false, "generate router documentation")
	fs.String("import", "", "import a JSON document export and exit")
	cfgFile := fs.String("config", "", "config file (default ./folio.yaml)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if *cfgFile != "" {
		v.SetConfigFile(*cfgFile)
	} else {
		v.SetConfigName("folio")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for key, flag := range map[string]string{
		"addr":      "addr",
		"diag_addr": "diag-addr",
		"routes":    "routes",
		"import":    "import",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.migrate", true)

	v.SetDefault("likes.driver", "memory")
	v.SetDefault("likes.redis_url", "")

	v.SetDefault("auth.email", "")
	v.SetDefault("auth.password_hash", "")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "folio")
	v.SetDefault("auth.ttl", 12*time.Hour)

	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_bytes", 10<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

func validate(cfg *Config) error {
	switch cfg.Store.Driver {
	case "memory":
	case "postgres":
		if cfg.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", cfg.Store.Driver)
	}

	switch cfg.Likes.Driver {
	case "memory":
	case "redis":
		if cfg.Likes.RedisURL == "" {
			return errors.New("likes.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown likes.driver %q", cfg.Likes.Driver)
	}

	if cfg.Auth.Email != "" && cfg.Auth.PasswordHash == "" {
		return errors.New("auth.password_hash is required when auth.email is set")
	}
	if cfg.Auth.TTL <= 0 {
		return errors.New("auth.ttl must be positive")
	}
	if cfg.Uploads.MaxBytes <= 0 {
		return errors.New("uploads.max_bytes must be positive")
	}

	return nil
}
