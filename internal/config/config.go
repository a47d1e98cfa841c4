// Package config loads runtime settings from configs/config.yml, a .env
// file and REGENX_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"regenx/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "REGENX"

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

type Config struct {
	Port      string
	Log       logger.Options
	DBPath    string
	StaticDir string
	Location  *time.Location
	// TrustedProxies may set X-Forwarded-For; empty means use the socket address.
	TrustedProxies []string

	Session   SessionConfig
	Redis     RedisConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Simulator SimulatorConfig
}

type SessionConfig struct {
	Backend    string
	TTL        time.Duration
	CookieName string
	Secret     string
	Secure     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	PerMinute int
}

type SimulatorConfig struct {
	Enabled  bool
	Interval time.Duration
	DeviceID string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("log.level", logger.InfoLevel)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.compress", false)
	v.SetDefault("db.path", "app.db")
	v.SetDefault("static.dir", "public")
	v.SetDefault("tracker.timezone", "Local")
	v.SetDefault("session.backend", SessionMemory)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookie_name", "regenx.sid")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.secure", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("trusted_proxies", []string{})
	v.SetDefault("rate_limit.per_minute", 30)
	v.SetDefault("simulator.enabled", false)
	v.SetDefault("simulator.interval", "1s")
	v.SetDefault("simulator.device_id", "laptop_setup_01")
}

// Load reads configuration. configDir may be empty to rely on defaults and env.
func Load(configDir string) (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configDir != "" {
		v.AddConfigPath(configDir) // configs/config.yml
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	loc, err := loadLocation(v.GetString("tracker.timezone"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port: v.GetString("port"),
		Log: logger.Options{
			Level:      v.GetString("log.level"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			Compress:   v.GetBool("log.compress"),
		},
		DBPath:    v.GetString("db.path"),
		StaticDir: v.GetString("static.dir"),
		Location:  loc,
		Session: SessionConfig{
			Backend:    strings.ToLower(strings.TrimSpace(v.GetString("session.backend"))),
			TTL:        v.GetDuration("session.ttl"),
			CookieName: v.GetString("session.cookie_name"),
			Secret:     v.GetString("session.secret"),
			Secure:     v.GetBool("session.secure"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		TrustedProxies: v.GetStringSlice("trusted_proxies"),
		CORS:           CORSConfig{AllowedOrigins: v.GetStringSlice("cors.allowed_origins")},
		RateLimit:      RateLimitConfig{PerMinute: v.GetInt("rate_limit.per_minute")},
		Simulator: SimulatorConfig{
			Enabled:  v.GetBool("simulator.enabled"),
			Interval: v.GetDuration("simulator.interval"),
			DeviceID: v.GetString("simulator.device_id"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case SessionMemory, SessionRedis:
	default:
		return fmt.Errorf("session.backend %q: must be %q or %q", c.Session.Backend, SessionMemory, SessionRedis)
	}
	if c.Session.Secret == "" {
		return errors.New("session.secret must be set")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL)
	}
	for _, o := range c.CORS.AllowedOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("cors.allowed_origins: %q must start with http:// or https://", o)
		}
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("trusted_proxies: %q is neither an IP nor a CIDR", p)
			}
		}
	}
	if c.Simulator.Enabled && c.Simulator.Interval <= 0 {
		return fmt.Errorf("simulator.interval must be positive, got %s", c.Simulator.Interval)
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("tracker.timezone %q: %w", name, err)
	}
	return loc, nil
}
