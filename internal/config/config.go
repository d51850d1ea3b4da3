// Package config loads server and client settings from config.toml, .env
// and MARKET_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Mongo     MongoConfig
	JWT       JWTConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	TLS       TLSConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Log       LogConfig
	Client    ClientConfig
}

type AppConfig struct {
	Name       string
	Env        string
	Port       string // gRPC listen port
	HealthPort string // gin health endpoints
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// JWTConfig supports either a single Secret or a rotation set in Keys
// ("kid:secret,kid2:secret2") signed with ActiveKid.
type JWTConfig struct {
	Secret     string
	Keys       string
	ActiveKid  string
	Expiration time.Duration
}

type AuthConfig struct {
	EmailDomain       string
	MinPasswordLength int
}

// RateLimitConfig applies to Register and Login only.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	CleanupInterval   time.Duration
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
	Require  bool
}

// RedisConfig is optional; an empty Addr keeps the blacklist and the change
// feed in process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// StorageConfig points at an S3 compatible bucket for listing images and
// avatars. Uploads are disabled when Bucket is empty.
type StorageConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	UsePathStyle  bool
	PresignTTL    time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// ClientConfig is read by marketctl.
type ClientConfig struct {
	Addr      string
	Insecure  bool
	CachePath string
	Timeout   time.Duration
}

// Load reads configuration. Priority, highest first:
// MARKET_* environment variables (plus the legacy MONGODB_URI, JWT_SECRET,
// JWT_KEYS, JWT_ACTIVE_KID and PORT names), .env, config.toml, built-in
// defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".campus-market"))
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("MARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("mongo.uri", "MARKET_MONGO_URI", "MONGODB_URI")
	_ = v.BindEnv("jwt.secret", "MARKET_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("jwt.keys", "MARKET_JWT_KEYS", "JWT_KEYS")
	_ = v.BindEnv("jwt.active_kid", "MARKET_JWT_ACTIVE_KID", "JWT_ACTIVE_KID")
	_ = v.BindEnv("app.port", "MARKET_APP_PORT", "PORT")

	cfg := &Config{
		App: AppConfig{
			Name:       v.GetString("app.name"),
			Env:        v.GetString("app.env"),
			Port:       v.GetString("app.port"),
			HealthPort: v.GetString("app.health_port"),
		},
		Mongo: MongoConfig{
			URI:            v.GetString("mongo.uri"),
			Database:       v.GetString("mongo.database"),
			ConnectTimeout: v.GetDuration("mongo.connect_timeout"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Keys:       v.GetString("jwt.keys"),
			ActiveKid:  v.GetString("jwt.active_kid"),
			Expiration: v.GetDuration("jwt.expiration"),
		},
		Auth: AuthConfig{
			EmailDomain:       v.GetString("auth.email_domain"),
			MinPasswordLength: v.GetInt("auth.min_password_length"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: v.GetInt("rate_limit.requests_per_minute"),
			Burst:             v.GetInt("rate_limit.burst"),
			CleanupInterval:   v.GetDuration("rate_limit.cleanup_interval"),
		},
		TLS: TLSConfig{
			CertFile: v.GetString("tls.cert_file"),
			KeyFile:  v.GetString("tls.key_file"),
			Require:  v.GetBool("tls.require"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Channel:  v.GetString("redis.channel"),
		},
		Storage: StorageConfig{
			Bucket:        v.GetString("storage.bucket"),
			Region:        v.GetString("storage.region"),
			Endpoint:      v.GetString("storage.endpoint"),
			AccessKey:     v.GetString("storage.access_key"),
			SecretKey:     v.GetString("storage.secret_key"),
			PublicBaseURL: v.GetString("storage.public_base_url"),
			UsePathStyle:  v.GetBool("storage.use_path_style"),
			PresignTTL:    v.GetDuration("storage.presign_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Client: ClientConfig{
			Addr:      v.GetString("client.addr"),
			Insecure:  v.GetBool("client.insecure"),
			CachePath: v.GetString("client.cache_path"),
			Timeout:   v.GetDuration("client.timeout"),
		},
	}

	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "campus-market"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "50051"
	}
	if cfg.App.HealthPort == "" {
		cfg.App.HealthPort = "8081"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "campus_market"
	}
	if cfg.Mongo.ConnectTimeout == 0 {
		cfg.Mongo.ConnectTimeout = 10 * time.Second
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = 24 * time.Hour
	}
	if cfg.Auth.EmailDomain == "" {
		cfg.Auth.EmailDomain = "@rguktrkv.ac.in"
	}
	if cfg.Auth.MinPasswordLength == 0 {
		cfg.Auth.MinPasswordLength = 6
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 10
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 3
	}
	if cfg.RateLimit.CleanupInterval == 0 {
		cfg.RateLimit.CleanupInterval = time.Minute
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "market:changes"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignTTL == 0 {
		cfg.Storage.PresignTTL = 15 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Client.Addr == "" {
		cfg.Client.Addr = "localhost:" + cfg.App.Port
	}
	if cfg.Client.CachePath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Client.CachePath = filepath.Join(home, ".campus-market", "cache.db")
		}
	}
	if cfg.Client.Timeout == 0 {
		cfg.Client.Timeout = 10 * time.Second
	}
}

func (c *Config) validate() error {
	if c.Auth.MinPasswordLength < 1 {
		return fmt.Errorf("auth.min_password_length must be positive")
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values cannot be negative")
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return fmt.Errorf("tls.cert_file and tls.key_file must be set together")
	}
	return nil
}

// ValidateServer checks the settings only the API server needs.
func (c *Config) ValidateServer() error {
	if c.Mongo.URI == "" {
		return errors.New("mongo.uri (MONGODB_URI) must be set")
	}
	if c.JWT.Secret == "" && c.JWT.Keys == "" {
		return errors.New("either jwt.secret or jwt.keys must be set")
	}
	if c.JWT.Keys != "" {
		keys, err := ParseJWTKeys(c.JWT.Keys)
		if err != nil {
			return err
		}
		if _, ok := keys[c.JWT.ActiveKid]; !ok {
			return fmt.Errorf("jwt.active_kid %q is not present in jwt.keys", c.JWT.ActiveKid)
		}
	}
	if c.TLS.Require && c.TLS.CertFile == "" {
		return errors.New("tls.require is true but tls.cert_file/tls.key_file are not configured")
	}
	if c.App.Env == "production" && c.JWT.Keys == "" && len(c.JWT.Secret) < 32 {
		return errors.New("jwt.secret must be at least 32 characters in production")
	}
	return nil
}

// ParseJWTKeys parses "kid:secret,kid2:secret2" into a map.
func ParseJWTKeys(s string) (map[string]string, error) {
	keys := map[string]string{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid jwt.keys entry: %s", p)
		}
		keys[parts[0]] = parts[1]
	}
	if len(keys) == 0 {
		return nil, errors.New("jwt.keys is empty")
	}
	return keys, nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
