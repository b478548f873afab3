package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Homepage  HomepageConfig
	Database  DatabaseConfig
	API       APIConfig
	Cache     CacheConfig
	Kafka     KafkaConfig
	Security  SecurityConfig
	Websocket WebsocketConfig
}

type ServerConfig struct {
	Port string
}

type LoggingConfig struct {
	Level     string
	Format    string
	Directory string
}

type HomepageConfig struct {
	SiteID          string
	FreshnessWindow time.Duration
}

// DatabaseConfig is optional; an empty URL removes the database from the chain.
type DatabaseConfig struct {
	URL     string
	Timeout time.Duration
}

// APIConfig is optional; an empty BaseURL removes the remote API from the chain.
type APIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type CacheConfig struct {
	Directory  string
	QuotaBytes int64
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	// GroupID is a prefix; each process consumes in its own group under it.
	GroupID string
}

type SecurityConfig struct {
	JWTSecret    string
	JWTPublicKey string
	AdminRole    string
}

type WebsocketConfig struct {
	SendBuffer int
}

// env lists every setting with the environment variables it is read from, first match wins.
var env = map[string][]string{
	"server.port":           {"SERVER_PORT", "PORT"},
	"logging.level":         {"LOG_LEVEL"},
	"logging.format":        {"LOG_FORMAT"},
	"logging.directory":     {"LOG_DIRECTORY"},
	"homepage.siteid":       {"SITE_ID"},
	"homepage.freshness":    {"FRESHNESS_WINDOW"},
	"database.url":          {"DATABASE_URL"},
	"database.timeout":      {"DATABASE_TIMEOUT"},
	"api.baseurl":           {"HOMEPAGE_API_URL"},
	"api.token":             {"HOMEPAGE_API_TOKEN"},
	"api.timeout":           {"HOMEPAGE_API_TIMEOUT"},
	"cache.directory":       {"CACHE_DIRECTORY"},
	"cache.quota":           {"CACHE_QUOTA_BYTES"},
	"kafka.brokers":         {"KAFKA_BROKERS", "KAFKA_BROKER"},
	"kafka.topic":           {"KAFKA_TOPIC"},
	"kafka.groupid":         {"KAFKA_GROUP_ID"},
	"security.jwtsecret":    {"JWT_SECRET"},
	"security.jwtpublickey": {"JWT_PUBLIC_KEY"},
	"security.adminrole":    {"ADMIN_ROLE"},
	"websocket.sendbuffer":  {"WS_SEND_BUFFER"},
}

func defaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.directory", "./logs")
	v.SetDefault("homepage.siteid", "default")
	v.SetDefault("homepage.freshness", "3s")
	v.SetDefault("database.timeout", "5s")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("cache.directory", "./data/homepage-cache")
	v.SetDefault("cache.quota", 5<<20)
	v.SetDefault("kafka.topic", "homepage.config.changed")
	v.SetDefault("kafka.groupid", "")
	v.SetDefault("security.adminrole", "admin")
	v.SetDefault("websocket.sendbuffer", 16)
}

// Load reads configuration from the environment. Call godotenv first to honour a .env file.
func Load() (*Config, error) {
	v := viper.New()
	defaults(v)
	for key, names := range env {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	freshness, err := duration(v, "homepage.freshness")
	if err != nil {
		return nil, err
	}
	dbTimeout, err := duration(v, "database.timeout")
	if err != nil {
		return nil, err
	}
	apiTimeout, err := duration(v, "api.timeout")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{Port: strings.TrimSpace(v.GetString("server.port"))},
		Logging: LoggingConfig{
			Level:     v.GetString("logging.level"),
			Format:    v.GetString("logging.format"),
			Directory: v.GetString("logging.directory"),
		},
		Homepage: HomepageConfig{
			SiteID:          strings.TrimSpace(v.GetString("homepage.siteid")),
			FreshnessWindow: freshness,
		},
		Database: DatabaseConfig{URL: strings.TrimSpace(v.GetString("database.url")), Timeout: dbTimeout},
		API: APIConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("api.baseurl")), "/"),
			Token:   strings.TrimSpace(v.GetString("api.token")),
			Timeout: apiTimeout,
		},
		Cache: CacheConfig{
			Directory:  v.GetString("cache.directory"),
			QuotaBytes: v.GetInt64("cache.quota"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("kafka.brokers")),
			Topic:   strings.TrimSpace(v.GetString("kafka.topic")),
			GroupID: strings.TrimSpace(v.GetString("kafka.groupid")),
		},
		Security: SecurityConfig{
			JWTSecret:    v.GetString("security.jwtsecret"),
			JWTPublicKey: strings.ReplaceAll(v.GetString("security.jwtpublickey"), `\n`, "\n"),
			AdminRole:    strings.TrimSpace(v.GetString("security.adminrole")),
		},
		Websocket: WebsocketConfig{SendBuffer: v.GetInt("websocket.sendbuffer")},
	}
	if cfg.Homepage.SiteID == "" {
		cfg.Homepage.SiteID = "default"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "homepage-" + cfg.Homepage.SiteID
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT must not be empty"))
	}
	if c.Homepage.FreshnessWindow < 0 {
		errs = append(errs, errors.New("FRESHNESS_WINDOW must not be negative"))
	}
	if c.Cache.QuotaBytes < 0 {
		errs = append(errs, errors.New("CACHE_QUOTA_BYTES must not be negative"))
	}
	if c.Websocket.SendBuffer <= 0 {
		errs = append(errs, errors.New("WS_SEND_BUFFER must be positive"))
	}
	return errors.Join(errs...)
}

// duration accepts Go durations ("750ms") and bare seconds ("3").
func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	d, err := time.ParseDuration(raw + "s")
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
