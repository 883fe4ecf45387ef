package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"

	envPrefix = "HAZIRA"
)

// Config holds the configuration settings for the application.
type Config struct {
	Env            string         // Env is the current environment: local, development, production.
	Location       *time.Location // Location decides which calendar day is "today".
	TimeFormat     string         // TimeFormat is the Go layout of attendance time stamps.
	Telegram       TelegramConfig
	Storage        StorageConfig
	Database       PostgresConfig
	Redis          RedisConfig
	Gemini         GeminiConfig
	Digest         DigestConfig
	MonitoringPort int
}

// TelegramConfig holds the bot settings.
type TelegramConfig struct {
	Token         string        // Token is an unique telegram bot token
	PollerTimeout time.Duration // PollerTimeout is the long polling timeout
	OwnerID       int64         // OwnerID restricts the bot to one chat when set
	Language      string        // Language is the default interface language
}

// StorageConfig selects where the state document is kept.
type StorageConfig struct {
	Driver   string // Driver is either "file" or "postgres"
	Key      string // Key names the state document
	FilePath string // FilePath is the state file of the file driver
	SeedDemo bool   // SeedDemo fills an empty roster with demo workers
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// RedisConfig holds the summary cache settings. An empty address disables the cache.
type RedisConfig struct {
	Addr string
	TTL  time.Duration
}

// GeminiConfig holds the text generation settings. An empty key disables generation.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// DigestConfig holds the daily digest schedule. An empty schedule disables the digest.
type DigestConfig struct {
	Schedule string
}

// MustLoad loads the configuration from the YAML file at CONFIG_PATH, with
// HAZIRA_ prefixed environment variables taking precedence. Values from a
// .env file in the working directory are loaded into the environment first.
func MustLoad() *Config {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		panic("config path is empty")
	}

	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		panic("config error: " + err.Error())
	}

	return cfg
}

// Load reads the configuration file at path and applies defaults and environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	location, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", v.GetString("timezone"), err)
	}

	cfg := &Config{
		Env:        v.GetString("env"),
		Location:   location,
		TimeFormat: v.GetString("time_format"),
		Telegram: TelegramConfig{
			Token:         v.GetString("telegram.token"),
			PollerTimeout: v.GetDuration("telegram.timeout"),
			OwnerID:       v.GetInt64("telegram.owner_id"),
			Language:      v.GetString("telegram.language"),
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(v.GetString("storage.driver")),
			Key:      v.GetString("storage.key"),
			FilePath: v.GetString("storage.file_path"),
			SeedDemo: v.GetBool("storage.seed_demo"),
		},
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.db_name"),
		},
		Redis: RedisConfig{
			Addr: v.GetString("redis.addr"),
			TTL:  v.GetDuration("redis.ttl"),
		},
		Gemini: GeminiConfig{
			APIKey:      v.GetString("gemini.api_key"),
			Model:       v.GetString("gemini.model"),
			Temperature: float32(v.GetFloat64("gemini.temperature")),
			Timeout:     v.GetDuration("gemini.timeout"),
		},
		Digest: DigestConfig{
			Schedule: v.GetString("digest.schedule"),
		},
		MonitoringPort: v.GetInt("monitoring.port"),
	}

	if err = cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defPollerTimeout := 10

	v.SetDefault("env", "production")
	v.SetDefault("timezone", "Asia/Dhaka")
	v.SetDefault("time_format", "03:04 PM")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.timeout", time.Duration(defPollerTimeout*int(time.Second)))
	v.SetDefault("telegram.owner_id", 0)
	v.SetDefault("telegram.language", "bn")
	v.SetDefault("storage.driver", StorageFile)
	v.SetDefault("storage.key", "hazira_khata_data")
	v.SetDefault("storage.file_path", "data/hazira_khata.json")
	v.SetDefault("storage.seed_demo", true)
	v.SetDefault("postgres.host", "")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db_name", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.ttl", time.Hour)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.timeout", 20*time.Second)
	v.SetDefault("digest.schedule", "0 20 * * *")
	v.SetDefault("monitoring.port", 9090)
}

func (c *Config) validate() error {
	var errs []error

	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}

	switch c.Storage.Driver {
	case StorageFile:
		if c.Storage.FilePath == "" {
			errs = append(errs, errors.New("storage.file_path is required for the file driver"))
		}
	case StoragePostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("postgres.host and postgres.db_name are required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	if c.Storage.Key == "" {
		errs = append(errs, errors.New("storage.key must not be empty"))
	}

	return errors.Join(errs...)
}
