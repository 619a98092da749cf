package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAPIBaseURL is the remote marketplace API
const DefaultAPIBaseURL = "https://finalyear-backend.onrender.com/api/v1"

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type AppConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	GinMode    string `yaml:"gin_mode"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StorageConfig struct {
	Driver    string      `yaml:"driver"`
	Path      string      `yaml:"path"`
	DSN       string      `yaml:"dsn"`
	KeyPrefix string      `yaml:"key_prefix"`
	Timeout   string      `yaml:"timeout"`
	Redis     RedisConfig `yaml:"redis"`
}

type ConfigFile struct {
	App     AppConfig     `yaml:"app"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
}

type Config struct {
	ListenAddr     string
	GinMode        string
	LogLevel       string
	LogFormat      string
	APIBaseURL     string
	APITimeout     time.Duration
	StorageDriver  string
	StoragePath    string
	StorageDSN     string
	KeyPrefix      string
	StorageTimeout time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Defaults returns the configuration used when no file is present
func Defaults() *ConfigFile {
	return &ConfigFile{
		App: AppConfig{
			ListenAddr: "127.0.0.1:8089",
			GinMode:    "release",
			LogLevel:   "info",
			LogFormat:  "text",
		},
		API: APIConfig{
			BaseURL: DefaultAPIBaseURL,
			Timeout: "30s",
		},
		Storage: StorageConfig{
			Driver:    DriverSQLite,
			Path:      "data/device.db",
			KeyPrefix: "dairyshell:",
			Timeout:   "5s",
			Redis:     RedisConfig{Addr: "127.0.0.1:6379"},
		},
	}
}

// Load reads .env, the YAML config file and environment overrides.
// The file path comes from DAIRY_CONFIG (default config/config.yml);
// a missing file means defaults.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	configFile, err := loadConfigFile(env("DAIRY_CONFIG", "config/config.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return build(configFile)
}

func build(f *ConfigFile) (*Config, error) {
	apiTimeout, err := time.ParseDuration(env("DAIRY_API_TIMEOUT", f.API.Timeout))
	if err != nil {
		return nil, fmt.Errorf("invalid API timeout: %w", err)
	}

	storageTimeout, err := time.ParseDuration(env("DAIRY_STORAGE_TIMEOUT", f.Storage.Timeout))
	if err != nil {
		return nil, fmt.Errorf("invalid storage timeout: %w", err)
	}

	redisDB := f.Storage.Redis.DB
	if v := os.Getenv("DAIRY_REDIS_DB"); v != "" {
		if redisDB, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid DAIRY_REDIS_DB: %w", err)
		}
	}

	cfg := &Config{
		ListenAddr:     env("DAIRY_LISTEN_ADDR", f.App.ListenAddr),
		GinMode:        env("GIN_MODE", f.App.GinMode),
		LogLevel:       env("DAIRY_LOG_LEVEL", f.App.LogLevel),
		LogFormat:      env("DAIRY_LOG_FORMAT", f.App.LogFormat),
		APIBaseURL:     env("DAIRY_API_BASE_URL", f.API.BaseURL),
		APITimeout:     apiTimeout,
		StorageDriver:  env("DAIRY_STORAGE_DRIVER", f.Storage.Driver),
		StoragePath:    env("DAIRY_STORAGE_PATH", f.Storage.Path),
		StorageDSN:     env("DAIRY_STORAGE_DSN", f.Storage.DSN),
		KeyPrefix:      env("DAIRY_KEY_PREFIX", f.Storage.KeyPrefix),
		StorageTimeout: storageTimeout,
		RedisAddr:      env("DAIRY_REDIS_ADDR", f.Storage.Redis.Addr),
		RedisPassword:  env("DAIRY_REDIS_PASSWORD", f.Storage.Redis.Password),
		RedisDB:        redisDB,
	}

	switch cfg.StorageDriver {
	case DriverSQLite, DriverPostgres, DriverRedis:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if cfg.StorageDriver == DriverPostgres && cfg.StorageDSN == "" {
		return nil, errors.New("storage dsn is required for the postgres driver")
	}
	return cfg, nil
}

// loadConfigFile overlays the YAML file on top of the defaults
func loadConfigFile(path string) (*ConfigFile, error) {
	config := Defaults()

	bytes, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(bytes, config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}
	return config, nil
}
