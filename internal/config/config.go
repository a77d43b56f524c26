package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// this is a pointer so that if someone attempts to use it before loading it will
// panic and force them to load it first.
// it is also private so that it cannot be modified after loading.
var _loaded *Config

// Storage drivers understood by the server
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config is the main configuration structure
type Config struct {
	Common Common `yaml:"common"`
}

// Load loads the configuration following proper precedence: defaults → config file → .env → environment variables
func Load() {
	// Start with defaults
	cfg := defaultConfig
	_loaded = &cfg

	configFile := os.Getenv("USERHUB_CONFIG_FILE")
	if configFile == "" {
		configFile = "userhub.yaml"
	}

	if err := LoadFromFile(configFile); err != nil {
		log.Printf("Failed to load config file: %v, using defaults", err)
	} else {
		log.Printf("Successfully loaded config from file: %s", configFile)
	}

	// .env files only fill variables that are not already set in the environment
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	// Apply environment variable overrides (highest priority)
	ApplyEnvOverrides()
}

func LoadDefault() {
	config := defaultConfig
	_loaded = &config
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := defaultConfig

	// Merge YAML values over defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config file: %w", err)
	}

	_loaded = &cfg
	return nil
}

// Validate checks the values that would otherwise fail late at startup
func (c *Config) Validate() error {
	switch c.Common.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q",
			StorageDriverPostgres, StorageDriverMemory, c.Common.Storage.Driver)
	}

	if c.Common.Http.Port <= 0 || c.Common.Http.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.Common.Http.Port)
	}

	if c.Common.Http.MaxRequestSize <= 0 {
		return fmt.Errorf("http.max_request_size must be a positive integer")
	}

	return nil
}

// set sane defaults for all of the config options. when loading the config from
// the file, any options that are not set will be set to these defaults.
var defaultConfig = Config{
	Common: Common{
		Log: logConfig{
			Level:  "info",
			Format: "json",
		},
		Http: httpConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxRequestSize:  1048576,
			ShutdownTimeout: 30,
		},
		Postgres: postgresConfig{
			User:               "postgres",
			Password:           "postgres",
			Host:               "localhost",
			Port:               5432,
			Database:           "userhub",
			ReadTimeout:        30,
			WriteTimeout:       30,
			MaxOpenConnections: 10,
			ConnectRetries:     5,
		},
		Storage: storageConfig{
			Driver: StorageDriverPostgres,
		},
		Seed: seedConfig{
			Enabled: true,
		},
	},
}

type Common struct {
	Log      logConfig      `yaml:"log"`
	Http     httpConfig     `yaml:"http"`
	Postgres postgresConfig `yaml:"postgres"`
	Storage  storageConfig  `yaml:"storage"`
	Seed     seedConfig     `yaml:"seed"`
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type httpConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	MaxRequestSize  int64  `yaml:"max_request_size"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"` // seconds
}

func (c httpConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type postgresConfig struct {
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Database           string `yaml:"database"`
	ReadTimeout        int    `yaml:"read_timeout"`  // seconds
	WriteTimeout       int    `yaml:"write_timeout"` // seconds
	MaxOpenConnections int    `yaml:"max_open_connections"`
	ConnectRetries     int    `yaml:"connect_retries"`
}

func (c postgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		url.QueryEscape(c.Database),
	)
}

type storageConfig struct {
	Driver string `yaml:"driver"` // "postgres" or "memory"
}

type seedConfig struct {
	Enabled bool `yaml:"enabled"` // create the sample users on startup
}

// there should be a getter for each top level field in the config struct.
// these getters will panic if the config has not been loaded.

func Logger() logConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Log
}

func Http() httpConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Http
}

func Postgres() postgresConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Postgres
}

func Storage() storageConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Storage
}

func Seed() seedConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Seed
}

func Get() *Config {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded
}

func ApplyEnvOverrides() {
	if _loaded == nil {
		return
	}

	if level := os.Getenv("USERHUB_LOG_LEVEL"); level != "" {
		_loaded.Common.Log.Level = level
	}
	if format := os.Getenv("USERHUB_LOG_FORMAT"); format != "" {
		_loaded.Common.Log.Format = format
	}

	if httpHost := os.Getenv("USERHUB_HTTP_HOST"); httpHost != "" {
		_loaded.Common.Http.Host = httpHost
	}
	if httpPort := os.Getenv("USERHUB_HTTP_PORT"); httpPort != "" {
		if port, err := strconv.Atoi(httpPort); err == nil {
			_loaded.Common.Http.Port = port
		}
	}

	if dbHost := os.Getenv("USERHUB_DB_HOST"); dbHost != "" {
		_loaded.Common.Postgres.Host = dbHost
	}
	if dbPort := os.Getenv("USERHUB_DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			_loaded.Common.Postgres.Port = port
		}
	}
	if dbUser := os.Getenv("USERHUB_DB_USER"); dbUser != "" {
		_loaded.Common.Postgres.User = dbUser
	}
	if dbPassword := os.Getenv("USERHUB_DB_PASSWORD"); dbPassword != "" {
		_loaded.Common.Postgres.Password = dbPassword
	}
	if dbName := os.Getenv("USERHUB_DB_NAME"); dbName != "" {
		_loaded.Common.Postgres.Database = dbName
	}

	if driver := os.Getenv("USERHUB_STORAGE_DRIVER"); driver != "" {
		_loaded.Common.Storage.Driver = driver
	}

	if seedEnabled := os.Getenv("USERHUB_SEED_ENABLED"); seedEnabled != "" {
		if enabled, err := strconv.ParseBool(seedEnabled); err == nil {
			_loaded.Common.Seed.Enabled = enabled
		}
	}
}
