package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	DB       string         `mapstructure:"db"`
	Store    StoreConfig    `mapstructure:"store"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Twitter  TwitterConfig  `mapstructure:"twitter"`
	LinkedIn LinkedInConfig `mapstructure:"linkedin"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Export   ExportConfig   `mapstructure:"export"`
	Web      WebConfig      `mapstructure:"web"`
	Capture  CaptureConfig  `mapstructure:"capture"`
}

type StoreConfig struct {
	Backend string      `mapstructure:"backend"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type TwitterConfig struct {
	PageSize  int           `mapstructure:"page_size"`
	MaxPages  int           `mapstructure:"max_pages"`
	PageDelay time.Duration `mapstructure:"page_delay"`
}

type LinkedInConfig struct {
	PageSize   int           `mapstructure:"page_size"`
	MaxPages   int           `mapstructure:"max_pages"`
	MaxRetries int           `mapstructure:"max_retries"`
	PageDelay  time.Duration `mapstructure:"page_delay"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type BackendConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type WebConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type CaptureConfig struct {
	ChromePath  string        `mapstructure:"chrome_path"`
	UserDataDir string        `mapstructure:"user_data_dir"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// ErrUnknownStoreBackend is returned when store.backend is neither sqlite nor redis.
var ErrUnknownStoreBackend = errors.New("unknown store backend")

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"db":          "db",
	"store":       "store.backend",
	"redis-addr":  "store.redis.addr",
	"host":        "web.host",
	"port":        "web.port",
	"export-dir":  "export.dir",
	"backend-url": "backend.url",
	"chrome-path": "capture.chrome_path",
	"user-data":   "capture.user_data_dir",
	"timeout":     "capture.timeout",
}

func setDefaults(v *viper.Viper, dataDir string) {
	v.SetDefault("db", "markly.db")
	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("twitter.page_size", 50)
	v.SetDefault("twitter.max_pages", 10)
	v.SetDefault("twitter.page_delay", 500*time.Millisecond)
	v.SetDefault("linkedin.page_size", 10)
	v.SetDefault("linkedin.max_pages", 10)
	v.SetDefault("linkedin.max_retries", 3)
	v.SetDefault("linkedin.page_delay", 500*time.Millisecond)
	v.SetDefault("linkedin.retry_delay", time.Second)
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.token", "")
	v.SetDefault("export.dir", ".")
	v.SetDefault("web.host", "localhost")
	v.SetDefault("web.port", 8080)
	v.SetDefault("capture.chrome_path", "")
	v.SetDefault("capture.user_data_dir", "")
	v.SetDefault("capture.timeout", 5*time.Minute)
	if dataDir != "" {
		v.SetDefault("capture.user_data_dir", filepath.Join(dataDir, "chrome-profile"))
	}
}

// Load builds the configuration from, in order of precedence: changed
// flags, MARKLY_* environment variables (a .env file in the working
// directory is loaded first), the config file, then defaults. path names
// an explicit config file; when empty, config.yaml in ~/.markly is used
// if present.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	dataDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".markly")
	}
	setDefaults(v, dataDir)

	v.SetEnvPrefix("MARKLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else if dataDir != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dataDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreBackend, c.Store.Backend)
	}
	if c.Twitter.PageSize < 50 {
		c.Twitter.PageSize = 50
	}
	if c.Twitter.PageSize > 100 {
		c.Twitter.PageSize = 100
	}
	return nil
}

// Addr is the host:port the web server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Web.Host, strconv.Itoa(c.Web.Port))
}
