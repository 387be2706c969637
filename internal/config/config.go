package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

const badgerDb = "badger"

type Config struct {
	Datadir  string `mapstructure:"DATADIR" envDefault:"flowpay" envInfo:"Data directory for flowpay state"`
	DbType   string `mapstructure:"DB_TYPE" envDefault:"badger" envInfo:"Database backend: badger"`
	HTTPPort uint32 `mapstructure:"HTTP_PORT" envDefault:"7010" envInfo:"HTTP server port"`
	LogLevel uint32 `mapstructure:"LOG_LEVEL" envDefault:"4" envInfo:"Log verbosity (higher = more verbose)"`

	BackendURL     string `mapstructure:"BACKEND_URL" envDefault:"" envInfo:"Payments backend base URL (e.g., https://pay.example.com)"`
	APIPath        string `mapstructure:"API_PATH" envDefault:"/api" envInfo:"API path prefix on the backend"`
	CSRFPath       string `mapstructure:"CSRF_PATH" envDefault:"/api/dashboard/v1/csrf-cookie" envInfo:"CSRF cookie endpoint on the backend"`
	RequestTimeout uint32 `mapstructure:"REQUEST_TIMEOUT" envDefault:"15" envInfo:"Backend request timeout in seconds"`

	PollIntervalSec uint32 `mapstructure:"POLL_INTERVAL" envDefault:"2" envInfo:"Payment status poll interval in seconds"`
	SettleDelayMs   uint32 `mapstructure:"SETTLE_DELAY" envDefault:"1000" envInfo:"Cache invalidation settle delay in milliseconds"`

	EnableFeedback bool   `mapstructure:"ENABLE_FEEDBACK" envDefault:"false" envInfo:"Show the support/feedback entry in the console menu"`
	ShowBranding   bool   `mapstructure:"SHOW_BRANDING" envDefault:"true" envInfo:"Show branding in the checkout footer"`
	SupportContact string `mapstructure:"SUPPORT_CONTACT" envDefault:"" envInfo:"Support contact shown on checkout error screens"`
	AnalyticsKey   string `mapstructure:"ANALYTICS_KEY" envDefault:"" envInfo:"Product analytics API key (analytics disabled when empty)"`
	AnalyticsHost  string `mapstructure:"ANALYTICS_HOST" envDefault:"" envInfo:"Product analytics endpoint"`
	SentryDSN      string `mapstructure:"SENTRY_DSN" envDefault:"" envInfo:"Sentry DSN (error reporting disabled when empty)"`
}

func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("FLOWPAY")
	v.AutomaticEnv()

	if err := setDefaultConfig(v); err != nil {
		return nil, fmt.Errorf("error setting default config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %v", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	if err := config.initDatadir(); err != nil {
		return nil, fmt.Errorf("error initializing data directory: %w", err)
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.DbType != badgerDb {
		return fmt.Errorf("unsupported db type: %s", c.DbType)
	}

	if c.BackendURL == "" {
		return fmt.Errorf("missing backend URL, set FLOWPAY_BACKEND_URL")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend URL: %s", c.BackendURL)
	}

	if c.PollIntervalSec == 0 {
		return fmt.Errorf("poll interval must be at least 1 second")
	}
	return nil
}

func (c *Config) initDatadir() error {
	if c.Datadir == "flowpay" {
		c.Datadir = appDatadir("flowpay")
	}
	return makeDirectoryIfNotExists(c.Datadir)
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func setDefaultConfig(v *viper.Viper) error {
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		key := f.Tag.Get("mapstructure")
		def := f.Tag.Get("envDefault")
		if def != "" {
			v.SetDefault(key, def)
		}
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("error binding env variable for key %s: %w", key, err)
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func appDatadir(appName string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return appName
	}
	return filepath.Join(homeDir, "."+appName)
}
