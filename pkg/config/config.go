package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path" required:"true"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`

	ServerHost string `koanf:"server_host"`
	ServerPort int    `koanf:"server_port"`

	TokenTTL              time.Duration `koanf:"token_ttl"`
	ResetTokenTTL         time.Duration `koanf:"reset_token_ttl"`
	ThrottleRatePerMinute int           `koanf:"throttle_rate_per_minute"`
	ThrottleBurst         int           `koanf:"throttle_burst"`

	LoanPeriod time.Duration `koanf:"loan_period"`

	// MaintenanceInterval is how often expired tokens are purged and overdue
	// loans reported. Zero disables the worker.
	MaintenanceInterval time.Duration `koanf:"maintenance_interval"`

	SMTPHost         string `koanf:"smtp_host"`
	SMTPPort         int    `koanf:"smtp_port"`
	SMTPUsername     string `koanf:"smtp_username"`
	SMTPPassword     string `koanf:"smtp_password"`
	SMTPTLS          bool   `koanf:"smtp_tls"`
	MailFrom         string `koanf:"mail_from"`
	PasswordResetURL string `koanf:"password_reset_url"`
}

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "config.yaml"
	dotenvFileENV     = "DOTENV_FILE"
	defaultDotenvFile = ".env"
)

func defaults() *Config {
	return &Config{
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        5,
		DatabaseBusyTimeout:       5 * time.Second,
		ServerHost:                "0.0.0.0",
		ServerPort:                8000,
		TokenTTL:                  7 * 24 * time.Hour,
		ResetTokenTTL:             time.Hour,
		ThrottleRatePerMinute:     10,
		ThrottleBurst:             5,
		LoanPeriod:                21 * 24 * time.Hour,
		MaintenanceInterval:       time.Hour,
		SMTPPort:                  587,
		SMTPTLS:                   true,
		MailFrom:                  "library@localhost",
		PasswordResetURL:          "http://localhost:8000/api/auth/password_reset_confirm/%s",
	}
}

// New loads the configuration. Values are layered as defaults, then the YAML
// file named by CONFIG_FILE, then environment variables (optionally seeded
// from a .env file).
func New() (*Config, error) {
	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", configFile)
		}
	}

	dotenvFile := os.Getenv(dotenvFileENV)
	if dotenvFile == "" {
		dotenvFile = defaultDotenvFile
	}
	if _, err := os.Stat(dotenvFile); err == nil {
		if err := godotenv.Load(dotenvFile); err != nil {
			return nil, errors.Wrapf(err, "failed to load env file %s", dotenvFile)
		}
	}

	known := knownKeys()
	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(key)
		if _, ok := known[key]; !ok {
			return "", nil
		}
		// An empty env var shouldn't mask the file value.
		if value == "" {
			return "", nil
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := checkRequired(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a configuration backed by an in-memory database.
func NewForTest() *Config {
	cfg := defaults()
	cfg.DatabaseFilePath = ":memory:"
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
	cfg.ServerHost = "127.0.0.1"
	cfg.ServerPort = 0
	cfg.MaintenanceInterval = 0
	return cfg
}

func knownKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		keys[keyFor(t.Field(i))] = struct{}{}
	}
	return keys
}

func keyFor(f reflect.StructField) string {
	if tag := f.Tag.Get("koanf"); tag != "" {
		return tag
	}
	return toSnakeCase(f.Name)
}

func checkRequired(cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	missing := []string{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Tag.Get("required") != "true" {
			continue
		}
		if v.Field(i).IsZero() {
			key := keyFor(f)
			missing = append(missing, fmt.Sprintf("%s (env) / %s (file)", strings.ToUpper(key), key))
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
