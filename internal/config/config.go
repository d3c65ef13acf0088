package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	Twilio  TwilioConfig
	Admin   AdminConfig
	Session SessionConfig
	Redis   RedisConfig
	LogFile string
}

type ServerConfig struct {
	Address string
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
	BaseURL     string
	Timeout     time.Duration
}

type AdminConfig struct {
	Password string
}

type SessionConfig struct {
	SecretKey string
	TTL       time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

// LoadAll reads the full server configuration. Every missing or malformed
// variable is reported in the returned error.
func LoadAll() (*Config, error) {
	var errs []error

	require := func(key string) string {
		v, err := requireEnv(key)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	intOr := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDRESS", ":8080"),
		},
		Twilio: TwilioConfig{
			AccountSID:  require("TWILIO_ACCOUNT_SID"),
			AuthToken:   require("TWILIO_AUTH_TOKEN"),
			PhoneNumber: require("TWILIO_PHONE_NUMBER"),
			BaseURL:     getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
			Timeout:     time.Duration(intOr("TWILIO_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Admin: AdminConfig{
			Password: require("ADMIN_PASSWORD"),
		},
		Session: SessionConfig{
			SecretKey: require("SECRET_KEY"),
			TTL:       time.Duration(intOr("SESSION_TTL_SECONDS", 86400)) * time.Second,
		},
		LogFile: getEnv("LOG_FILE", "sms_log.txt"),
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis = RedisConfig{
			Enabled:  true,
			Address:  addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       intOr("REDIS_DB", 0),
		}
	}

	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogFileFromEnv is the subset needed by the offline log commands.
func LogFileFromEnv() string {
	return getEnv("LOG_FILE", "sms_log.txt")
}

func validate(cfg *Config) error {
	var errs []error
	if cfg.Twilio.Timeout <= 0 {
		errs = append(errs, errors.New("TWILIO_TIMEOUT_SECONDS must be > 0"))
	}
	if cfg.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL_SECONDS must be > 0"))
	}
	return joinErrors(errs)
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return val, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid int for env %s: %s", key, v)
	}
	return i, nil
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
