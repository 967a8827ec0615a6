package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultHTTPAddress = "127.0.0.1:3001"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
)

var (
	// ErrMissingDatabaseURL means no connection string was found in the
	// config file nor in the environment.
	ErrMissingDatabaseURL = errors.New("no database URL configured, set FLUGGY_DATABASE_URL")

	// ErrAmbiguousCredentials means a password was given outside of the
	// connection string. The driver would silently merge both, so we refuse
	// to guess which one is meant.
	ErrAmbiguousCredentials = errors.New(
		"PGPASSWORD is set: the database password must only be given in the database URL",
	)
)

type Config struct {
	// DatabaseURL is the only source of database credentials. Both
	// postgres:// URLs and key=value DSNs are accepted.
	DatabaseURL string

	// DatabaseInsecureSkipVerify encrypts the connection without checking
	// the server certificate. Off unless explicitly enabled.
	DatabaseInsecureSkipVerify bool

	HTTPAddress string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is either json or console.
	LogFormat string
}

// Load reads the optional .env file of the working directory, the user
// config file, then the environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("unable to load .env file: %w", err)
	}

	c, err := NewFromUserConfigDir()
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func NewFromUserConfigDir() (*Config, error) {
	c := &Config{}
	if err := c.ReloadFromUserConfigDir(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) expandFromEnv() error {
	vars := []struct {
		src string
		dst *string
	}{
		{"POSTGRES_URL", &c.DatabaseURL},
		{"FLUGGY_DATABASE_URL", &c.DatabaseURL},
		{"FLUGGY_HTTP_ADDRESS", &c.HTTPAddress},
		{"FLUGGY_LOG_LEVEL", &c.LogLevel},
		{"FLUGGY_LOG_FORMAT", &c.LogFormat},
	}

	for _, v := range vars {
		if str := os.Getenv(v.src); str != "" {
			*v.dst = str
		}
	}

	if str := os.Getenv("FLUGGY_DATABASE_INSECURE_SKIP_VERIFY"); str != "" {
		b, err := strconv.ParseBool(str)
		if err != nil {
			return fmt.Errorf("invalid FLUGGY_DATABASE_INSECURE_SKIP_VERIFY: %w", err)
		}
		c.DatabaseInsecureSkipVerify = b
	}

	return nil
}

func (c *Config) setDefaults() {
	defaults := []struct {
		dst *string
		v   string
	}{
		{&c.HTTPAddress, DefaultHTTPAddress},
		{&c.LogLevel, DefaultLogLevel},
		{&c.LogFormat, DefaultLogFormat},
	}

	for _, v := range defaults {
		if strings.TrimSpace(*v.dst) == "" {
			*v.dst = v.v
		}
	}
}

func (c *Config) ReloadFromUserConfigDir() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}

	if err := c.readFile(path); err != nil {
		return fmt.Errorf("unable to read %s: %w", path, err)
	}

	if err := c.expandFromEnv(); err != nil {
		return err
	}

	c.setDefaults()

	return nil
}

func (c *Config) readFile(path string) error {
	*c = Config{}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(c)
}

// Validate ensures there is exactly one, non-empty, credential source.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return ErrMissingDatabaseURL
	}

	if _, ok := os.LookupEnv("PGPASSWORD"); ok {
		return ErrAmbiguousCredentials
	}

	return nil
}

// Path returns the location of the user config file.
func Path() (string, error) {
	return getOrCreateUserConfigPath()
}

func getOrCreateUserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "fluggy")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

func (c *Config) Write() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(c); err != nil {
		if err2 := f.Close(); err2 != nil {
			return fmt.Errorf("unable to close file (%s) after error: %w", err2, err)
		}

		return err
	}

	return f.Close()
}
