package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance. An explicit path overrides the
// default search locations.
func New(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/bayes-spam-filter/")
		v.AddConfigPath("$HOME/.bayes-spam-filter")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("SPAM_FILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Corpus defaults
	v.SetDefault("corpus.ham_dir", "data/train/ham")
	v.SetDefault("corpus.spam_dir", "data/train/spam")
	v.SetDefault("corpus.test_dir", "data/test")
	v.SetDefault("corpus.labels_file", "true_labels.txt")
	v.SetDefault("corpus.encoding", "utf-8")
	v.SetDefault("corpus.sort_order", "natural")

	// Tokenizer defaults
	v.SetDefault("tokenizer.header_length", 9)
	v.SetDefault("tokenizer.keep_empty_tokens", false)

	// Classification defaults
	v.SetDefault("classify.k", 1.0)
	v.SetDefault("classify.output", "-")

	// Sweep defaults
	v.SetDefault("sweep.k_min", 0.05)
	v.SetDefault("sweep.k_max", 250.0)
	v.SetDefault("sweep.k_step", 0.05)
	v.SetDefault("sweep.workers", 1)

	// Results defaults
	v.SetDefault("results.csv_path", "k values.csv")
	v.SetDefault("results.store", "none")
	v.SetDefault("results.sqlite_path", "data/sweep_results.db")
	v.SetDefault("results.mysql_dsn", "user:password@tcp(localhost:3306)/spam_filter")

	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.block_spam", false)
	v.SetDefault("server.headers.spam", "X-Spam-Status")
	v.SetDefault("server.headers.score", "X-Spam-Score")
	v.SetDefault("server.headers.reason", "X-Spam-Reason")
	v.SetDefault("server.subject_prefix", "")
	v.SetDefault("server.modify_subject", false)
	v.SetDefault("server.relay.enabled", true)
	v.SetDefault("server.relay.address", "127.0.0.1")
	v.SetDefault("server.relay.port", 10026)
	v.SetDefault("server.whitelisted_domains", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
