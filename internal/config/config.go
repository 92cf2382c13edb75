package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	log "github.com/tuannvm/taskpilot/internal/logging"
)

// Template store backends
const (
	StoreRemote = "remote"
	StoreLocal  = "local"
)

// Defaults
const (
	DefaultAPIVersion        = "7.0"
	DefaultRequestTimeout    = 30 * time.Second
	DefaultLocalStorePath    = "taskpilot.db"
	DefaultFanOutConcurrency = 1
	DefaultFetchBatchSize    = 200
	DefaultLogLevel          = "info"
	envPrefix                = "TASKPILOT"
)

var dotEnvOnce sync.Once

// Config holds the application configuration
type Config struct {
	// Connection
	Token        string
	Organization string // short org slug or legacy *.visualstudio.com domain
	Project      string
	BaseURL      string // optional override of the derived endpoint
	APIVersion   string

	// Remote calls
	RequestTimeout time.Duration
	FetchBatchSize int

	// Fan-out
	FanOutConcurrency int

	// Template storage
	TemplateStore  string // "remote" or "local"
	LocalStorePath string

	LogLevel string
}

// Credentials is the immutable connection triple used by the remote client
type Credentials struct {
	Token        string
	Organization string
	Project      string
}

// loadDotEnv loads environment variables from a .env file
func loadDotEnv() {
	// Try to load from project root first, then parent directories
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(path); err == nil {
			log.Debugf("Loaded configuration from %s file", path)
			return
		}
	}
	log.Debugf("No .env file found. Using environment variables or defaults.")
}

// NewViper returns a fresh viper instance with defaults and env bindings registered.
// The .env file is loaded into the process environment only once.
func NewViper() *viper.Viper {
	dotEnvOnce.Do(loadDotEnv)
	return newViper()
}

func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetEnvPrefix(envPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	vp.AutomaticEnv()
	SetDefaults(vp)
	return vp
}

// SetDefaults registers default values with viper
func SetDefaults(vp *viper.Viper) {
	vp.SetDefault("api_version", DefaultAPIVersion)
	vp.SetDefault("request_timeout", DefaultRequestTimeout)
	vp.SetDefault("fetch_batch_size", DefaultFetchBatchSize)
	vp.SetDefault("fanout_concurrency", DefaultFanOutConcurrency)
	vp.SetDefault("template_store", StoreRemote)
	vp.SetDefault("local_store_path", DefaultLocalStorePath)
	vp.SetDefault("log_level", DefaultLogLevel)
}

// ReadConfigFile merges an optional YAML config file into vp.
// An empty path searches for taskpilot.yaml in the working directory.
func ReadConfigFile(vp *viper.Viper, path string) error {
	if path != "" {
		vp.SetConfigFile(path)
	} else {
		vp.SetConfigName("taskpilot")
		vp.SetConfigType("yaml")
		vp.AddConfigPath(".")
	}
	if err := vp.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	log.Debugf("Using config file %s", vp.ConfigFileUsed())
	return nil
}

// FromViper builds a Config from the given viper instance
func FromViper(vp *viper.Viper) *Config {
	return &Config{
		Token:             strings.TrimSpace(vp.GetString("token")),
		Organization:      strings.TrimSpace(vp.GetString("organization")),
		Project:           strings.TrimSpace(vp.GetString("project")),
		BaseURL:           strings.TrimRight(strings.TrimSpace(vp.GetString("base_url")), "/"),
		APIVersion:        vp.GetString("api_version"),
		RequestTimeout:    vp.GetDuration("request_timeout"),
		FetchBatchSize:    vp.GetInt("fetch_batch_size"),
		FanOutConcurrency: vp.GetInt("fanout_concurrency"),
		TemplateStore:     strings.ToLower(vp.GetString("template_store")),
		LocalStorePath:    vp.GetString("local_store_path"),
		LogLevel:          vp.GetString("log_level"),
	}
}

// Validate reports every missing or out-of-range setting at once
func (c *Config) Validate() error {
	var problems []string
	if c.Token == "" {
		problems = append(problems, "token is required")
	}
	if c.Organization == "" {
		problems = append(problems, "organization is required")
	}
	if c.Project == "" {
		problems = append(problems, "project is required")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "request_timeout must be positive")
	}
	if c.FanOutConcurrency < 1 {
		problems = append(problems, "fanout_concurrency must be at least 1")
	}
	if c.FetchBatchSize < 1 {
		problems = append(problems, "fetch_batch_size must be at least 1")
	}
	switch c.TemplateStore {
	case StoreRemote, StoreLocal:
	default:
		problems = append(problems, fmt.Sprintf("template_store must be %q or %q, got %q", StoreRemote, StoreLocal, c.TemplateStore))
	}
	if c.TemplateStore == StoreLocal && c.LocalStorePath == "" {
		problems = append(problems, "local_store_path is required for the local template store")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Credentials returns the connection triple
func (c *Config) Credentials() Credentials {
	return Credentials{
		Token:        c.Token,
		Organization: c.Organization,
		Project:      c.Project,
	}
}
