package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host                  string        `yaml:"host"`
	Port                  int           `yaml:"port"`
	ReadTimeout           time.Duration `yaml:"read_timeout"`
	WriteTimeout          time.Duration `yaml:"write_timeout"`
	RequestTimeout        time.Duration `yaml:"request_timeout"`          // applied per request by the router
	MaxBodyBytes          int64         `yaml:"max_body_bytes"`           // base64 images are large, keep this generous
	MaxConcurrentRequests int           `yaml:"max_concurrent_requests"` // requests allowed to run the extractor at once
}

// Addr returns host:port for the HTTP listener
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type ExtractorConfig struct {
	Backend   string        `yaml:"backend"` // "http" or "dlib"
	URL       string        `yaml:"url"`     // embedding server base URL (http backend)
	Timeout   time.Duration `yaml:"timeout"`
	ModelsDir string        `yaml:"models_dir"` // dlib model files (dlib backend)
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable as a Go duration ("30s", "2m").
// Returns the default value if the env var is unset, empty, invalid or not positive.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

// envString returns the env var or the default when unset.
func envString(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

// Defaults returns the embedded default configuration without environment overrides.
func Defaults() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return &cfg
}

func Load() *Config {
	cfg := Defaults()

	cfg.Server.Host = envString("HOST", cfg.Server.Host)
	cfg.Server.Port = envInt("PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = envDuration("READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = envDuration("WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.RequestTimeout = envDuration("REQUEST_TIMEOUT", cfg.Server.RequestTimeout)
	cfg.Server.MaxBodyBytes = int64(envInt("MAX_BODY_BYTES", int(cfg.Server.MaxBodyBytes)))
	cfg.Server.MaxConcurrentRequests = envInt("MAX_CONCURRENT_REQUESTS", cfg.Server.MaxConcurrentRequests)

	cfg.Extractor.Backend = strings.ToLower(envString("EXTRACTOR_BACKEND", cfg.Extractor.Backend))
	cfg.Extractor.URL = envString("EXTRACTOR_URL", cfg.Extractor.URL)
	cfg.Extractor.Timeout = envDuration("EXTRACTOR_TIMEOUT", cfg.Extractor.Timeout)
	cfg.Extractor.ModelsDir = envString("DLIB_MODELS_DIR", cfg.Extractor.ModelsDir)

	cfg.Log.Level = strings.ToLower(envString("LOG_LEVEL", cfg.Log.Level))

	return cfg
}
