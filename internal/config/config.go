package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Embedder EmbedderConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Matching MatchingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type EmbedderConfig struct {
	URL     string // face detection/embedding service, defaults to http://localhost:8000
	Timeout time.Duration
}

type AuthConfig struct {
	Secret string // shared secret required on every endpoint
}

type StorageConfig struct {
	Dir string // directory for registered face artifacts (default known_faces)
}

type MatchingConfig struct {
	DuplicateThreshold float64 // enrollment duplicate cutoff
	VerifyTolerance    float64 // default verification tolerance
}

// defaults mirrors the embedded defaults.yaml file.
type defaults struct {
	Matching struct {
		DuplicateThreshold float64 `yaml:"duplicate_threshold"`
		VerifyTolerance    float64 `yaml:"verify_tolerance"`
	} `yaml:"matching"`
	Embedder struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"embedder"`
	Server struct {
		ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
		IdleTimeoutSeconds  int `yaml:"idle_timeout_seconds"`
	} `yaml:"server"`
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

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envStr reads an environment variable, falling back to a default when unset.
func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var def defaults
	if err := yaml.Unmarshal(defaultsYAML, &def); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	return &Config{
		Server: ServerConfig{
			Host:         envStr("FACEGATE_HOST", "0.0.0.0"),
			Port:         envInt("FACEGATE_PORT", 8080),
			ReadTimeout:  time.Duration(def.Server.ReadTimeoutSeconds) * time.Second,
			WriteTimeout: time.Duration(def.Server.WriteTimeoutSeconds) * time.Second,
			IdleTimeout:  time.Duration(def.Server.IdleTimeoutSeconds) * time.Second,
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Embedder: EmbedderConfig{
			URL:     envStr("EMBEDDER_URL", "http://localhost:8000"),
			Timeout: time.Duration(envInt("EMBEDDER_TIMEOUT_SECONDS", def.Embedder.TimeoutSeconds)) * time.Second,
		},
		Auth: AuthConfig{
			Secret: os.Getenv("FACEGATE_SECRET"),
		},
		Storage: StorageConfig{
			Dir: envStr("FACEGATE_STORAGE_DIR", "known_faces"),
		},
		Matching: MatchingConfig{
			DuplicateThreshold: envFloat("FACEGATE_DUPLICATE_THRESHOLD", def.Matching.DuplicateThreshold),
			VerifyTolerance:    envFloat("FACEGATE_VERIFY_TOLERANCE", def.Matching.VerifyTolerance),
		},
	}
}
