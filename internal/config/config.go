package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/mindrecall/internal/domain"
)

// Config holds the mindrecall configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	VectorIndex VectorIndexConfig `yaml:"vector_index"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Chat        ChatConfig        `yaml:"chat"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings. An empty api_key disables the provider.
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider"`
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	Timeout    time.Duration `yaml:"timeout"`
	Cache      CacheConfig   `yaml:"cache"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"` // 0 = no expiry
}

// Vector index drivers.
const (
	DriverRedis  = "redis"
	DriverQdrant = "qdrant"
	DriverMemory = "memory"
	DriverNone   = "none"
)

// VectorIndexConfig selects and tunes the vector index backend.
type VectorIndexConfig struct {
	Driver      string        `yaml:"driver"` // redis, qdrant, memory, none (default: redis)
	Timeout     time.Duration `yaml:"timeout"`
	ReinitAfter time.Duration `yaml:"reinit_after"` // 0 = an unavailable index stays unavailable
	HNSW        HNSWConfig    `yaml:"hnsw"`
	Qdrant      QdrantConfig  `yaml:"qdrant"`
	Memory      MemoryConfig  `yaml:"memory"`
}

// HNSWConfig holds Redis FT HNSW parameters.
type HNSWConfig struct {
	M              int `yaml:"m"`
	EFConstruction int `yaml:"ef_construction"`
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"api_key"`
	UseTLS     bool   `yaml:"use_tls"`
	Collection string `yaml:"collection"`
}

// MemoryConfig holds the in-process index settings. An empty path keeps vectors in memory only.
type MemoryConfig struct {
	Path     string `yaml:"path"`
	Compress bool   `yaml:"compress"`
}

// RetrievalConfig bounds per-turn retrieval.
type RetrievalConfig struct {
	CorpusWindow  int `yaml:"corpus_window"`
	LexicalTopK   int `yaml:"lexical_top_k"`
	VectorTopK    int `yaml:"vector_top_k"`
	ContextBudget int `yaml:"context_budget"`
}

// ChatConfig holds completion settings. An empty api_key makes every reply the fallback text.
type ChatConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Domain converts the retrieval section into the domain bounds.
func (r RetrievalConfig) Domain() domain.RetrievalConfig {
	return domain.RetrievalConfig{
		CorpusWindow:  r.CorpusWindow,
		LexicalTopK:   r.LexicalTopK,
		VectorTopK:    r.VectorTopK,
		ContextBudget: r.ContextBudget,
	}
}

// Load reads configuration from a YAML file by environment name (local, docker, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	vec := domain.DefaultVectorConfig()
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = vec.Model
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = vec.Dimensions
	}
	if c.Embedding.Timeout <= 0 {
		c.Embedding.Timeout = 3 * time.Second
	}

	if c.VectorIndex.Driver == "" {
		c.VectorIndex.Driver = DriverRedis
	}
	if c.VectorIndex.Timeout <= 0 {
		c.VectorIndex.Timeout = 3 * time.Second
	}
	if c.VectorIndex.HNSW.M <= 0 {
		c.VectorIndex.HNSW.M = 16
	}
	if c.VectorIndex.HNSW.EFConstruction <= 0 {
		c.VectorIndex.HNSW.EFConstruction = 200
	}
	if c.VectorIndex.Qdrant.Port == 0 {
		c.VectorIndex.Qdrant.Port = 6334
	}
	if c.VectorIndex.Qdrant.Collection == "" {
		c.VectorIndex.Qdrant.Collection = "mindrecall"
	}

	ret := domain.DefaultRetrievalConfig()
	if c.Retrieval.CorpusWindow == 0 {
		c.Retrieval.CorpusWindow = ret.CorpusWindow
	}
	if c.Retrieval.LexicalTopK == 0 {
		c.Retrieval.LexicalTopK = ret.LexicalTopK
	}
	if c.Retrieval.VectorTopK == 0 {
		c.Retrieval.VectorTopK = ret.VectorTopK
	}
	if c.Retrieval.ContextBudget == 0 {
		c.Retrieval.ContextBudget = ret.ContextBudget
	}

	if c.Chat.Model == "" {
		c.Chat.Model = "gpt-3.5-turbo"
	}
	if c.Chat.Temperature == 0 {
		c.Chat.Temperature = 0.7
	}
	if c.Chat.Timeout <= 0 {
		c.Chat.Timeout = 20 * time.Second
	}
	if c.Chat.APIKey == "" {
		c.Chat.APIKey = c.Embedding.APIKey
		if c.Chat.BaseURL == "" {
			c.Chat.BaseURL = c.Embedding.BaseURL
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}

	switch c.VectorIndex.Driver {
	case DriverRedis, DriverMemory, DriverNone:
		// ok
	case DriverQdrant:
		if c.VectorIndex.Qdrant.Host == "" {
			return fmt.Errorf("vector_index.qdrant.host is required for the qdrant driver")
		}
	default:
		return fmt.Errorf(
			"vector_index.driver must be one of redis, qdrant, memory, none, got %q",
			c.VectorIndex.Driver,
		)
	}
	if c.VectorIndex.ReinitAfter < 0 {
		return fmt.Errorf("vector_index.reinit_after must not be negative, got %s", c.VectorIndex.ReinitAfter)
	}

	r := c.Retrieval
	for name, v := range map[string]int{
		"corpus_window":  r.CorpusWindow,
		"lexical_top_k":  r.LexicalTopK,
		"vector_top_k":   r.VectorTopK,
		"context_budget": r.ContextBudget,
	} {
		if v <= 0 {
			return fmt.Errorf("retrieval.%s must be positive, got %d", name, v)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
