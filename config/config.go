package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const DefaultFrontendURL = "http://localhost:3000"

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Neo4j     Neo4jConfig     `toml:"neo4j"`
	CORS      CORSConfig      `toml:"cors"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Heartbeat HeartbeatConfig `toml:"heartbeat"`
	App       AppConfig       `toml:"app"`
}

type ServerConfig struct {
	Port            string        `toml:"port"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type Neo4jConfig struct {
	URI             string        `toml:"uri"`
	User            string        `toml:"user"`
	Password        string        `toml:"password"`
	Database        string        `toml:"database"`
	ConnectAttempts int           `toml:"connect_attempts"`
	ConnectDelay    time.Duration `toml:"connect_delay"`
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
	FrontendURL    string   `toml:"frontend_url"`
}

// Origins returns the allow-list plus the frontend origin, deduplicated.
func (c CORSConfig) Origins() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(c.AllowedOrigins)+1)
	for _, o := range append(append([]string{}, c.AllowedOrigins...), c.FrontendURL) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

type RateLimitConfig struct {
	RPS   float64 `toml:"rps"`
	Burst int     `toml:"burst"`
}

type HeartbeatConfig struct {
	Schedule string `toml:"schedule"`
}

type AppConfig struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment"`
	LogLevel    string `toml:"log_level"`
	Version     string `toml:"version"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8001",
			ShutdownTimeout: 10 * time.Second,
		},
		Neo4j: Neo4jConfig{
			URI:             "bolt://localhost:7687",
			User:            "neo4j",
			Password:        "password",
			ConnectAttempts: 5,
			ConnectDelay:    3 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{DefaultFrontendURL},
			FrontendURL:    DefaultFrontendURL,
		},
		RateLimit: RateLimitConfig{
			RPS:   20,
			Burst: 40,
		},
		Heartbeat: HeartbeatConfig{
			Schedule: "@every 1m",
		},
		App: AppConfig{
			Name:        "cloudmap-backend",
			Environment: "development",
			LogLevel:    "info",
			Version:     "1.0.0",
		},
	}
}

// Load builds the config from defaults, the optional CONFIG_FILE overlay and
// the environment, in that order of precedence (env wins).
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment variables")
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile decodes a TOML file on top of cfg.
func LoadFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		log.Warn("unknown keys in config file", "path", path, "keys", undecoded)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	cfg.Neo4j.URI = getEnv("NEO4J_URI", cfg.Neo4j.URI)
	cfg.Neo4j.User = getEnv("NEO4J_USER", cfg.Neo4j.User)
	cfg.Neo4j.Password = getEnv("NEO4J_PASSWORD", cfg.Neo4j.Password)
	cfg.Neo4j.Database = getEnv("NEO4J_DATABASE", cfg.Neo4j.Database)
	cfg.Neo4j.ConnectAttempts = getEnvAsInt("NEO4J_CONNECT_ATTEMPTS", cfg.Neo4j.ConnectAttempts)
	cfg.Neo4j.ConnectDelay = getEnvAsDuration("NEO4J_CONNECT_DELAY", cfg.Neo4j.ConnectDelay)

	cfg.CORS.AllowedOrigins = getEnvAsList("CORS_ORIGINS", cfg.CORS.AllowedOrigins)
	cfg.CORS.FrontendURL = getEnv("FRONTEND_URL", cfg.CORS.FrontendURL)

	cfg.RateLimit.RPS = getEnvAsFloat("RATE_LIMIT_RPS", cfg.RateLimit.RPS)
	cfg.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", cfg.RateLimit.Burst)

	// an explicitly empty HEARTBEAT_SCHEDULE disables the heartbeat
	if v, ok := os.LookupEnv("HEARTBEAT_SCHEDULE"); ok {
		cfg.Heartbeat.Schedule = strings.TrimSpace(v)
	}

	cfg.App.Environment = getEnv("APP_ENV", cfg.App.Environment)
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)
	cfg.App.Version = getEnv("APP_VERSION", cfg.App.Version)
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Neo4j.URI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}

	if c.Neo4j.ConnectAttempts < 1 {
		return fmt.Errorf("NEO4J_CONNECT_ATTEMPTS must be at least 1, got %d", c.Neo4j.ConnectAttempts)
	}

	if c.Neo4j.ConnectDelay < 0 {
		return fmt.Errorf("NEO4J_CONNECT_DELAY must not be negative")
	}

	for _, o := range c.CORS.Origins() {
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("invalid CORS origin %q: must start with http:// or https://", o)
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warnf("Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Warnf("Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Warnf("Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
