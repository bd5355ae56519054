package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sentiment-dashboard/pkg/logger"

	"gopkg.in/yaml.v3"
)

const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	AnalysisAPIURL string
	StatsAPIURL    string
	AuthURL        string
	FrontendURL    string
	HTTPPort       int

	StorageBackend string
	RedisURL       string
	DatabaseURL    string

	AuthTokenSecret    string
	HTTPTimeoutSecs    int
	AnalysisRatePerMin int

	SSHPort        int
	SSHHostKeyPath string

	TelegramBotToken string

	DataDir  string
	LogLevel string
	LogFile  string
}

// fileConfig mirrors Config for the optional DASHBOARD_CONFIG yaml file.
// Environment variables always win over file values.
type fileConfig struct {
	AnalysisAPIURL     string `yaml:"analysis_api_url"`
	StatsAPIURL        string `yaml:"stats_api_url"`
	AuthURL            string `yaml:"auth_url"`
	FrontendURL        string `yaml:"frontend_url"`
	HTTPPort           int    `yaml:"http_port"`
	StorageBackend     string `yaml:"storage_backend"`
	RedisURL           string `yaml:"redis_url"`
	DatabaseURL        string `yaml:"database_url"`
	HTTPTimeoutSecs    int    `yaml:"http_timeout_secs"`
	AnalysisRatePerMin int    `yaml:"analysis_rate_per_min"`
	SSHPort            int    `yaml:"ssh_port"`
	SSHHostKeyPath     string `yaml:"ssh_host_key_path"`
	DataDir            string `yaml:"data_dir"`
	LogLevel           string `yaml:"log_level"`
	LogFile            string `yaml:"log_file"`
}

var log = logger.WithComponent("config")

func Load() *Config {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("DASHBOARD_CONFIG")); path != "" {
		if err := applyFile(cfg, path); err != nil {
			log.WithError(err).Warnf("ignoring config file %s", path)
		}
	}

	cfg.AnalysisAPIURL = envString("ANALYSIS_API_URL", cfg.AnalysisAPIURL)
	cfg.StatsAPIURL = envString("STATS_API_URL", cfg.StatsAPIURL)
	if cfg.StatsAPIURL == "" {
		cfg.StatsAPIURL = cfg.AnalysisAPIURL
	}
	cfg.AuthURL = envString("AUTH_URL", cfg.AuthURL)
	cfg.FrontendURL = envString("FRONTEND_URL", cfg.FrontendURL)
	cfg.HTTPPort = envPositiveInt("HTTP_PORT", cfg.HTTPPort)

	cfg.StorageBackend = strings.ToLower(envString("STORAGE_BACKEND", cfg.StorageBackend))
	switch cfg.StorageBackend {
	case BackendRedis, BackendPostgres, BackendMemory:
	default:
		log.Warnf("unsupported STORAGE_BACKEND=%q, defaulting to redis", cfg.StorageBackend)
		cfg.StorageBackend = BackendRedis
	}

	cfg.RedisURL = envString("REDIS_URL", cfg.RedisURL)
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	cfg.DatabaseURL = envString("DATABASE_URL", cfg.DatabaseURL)
	if cfg.StorageBackend == BackendPostgres && cfg.DatabaseURL == "" {
		log.Warn("STORAGE_BACKEND=postgres but DATABASE_URL not set")
	}

	cfg.AuthTokenSecret = os.Getenv("AUTH_TOKEN_SECRET")
	if cfg.AuthTokenSecret == "" {
		log.Warn("AUTH_TOKEN_SECRET not set, session tokens are decoded without signature verification")
	}

	cfg.HTTPTimeoutSecs = envPositiveInt("HTTP_TIMEOUT_SECS", cfg.HTTPTimeoutSecs)
	cfg.AnalysisRatePerMin = envPositiveInt("ANALYSIS_RATE_PER_MIN", cfg.AnalysisRatePerMin)

	cfg.SSHPort = envPositiveInt("SSH_PORT", cfg.SSHPort)
	cfg.SSHHostKeyPath = envString("SSH_HOST_KEY_PATH", cfg.SSHHostKeyPath)

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	cfg.DataDir = expandHome(envString("DASHBOARD_DATA_DIR", cfg.DataDir))
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = envString("LOG_FILE", cfg.LogFile)

	return cfg
}

func defaults() *Config {
	return &Config{
		AnalysisAPIURL:     "http://localhost:3002",
		AuthURL:            "http://localhost:3006",
		FrontendURL:        "http://localhost:3005",
		HTTPPort:           3005,
		StorageBackend:     BackendRedis,
		HTTPTimeoutSecs:    10,
		AnalysisRatePerMin: 60,
		SSHPort:            2222,
		SSHHostKeyPath:     ".ssh/dashboard_ed25519",
		DataDir:            "~/.config/sentiment-dashboard",
		LogLevel:           "info",
	}
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	setString(&cfg.AnalysisAPIURL, fc.AnalysisAPIURL)
	setString(&cfg.StatsAPIURL, fc.StatsAPIURL)
	setString(&cfg.AuthURL, fc.AuthURL)
	setString(&cfg.FrontendURL, fc.FrontendURL)
	setString(&cfg.StorageBackend, fc.StorageBackend)
	setString(&cfg.RedisURL, fc.RedisURL)
	setString(&cfg.DatabaseURL, fc.DatabaseURL)
	setString(&cfg.SSHHostKeyPath, fc.SSHHostKeyPath)
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFile, fc.LogFile)
	setInt(&cfg.HTTPPort, fc.HTTPPort)
	setInt(&cfg.HTTPTimeoutSecs, fc.HTTPTimeoutSecs)
	setInt(&cfg.AnalysisRatePerMin, fc.AnalysisRatePerMin)
	setInt(&cfg.SSHPort, fc.SSHPort)
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envPositiveInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warnf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
