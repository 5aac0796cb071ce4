package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendRedis    = "redis"
	BackendFirebase = "firebase"
)

// Config vitalwatch 服务配置（dashboard / ingest / CLI 共用）
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Firebase FirebaseConfig `yaml:"firebase"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Database DatabaseConfig `yaml:"database"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Dashboard struct {
		HistoryLimit int `yaml:"history_limit"` // 历史记录拉取条数，默认 50
		ChartSize    int `yaml:"chart_size"`    // 图表窗口大小，默认 20
	} `yaml:"dashboard"`

	Chat struct {
		ReplyDelay time.Duration `yaml:"reply_delay"` // 模拟回复延迟，默认 600ms
		SessionTTL time.Duration `yaml:"session_ttl"`
	} `yaml:"chat"`

	Ingest struct {
		Addr       string `yaml:"addr"`        // TCP 监听地址，默认 :12345
		CSVArchive string `yaml:"csv_archive"` // 本地 CSV 归档文件，空表示不归档
	} `yaml:"ingest"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`
}

// StoreConfig 远端实时库选择
type StoreConfig struct {
	Backend  string `yaml:"backend"`  // "redis" 或 "firebase"
	Required bool   `yaml:"required"` // 启动时连接失败是否退出
}

// Load 加载配置：默认值 -> YAML 文件（VITALWATCH_CONFIG）-> 环境变量
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("VITALWATCH_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}

	cfg.Store.Backend = BackendRedis
	cfg.Store.Required = false

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.KeyPrefix = "vitalwatch:"

	cfg.Firebase.Timeout = 10 * time.Second
	cfg.Firebase.PollInterval = 2 * time.Second

	cfg.MQTT.ClientID = "vitalwatch-ingest"
	cfg.MQTT.QoS = 1
	cfg.MQTT.Topic = "vitals/+/frame"

	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "vitalwatch"
	cfg.Database.SSLMode = "disable"

	cfg.HTTP.Addr = ":8080"
	cfg.Dashboard.HistoryLimit = 50
	cfg.Dashboard.ChartSize = 20
	cfg.Chat.ReplyDelay = 600 * time.Millisecond
	cfg.Chat.SessionTTL = time.Hour
	cfg.Ingest.Addr = ":12345"

	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() {
	c.Store.Backend = getEnv("STORE_BACKEND", c.Store.Backend)
	c.Store.Required = getEnvBool("STORE_REQUIRED", c.Store.Required)

	c.Redis.LoadFromEnv("REDIS")
	c.Firebase.LoadFromEnv("FIREBASE")
	c.MQTT.LoadFromEnv("MQTT")
	c.Database.LoadFromEnv("DB")

	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	c.Dashboard.HistoryLimit = getEnvInt("DASHBOARD_HISTORY_LIMIT", c.Dashboard.HistoryLimit)
	c.Dashboard.ChartSize = getEnvInt("DASHBOARD_CHART_SIZE", c.Dashboard.ChartSize)
	if v := os.Getenv("CHAT_REPLY_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Chat.ReplyDelay = d
		}
	}
	if v := os.Getenv("CHAT_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Chat.SessionTTL = d
		}
	}
	c.Ingest.Addr = getEnv("INGEST_ADDR", c.Ingest.Addr)
	c.Ingest.CSVArchive = getEnv("INGEST_CSV_ARCHIVE", c.Ingest.CSVArchive)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required for store backend %q", c.Store.Backend)
		}
	case BackendFirebase:
		if c.Firebase.URL == "" {
			return fmt.Errorf("firebase url is required, please set FIREBASE_URL")
		}
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store.Backend)
	}
	if c.Dashboard.HistoryLimit <= 0 {
		return fmt.Errorf("dashboard history limit must be positive, got %d", c.Dashboard.HistoryLimit)
	}
	if c.Dashboard.ChartSize <= 0 {
		return fmt.Errorf("dashboard chart size must be positive, got %d", c.Dashboard.ChartSize)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true"
	}
	return defaultValue
}
