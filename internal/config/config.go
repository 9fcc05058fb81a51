package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds application configuration from environment.
type Config struct {
	TasksAPIURL    string
	TasksAPIToken  string
	CacheKey       string
	CacheFile      string
	RedisURL       string
	RedisPoolSize  int
	DatabaseURL    string
	KafkaBrokers   []string
	KafkaTopic     string
	HTTPTimeoutSec int
	JWTSecret      string
	HTTPPort       string
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the application config (loads once from env).
func Get() *Config {
	cfgOnce.Do(func() {
		cfg = &Config{
			TasksAPIURL:    getEnv("TASKS_API_URL", "http://localhost:8080"),
			TasksAPIToken:  os.Getenv("TASKS_API_TOKEN"),
			CacheKey:       getEnv("CACHE_KEY", "cached_tasks"),
			CacheFile:      os.Getenv("CACHE_FILE"),
			RedisURL:       os.Getenv("REDIS_URL"),
			RedisPoolSize:  getIntEnv("REDIS_POOL_SIZE", 10),
			DatabaseURL:    os.Getenv("DATABASE_URL"),
			KafkaBrokers:   getSliceEnv("KAFKA_BROKERS"),
			KafkaTopic:     getEnv("KAFKA_TASK_TOPIC", "task-events"),
			HTTPTimeoutSec: getIntEnv("HTTP_TIMEOUT_SEC", 10),
			JWTSecret:      os.Getenv("JWT_SECRET"),
			HTTPPort:       getEnv("HTTP_PORT", "8080"),
		}
	})
	return cfg
}

// LoadEnvFile reads a .env file and sets env vars (only if not already set).
func LoadEnvFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if strings.HasPrefix(val, `"`) && strings.HasSuffix(val, `"`) {
			val = strings.Trim(val, `"`)
		} else if strings.HasPrefix(val, "'") && strings.HasSuffix(val, "'") {
			val = strings.Trim(val, "'")
		}
		if key != "" && os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getSliceEnv(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
