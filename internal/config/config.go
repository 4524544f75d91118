package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultSecret = "your-secret-key-change-in-production"

// Config 服务端配置
type Config struct {
	Env            string
	AppSecret      string
	DatabaseURL    string
	Storage        string
	JWTExpiry      time.Duration
	Port           string
	LogLevel       string
	NewReleaseDays int
	ReleaseCron    string
	AuthRateLimit  int
	RedisAddr      string
	RedisPassword  string
	// TrustedProxies 允许携带 X-Forwarded-For 的反向代理，为空时只认连接地址
	TrustedProxies []string
	// MovieCacheTTL 电影列表分页缓存有效期，0 表示不缓存
	MovieCacheTTL  time.Duration
}

// Load 加载配置
func Load() *Config {
	expiryMinutes := getEnvInt("JWT_EXPIRY_MINUTES", 30)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbUser := getEnv("DB_USER", "postgres")
		dbPass := getEnv("DB_PASSWORD", "postgres")
		dbHost := getEnv("DB_HOST", "localhost")
		dbPort := getEnv("DB_PORT", "5432")
		dbName := getEnv("DB_NAME", "frame_db")
		dbSSL := getEnv("DB_SSLMODE", "disable")

		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)
	}

	appSecret := getEnv("APP_SECRET", getEnv("JWT_SECRET", getEnv("SECRET_KEY", defaultSecret)))
	env := getEnv("APP_ENV", "development")

	if env == "production" && appSecret == defaultSecret {
		logrus.Warn("生产环境正在使用默认密钥，请立即设置 APP_SECRET 环境变量")
	}

	return &Config{
		Env:            env,
		AppSecret:      appSecret,
		DatabaseURL:    dbURL,
		Storage:        getEnv("STORAGE", "postgres"),
		JWTExpiry:      time.Duration(expiryMinutes) * time.Minute,
		Port:           getEnv("PORT", "8000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		NewReleaseDays: getEnvInt("NEW_RELEASE_DAYS", 30),
		ReleaseCron:    getEnv("RELEASE_SCHEDULE", "0 3 * * *"),
		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 5),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
		MovieCacheTTL:  time.Duration(getEnvInt("MOVIE_CACHE_SECONDS", 30)) * time.Second,
	}
}

// UseMemoryStorage 是否使用进程内存储（本地调试）
func (c *Config) UseMemoryStorage() bool {
	return c.Storage == "memory"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logrus.WithField("key", key).Warnf("环境变量不是整数，使用默认值 %d", defaultValue)
		return defaultValue
	}
	return v
}

// getEnvList 逗号分隔的列表，忽略空项
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
