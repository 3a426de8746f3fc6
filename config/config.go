package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	API      APIConfig
	Database DatabaseConfig
	Data     DataConfig
	Pipeline PipelineConfig
	Schedule ScheduleConfig
	S3       S3Config
}

type ServerConfig struct {
	Environment string
	MetricsPort string
}

// APIConfig configures the upstream order API (dummyjson-compatible).
type APIConfig struct {
	BaseURL string
	Limit   int
	Skip    int
	Timeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DataConfig locates the stage-boundary artifacts on disk.
type DataConfig struct {
	Dir string
}

type PipelineConfig struct {
	RetryAttempts int
	RetryBackoff  time.Duration
}

type ScheduleConfig struct {
	// CronSpec is a standard 5-field cron expression for daemon mode.
	CronSpec string
}

type S3Config struct {
	Enabled         bool
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Environment: getEnv("ENVIRONMENT", "development"),
			MetricsPort: getEnv("METRICS_PORT", "9090"),
		},
		API: APIConfig{
			BaseURL: getEnv("ORDER_API_BASE_URL", "https://dummyjson.com"),
			Limit:   parseInt(getEnv("ORDER_API_LIMIT", "100"), 100),
			Skip:    parseInt(getEnv("ORDER_API_SKIP", "0"), 0),
			Timeout: parseDuration(getEnv("ORDER_API_TIMEOUT", "30s"), 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "retail_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Data: DataConfig{
			Dir: getEnv("DATA_DIR", "data/processed"),
		},
		Pipeline: PipelineConfig{
			RetryAttempts: parseInt(getEnv("PIPELINE_RETRY_ATTEMPTS", "3"), 3),
			RetryBackoff:  parseDuration(getEnv("PIPELINE_RETRY_BACKOFF", "5s"), 5*time.Second),
		},
		Schedule: ScheduleConfig{
			CronSpec: getEnv("PIPELINE_CRON", "0 2 * * *"),
		},
		S3: S3Config{
			Enabled:         getEnv("AWS_S3_EXPORT", "false") == "true",
			Region:          getEnv("AWS_REGION", "ap-northeast-2"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Prefix:          getEnv("AWS_S3_PREFIX", "analytics"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, defaultValue int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %q, using default %d", s, defaultValue)
		return defaultValue
	}
	return v
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %q, using default %s", s, defaultValue)
		return defaultValue
	}
	return duration
}
