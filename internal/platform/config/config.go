package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	APIPort        string
	Env            string
	LogLevel       string
	RequestTimeout time.Duration

	JWTKey []byte
	JWTExp time.Duration

	StorageDriver string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSslMode     string
	DBConnStr     string

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	CleanupQueueName string
	CleanupLockTTL   time.Duration

	UploadDir      string
	MaxUploadBytes int64
	B2KeyID        string
	B2AppKey       string
	B2Bucket       string

	SentryDSN string

	SeatAuditInterval time.Duration
	LoginMaxAttempts  int
	LoginWindow       time.Duration

	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// Load reads the environment (and a .env file when present).
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		APIPort:        getEnv("API_PORT", "3000"),
		Env:            getEnv("ENV", "dev"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RequestTimeout: time.Duration(getEnvAsPositiveInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,

		JWTKey: []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp: time.Duration(getEnvAsPositiveInt("JWT_EXPIRATION_HOURS", 12)) * time.Hour,

		StorageDriver: getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "user"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "coursehub"),
		DBSslMode:     getEnv("DB_SSLMODE", "disable"),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		CleanupQueueName: getEnv("CLEANUP_QUEUE_NAME", "upload_cleanup_queue"),
		CleanupLockTTL:   time.Duration(getEnvAsPositiveInt("CLEANUP_LOCK_TTL_SECONDS", 60)) * time.Second,

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(getEnvAsPositiveInt("MAX_UPLOAD_MB", 20)) << 20,
		B2KeyID:        getEnv("B2_KEY_ID", ""),
		B2AppKey:       getEnv("B2_APP_KEY", ""),
		B2Bucket:       getEnv("B2_BUCKET", ""),

		SentryDSN: getEnv("SENTRY_DSN", ""),

		SeatAuditInterval: time.Duration(getEnvAsPositiveInt("SEAT_AUDIT_INTERVAL_MINUTES", 10)) * time.Minute,
		LoginMaxAttempts:  getEnvAsPositiveInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginWindow:       time.Duration(getEnvAsPositiveInt("LOGIN_WINDOW_MINUTES", 15)) * time.Minute,

		BootstrapAdminEmail:    getEnv("BOOTSTRAP_ADMIN_EMAIL", ""),
		BootstrapAdminPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),
	}

	cfg.DBConnStr = getEnv("DATABASE_URL", "")
	if cfg.DBConnStr == "" {
		cfg.DBConnStr = "host=" + cfg.DBHost +
			" port=" + cfg.DBPort +
			" user=" + cfg.DBUser +
			" password=" + cfg.DBPassword +
			" dbname=" + cfg.DBName +
			" sslmode=" + cfg.DBSslMode
	}
	return cfg
}

func (c *Config) UseB2() bool {
	return c.B2KeyID != "" && c.B2AppKey != "" && c.B2Bucket != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsPositiveInt is getEnvAsInt for sizes and intervals, where zero or
// a negative value falls back to the default.
func getEnvAsPositiveInt(key string, fallback int) int {
	if value := getEnvAsInt(key, fallback); value > 0 {
		return value
	}
	return fallback
}
