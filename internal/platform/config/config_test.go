package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_NAME", "school")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")

	cfg := Load()

	assert.Equal(t, "3000", cfg.APIPort)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Contains(t, cfg.DBConnStr, "dbname=school")
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 15*time.Minute, cfg.LoginWindow)
	assert.False(t, cfg.UseB2())
}

func TestLoad_DatabaseURLWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/coursehub")
	t.Setenv("B2_KEY_ID", "k")
	t.Setenv("B2_APP_KEY", "s")
	t.Setenv("B2_BUCKET", "b")

	cfg := Load()

	assert.Equal(t, "postgres://u:p@db:5432/coursehub", cfg.DBConnStr)
	assert.True(t, cfg.UseB2())
}

func TestLoad_NonPositiveFallsBack(t *testing.T) {
	t.Setenv("SEAT_AUDIT_INTERVAL_MINUTES", "0")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "-5")
	t.Setenv("LOGIN_WINDOW_MINUTES", "0")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "-1")
	t.Setenv("CLEANUP_LOCK_TTL_SECONDS", "0")
	t.Setenv("REDIS_DB", "0")

	cfg := Load()

	assert.Equal(t, 10*time.Minute, cfg.SeatAuditInterval)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 15*time.Minute, cfg.LoginWindow)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.CleanupLockTTL)
	assert.Equal(t, 0, cfg.RedisDB)
}
