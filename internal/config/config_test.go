package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("EMAIL_SEAL_KEY", strings.Repeat("k", 32))
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequired(t)

	require.NoError(t, Load())

	assert.Equal(t, "8080", AppEnv.Port)
	assert.Equal(t, "eveningmall", AppEnv.DBName)
	assert.Equal(t, 24*time.Hour, AppEnv.AccessTokenTTL)
	assert.Equal(t, 5*time.Second, AppEnv.QueryTimeout)
	assert.Equal(t, "info", AppEnv.Log.Level)
	assert.Equal(t, "stdout", AppEnv.Log.Output)
}

func TestLoadReadsOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_NAME", "mall_test")
	t.Setenv("ACCESS_TOKEN_TTL", "90m")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_MAX_BACKUPS", "9")

	require.NoError(t, Load())

	assert.Equal(t, "mall_test", AppEnv.DBName)
	assert.Equal(t, 90*time.Minute, AppEnv.AccessTokenTTL)
	assert.Equal(t, "json", AppEnv.Log.Format)
	assert.Equal(t, 9, AppEnv.Log.MaxBackups)
}

func TestLoadRequiresMongoURI(t *testing.T) {
	setRequired(t)
	t.Setenv("MONGO_URI", "")

	assert.Error(t, Load())
}

func TestLoadRejectsShortSealKey(t *testing.T) {
	setRequired(t)
	t.Setenv("EMAIL_SEAL_KEY", "short")

	err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMAIL_SEAL_KEY")
}
