package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ADDR", "PORT", "STORE_DRIVER", "TOKEN_TTL", "BCRYPT_COST", "MONGO_TRANSACTIONS", "TRUSTED_PROXIES"} {
		t.Setenv(key, "")
	}

	cfg, _ := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "mongo", cfg.StoreDriver)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.Transactions)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("MONGO_TRANSACTIONS", "true")
	t.Setenv("AUTH_RATE_PER_MIN", "not-a-number")
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.1, ,172.16.0.0/12")

	cfg, _ := Load()
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.True(t, cfg.Transactions)
	assert.Equal(t, 20, cfg.AuthRatePerMin)
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.TrustedProxies)
}
