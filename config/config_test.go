package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_COOKIE_EXPIRE", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("TRUSTED_PROXIES", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 30, cfg.CookieExpireDays)
	assert.Equal(t, 30*24*time.Hour, cfg.CookieTTL())
	assert.Equal(t, int64(1000000), cfg.MaxFileUpload)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.TrustedProxyList())
	assert.Empty(t, cfg.CORSOrigins())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_EXPIRE", "2h")
	t.Setenv("JWT_COOKIE_EXPIRE", "7")
	t.Setenv("MAX_FILE_UPLOAD", "not-a-number")
	t.Setenv("ELASTICSEARCH_ADDRS", " http://a:9200, ,http://b:9200")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2*time.Hour, cfg.JWTExpire)
	assert.Equal(t, 7*24*time.Hour, cfg.CookieTTL())
	assert.Equal(t, int64(1000000), cfg.MaxFileUpload)
	assert.Equal(t, []string{"http://a:9200", "http://b:9200"}, cfg.ESAddrs())
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.TrustedProxyList())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "1", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:1/d?sslmode=disable", cfg.PostgresDSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.PostgresDSN())
}
