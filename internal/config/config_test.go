package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// 保存原始环境变量
	originalEnvs := make(map[string]string)
	envKeys := []string{
		"WAZMOI_JWT_SECRET",
		"WAZMOI_SERVER_HOST",
		"WAZMOI_SERVER_PORT",
		"WAZMOI_DELIVERY_STRICT_RECEIVER_VALIDATION",
		"WAZMOI_DELIVERY_MAX_CONTENT_LENGTH",
		"WAZMOI_DELIVERY_BASE_URL",
		"WAZMOI_INBOX_REQUIRE_AUTH",
		"WAZMOI_LOG_LEVEL",
		"WAZMOI_LOG_DEVELOPMENT",
		"WAZMOI_DATABASE_TYPE",
		"WAZMOI_REDIS_ENABLED",
	}

	for _, key := range envKeys {
		originalEnvs[key] = os.Getenv(key)
	}

	// 测试后恢复环境变量
	defer func() {
		for key, value := range originalEnvs {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	}()

	clearAll := func() {
		for _, key := range envKeys {
			os.Unsetenv(key)
		}
	}

	t.Run("加载默认配置成功", func(t *testing.T) {
		clearAll()
		os.Setenv("WAZMOI_JWT_SECRET", "test-secret-key-for-development-32-chars-long-at-least")

		cfg, err := Load()

		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		// 验证默认值
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 8081, cfg.Server.HealthPort)
		assert.True(t, cfg.Delivery.StrictReceiverValidation)
		assert.Equal(t, 500, cfg.Delivery.MaxContentLength)
		assert.Equal(t, "http://localhost:8080", cfg.Delivery.BaseURL)
		assert.True(t, cfg.Inbox.RequireAuth)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Log.Development)
		assert.Equal(t, "", cfg.Database.Type)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "wazmoi", cfg.JWT.Issuer)
		assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
		assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiry)
	})

	t.Run("拒绝默认JWT密钥", func(t *testing.T) {
		clearAll()

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "SECURITY ERROR")
	})

	t.Run("拒绝过短的JWT密钥", func(t *testing.T) {
		clearAll()
		os.Setenv("WAZMOI_JWT_SECRET", "too-short")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("变体策略可通过环境变量切换", func(t *testing.T) {
		clearAll()
		os.Setenv("WAZMOI_JWT_SECRET", "test-secret-key-for-development-32-chars-long-at-least")
		os.Setenv("WAZMOI_DELIVERY_STRICT_RECEIVER_VALIDATION", "false")
		os.Setenv("WAZMOI_DELIVERY_MAX_CONTENT_LENGTH", "0")
		os.Setenv("WAZMOI_INBOX_REQUIRE_AUTH", "false")

		cfg, err := Load()

		assert.NoError(t, err)
		assert.False(t, cfg.Delivery.StrictReceiverValidation)
		assert.Equal(t, 0, cfg.Delivery.MaxContentLength)
		assert.False(t, cfg.Inbox.RequireAuth)
	})

	t.Run("去掉BaseURL末尾斜杠", func(t *testing.T) {
		clearAll()
		os.Setenv("WAZMOI_JWT_SECRET", "test-secret-key-for-development-32-chars-long-at-least")
		os.Setenv("WAZMOI_DELIVERY_BASE_URL", "https://wazmoi.example.com/")

		cfg, err := Load()

		assert.NoError(t, err)
		assert.Equal(t, "https://wazmoi.example.com", cfg.Delivery.BaseURL)
	})
}
