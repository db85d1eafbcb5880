package health

import (
	"context"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"wazmoi/backend/internal/storage"
	redisstore "wazmoi/backend/internal/storage/redis"
)

// Checker 健康检查器
type Checker struct {
	health healthcheck.Handler
	store  storage.Store
	redis  *redisstore.Client
	logger *zap.Logger
}

// NewChecker 创建健康检查器。redis 可以为 nil（未启用缓存时）。
func NewChecker(store storage.Store, redis *redisstore.Client, logger *zap.Logger) *Checker {
	c := &Checker{
		health: healthcheck.NewHandler(),
		store:  store,
		redis:  redis,
		logger: logger,
	}

	c.addChecks()

	return c
}

// addChecks 添加健康检查
func (c *Checker) addChecks() {
	// 存储层连接检查
	c.health.AddReadinessCheck("storage", func() error {
		return c.store.Health()
	})

	// Redis 连接检查
	if c.redis != nil {
		c.health.AddReadinessCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			return c.redis.Ping(ctx)
		})
	}

	// goroutine 数量检查，阈值较宽松
	c.health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(500))
}

// Handler 返回健康检查处理器，暴露 /live 和 /ready
func (c *Checker) Handler() http.Handler {
	return c.health
}
