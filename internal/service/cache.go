package service

import (
	"wazmoi/backend/internal/domain"
	redisstore "wazmoi/backend/internal/storage/redis"
)

// Cache 读路径缓存的能力集合，生产实现是 redis 缓存。
// 缓存只是加速，不是数据源：任何方法失败都降级为直查存储，
// 未命中用 redis.ErrCacheMiss 表达。
type Cache interface {
	CacheUserByLink(user *domain.User) error
	GetCachedUserByLink(link string) (*domain.User, error)
	DeleteCachedUserByLink(link string) error
	CacheInbox(receiverLink string, messages []domain.Message) error
	GetCachedInbox(receiverLink string) ([]domain.Message, error)
	InvalidateInbox(receiverLink string) error
}

var _ Cache = (*redisstore.Cache)(nil)
