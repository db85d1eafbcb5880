package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"wazmoi/backend/internal/domain"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("cache miss")

// Cache 读路径缓存：收信链接 -> 用户，以及收件箱留言列表。
// 投递新留言时失效对应收件箱；缓存只是加速，不是数据源。
type Cache struct {
	client *goredis.Client
	ctx    context.Context
	ttl    time.Duration
}

// NewCache 创建 Redis 缓存实例
func NewCache(client *Client, ttl time.Duration) *Cache {
	return &Cache{
		client: client.Client(),
		ctx:    context.Background(),
		ttl:    ttl,
	}
}

// ========== 用户缓存 ==========

// CacheUserByLink 按收信链接缓存用户
func (c *Cache) CacheUserByLink(user *domain.User) error {
	key := fmt.Sprintf("user:link:%s", user.ProfileLink)
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, key, data, c.ttl).Err()
}

// GetCachedUserByLink 获取缓存的用户
func (c *Cache) GetCachedUserByLink(link string) (*domain.User, error) {
	key := fmt.Sprintf("user:link:%s", link)
	data, err := c.client.Get(c.ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteCachedUserByLink 删除缓存的用户
func (c *Cache) DeleteCachedUserByLink(link string) error {
	return c.client.Del(c.ctx, fmt.Sprintf("user:link:%s", link)).Err()
}

// ========== 收件箱缓存 ==========

// cachedMessage 缓存专用的留言序列化形式。
// domain.Message 对外隐藏 sender_id，缓存内部需要完整保留。
type cachedMessage struct {
	ID           string    `json:"id"`
	ReceiverID   *string   `json:"receiverId,omitempty"`
	ReceiverLink string    `json:"receiverLink,omitempty"`
	Content      string    `json:"content"`
	IsAnonymous  bool      `json:"isAnonymous"`
	SenderID     *string   `json:"senderId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CacheInbox 缓存一个收件人的留言列表
func (c *Cache) CacheInbox(receiverLink string, messages []domain.Message) error {
	key := fmt.Sprintf("inbox:%s", receiverLink)
	cached := make([]cachedMessage, 0, len(messages))
	for _, m := range messages {
		cached = append(cached, cachedMessage{
			ID:           m.ID,
			ReceiverID:   m.ReceiverID,
			ReceiverLink: m.ReceiverLink,
			Content:      m.Content,
			IsAnonymous:  m.IsAnonymous,
			SenderID:     m.SenderID,
			CreatedAt:    m.CreatedAt,
		})
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, key, data, c.ttl).Err()
}

// GetCachedInbox 获取缓存的留言列表
func (c *Cache) GetCachedInbox(receiverLink string) ([]domain.Message, error) {
	key := fmt.Sprintf("inbox:%s", receiverLink)
	data, err := c.client.Get(c.ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var cached []cachedMessage
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(cached))
	for _, m := range cached {
		messages = append(messages, domain.Message{
			ID:           m.ID,
			ReceiverID:   m.ReceiverID,
			ReceiverLink: m.ReceiverLink,
			Content:      m.Content,
			IsAnonymous:  m.IsAnonymous,
			SenderID:     m.SenderID,
			CreatedAt:    m.CreatedAt,
		})
	}
	return messages, nil
}

// InvalidateInbox 投递新留言后使收件箱缓存失效
func (c *Cache) InvalidateInbox(receiverLink string) error {
	return c.client.Del(c.ctx, fmt.Sprintf("inbox:%s", receiverLink)).Err()
}
