package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wazmoi/backend/internal/config"
	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/monitoring"
	"wazmoi/backend/internal/storage"
	redisstore "wazmoi/backend/internal/storage/redis"
)

// ErrReceiverNotFound 严格模式下收件人不存在
var ErrReceiverNotFound = errors.New("receiver not found")

// DeliveryService 负责留言投递：校验内容、解析收件人、
// 解析或匿名化发件人身份，落库恰好一行。
type DeliveryService struct {
	users    storage.UserRepository
	messages storage.MessageRepository
	cfg      config.DeliveryConfig
	cache    Cache // 可选：收件人解析走缓存，投递后失效收件箱
	metrics  *monitoring.Metrics
	log      *zap.Logger
}

// NewDeliveryService 创建投递服务。
func NewDeliveryService(
	users storage.UserRepository,
	messages storage.MessageRepository,
	cfg config.DeliveryConfig,
	log *zap.Logger,
) *DeliveryService {
	return &DeliveryService{
		users:    users,
		messages: messages,
		cfg:      cfg,
		log:      log,
	}
}

// SetCache 设置可选的读路径缓存。
func (s *DeliveryService) SetCache(cache Cache) {
	s.cache = cache
}

// SetMetrics 设置可选的监控指标。
func (s *DeliveryService) SetMetrics(metrics *monitoring.Metrics) {
	s.metrics = metrics
}

// SendInput 定义一次投递的输入。
type SendInput struct {
	// ReceiverLink 收件人的收信链接，宽松模式下也可以是裸笔名
	ReceiverLink string
	Content      string
	IsAnonymous  bool
	// SenderUserID 已登录发件人的用户 ID（来自会话），可为空
	SenderUserID string
	// SenderUsername 具名投递时自报的用户名，解析失败静默降级为匿名存储
	SenderUsername string
}

// Send 投递一条留言，返回新留言。
//
// 严格模式下收件人必须解析成功，否则 ErrReceiverNotFound 且不落库；
// 宽松模式接受任意笔名，按链接寻址存储。相同输入重复调用会产生
// 多条独立留言，没有幂等键。
func (s *DeliveryService) Send(input SendInput) (*domain.Message, error) {
	if err := domain.ValidateContent(input.Content, s.cfg.MaxContentLength); err != nil {
		if s.metrics != nil {
			s.metrics.RecordMessageRejected("validation")
		}
		return nil, err
	}

	message := &domain.Message{
		ID:          uuid.NewString(),
		Content:     input.Content,
		IsAnonymous: input.IsAnonymous,
		CreatedAt:   time.Now().UTC(),
	}

	// 解析收件人
	receiver, err := s.resolveReceiverUser(input.ReceiverLink)
	switch {
	case err == nil:
		message.ReceiverID = &receiver.ID
	case errors.Is(err, storage.ErrUserNotFound):
		if s.cfg.StrictReceiverValidation {
			if s.metrics != nil {
				s.metrics.RecordMessageRejected("receiver_not_found")
			}
			return nil, ErrReceiverNotFound
		}
		// 无账号变体：接受裸笔名，按链接寻址存储
		message.ReceiverLink = input.ReceiverLink
	default:
		return nil, fmt.Errorf("failed to resolve receiver: %w", err)
	}

	// 具名投递时解析发件人身份；解析失败不让整次投递失败，
	// 留言照存，只是没有可归属的发件人
	if !input.IsAnonymous {
		message.SenderID = s.resolveSender(input)
	}

	if err := s.messages.SaveMessage(message); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	if s.cache != nil {
		link := input.ReceiverLink
		if err := s.cache.InvalidateInbox(link); err != nil {
			s.log.Warn("failed to invalidate inbox cache",
				zap.String("receiver_link", link),
				zap.Error(err),
			)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordMessageDelivered(message.IsAnonymous)
	}

	s.log.Info("message delivered",
		zap.String("message_id", message.ID),
		zap.Bool("anonymous", message.IsAnonymous),
		zap.Bool("sender_resolved", message.SenderID != nil),
	)

	return message, nil
}

// resolveReceiverUser 按收信链接解析注册收件人，优先查缓存。
func (s *DeliveryService) resolveReceiverUser(link string) (*domain.User, error) {
	if s.cache != nil {
		if user, err := s.cache.GetCachedUserByLink(link); err == nil {
			return user, nil
		} else if !errors.Is(err, redisstore.ErrCacheMiss) {
			s.log.Warn("user cache read failed", zap.Error(err))
		}
	}

	user, err := s.users.GetUserByProfileLink(link)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheUserByLink(user); err != nil {
			s.log.Warn("user cache write failed", zap.Error(err))
		}
	}
	return user, nil
}

func (s *DeliveryService) resolveSender(input SendInput) *string {
	if input.SenderUserID != "" {
		id := input.SenderUserID
		return &id
	}
	if input.SenderUsername == "" {
		return nil
	}
	sender, err := s.users.GetUserByUsername(input.SenderUsername)
	if err != nil {
		return nil
	}
	return &sender.ID
}
