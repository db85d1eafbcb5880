package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/monitoring"
	"wazmoi/backend/internal/storage"
	redisstore "wazmoi/backend/internal/storage/redis"
)

// DateLayout 收件箱展示用的本地时间格式
const DateLayout = "2006-01-02 15:04:05"

// SenderView 非匿名留言暴露给收件人的发件人身份
type SenderView struct {
	Username    string `json:"username"`
	AvatarColor string `json:"avatarColor"`
}

// MessageView 收件箱中一条留言的投影。
// 匿名留言的 Sender 恒为 null，即使内部存有发件人。
type MessageView struct {
	ID          string      `json:"id"`
	Content     string      `json:"content"`
	Date        string      `json:"date"`
	IsAnonymous bool        `json:"isAnonymous"`
	Sender      *SenderView `json:"sender"`
}

// InboxService 读取收件箱：按时间倒序取全部历史，
// 具名留言联出发件人身份，匿名留言做绝对遮蔽。
type InboxService struct {
	users    storage.UserRepository
	messages storage.MessageRepository
	cache    Cache // 可选
	metrics  *monitoring.Metrics
	log      *zap.Logger
}

// NewInboxService 创建收件箱查询服务。
func NewInboxService(
	users storage.UserRepository,
	messages storage.MessageRepository,
	log *zap.Logger,
) *InboxService {
	return &InboxService{
		users:    users,
		messages: messages,
		log:      log,
	}
}

// SetCache 设置可选的读路径缓存。
func (s *InboxService) SetCache(cache Cache) {
	s.cache = cache
}

// SetMetrics 设置可选的监控指标。
func (s *InboxService) SetMetrics(metrics *monitoring.Metrics) {
	s.metrics = metrics
}

// List 返回收件人的全部留言投影，最新在前，不分页。
// receiverLink 可以是注册用户的收信链接，也可以是裸笔名。
func (s *InboxService) List(receiverLink string) ([]MessageView, error) {
	ref := domain.ReceiverRef{Link: receiverLink}
	if user, err := s.lookupReceiver(receiverLink); err == nil {
		// 注册收件人：两种历史寻址形式都归属于他
		ref.UserID = user.ID
	}

	messages, err := s.loadMessages(ref, receiverLink)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, s.project(m))
	}
	return views, nil
}

// lookupReceiver 按收信链接解析注册收件人，优先查缓存。
func (s *InboxService) lookupReceiver(link string) (*domain.User, error) {
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

func (s *InboxService) loadMessages(ref domain.ReceiverRef, receiverLink string) ([]domain.Message, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCachedInbox(receiverLink); err == nil {
			if s.metrics != nil {
				s.metrics.RecordInboxQuery(true)
			}
			return cached, nil
		} else if !errors.Is(err, redisstore.ErrCacheMiss) {
			s.log.Warn("inbox cache read failed", zap.Error(err))
		}
	}

	messages, err := s.messages.ListMessages(ref)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordInboxQuery(false)
	}

	if s.cache != nil {
		if err := s.cache.CacheInbox(receiverLink, messages); err != nil {
			s.log.Warn("inbox cache write failed", zap.Error(err))
		}
	}
	return messages, nil
}

// project 把存储形态的留言转为对外投影。
// 匿名标记为 true 时绝不暴露发件人；具名留言的发件人解析失败
// （比如账号已不存在）降级为匿名展示，而不是报错。
func (s *InboxService) project(m domain.Message) MessageView {
	view := MessageView{
		ID:          m.ID,
		Content:     m.Content,
		Date:        m.CreatedAt.Local().Format(DateLayout),
		IsAnonymous: m.IsAnonymous,
	}

	if m.IsAnonymous || m.SenderID == nil {
		return view
	}

	sender, err := s.users.GetUserByID(*m.SenderID)
	if err != nil {
		return view
	}

	view.Sender = &SenderView{
		Username:    sender.Username,
		AvatarColor: sender.AvatarColor,
	}
	return view
}
