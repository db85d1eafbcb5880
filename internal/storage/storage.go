package storage

import (
	"errors"

	"wazmoi/backend/internal/domain"
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrProfileNotFound 资料不存在
	ErrProfileNotFound = errors.New("profile not found")
	// ErrPrivateLinkNotFound 私密链接令牌不存在
	ErrPrivateLinkNotFound = errors.New("private link not found")
	// ErrDuplicateUsername 用户名已被占用
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail 邮箱已被占用
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrDuplicateProfileLink 收信链接冲突（调用方应重新生成后重试）
	ErrDuplicateProfileLink = errors.New("profile link already exists")
)

// UserRepository 定义用户数据存取操作。
type UserRepository interface {
	CreateUser(user *domain.User) error
	GetUserByID(id string) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
	GetUserByProfileLink(link string) (*domain.User, error)
	UpdateUser(user *domain.User) error
	ListUsers() ([]domain.User, error)
}

// ProfileRepository 定义扩展资料数据存取操作。
type ProfileRepository interface {
	SaveProfile(profile *domain.Profile) error
	GetProfile(userID string) (*domain.Profile, error)
	ListProfiles() ([]domain.Profile, error)
}

// MessageRepository 定义留言数据存取操作。留言只增不改不删。
type MessageRepository interface {
	SaveMessage(message *domain.Message) error
	// ListMessages 按创建时间倒序返回匹配收件人引用的全部留言
	// （receiver_id 与 receiver_link 两种寻址形式取并集）。
	ListMessages(receiver domain.ReceiverRef) ([]domain.Message, error)
	ListAllMessages() ([]domain.Message, error)
}

// PrivateLinkRepository 定义能力令牌存取操作。
// ReplacePrivateLink 的整行替换语义就是单活跃令牌不变式的
// 并发原语，调用方不需要额外加锁。
type PrivateLinkRepository interface {
	ReplacePrivateLink(link *domain.PrivateLink) error
	GetPrivateLink(pseudonym string) (*domain.PrivateLink, error)
}

// Store 聚合全部仓库能力，是进程内唯一的共享可变状态。
type Store interface {
	UserRepository
	ProfileRepository
	MessageRepository
	PrivateLinkRepository

	Health() error
	Close() error
}
