package memory

import (
	"sort"
	"strings"
	"sync"

	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/storage"
)

// Store 使用内存保存用户、资料、留言与私密链接数据，
// 主要用于开发验证和测试。
type Store struct {
	mu           sync.RWMutex
	users        map[string]*domain.User        // userID -> user
	byUsername   map[string]string              // lower(username) -> userID
	byEmail      map[string]string              // lower(email) -> userID
	byLink       map[string]string              // profileLink -> userID
	profiles     map[string]*domain.Profile     // userID -> profile
	messages     []*domain.Message              // 插入序保存，读取时排序
	privateLinks map[string]*domain.PrivateLink // pseudonym -> token row
}

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{
		users:        make(map[string]*domain.User),
		byUsername:   make(map[string]string),
		byEmail:      make(map[string]string),
		byLink:       make(map[string]string),
		profiles:     make(map[string]*domain.Profile),
		messages:     make([]*domain.Message, 0),
		privateLinks: make(map[string]*domain.PrivateLink),
	}
}

// ========== User Repository ==========

// CreateUser 创建新用户，唯一约束冲突时返回对应的重复键错误。
func (s *Store) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[strings.ToLower(user.Username)]; ok {
		return storage.ErrDuplicateUsername
	}
	if user.Email != "" {
		if _, ok := s.byEmail[strings.ToLower(user.Email)]; ok {
			return storage.ErrDuplicateEmail
		}
	}
	if _, ok := s.byLink[user.ProfileLink]; ok {
		return storage.ErrDuplicateProfileLink
	}

	clone := *user
	s.users[user.ID] = &clone
	s.byUsername[strings.ToLower(user.Username)] = user.ID
	if user.Email != "" {
		s.byEmail[strings.ToLower(user.Email)] = user.ID
	}
	s.byLink[user.ProfileLink] = user.ID
	return nil
}

// GetUserByID 根据 ID 获取用户。
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

// GetUserByUsername 根据用户名获取用户（大小写不敏感）。
func (s *Store) GetUserByUsername(username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	clone := *s.users[id]
	return &clone, nil
}

// GetUserByEmail 根据邮箱获取用户（大小写不敏感）。
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	clone := *s.users[id]
	return &clone, nil
}

// GetUserByProfileLink 根据收信链接获取用户。
func (s *Store) GetUserByProfileLink(link string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byLink[link]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	clone := *s.users[id]
	return &clone, nil
}

// UpdateUser 更新用户（收信链接不可变，忽略对它的修改）。
func (s *Store) UpdateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return storage.ErrUserNotFound
	}

	clone := *user
	clone.ProfileLink = existing.ProfileLink
	if !strings.EqualFold(existing.Username, user.Username) {
		if _, taken := s.byUsername[strings.ToLower(user.Username)]; taken {
			return storage.ErrDuplicateUsername
		}
		delete(s.byUsername, strings.ToLower(existing.Username))
		s.byUsername[strings.ToLower(user.Username)] = user.ID
	}
	if !strings.EqualFold(existing.Email, user.Email) {
		if user.Email != "" {
			if _, taken := s.byEmail[strings.ToLower(user.Email)]; taken {
				return storage.ErrDuplicateEmail
			}
		}
		if existing.Email != "" {
			delete(s.byEmail, strings.ToLower(existing.Email))
		}
		if user.Email != "" {
			s.byEmail[strings.ToLower(user.Email)] = user.ID
		}
	}
	s.users[user.ID] = &clone
	return nil
}

// ListUsers 返回全部用户的快照。
func (s *Store) ListUsers() ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ========== Profile Repository ==========

// SaveProfile 保存扩展资料（存在即覆盖）。
func (s *Store) SaveProfile(profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *profile
	s.profiles[profile.UserID] = &clone
	return nil
}

// GetProfile 根据用户 ID 获取扩展资料。
func (s *Store) GetProfile(userID string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, storage.ErrProfileNotFound
	}
	clone := *profile
	return &clone, nil
}

// ListProfiles 返回全部扩展资料的快照。
func (s *Store) ListProfiles() ([]domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	return out, nil
}

// ========== Message Repository ==========

// SaveMessage 追加一条留言。
func (s *Store) SaveMessage(message *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *message
	s.messages = append(s.messages, &clone)
	return nil
}

// ListMessages 按创建时间倒序返回收件人的全部留言。
func (s *Store) ListMessages(receiver domain.ReceiverRef) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Message, 0)
	for _, m := range s.messages {
		if matchesReceiver(m, receiver) {
			out = append(out, *m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListAllMessages 返回全部留言（管理面板用）。
func (s *Store) ListAllMessages() ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Message, 0, len(s.messages))
	for _, m := range s.messages {
		out = append(out, *m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func matchesReceiver(m *domain.Message, ref domain.ReceiverRef) bool {
	if ref.UserID != "" && m.ReceiverID != nil && *m.ReceiverID == ref.UserID {
		return true
	}
	if ref.Link != "" && m.ReceiverLink == ref.Link {
		return true
	}
	return false
}

// ========== PrivateLink Repository ==========

// ReplacePrivateLink 写入令牌，覆盖该笔名此前的任何令牌。
func (s *Store) ReplacePrivateLink(link *domain.PrivateLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *link
	s.privateLinks[link.Pseudonym] = &clone
	return nil
}

// GetPrivateLink 获取笔名当前有效的令牌。
func (s *Store) GetPrivateLink(pseudonym string) (*domain.PrivateLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.privateLinks[pseudonym]
	if !ok {
		return nil, storage.ErrPrivateLinkNotFound
	}
	clone := *link
	return &clone, nil
}

// Health 内存存储恒为健康。
func (s *Store) Health() error { return nil }

// Close 内存存储无需释放资源。
func (s *Store) Close() error { return nil }
