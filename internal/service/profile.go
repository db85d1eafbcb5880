package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/storage"
)

// ErrProfileUserNotFound 资料对应的用户不存在
var ErrProfileUserNotFound = errors.New("profile user not found")

// ProfileView 资料页对外投影：用户公开字段加扩展资料。
// 扩展资料缺失时退化为只有公开字段（读路径容忍无 Profile 行）。
type ProfileView struct {
	Username    string `json:"username"`
	ProfileLink string `json:"profileLink"`
	FullName    string `json:"fullName,omitempty"`
	AvatarColor string `json:"avatarColor"`
	Bio         string `json:"bio,omitempty"`
	Location    string `json:"location,omitempty"`
	Website     string `json:"website,omitempty"`
}

// ProfileService 资料读取与更新。
type ProfileService struct {
	users    storage.UserRepository
	profiles storage.ProfileRepository
	cache    Cache // 可选，用户变更后失效按链接缓存的用户
}

// NewProfileService 创建资料服务。
func NewProfileService(users storage.UserRepository, profiles storage.ProfileRepository) *ProfileService {
	return &ProfileService{
		users:    users,
		profiles: profiles,
	}
}

// SetCache 设置可选的读路径缓存。
func (s *ProfileService) SetCache(cache Cache) {
	s.cache = cache
}

// GetByLink 按收信链接返回资料页投影。
func (s *ProfileService) GetByLink(profileLink string) (*ProfileView, error) {
	user, err := s.users.GetUserByProfileLink(profileLink)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrProfileUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	view := &ProfileView{
		Username:    user.Username,
		ProfileLink: user.ProfileLink,
		FullName:    user.FullName,
		AvatarColor: user.AvatarColor,
	}

	if profile, err := s.profiles.GetProfile(user.ID); err == nil {
		view.Bio = profile.Bio
		view.Location = profile.Location
		view.Website = profile.Website
	}

	return view, nil
}

// UpdateInput 资料更新输入。
type UpdateInput struct {
	FullName string
	Bio      string
	Location string
	Website  string
}

// Update 更新用户显示名与扩展资料。收信链接不受影响。
func (s *ProfileService) Update(username string, input UpdateInput) error {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrProfileUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	now := time.Now().UTC()

	if fullName := strings.TrimSpace(input.FullName); fullName != user.FullName {
		user.FullName = fullName
		user.UpdatedAt = now
		if err := s.users.UpdateUser(user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		// 用户行变了，按链接缓存的旧快照作废
		if s.cache != nil {
			_ = s.cache.DeleteCachedUserByLink(user.ProfileLink)
		}
	}

	err = s.profiles.SaveProfile(&domain.Profile{
		UserID:    user.ID,
		Bio:       strings.TrimSpace(input.Bio),
		Location:  strings.TrimSpace(input.Location),
		Website:   strings.TrimSpace(input.Website),
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
