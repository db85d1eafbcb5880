package auth

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/link"
	"wazmoi/backend/internal/storage"
)

var (
	// ErrUsernameExists 用户名已存在
	ErrUsernameExists = errors.New("username already exists")
	// ErrEmailExists 邮箱已存在
	ErrEmailExists = errors.New("email already exists")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials 凭证无效
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLinkUnavailable 多次重试后仍无法分配收信链接
	ErrLinkUnavailable = errors.New("profile link unavailable")
)

// linkRetryAttempts 收信链接冲突时的重新生成次数。
// 冲突在存储层以唯一约束暴露，这里把它当作可重试条件处理，
// 而不是直接抛给调用方。
const linkRetryAttempts = 5

// Repository 认证服务需要的存储能力
type Repository interface {
	CreateUser(user *domain.User) error
	GetUserByID(id string) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
	SaveProfile(profile *domain.Profile) error
}

// Service 认证服务：注册（哈希密码、生成链接、分配头像色）与登录。
type Service struct {
	repo  Repository
	links *link.Generator
}

// NewService 创建认证服务
func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		links: link.NewGenerator(),
	}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// LoginInput 登录输入（Identifier 可以是用户名或邮箱）
type LoginInput struct {
	Identifier string
	Password   string
}

// Register 用户注册。
// 收信链接由显示名生成；撞上唯一约束时重新生成再试，
// 重试仍失败才返回 ErrLinkUnavailable。
func (s *Service) Register(input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email != "" {
		if err := domain.ValidateEmail(email); err != nil {
			return nil, err
		}
	}

	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	// 先做一次重复预检，让常见冲突得到准确的错误
	if _, err := s.repo.GetUserByUsername(username); err == nil {
		return nil, ErrUsernameExists
	}
	if email != "" {
		if _, err := s.repo.GetUserByEmail(email); err == nil {
			return nil, ErrEmailExists
		}
	}

	passwordHash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := strings.TrimSpace(input.FullName)
	if displayName == "" {
		displayName = username
	}

	var user *domain.User
	for attempt := 0; attempt < linkRetryAttempts; attempt++ {
		now := time.Now().UTC()
		candidate := &domain.User{
			ID:           uuid.NewString(),
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			ProfileLink:  s.links.Generate(displayName),
			FullName:     strings.TrimSpace(input.FullName),
			AvatarColor:  domain.AvatarPalette[rand.Intn(len(domain.AvatarPalette))],
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		err = s.repo.CreateUser(candidate)
		if err == nil {
			user = candidate
			break
		}
		switch {
		case errors.Is(err, storage.ErrDuplicateProfileLink):
			continue // 链接撞车，换个后缀再试
		case errors.Is(err, storage.ErrDuplicateUsername):
			return nil, ErrUsernameExists
		case errors.Is(err, storage.ErrDuplicateEmail):
			return nil, ErrEmailExists
		default:
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}
	if user == nil {
		return nil, ErrLinkUnavailable
	}

	// 注册后立即建一条空资料。这步和建用户之间没有事务，
	// 失败会留下无资料的用户，读路径必须容忍资料缺失。
	_ = s.repo.SaveProfile(&domain.Profile{
		UserID:    user.ID,
		UpdatedAt: user.CreatedAt,
	})

	return user, nil
}

// Login 用户登录：先按邮箱查找，再按用户名查找。
// 任何一步失败都返回同一个凭证错误，不泄露账号是否存在。
func (s *Service) Login(input LoginInput) (*domain.User, error) {
	identifier := strings.ToLower(strings.TrimSpace(input.Identifier))
	if identifier == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(identifier)
	if err != nil {
		user, err = s.repo.GetUserByUsername(identifier)
		if err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByID 根据 ID 获取用户
func (s *Service) GetUserByID(userID string) (*domain.User, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
