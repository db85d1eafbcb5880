package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/storage"
)

// ErrForbidden 令牌校验失败。对外统一用这一个错误，
// 不区分"笔名不存在"和"令牌不匹配"，避免泄露笔名是否存在。
var ErrForbidden = errors.New("forbidden")

// tokenBytes 能力令牌的熵长度（字节），hex 编码后 32 字符
const tokenBytes = 16

// PrivateLinkService 私密链接访问门：为笔名签发能力令牌并校验。
//
// 每个笔名至多一个活跃令牌，重新签发即替换；令牌不过期，
// 替换是唯一的失效途径。
type PrivateLinkService struct {
	repo    storage.PrivateLinkRepository
	baseURL string
	log     *zap.Logger
}

// NewPrivateLinkService 创建私密链接服务。
func NewPrivateLinkService(repo storage.PrivateLinkRepository, baseURL string, log *zap.Logger) *PrivateLinkService {
	return &PrivateLinkService{
		repo:    repo,
		baseURL: baseURL,
		log:     log,
	}
}

// Issue 为笔名签发新令牌并返回完整的私密链接 URL。
// 旧令牌（如果有）随替换立即失效。
func (s *PrivateLinkService) Issue(pseudonym string) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	err := s.repo.ReplacePrivateLink(&domain.PrivateLink{
		Pseudonym: pseudonym,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	s.log.Info("private link issued", zap.String("pseudonym", pseudonym))

	return fmt.Sprintf("%s/%s/private?token=%s", s.baseURL, url.PathEscape(pseudonym), token), nil
}

// Verify 校验令牌：笔名存有令牌且与出示值完全一致才通过。
// 失败一律返回 ErrForbidden。
func (s *PrivateLinkService) Verify(pseudonym, presented string) error {
	if presented == "" {
		return ErrForbidden
	}

	stored, err := s.repo.GetPrivateLink(pseudonym)
	if err != nil {
		return ErrForbidden
	}

	if stored.Token != presented {
		return ErrForbidden
	}
	return nil
}
