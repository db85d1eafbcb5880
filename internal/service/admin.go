package service

import (
	"fmt"

	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/storage"
)

// AdminService 管理面板数据导出。
type AdminService struct {
	store storage.Store
}

// NewAdminService 创建管理服务。
func NewAdminService(store storage.Store) *AdminService {
	return &AdminService{store: store}
}

// DataDump 管理面板的全量数据视图。
// User 的 json 标签已经隐藏密码哈希，Message 隐藏 sender_id。
type DataDump struct {
	Users    []domain.User    `json:"users"`
	Profiles []domain.Profile `json:"profiles"`
	Messages []domain.Message `json:"messages"`
}

// Dump 导出全部用户、资料与留言。
func (s *AdminService) Dump() (*DataDump, error) {
	users, err := s.store.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	profiles, err := s.store.ListProfiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	messages, err := s.store.ListAllMessages()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return &DataDump{
		Users:    users,
		Profiles: profiles,
		Messages: messages,
	}, nil
}
