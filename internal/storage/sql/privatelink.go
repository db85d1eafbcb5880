package sql

import (
	"database/sql"
	"errors"

	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/storage"
)

// ========== PrivateLink Repository ==========

// ReplacePrivateLink 整行替换写入令牌。替换语义是单活跃令牌
// 不变式的并发原语：为同一笔名重新签发即让旧令牌失效。
func (s *Store) ReplacePrivateLink(link *domain.PrivateLink) error {
	var query string
	if s.driverName == "postgres" {
		query = s.rebind(`
			INSERT INTO private_links (pseudonym, token, created_at)
			VALUES (?, ?, ?)
			ON CONFLICT (pseudonym) DO UPDATE
			SET token = EXCLUDED.token, created_at = EXCLUDED.created_at
		`)
	} else {
		query = `
			INSERT INTO private_links (pseudonym, token, created_at)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE
			token = VALUES(token), created_at = VALUES(created_at)
		`
	}

	_, err := s.db.Exec(query, link.Pseudonym, link.Token, link.CreatedAt)
	return err
}

// GetPrivateLink 获取笔名当前有效的令牌
func (s *Store) GetPrivateLink(pseudonym string) (*domain.PrivateLink, error) {
	query := s.rebind(`SELECT pseudonym, token, created_at FROM private_links WHERE pseudonym = ?`)

	var link domain.PrivateLink
	err := s.db.QueryRow(query, pseudonym).Scan(&link.Pseudonym, &link.Token, &link.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrPrivateLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}
