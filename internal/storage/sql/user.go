package sql

import (
	"database/sql"
	"errors"

	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/storage"
)

// ========== User Repository ==========

const userColumns = `id, username, email, password_hash, profile_link, full_name, avatar_color, is_admin, created_at, updated_at`

// nullIfEmpty 把空字符串写成 NULL。
// email 是可选字段又带唯一索引，'' 入库会让第二个无邮箱用户撞唯一约束。
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateUser 创建新用户
func (s *Store) CreateUser(user *domain.User) error {
	query := s.rebind(`
		INSERT INTO users (id, username, email, password_hash, profile_link, full_name, avatar_color, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		user.ID,
		user.Username,
		nullIfEmpty(user.Email),
		user.PasswordHash,
		user.ProfileLink,
		nullIfEmpty(user.FullName),
		user.AvatarColor,
		user.IsAdmin,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return translateUserConflict(err)
	}
	return nil
}

// GetUserByID 根据 ID 获取用户
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return s.scanUser(s.db.QueryRow(query, id))
}

// GetUserByUsername 根据用户名获取用户（大小写不敏感）
func (s *Store) GetUserByUsername(username string) (*domain.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower(?)`)
	return s.scanUser(s.db.QueryRow(query, username))
}

// GetUserByEmail 根据邮箱获取用户（大小写不敏感）
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower(?)`)
	return s.scanUser(s.db.QueryRow(query, email))
}

// GetUserByProfileLink 根据收信链接获取用户
func (s *Store) GetUserByProfileLink(link string) (*domain.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE profile_link = ?`)
	return s.scanUser(s.db.QueryRow(query, link))
}

// UpdateUser 更新用户（profile_link 不可变，不在更新列中）
func (s *Store) UpdateUser(user *domain.User) error {
	query := s.rebind(`
		UPDATE users
		SET username = ?, email = ?, password_hash = ?, full_name = ?, avatar_color = ?, is_admin = ?, updated_at = ?
		WHERE id = ?
	`)
	result, err := s.db.Exec(query,
		user.Username,
		nullIfEmpty(user.Email),
		user.PasswordHash,
		nullIfEmpty(user.FullName),
		user.AvatarColor,
		user.IsAdmin,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return translateUserConflict(err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// ListUsers 返回全部用户
func (s *Store) ListUsers() ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := s.scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanUser(row rowScanner) (*domain.User, error) {
	user, err := s.scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrUserNotFound
	}
	return user, err
}

func (s *Store) scanUserRow(row rowScanner) (*domain.User, error) {
	var user domain.User
	var email sql.NullString
	var fullName sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&email,
		&user.PasswordHash,
		&user.ProfileLink,
		&fullName,
		&user.AvatarColor,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Email = email.String
	user.FullName = fullName.String
	return &user, nil
}
