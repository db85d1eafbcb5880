package sql

import (
	"database/sql"
	"errors"

	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/storage"
)

// ========== Profile Repository ==========

// SaveProfile 保存扩展资料（upsert，主键为 user_id）
func (s *Store) SaveProfile(profile *domain.Profile) error {
	var query string
	if s.driverName == "postgres" {
		query = s.rebind(`
			INSERT INTO profiles (user_id, bio, location, website, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE
			SET bio = EXCLUDED.bio, location = EXCLUDED.location, website = EXCLUDED.website, updated_at = EXCLUDED.updated_at
		`)
	} else {
		query = `
			INSERT INTO profiles (user_id, bio, location, website, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
			bio = VALUES(bio), location = VALUES(location), website = VALUES(website), updated_at = VALUES(updated_at)
		`
	}

	_, err := s.db.Exec(query,
		profile.UserID,
		profile.Bio,
		profile.Location,
		profile.Website,
		profile.UpdatedAt,
	)
	return err
}

// GetProfile 根据用户 ID 获取扩展资料
func (s *Store) GetProfile(userID string) (*domain.Profile, error) {
	query := s.rebind(`SELECT user_id, bio, location, website, updated_at FROM profiles WHERE user_id = ?`)

	profile, err := scanProfile(s.db.QueryRow(query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrProfileNotFound
	}
	return profile, err
}

// ListProfiles 返回全部扩展资料
func (s *Store) ListProfiles() ([]domain.Profile, error) {
	rows, err := s.db.Query(`SELECT user_id, bio, location, website, updated_at FROM profiles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]domain.Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var profile domain.Profile
	var bio, location, website sql.NullString

	err := row.Scan(&profile.UserID, &bio, &location, &website, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}

	profile.Bio = bio.String
	profile.Location = location.String
	profile.Website = website.String
	return &profile, nil
}
