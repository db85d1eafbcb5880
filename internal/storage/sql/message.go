package sql

import (
	"database/sql"

	"wazmoi/backend/internal/domain"
)

// ========== Message Repository ==========

const messageColumns = `id, receiver_id, receiver_link, content, is_anonymous, sender_id, created_at`

// SaveMessage 追加一条留言
func (s *Store) SaveMessage(message *domain.Message) error {
	query := s.rebind(`
		INSERT INTO messages (id, receiver_id, receiver_link, content, is_anonymous, sender_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		message.ID,
		message.ReceiverID,
		message.ReceiverLink,
		message.Content,
		message.IsAnonymous,
		message.SenderID,
		message.CreatedAt,
	)
	return err
}

// ListMessages 按创建时间倒序返回收件人的全部留言。
// receiver_id 与 receiver_link 两种寻址形式取并集。
func (s *Store) ListMessages(receiver domain.ReceiverRef) ([]domain.Message, error) {
	var (
		query string
		args  []any
	)

	switch {
	case receiver.UserID != "" && receiver.Link != "":
		query = `SELECT ` + messageColumns + ` FROM messages WHERE receiver_id = ? OR receiver_link = ? ORDER BY created_at DESC`
		args = []any{receiver.UserID, receiver.Link}
	case receiver.UserID != "":
		query = `SELECT ` + messageColumns + ` FROM messages WHERE receiver_id = ? ORDER BY created_at DESC`
		args = []any{receiver.UserID}
	default:
		query = `SELECT ` + messageColumns + ` FROM messages WHERE receiver_link = ? ORDER BY created_at DESC`
		args = []any{receiver.Link}
	}

	return s.queryMessages(s.rebind(query), args...)
}

// ListAllMessages 返回全部留言（管理面板用）
func (s *Store) ListAllMessages() ([]domain.Message, error) {
	return s.queryMessages(`SELECT ` + messageColumns + ` FROM messages ORDER BY created_at DESC`)
}

func (s *Store) queryMessages(query string, args ...any) ([]domain.Message, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var message domain.Message
		var receiverID, receiverLink, senderID sql.NullString

		err := rows.Scan(
			&message.ID,
			&receiverID,
			&receiverLink,
			&message.Content,
			&message.IsAnonymous,
			&senderID,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if receiverID.Valid {
			message.ReceiverID = &receiverID.String
		}
		message.ReceiverLink = receiverLink.String
		if senderID.Valid {
			message.SenderID = &senderID.String
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}
