package sql

import (
	"errors"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"wazmoi/backend/internal/storage"
)

// Email is optional but carries a unique index: an empty email must be
// written as NULL so that any number of email-less accounts can coexist,
// matching the memory store's behavior.
func TestNullIfEmpty(t *testing.T) {
	v := nullIfEmpty("amina@example.com")
	assert.True(t, v.Valid)
	assert.Equal(t, "amina@example.com", v.String)

	v = nullIfEmpty("")
	assert.False(t, v.Valid, "empty string must become NULL, not a '' value")
}

func TestRebind(t *testing.T) {
	pg := &Store{driverName: "postgres"}
	my := &Store{driverName: "mysql"}

	query := `INSERT INTO t (a, b, c) VALUES (?, ?, ?)`

	assert.Equal(t, `INSERT INTO t (a, b, c) VALUES ($1, $2, $3)`, pg.rebind(query))
	assert.Equal(t, query, my.rebind(query))
}

func TestTranslateUserConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "postgres username constraint",
			err:  &pq.Error{Code: "23505", Constraint: "idx_users_username"},
			want: storage.ErrDuplicateUsername,
		},
		{
			name: "postgres email constraint",
			err:  &pq.Error{Code: "23505", Constraint: "idx_users_email"},
			want: storage.ErrDuplicateEmail,
		},
		{
			name: "postgres profile link constraint",
			err:  &pq.Error{Code: "23505", Constraint: "idx_users_profile_link"},
			want: storage.ErrDuplicateProfileLink,
		},
		{
			name: "mysql duplicate entry on email",
			err:  &gomysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'users.idx_users_email'"},
			want: storage.ErrDuplicateEmail,
		},
		{
			name: "unrelated error passes through",
			err:  errors.New("connection reset"),
			want: nil, // untranslated
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateUserConflict(tt.err)
			if tt.want == nil {
				assert.Equal(t, tt.err, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}
