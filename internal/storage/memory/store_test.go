package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/storage"
)

func newUser(id, username, email, link string) *domain.User {
	return &domain.User{
		ID:          id,
		Username:    username,
		Email:       email,
		ProfileLink: link,
		AvatarColor: "#3498db",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestCreateUser_DuplicateKeys(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.CreateUser(newUser("u1", "alice", "alice@example.com", "alice-a1b2c")))

	err := store.CreateUser(newUser("u2", "Alice", "other@example.com", "alice-zzzzz"))
	assert.ErrorIs(t, err, storage.ErrDuplicateUsername)

	err = store.CreateUser(newUser("u3", "bob", "ALICE@example.com", "bob-zzzzz"))
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

	err = store.CreateUser(newUser("u4", "carol", "carol@example.com", "alice-a1b2c"))
	assert.ErrorIs(t, err, storage.ErrDuplicateProfileLink)
}

func TestCreateUser_EmailIsOptional(t *testing.T) {
	store := NewStore()

	// any number of email-less accounts may coexist
	require.NoError(t, store.CreateUser(newUser("u1", "alice", "", "alice-a1b2c")))
	require.NoError(t, store.CreateUser(newUser("u2", "bob", "", "bob-d4e5f")))

	_, err := store.GetUserByEmail("")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestUpdateUser_ReindexesEmail(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.CreateUser(newUser("u1", "alice", "alice@example.com", "alice-a1b2c")))
	require.NoError(t, store.CreateUser(newUser("u2", "bob", "bob@example.com", "bob-d4e5f")))

	u, err := store.GetUserByID("u1")
	require.NoError(t, err)

	// taking another user's email is a conflict
	u.Email = "BOB@example.com"
	assert.ErrorIs(t, store.UpdateUser(u), storage.ErrDuplicateEmail)

	// changing email moves the index entry: old key gone, new key resolves
	u.Email = "alice.new@example.com"
	require.NoError(t, store.UpdateUser(u))

	_, err = store.GetUserByEmail("alice@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	got, err := store.GetUserByEmail("alice.new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	// and the freed email can be claimed again
	require.NoError(t, store.CreateUser(newUser("u3", "carol", "alice@example.com", "carol-g7h8i")))
}

func TestGetUser_Lookups(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.CreateUser(newUser("u1", "alice", "alice@example.com", "alice-a1b2c")))

	byID, err := store.GetUserByID("u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := store.GetUserByUsername("ALICE")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	byLink, err := store.GetUserByProfileLink("alice-a1b2c")
	require.NoError(t, err)
	assert.Equal(t, "u1", byLink.ID)

	_, err = store.GetUserByProfileLink("ghost-99999")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestUpdateUser_ProfileLinkImmutable(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.CreateUser(newUser("u1", "alice", "alice@example.com", "alice-a1b2c")))

	u, err := store.GetUserByID("u1")
	require.NoError(t, err)
	u.ProfileLink = "hijacked-00000"
	u.FullName = "Alice A."
	require.NoError(t, store.UpdateUser(u))

	got, err := store.GetUserByID("u1")
	require.NoError(t, err)
	assert.Equal(t, "alice-a1b2c", got.ProfileLink)
	assert.Equal(t, "Alice A.", got.FullName)
}

func TestListMessages_OrderAndUnion(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.CreateUser(newUser("u1", "alice", "alice@example.com", "alice-a1b2c")))

	receiverID := "u1"
	base := time.Now()

	// One message addressed by id, one by link: the inbox unions both forms.
	require.NoError(t, store.SaveMessage(&domain.Message{
		ID: "m1", ReceiverID: &receiverID, Content: "first",
		IsAnonymous: true, CreatedAt: base,
	}))
	require.NoError(t, store.SaveMessage(&domain.Message{
		ID: "m2", ReceiverLink: "alice-a1b2c", Content: "second",
		IsAnonymous: true, CreatedAt: base.Add(time.Second),
	}))
	require.NoError(t, store.SaveMessage(&domain.Message{
		ID: "m3", ReceiverLink: "someone-else", Content: "not hers",
		IsAnonymous: true, CreatedAt: base.Add(2 * time.Second),
	}))

	msgs, err := store.ListMessages(domain.ReceiverRef{UserID: "u1", Link: "alice-a1b2c"})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m2", msgs[0].ID)
	assert.Equal(t, "m1", msgs[1].ID)

	// Listing twice without new writes returns the identical sequence.
	again, err := store.ListMessages(domain.ReceiverRef{UserID: "u1", Link: "alice-a1b2c"})
	require.NoError(t, err)
	assert.Equal(t, msgs, again)
}

func TestReplacePrivateLink(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.ReplacePrivateLink(&domain.PrivateLink{
		Pseudonym: "ghost", Token: "token-one", CreatedAt: time.Now(),
	}))
	require.NoError(t, store.ReplacePrivateLink(&domain.PrivateLink{
		Pseudonym: "ghost", Token: "token-two", CreatedAt: time.Now(),
	}))

	got, err := store.GetPrivateLink("ghost")
	require.NoError(t, err)
	assert.Equal(t, "token-two", got.Token)

	_, err = store.GetPrivateLink("nobody")
	assert.ErrorIs(t, err, storage.ErrPrivateLinkNotFound)
}
