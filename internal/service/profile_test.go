package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/storage/memory"
)

func TestProfile_GetByLink_ToleratesMissingProfileRow(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "amina", "amina-a1b2c")
	svc := NewProfileService(store, store)

	// No profile row was ever created for this user.
	view, err := svc.GetByLink("amina-a1b2c")
	require.NoError(t, err)
	assert.Equal(t, "amina", view.Username)
	assert.Empty(t, view.Bio)

	_, err = svc.GetByLink("ghost-99999")
	assert.ErrorIs(t, err, ErrProfileUserNotFound)
}

func TestProfile_Update(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "amina", "amina-a1b2c")
	svc := NewProfileService(store, store)

	err := svc.Update("amina", UpdateInput{
		FullName: "Amina Koné",
		Bio:      "bonjour",
		Location: "Abidjan",
		Website:  "https://example.com",
	})
	require.NoError(t, err)

	view, err := svc.GetByLink("amina-a1b2c")
	require.NoError(t, err)
	assert.Equal(t, "Amina Koné", view.FullName)
	assert.Equal(t, "bonjour", view.Bio)
	assert.Equal(t, "Abidjan", view.Location)

	// The profile link never changes on update.
	assert.Equal(t, "amina-a1b2c", view.ProfileLink)

	assert.ErrorIs(t, svc.Update("nobody", UpdateInput{}), ErrProfileUserNotFound)
}

func TestAdmin_Dump(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "amina", "amina-a1b2c")
	require.NoError(t, store.SaveProfile(&domain.Profile{UserID: "u1", UpdatedAt: time.Now()}))

	receiver := "u1"
	require.NoError(t, store.SaveMessage(&domain.Message{
		ID: "m1", ReceiverID: &receiver, Content: "hello",
		IsAnonymous: true, CreatedAt: time.Now(),
	}))

	svc := NewAdminService(store)
	dump, err := svc.Dump()
	require.NoError(t, err)
	assert.Len(t, dump.Users, 1)
	assert.Len(t, dump.Profiles, 1)
	assert.Len(t, dump.Messages, 1)
}
