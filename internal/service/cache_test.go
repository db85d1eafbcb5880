package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/storage/memory"
	redisstore "wazmoi/backend/internal/storage/redis"
)

// fakeCache is an in-memory Cache implementation for exercising the
// read-path caching without a live redis.
type fakeCache struct {
	users   map[string]*domain.User
	inboxes map[string][]domain.Message
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		users:   make(map[string]*domain.User),
		inboxes: make(map[string][]domain.Message),
	}
}

func (c *fakeCache) CacheUserByLink(user *domain.User) error {
	clone := *user
	c.users[user.ProfileLink] = &clone
	return nil
}

func (c *fakeCache) GetCachedUserByLink(link string) (*domain.User, error) {
	user, ok := c.users[link]
	if !ok {
		return nil, redisstore.ErrCacheMiss
	}
	clone := *user
	return &clone, nil
}

func (c *fakeCache) DeleteCachedUserByLink(link string) error {
	delete(c.users, link)
	return nil
}

func (c *fakeCache) CacheInbox(receiverLink string, messages []domain.Message) error {
	c.inboxes[receiverLink] = append([]domain.Message(nil), messages...)
	return nil
}

func (c *fakeCache) GetCachedInbox(receiverLink string) ([]domain.Message, error) {
	messages, ok := c.inboxes[receiverLink]
	if !ok {
		return nil, redisstore.ErrCacheMiss
	}
	return append([]domain.Message(nil), messages...), nil
}

func (c *fakeCache) InvalidateInbox(receiverLink string) error {
	delete(c.inboxes, receiverLink)
	return nil
}

func TestDelivery_ReceiverResolvedFromCache(t *testing.T) {
	store := memory.NewStore()
	svc := strictDelivery(store)

	// The receiver exists only in the cache: a hit must satisfy strict
	// resolution without touching the store.
	cache := newFakeCache()
	require.NoError(t, cache.CacheUserByLink(&domain.User{
		ID: "u1", Username: "amina", ProfileLink: "amina-a1b2c",
	}))
	svc.SetCache(cache)

	msg, err := svc.Send(SendInput{
		ReceiverLink: "amina-a1b2c",
		Content:      "hello",
		IsAnonymous:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, msg.ReceiverID)
	assert.Equal(t, "u1", *msg.ReceiverID)
}

func TestDelivery_Send_PopulatesUserCacheAndInvalidatesInbox(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "amina", "amina-a1b2c")
	svc := strictDelivery(store)

	cache := newFakeCache()
	require.NoError(t, cache.CacheInbox("amina-a1b2c", []domain.Message{{ID: "stale"}}))
	svc.SetCache(cache)

	_, err := svc.Send(SendInput{
		ReceiverLink: "amina-a1b2c",
		Content:      "fresh message",
		IsAnonymous:  true,
	})
	require.NoError(t, err)

	// the store lookup landed in the user cache
	cached, err := cache.GetCachedUserByLink("amina-a1b2c")
	require.NoError(t, err)
	assert.Equal(t, "u1", cached.ID)

	// and the stale inbox entry is gone
	_, err = cache.GetCachedInbox("amina-a1b2c")
	assert.ErrorIs(t, err, redisstore.ErrCacheMiss)
}

func TestInbox_List_ServedFromCache(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, "u1", "amina", "amina-a1b2c")
	svc := NewInboxService(store, store, zap.NewNop())

	cache := newFakeCache()
	require.NoError(t, cache.CacheInbox("amina-a1b2c", []domain.Message{
		{ID: "m2", Content: "second", IsAnonymous: true, CreatedAt: time.Now()},
		{ID: "m1", Content: "first", IsAnonymous: true, CreatedAt: time.Now().Add(-time.Minute)},
	}))
	svc.SetCache(cache)

	// nothing in the store: the listing is served entirely from cache
	views, err := svc.List("amina-a1b2c")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "m2", views[0].ID)
	assert.Equal(t, "m1", views[1].ID)

	again, err := svc.List("amina-a1b2c")
	require.NoError(t, err)
	assert.Equal(t, views, again)
}

func TestProfile_Update_InvalidatesUserCache(t *testing.T) {
	store := memory.NewStore()
	user := seedUser(t, store, "u1", "amina", "amina-a1b2c")
	svc := NewProfileService(store, store)

	cache := newFakeCache()
	require.NoError(t, cache.CacheUserByLink(user))
	svc.SetCache(cache)

	require.NoError(t, svc.Update("amina", UpdateInput{FullName: "Amina Koné"}))

	// the cached snapshot predates the rename and must be dropped
	_, err := cache.GetCachedUserByLink("amina-a1b2c")
	assert.ErrorIs(t, err, redisstore.ErrCacheMiss)
}
