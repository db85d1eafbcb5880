package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wazmoi/backend/internal/auth"
	jwtpkg "wazmoi/backend/internal/auth/jwt"
	"wazmoi/backend/internal/config"
	"wazmoi/backend/internal/monitoring"
	"wazmoi/backend/internal/service"
	"wazmoi/backend/internal/storage/memory"
)

// Prometheus collectors register globally, so the whole package shares one set.
var testMetrics = monitoring.NewMetrics()

const testJWTSecret = "router-test-secret-0123456789abcdefghij"

type testEnv struct {
	router *gin.Engine
	store  *memory.Store
}

func newTestEnv(t *testing.T, requireAuth bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Delivery: config.DeliveryConfig{
			StrictReceiverValidation: true,
			MaxContentLength:         500,
			BaseURL:                  "http://localhost:8080",
		},
		Inbox: config.InboxConfig{RequireAuth: requireAuth},
		CORS:  config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	store := memory.NewStore()
	log := zap.NewNop()

	delivery := service.NewDeliveryService(store, store, cfg.Delivery, log)
	inbox := service.NewInboxService(store, store, log)
	privateLinks := service.NewPrivateLinkService(store, cfg.Delivery.BaseURL, log)
	profiles := service.NewProfileService(store, store)
	admin := service.NewAdminService(store)
	authService := auth.NewService(store)
	jwtManager := jwtpkg.NewManager(testJWTSecret, "wazmoi", 15*time.Minute, 7*24*time.Hour)

	router := NewRouter(RouterDependencies{
		Config:       cfg,
		AuthService:  authService,
		Delivery:     delivery,
		Inbox:        inbox,
		PrivateLinks: privateLinks,
		Profiles:     profiles,
		Admin:        admin,
		JWTManager:   jwtManager,
		Metrics:      testMetrics,
		Logger:       log,
	})

	return &testEnv{router: router, store: store}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, &env
}

// register creates a user through the HTTP surface and returns the
// profile link and an access token for the new session.
func (e *testEnv) register(t *testing.T, username, fullName string) (profileLink, accessToken string) {
	t.Helper()

	rec, env := e.do(t, http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"password": "correct-horse-battery",
		"fullName": fullName,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data struct {
		User struct {
			ProfileLink string `json:"profileLink"`
		} `json:"user"`
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.User.ProfileLink)
	require.NotEmpty(t, data.AccessToken)
	return data.User.ProfileLink, data.AccessToken
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, true)

	link, _ := env.register(t, "amina", "Amina Koné")
	assert.Regexp(t, `^amina-kon[e]?-[a-z0-9]{5}$`, link)

	rec, e := env.do(t, http.MethodPost, "/api/login", "", gin.H{
		"identifier": "amina",
		"password":   "correct-horse-battery",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.NotEmpty(t, data.AccessToken)

	// wrong password is a plain 401
	rec, _ = env.do(t, http.MethodPost, "/api/login", "", gin.H{
		"identifier": "amina",
		"password":   "wrong-password-here",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSendToUnknownReceiverStrictMode(t *testing.T) {
	env := newTestEnv(t, false)

	rec, _ := env.do(t, http.MethodPost, "/api/messages", "", gin.H{
		"receiver": "ghost-99999",
		"content":  "hello?",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInboxAccessControl(t *testing.T) {
	env := newTestEnv(t, true)

	link, token := env.register(t, "amina", "Amina Koné")

	rec, _ := env.do(t, http.MethodPost, "/api/messages", "", gin.H{
		"receiver": link,
		"content":  "anonymous hello",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// anonymous visitor cannot read the inbox
	rec, _ = env.do(t, http.MethodGet, "/api/messages/"+link, "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// the owner session can
	rec, e := env.do(t, http.MethodGet, "/api/messages/"+link, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Messages []struct {
			Content     string      `json:"content"`
			IsAnonymous bool        `json:"isAnonymous"`
			Sender      interface{} `json:"sender"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &data))
	require.Len(t, data.Messages, 1)
	assert.Equal(t, "anonymous hello", data.Messages[0].Content)
	assert.True(t, data.Messages[0].IsAnonymous)
	assert.Nil(t, data.Messages[0].Sender)

	// a different user's session cannot
	_, otherToken := env.register(t, "bruno", "Bruno")
	rec, _ = env.do(t, http.MethodGet, "/api/messages/"+link, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPrivateLinkFlow(t *testing.T) {
	env := newTestEnv(t, true)

	rec, e := env.do(t, http.MethodGet, "/create-private-link/whisper", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		PrivateLink string `json:"privateLink"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &data))

	parsed, err := url.Parse(data.PrivateLink)
	require.NoError(t, err)
	firstToken := parsed.Query().Get("token")
	require.NotEmpty(t, firstToken)

	// the pseudonym inbox is empty here, access is what matters
	rec, _ = env.do(t, http.MethodGet, "/whisper/private?token="+firstToken, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// no token, wrong token
	rec, _ = env.do(t, http.MethodGet, "/whisper/private", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = env.do(t, http.MethodGet, "/whisper/private?token=deadbeef", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// reissuing replaces the token: the old link goes dark
	rec, e = env.do(t, http.MethodGet, "/create-private-link/whisper", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(e.Data, &data))
	parsed, err = url.Parse(data.PrivateLink)
	require.NoError(t, err)
	secondToken := parsed.Query().Get("token")
	require.NotEqual(t, firstToken, secondToken)

	rec, _ = env.do(t, http.MethodGet, "/whisper/private?token="+firstToken, "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = env.do(t, http.MethodGet, "/whisper/private?token="+secondToken, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminDataRequiresAdminRole(t *testing.T) {
	env := newTestEnv(t, false)

	_, token := env.register(t, "amina", "Amina Koné")

	rec, _ := env.do(t, http.MethodGet, "/admin/data", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/admin/data", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// promote the user and try again
	user, err := env.store.GetUserByUsername("amina")
	require.NoError(t, err)
	user.IsAdmin = true
	require.NoError(t, env.store.UpdateUser(user))

	rec, e := env.do(t, http.MethodGet, "/admin/data", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Users    []json.RawMessage `json:"users"`
		Profiles []json.RawMessage `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.Len(t, data.Users, 1)

	// password hashes never leave the process
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestProfileUpdateIsOwnerOnly(t *testing.T) {
	env := newTestEnv(t, false)

	link, token := env.register(t, "amina", "Amina Koné")
	_, otherToken := env.register(t, "bruno", "Bruno")

	body := gin.H{"bio": "hello", "location": "Abidjan"}

	rec, _ := env.do(t, http.MethodPut, "/api/profile/amina", otherToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = env.do(t, http.MethodPut, "/api/profile/amina", token, body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, e := env.do(t, http.MethodGet, fmt.Sprintf("/api/profile/%s", link), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Bio      string `json:"bio"`
		Location string `json:"location"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &view))
	assert.Equal(t, "hello", view.Bio)
	assert.Equal(t, "Abidjan", view.Location)
}
