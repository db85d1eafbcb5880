package service

import (
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wazmoi/backend/internal/storage/memory"
)

func newPrivateLinkService(store *memory.Store) *PrivateLinkService {
	return NewPrivateLinkService(store, "http://localhost:8080", zap.NewNop())
}

func tokenFromURL(t *testing.T, privateURL string) string {
	t.Helper()
	parsed, err := url.Parse(privateURL)
	require.NoError(t, err)
	return parsed.Query().Get("token")
}

func TestPrivateLink_IssueAndVerify(t *testing.T) {
	store := memory.NewStore()
	svc := newPrivateLinkService(store)

	privateURL, err := svc.Issue("ghost")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(privateURL, "http://localhost:8080/ghost/private?token="))

	token := tokenFromURL(t, privateURL)
	// 16 bytes of entropy, hex encoded.
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), token)

	assert.NoError(t, svc.Verify("ghost", token))
}

func TestPrivateLink_ReissueInvalidatesPrevious(t *testing.T) {
	store := memory.NewStore()
	svc := newPrivateLinkService(store)

	first, err := svc.Issue("ghost")
	require.NoError(t, err)
	second, err := svc.Issue("ghost")
	require.NoError(t, err)

	firstToken := tokenFromURL(t, first)
	secondToken := tokenFromURL(t, second)
	require.NotEqual(t, firstToken, secondToken)

	assert.ErrorIs(t, svc.Verify("ghost", firstToken), ErrForbidden)
	assert.NoError(t, svc.Verify("ghost", secondToken))
}

func TestPrivateLink_VerifyFailuresAreUniform(t *testing.T) {
	store := memory.NewStore()
	svc := newPrivateLinkService(store)

	_, err := svc.Issue("ghost")
	require.NoError(t, err)

	// Unknown pseudonym and wrong token fail with the same error, so the
	// response does not reveal whether the pseudonym exists.
	errUnknown := svc.Verify("nobody", "deadbeef")
	errWrong := svc.Verify("ghost", "deadbeef")
	assert.ErrorIs(t, errUnknown, ErrForbidden)
	assert.ErrorIs(t, errWrong, ErrForbidden)
	assert.Equal(t, errUnknown, errWrong)

	assert.ErrorIs(t, svc.Verify("ghost", ""), ErrForbidden)
}

func TestPrivateLink_PseudonymEscapedInURL(t *testing.T) {
	store := memory.NewStore()
	svc := newPrivateLinkService(store)

	privateURL, err := svc.Issue("l'ami de paul")
	require.NoError(t, err)

	parsed, err := url.Parse(privateURL)
	require.NoError(t, err)
	assert.Equal(t, "l'ami de paul", strings.TrimSuffix(strings.TrimPrefix(parsed.Path, "/"), "/private"))
}
