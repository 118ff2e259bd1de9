package services

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
)

func register(t *testing.T, e *testEnv, email, username string) *AuthResult {
	t.Helper()
	res, err := e.auth.Register(e.ctx, RegisterInput{Email: email, Username: username, Password: "secret1"})
	require.NoError(t, err)
	return res
}

func TestRegisterProvisionsAccount(t *testing.T) {
	e := newTestEnv(t)
	res := register(t, e, "  Alice@Example.com ", "alice")

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, types.RoleUser, res.User.Role)
	assert.NotEqual(t, "secret1", res.User.Password)

	require.NotNil(t, res.User.Profile)
	assert.Equal(t, "alice", res.User.Profile.Nickname)
	assert.True(t, strings.HasPrefix(res.User.Profile.AvatarURL, "/static/avatars/"), res.User.Profile.AvatarURL)

	acct, err := e.auth.Me(e.ctx, res.User.ID)
	require.NoError(t, err)
	require.NotNil(t, acct.Subscription)
	assert.Equal(t, types.TierBasic, acct.Subscription.Tier.Name)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	e := newTestEnv(t)
	register(t, e, "alice@example.com", "alice")

	cases := []struct {
		name string
		in   RegisterInput
		code string
	}{
		{"duplicate email", RegisterInput{Email: "ALICE@example.com", Username: "other", Password: "secret1"}, apierr.CodeEmailTaken},
		{"duplicate username", RegisterInput{Email: "b@example.com", Username: "alice", Password: "secret1"}, apierr.CodeUsernameTaken},
		{"bad email", RegisterInput{Email: "nope", Username: "bob", Password: "secret1"}, apierr.CodeValidation},
		{"email without domain", RegisterInput{Email: "a@", Username: "bob", Password: "secret1"}, apierr.CodeValidation},
		{"long username", RegisterInput{Email: "b@example.com", Username: strings.Repeat("b", 31), Password: "secret1"}, apierr.CodeValidation},
		{"short username", RegisterInput{Email: "b@example.com", Username: "bo", Password: "secret1"}, apierr.CodeValidation},
		{"short password", RegisterInput{Email: "b@example.com", Username: "bob", Password: "12345"}, apierr.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.auth.Register(e.ctx, tc.in)
			assert.Equal(t, tc.code, apierr.CodeOf(err))
		})
	}
	assert.Equal(t, int64(1), e.count(t, &types.User{}, "1 = 1"))
}

func TestLoginAndParseToken(t *testing.T) {
	e := newTestEnv(t)
	reg := register(t, e, "alice@example.com", "alice")

	_, err := e.auth.Login(e.ctx, "alice@example.com", "wrong-pass")
	assert.Equal(t, apierr.CodeInvalidCredentials, apierr.CodeOf(err))
	_, err = e.auth.Login(e.ctx, "ghost@example.com", "secret1")
	assert.Equal(t, apierr.CodeInvalidCredentials, apierr.CodeOf(err))

	res, err := e.auth.Login(e.ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	claims, err := e.auth.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), claims.UserID)
	assert.Equal(t, string(types.RoleUser), claims.Role)
}

func TestParseTokenRejects(t *testing.T) {
	e := newTestEnv(t)
	res := register(t, e, "alice@example.com", "alice")

	_, err := e.auth.ParseToken("")
	assert.Equal(t, apierr.CodeAuth, apierr.CodeOf(err))

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{UserID: res.User.ID.String()})
	raw, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = e.auth.ParseToken(raw)
	assert.Equal(t, apierr.CodeAuth, apierr.CodeOf(err))

	e.auth.(*authService).now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	_, err = e.auth.ParseToken(res.Token)
	assert.Equal(t, apierr.CodeAuth, apierr.CodeOf(err))
}

func TestCreateAdminPromotesExisting(t *testing.T) {
	e := newTestEnv(t)
	reg := register(t, e, "alice@example.com", "alice")

	u, err := e.auth.CreateAdmin(e.ctx, RegisterInput{Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, u.ID)
	assert.Equal(t, types.RoleAdmin, u.Role)

	fresh, err := e.auth.CreateAdmin(e.ctx, RegisterInput{Email: "root@example.com", Username: "root", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, fresh.IsAdmin())
}
