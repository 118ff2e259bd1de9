package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/domain/engagement"
	"github.com/yungbote/learnit-backend/internal/pkg/pointers"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUpdateProfileCompletesBadge(t *testing.T) {
	e := newTestEnv(t)
	reg := register(t, e, "alice@example.com", "alice")

	u, err := e.users.UpdateProfile(e.ctx, reg.User.ID, ProfileUpdate{
		Nickname: pointers.Ptr(" Ally "),
		Bio:      pointers.Ptr("Learning Go"),
	})
	require.NoError(t, err)
	require.NotNil(t, u.Profile)
	assert.Equal(t, "Ally", u.Profile.Nickname)
	assert.Equal(t, int64(1), e.count(t, &types.Achievement{}, "user_id = ? AND type = ?", reg.User.ID, engagement.ProfileComplete))

	register(t, e, "bob@example.com", "bob")
	_, err = e.users.UpdateProfile(e.ctx, reg.User.ID, ProfileUpdate{Email: pointers.Ptr("BOB@example.com")})
	assert.Equal(t, apierr.CodeEmailTaken, apierr.CodeOf(err))

	for _, bad := range []string{"a@", "foo", "   "} {
		_, err = e.users.UpdateProfile(e.ctx, reg.User.ID, ProfileUpdate{Email: pointers.Ptr(bad)})
		assert.Equal(t, apierr.CodeValidation, apierr.CodeOf(err), bad)
	}
	u, err = e.users.UpdateProfile(e.ctx, reg.User.ID, ProfileUpdate{Email: pointers.Ptr("Alice.New@Example.com")})
	require.NoError(t, err)
	assert.Equal(t, "alice.new@example.com", u.Email)
}

func TestChangePassword(t *testing.T) {
	e := newTestEnv(t)
	reg := register(t, e, "alice@example.com", "alice")

	err := e.users.ChangePassword(e.ctx, reg.User.ID, "wrong", "newsecret")
	assert.Equal(t, apierr.CodeInvalidCredentials, apierr.CodeOf(err))
	err = e.users.ChangePassword(e.ctx, reg.User.ID, "secret1", "123")
	assert.Equal(t, apierr.CodeValidation, apierr.CodeOf(err))

	require.NoError(t, e.users.ChangePassword(e.ctx, reg.User.ID, "secret1", "newsecret"))
	_, err = e.auth.Login(e.ctx, "alice@example.com", "newsecret")
	require.NoError(t, err)
}

func TestUploadAvatar(t *testing.T) {
	e := newTestEnv(t)
	reg := register(t, e, "alice@example.com", "alice")
	before := reg.User.Profile.AvatarURL

	u, err := e.users.UploadAvatar(e.ctx, reg.User.ID, pngBytes(t, 400, 300))
	require.NoError(t, err)
	assert.NotEqual(t, before, u.Profile.AvatarURL)

	_, err = e.users.UploadAvatar(e.ctx, reg.User.ID, []byte("not an image"))
	assert.Equal(t, apierr.CodeValidation, apierr.CodeOf(err))
}

func TestComputeInitials(t *testing.T) {
	cases := map[string]string{
		"ada lovelace": "AL",
		"grace":        "G",
		"":             "?",
		"  éclair  x":  "ÉX",
	}
	for in, want := range cases {
		assert.Equal(t, want, computeInitials(in), in)
	}
}
