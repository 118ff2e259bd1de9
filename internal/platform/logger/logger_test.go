package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestSensitiveKeysAreRedacted(t *testing.T) {
	log, logs := observed()
	log.Info("login",
		"email", "alice@example.com",
		"newPassword", "hunter22",
		"user_id", "2f1c5d1e-0000-0000-0000-000000000001",
		"lesson", "intro",
	)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["email"])
	assert.Equal(t, "[REDACTED]", fields["newPassword"])
	assert.Equal(t, "intro", fields["lesson"])

	hashed, _ := fields["user_id"].(string)
	assert.True(t, strings.HasPrefix(hashed, "hash:"), hashed)
	assert.Len(t, hashed, len("hash:")+12)
}

func TestJWTValuesAreRedactedUnderAnyKey(t *testing.T) {
	log, logs := observed()
	log.With("component", "test").Warn("odd", "value", "eyJhbGciOiJIUzI1NiJ9.eyJ1c2VySWQiOiIxIn0.sig")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["value"])
	assert.Equal(t, "test", fields["component"])
}

func TestHashIsStable(t *testing.T) {
	assert.Equal(t, hashValue("abc"), hashValue("abc"))
	assert.NotEqual(t, hashValue("abc"), hashValue("abd"))
	assert.Empty(t, hashValue(nil))
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"production", "development", "test"} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		l.Debug("hello")
	}
}

func TestLearnerFieldsAreHashedCatalogFieldsKept(t *testing.T) {
	log, logs := observed()
	log.Info("award",
		"userId", "u-1",
		"achievement_id", "a-1",
		"enrollment_id", "e-1",
		"target_user_id", "u-2",
		"lesson_id", "l-1",
		"module_id", "m-1",
		"bio", "I like Go",
		"channel", "user:2f1c5d1e-0000-0000-0000-000000000001",
	)

	fields := logs.All()[0].ContextMap()
	for _, k := range []string{"userId", "achievement_id", "enrollment_id", "target_user_id"} {
		v, _ := fields[k].(string)
		assert.True(t, strings.HasPrefix(v, "hash:"), "%s=%s", k, v)
	}
	assert.Equal(t, "l-1", fields["lesson_id"])
	assert.Equal(t, "m-1", fields["module_id"])
	assert.Equal(t, "[REDACTED]", fields["bio"])

	ch, _ := fields["channel"].(string)
	assert.True(t, strings.HasPrefix(ch, "user:hash:"), ch)
	assert.NotContains(t, ch, "2f1c5d1e")
}

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"userId":      "user_id",
		"UserID":      "user_id",
		"user-id":     "user_id",
		"session_id":  "session_id",
		"newPassword": "new_password",
		" lesson_id ": "lesson_id",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeKey(in), in)
	}
}
