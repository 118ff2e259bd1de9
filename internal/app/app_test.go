package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnit-backend/internal/data/db"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
	"github.com/yungbote/learnit-backend/internal/services"
)

type envelope struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	cfg := Config{
		Env:  "test",
		Port: 0,
		DB: db.Config{
			Driver:     db.DriverSQLite,
			SQLitePath: filepath.Join(dir, "app.db"),
		},
		JWTSecret:    "test-secret",
		JWTExpiresIn: 24 * time.Hour,
		AvatarDir:    filepath.Join(dir, "avatars"),
		AvatarURL:    "/static/avatars",
		SeedOnStart:  true,
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a, err := New(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	require.NoError(t, a.Start(ctx))
	return a
}

func do(t *testing.T, a *App, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
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
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Error.Code
}

func registerAndToken(t *testing.T, a *App, email, username string) string {
	t.Helper()
	w, body := do(t, a, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "username": username, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func moduleIDs(t *testing.T, a *App) []string {
	t.Helper()
	w, body := do(t, a, http.MethodGet, "/api/modules", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	mods, _ := body["modules"].([]any)
	require.GreaterOrEqual(t, len(mods), 2)
	ids := make([]string, 0, len(mods))
	for _, m := range mods {
		ids = append(ids, m.(map[string]any)["id"].(string))
	}
	return ids
}

func TestHealthAndPublicRoutes(t *testing.T) {
	a := newTestApp(t)

	w, _ := do(t, a, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := do(t, a, http.MethodGet, "/api/subscriptions/tiers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["tiers"], 3)

	moduleIDs(t, a)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)

	w, _ := do(t, a, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", errCode(t, w))

	w, _ = do(t, a, http.MethodGet, "/api/progress/user", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterLoginMe(t *testing.T) {
	a := newTestApp(t)
	registerAndToken(t, a, "alice@example.com", "alice")

	w, body := do(t, a, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token := body["token"].(string)

	w, body = do(t, a, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])

	w, _ = do(t, a, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, a, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@example.com", "username": "alice2", "password": "secret1",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email_taken", errCode(t, w))
}

func TestBasicQuotaOverHTTP(t *testing.T) {
	a := newTestApp(t)
	token := registerAndToken(t, a, "bob@example.com", "bob")
	ids := moduleIDs(t, a)

	w, body := do(t, a, http.MethodPost, "/api/progress/enroll", token, map[string]string{"moduleId": ids[0]})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Successfully enrolled in module", body["message"])

	w, _ = do(t, a, http.MethodPost, "/api/progress/enroll", token, map[string]string{"moduleId": ids[0]})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_enrolled", errCode(t, w))

	w, _ = do(t, a, http.MethodPost, "/api/progress/enroll", token, map[string]string{"moduleId": ids[1]})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "quota_exceeded", errCode(t, w))
}

func TestLearningFlowOverHTTP(t *testing.T) {
	a := newTestApp(t)
	token := registerAndToken(t, a, "cara@example.com", "cara")
	ids := moduleIDs(t, a)

	w, _ := do(t, a, http.MethodPost, "/api/progress/enroll", token, map[string]string{"moduleId": ids[0]})
	require.Equal(t, http.StatusCreated, w.Code)

	var rawLessonID string
	require.NoError(t, a.DB.DB().Raw(
		`SELECT lessons.id FROM lessons JOIN chapters ON chapters.id = lessons.chapter_id WHERE chapters.module_id = ? LIMIT 1`,
		ids[0],
	).Scan(&rawLessonID).Error)
	lessonID, err := uuid.Parse(rawLessonID)
	require.NoError(t, err)

	w, body := do(t, a, http.MethodPost, "/api/sessions/start", token, map[string]string{"lessonId": lessonID.String()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	session := body["session"].(map[string]any)
	sessionID := session["id"].(string)

	w, body = do(t, a, http.MethodPost, "/api/sessions/heartbeat", token, map[string]string{"sessionId": sessionID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["sessionActive"])

	w, body = do(t, a, http.MethodPost, "/api/progress/complete-lesson", token, map[string]string{"lessonId": lessonID.String()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	progress := body["progress"].(map[string]any)
	assert.Equal(t, true, progress["completed"])

	w, _ = do(t, a, http.MethodPost, "/api/sessions/end", token, map[string]string{"sessionId": sessionID})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = do(t, a, http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["notifications"])
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	a := newTestApp(t)
	userToken := registerAndToken(t, a, "dan@example.com", "dan")

	w, _ := do(t, a, http.MethodGet, "/api/admin/stats", userToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", errCode(t, w))

	_, err := a.Services.Auth.CreateAdmin(context.Background(), services.RegisterInput{
		Email: "root@example.com", Username: "root", Password: "secret1",
	})
	require.NoError(t, err)
	w, body := do(t, a, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "root@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	adminToken := body["token"].(string)

	w, body = do(t, a, http.MethodGet, "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["totalStudents"])

	w, body = do(t, a, http.MethodPost, "/api/admin/modules", adminToken, map[string]any{
		"title": "Systems Design", "description": "Scaling things", "category": "WEB_DEV", "estimatedHours": 4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := body["module"].(map[string]any)

	w, body = do(t, a, http.MethodDelete, "/api/admin/modules/"+created["id"].(string), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, body["deleted"])
}

func TestProModuleSelectionOverHTTP(t *testing.T) {
	a := newTestApp(t)
	token := registerAndToken(t, a, "dana@example.com", "dana")
	ids := moduleIDs(t, a)

	_, body := do(t, a, http.MethodGet, "/api/subscriptions/tiers", "", nil)
	var proID string
	for _, raw := range body["tiers"].([]any) {
		tier := raw.(map[string]any)
		if tier["name"] == "PRO" {
			proID = tier["id"].(string)
		}
	}
	require.NotEmpty(t, proID)

	w, _ := do(t, a, http.MethodPut, "/api/subscriptions/upgrade", token, map[string]any{
		"tierId": proID, "selectedModules": []string{ids[0]},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = do(t, a, http.MethodPut, "/api/subscriptions/modules", token, map[string]any{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_module_selection", errCode(t, w))

	w, _ = do(t, a, http.MethodPut, "/api/subscriptions/modules", token, map[string]any{"selectedModules": nil})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, body = do(t, a, http.MethodPut, "/api/subscriptions/modules", token, map[string]any{"selectedModules": []string{}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sub := body["subscription"].(map[string]any)
	assert.Empty(t, sub["selectedModules"])
}
