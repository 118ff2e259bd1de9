package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnit-backend/internal/data/cascade"
	"github.com/yungbote/learnit-backend/internal/data/repos"
	"github.com/yungbote/learnit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/domain/engagement"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
)

func TestAdminListUsersPaginates(t *testing.T) {
	e := newTestEnv(t)
	for i := 0; i < 5; i++ {
		e.user(t, fmt.Sprintf("student%d", i), "")
	}
	testutil.SeedAdmin(t, e.ctx, e.db, "root")

	page, err := e.adminUsers.List(e.ctx, repos.UserListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, int64(6), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)

	admins, err := e.adminUsers.List(e.ctx, repos.UserListFilter{Role: types.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, admins.Users, 1)
	assert.Equal(t, 20, admins.Pagination.Limit)

	found, err := e.adminUsers.List(e.ctx, repos.UserListFilter{Search: "STUDENT3"})
	require.NoError(t, err)
	require.Len(t, found.Users, 1)
	assert.Equal(t, "student3", found.Users[0].Username)

	_, err = e.adminUsers.List(e.ctx, repos.UserListFilter{Role: "OWNER"})
	assert.Equal(t, apierr.CodeValidation, apierr.CodeOf(err))
}

func TestAdminCannotActOnSelf(t *testing.T) {
	e := newTestEnv(t)
	admin := testutil.SeedAdmin(t, e.ctx, e.db, "root")

	_, err := e.adminUsers.UpdateRole(e.ctx, admin.ID, admin.ID, types.RoleUser)
	assert.Equal(t, apierr.CodeSelfAction, apierr.CodeOf(err))

	_, err = e.adminUsers.Delete(e.ctx, admin.ID, admin.ID)
	assert.Equal(t, apierr.CodeSelfAction, apierr.CodeOf(err))
	assert.Equal(t, int64(1), e.count(t, &types.User{}, "id = ?", admin.ID))
}

func TestAdminUpdateRole(t *testing.T) {
	e := newTestEnv(t)
	admin := testutil.SeedAdmin(t, e.ctx, e.db, "root")
	u := e.user(t, "alice", "")

	got, err := e.adminUsers.UpdateRole(e.ctx, admin.ID, u.ID, types.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, got.Role)
	assert.Equal(t, int64(1), e.count(t, &types.User{}, "id = ? AND role = ?", u.ID, types.RoleAdmin))

	_, err = e.adminUsers.UpdateRole(e.ctx, admin.ID, u.ID, "ROOT")
	assert.Equal(t, apierr.CodeValidation, apierr.CodeOf(err))
	_, err = e.adminUsers.UpdateRole(e.ctx, admin.ID, uuid.New(), types.RoleUser)
	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))
}

func TestAdminDeleteUserCascades(t *testing.T) {
	e := newTestEnv(t)
	admin := testutil.SeedAdmin(t, e.ctx, e.db, "root")
	m := e.seedModule(t, "go", 2)
	u := e.user(t, "alice", types.TierBasic)
	other := e.user(t, "bob", types.TierBasic)

	_, err := e.enrollments.Enroll(e.ctx, u.ID, m.ID)
	require.NoError(t, err)
	_, err = e.enrollments.Enroll(e.ctx, other.ID, m.ID)
	require.NoError(t, err)
	_, err = e.progress.CompleteLesson(e.ctx, u.ID, m.Chapters[0].Lessons[0].ID)
	require.NoError(t, err)
	_, err = e.sessions.Start(e.ctx, u.ID, m.Chapters[0].Lessons[1].ID, uuid.Nil)
	require.NoError(t, err)
	_, err = e.repos.Profile.Ensure(dbcOf(e), u.ID, "Alice")
	require.NoError(t, err)

	details, err := e.adminUsers.Get(e.ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, details.Enrollments, 1)
	assert.Equal(t, int64(1), details.Completed)
	assert.NotEmpty(t, details.Achievements)

	res, err := e.adminUsers.Delete(e.ctx, admin.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res[cascade.User])

	for _, model := range []any{
		&types.Profile{}, &types.UserSubscription{}, &types.Enrollment{}, &types.UserProgress{},
		&types.LearningSession{}, &types.Achievement{}, &types.Notification{},
	} {
		assert.Zero(t, e.count(t, model, "user_id = ?", u.ID), "%T", model)
	}
	assert.Equal(t, int64(1), e.count(t, &types.Enrollment{}, "user_id = ?", other.ID))
	assert.Equal(t, int64(2), e.count(t, &types.Lesson{}, "chapter_id = ?", m.Chapters[0].ID))
	assert.Zero(t, e.count(t, &types.Achievement{}, "type = ?", engagement.FirstLesson))

	_, err = e.adminUsers.Delete(e.ctx, admin.ID, u.ID)
	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))
}
