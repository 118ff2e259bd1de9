package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
)

func TestEnrollBasicQuota(t *testing.T) {
	e := newTestEnv(t)
	u := e.user(t, "alice", types.TierBasic)
	m1 := testutil.SeedModule(t, e.ctx, e.db, "intro", 1)
	m2 := testutil.SeedModule(t, e.ctx, e.db, "web", 1)

	enr, err := e.enrollments.Enroll(e.ctx, u.ID, m1.ID)
	require.NoError(t, err)
	assert.Equal(t, m1.ID, enr.ModuleID)

	_, err = e.enrollments.Enroll(e.ctx, u.ID, m2.ID)
	assert.Equal(t, apierr.CodeQuotaExceeded, apierr.CodeOf(err))
	assert.Equal(t, int64(0), e.count(t, &types.Enrollment{}, "user_id = ? AND module_id = ?", u.ID, m2.ID))
}

func TestEnrollProBundle(t *testing.T) {
	e := newTestEnv(t)
	mods := []*types.Module{
		testutil.SeedModule(t, e.ctx, e.db, "m1", 1),
		testutil.SeedModule(t, e.ctx, e.db, "m2", 1),
		testutil.SeedModule(t, e.ctx, e.db, "m3", 1),
		testutil.SeedModule(t, e.ctx, e.db, "m4", 1),
	}
	u := e.user(t, "alice", types.TierPro, mods[0].ID, mods[1].ID, mods[2].ID)

	_, err := e.enrollments.Enroll(e.ctx, u.ID, mods[3].ID)
	assert.Equal(t, apierr.CodeModuleNotInBundle, apierr.CodeOf(err))
	assert.Equal(t, int64(0), e.count(t, &types.Enrollment{}, "user_id = ?", u.ID))

	for _, m := range mods[:3] {
		_, err := e.enrollments.Enroll(e.ctx, u.ID, m.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), e.count(t, &types.Enrollment{}, "user_id = ?", u.ID))
}

func TestEnrollProQuotaCountsAllEnrollments(t *testing.T) {
	e := newTestEnv(t)
	outside := testutil.SeedModule(t, e.ctx, e.db, "legacy", 1)
	bundle := []*types.Module{
		testutil.SeedModule(t, e.ctx, e.db, "m1", 1),
		testutil.SeedModule(t, e.ctx, e.db, "m2", 1),
		testutil.SeedModule(t, e.ctx, e.db, "m3", 1),
	}
	u := e.user(t, "alice", types.TierPro, bundle[0].ID, bundle[1].ID, bundle[2].ID)
	// an enrollment kept from an earlier tier still counts toward the limit
	testutil.SeedEnrollment(t, e.ctx, e.db, u.ID, outside.ID)

	for _, m := range bundle[:2] {
		_, err := e.enrollments.Enroll(e.ctx, u.ID, m.ID)
		require.NoError(t, err)
	}
	_, err := e.enrollments.Enroll(e.ctx, u.ID, bundle[2].ID)
	assert.Equal(t, apierr.CodeQuotaExceeded, apierr.CodeOf(err))
}

func TestEnrollPremiumUnlimited(t *testing.T) {
	e := newTestEnv(t)
	u := e.user(t, "alice", types.TierPremium)
	for _, slug := range []string{"a", "b", "c", "d", "e"} {
		m := testutil.SeedModule(t, e.ctx, e.db, slug, 1)
		_, err := e.enrollments.Enroll(e.ctx, u.ID, m.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(5), e.count(t, &types.Enrollment{}, "user_id = ?", u.ID))
}

func TestEnrollErrors(t *testing.T) {
	e := newTestEnv(t)
	m := testutil.SeedModule(t, e.ctx, e.db, "intro", 1)
	subscribed := e.user(t, "alice", types.TierPremium)
	unsubscribed := e.user(t, "bob", "")

	_, err := e.enrollments.Enroll(e.ctx, subscribed.ID, uuid.Nil)
	assert.Equal(t, apierr.CodeValidation, apierr.CodeOf(err))

	_, err = e.enrollments.Enroll(e.ctx, subscribed.ID, uuid.New())
	assert.Equal(t, apierr.CodeModuleNotFound, apierr.CodeOf(err))

	_, err = e.enrollments.Enroll(e.ctx, unsubscribed.ID, m.ID)
	assert.Equal(t, apierr.CodeNoSubscription, apierr.CodeOf(err))

	_, err = e.enrollments.Enroll(e.ctx, subscribed.ID, m.ID)
	require.NoError(t, err)
	_, err = e.enrollments.Enroll(e.ctx, subscribed.ID, m.ID)
	assert.Equal(t, apierr.CodeAlreadyEnrolled, apierr.CodeOf(err))
	assert.Equal(t, int64(1), e.count(t, &types.Enrollment{}, "user_id = ?", subscribed.ID))
}
