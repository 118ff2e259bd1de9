package cascade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnit-backend/internal/domain"
)

func indexOf(plan []Kind, k Kind) int {
	for i, p := range plan {
		if p == k {
			return i
		}
	}
	return -1
}

func TestPlanOrdersOwnersFirst(t *testing.T) {
	g := Ownership()

	plan, err := g.Plan(Module)
	require.NoError(t, err)
	assert.Equal(t, Module, plan[0])
	assert.Less(t, indexOf(plan, Chapter), indexOf(plan, Lesson))
	assert.Less(t, indexOf(plan, Lesson), indexOf(plan, Progress))
	assert.Less(t, indexOf(plan, Lesson), indexOf(plan, Session))
	assert.Equal(t, -1, indexOf(plan, User))
	assert.Equal(t, -1, indexOf(plan, Notification))

	plan, err = g.Plan(User)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Kind{User, Profile, Subscription, Enrollment, Progress, Session, Achievement, Notification}, plan)

	plan, err = g.Plan(Lesson)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Kind{Lesson, Progress, Session}, plan)
}

func TestPlanRejectsCycles(t *testing.T) {
	g := New().Node("a", &types.Module{}).Node("b", &types.Chapter{}).
		Own("a", "b", "module_id").Own("b", "a", "id")
	_, err := g.Plan("a")
	assert.Error(t, err)

	_, err = g.Plan("missing")
	assert.Error(t, err)
}

func seedLearnerState(t *testing.T, ctx context.Context, tx *gorm.DB, u *types.User, m *types.Module) {
	t.Helper()
	testutil.SeedEnrollment(t, ctx, tx, u.ID, m.ID)
	now := time.Now().UTC()
	for _, ch := range m.Chapters {
		for _, l := range ch.Lessons {
			require.NoError(t, tx.Create(&types.UserProgress{UserID: u.ID, LessonID: l.ID, Completed: true, CompletedAt: &now}).Error)
			require.NoError(t, tx.Create(&types.LearningSession{UserID: u.ID, LessonID: l.ID, ModuleID: m.ID, StartTime: now, LastPing: now}).Error)
		}
	}
}

func TestDeleteModuleLeavesNoOrphans(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)

	u := testutil.SeedUser(t, ctx, db, "alice")
	target := testutil.SeedModule(t, ctx, db, "go-basics", 2, 1)
	other := testutil.SeedModule(t, ctx, db, "go-advanced", 1)
	seedLearnerState(t, ctx, db, u, target)
	seedLearnerState(t, ctx, db, u, other)
	require.NoError(t, db.Create(&types.ModulePrerequisite{ModuleID: other.ID, PrerequisiteID: target.ID}).Error)
	require.NoError(t, db.Create(&types.ModulePrerequisite{ModuleID: target.ID, PrerequisiteID: other.ID}).Error)

	var res Result
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = Ownership().Delete(tx, Module, []uuid.UUID{target.ID})
		return err
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res[Module])
	assert.EqualValues(t, 2, res[Chapter])
	assert.EqualValues(t, 3, res[Lesson])
	assert.EqualValues(t, 3, res[Progress])
	assert.EqualValues(t, 3, res[Session])
	assert.EqualValues(t, 2, res[Prerequisite])

	assert.Zero(t, testutil.Count(t, db, &types.Module{}, "id = ?", target.ID))
	assert.Zero(t, testutil.Count(t, db, &types.Chapter{}, "module_id = ?", target.ID))
	assert.Zero(t, testutil.Count(t, db, &types.Enrollment{}, "module_id = ?", target.ID))
	assert.Zero(t, testutil.Count(t, db, &types.LearningSession{}, "module_id = ?", target.ID))
	assert.Zero(t, testutil.Count(t, db, &types.ModulePrerequisite{}, ""))
	assert.Zero(t, testutil.Count(t, db, &types.Lesson{}, "chapter_id NOT IN (?)", db.Model(&types.Chapter{}).Select("id")))
	assert.Zero(t, testutil.Count(t, db, &types.UserProgress{}, "lesson_id NOT IN (?)", db.Model(&types.Lesson{}).Select("id")))

	assert.EqualValues(t, 1, testutil.Count(t, db, &types.Module{}, "id = ?", other.ID))
	assert.EqualValues(t, 1, testutil.Count(t, db, &types.UserProgress{}, ""))
	assert.EqualValues(t, 1, testutil.Count(t, db, &types.Enrollment{}, ""))
	assert.EqualValues(t, 1, testutil.Count(t, db, &types.User{}, ""))
}

func TestDeleteUserRemovesOwnedRows(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tiers := testutil.SeedTiers(t, ctx, db)

	u := testutil.SeedUser(t, ctx, db, "bob")
	keep := testutil.SeedUser(t, ctx, db, "carol")
	m := testutil.SeedModule(t, ctx, db, "swift", 1)
	for _, who := range []*types.User{u, keep} {
		seedLearnerState(t, ctx, db, who, m)
		testutil.SeedSubscription(t, ctx, db, who.ID, tiers[types.TierBasic])
		require.NoError(t, db.Create(&types.Profile{UserID: who.ID, Nickname: who.Username}).Error)
		require.NoError(t, db.Create(&types.Notification{UserID: who.ID, Type: "SYSTEM", Title: "hi", Message: "hi"}).Error)
		require.NoError(t, db.Create(&types.Achievement{UserID: who.ID, Type: "FIRST_LESSON", Title: "x"}).Error)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := Ownership().Delete(tx, User, []uuid.UUID{u.ID})
		return err
	})
	require.NoError(t, err)

	for _, model := range []any{&types.Profile{}, &types.UserSubscription{}, &types.Enrollment{}, &types.UserProgress{}, &types.LearningSession{}, &types.Achievement{}, &types.Notification{}} {
		assert.Zero(t, testutil.Count(t, db, model, "user_id = ?", u.ID), "%T left behind", model)
		assert.EqualValues(t, 1, testutil.Count(t, db, model, "user_id = ?", keep.ID), "%T of other user touched", model)
	}
	assert.Zero(t, testutil.Count(t, db, &types.User{}, "id = ?", u.ID))
	assert.EqualValues(t, 1, testutil.Count(t, db, &types.Module{}, ""))
}

func TestDeleteMissingRoot(t *testing.T) {
	db := testutil.DB(t)
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := Ownership().Delete(tx, Chapter, []uuid.UUID{uuid.New()})
		return err
	})
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestDeleteRollsBackWithCaller(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	m := testutil.SeedModule(t, ctx, db, "kotlin", 2)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := Ownership().Delete(tx, Module, []uuid.UUID{m.ID}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.EqualValues(t, 1, testutil.Count(t, db, &types.Module{}, "id = ?", m.ID))
	assert.EqualValues(t, 2, testutil.Count(t, db, &types.Lesson{}, ""))
}
