package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/domain/engagement"
	"github.com/yungbote/learnit-backend/internal/domain/learning"
	"github.com/yungbote/learnit-backend/internal/pkg/pointers"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
)

func TestAwardSingleInstanceOnce(t *testing.T) {
	e := newTestEnv(t)
	u := e.user(t, "alice", types.TierBasic)
	key := engagement.SingleKey{T: engagement.FirstLesson}

	first, err := e.achievements.Award(e.ctx, u.ID, key)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, engagement.FirstLesson, first.Type)

	second, err := e.achievements.Award(e.ctx, u.ID, key)
	require.NoError(t, err)
	assert.Nil(t, second)

	assert.Equal(t, int64(1), e.count(t, &types.Achievement{}, "user_id = ? AND type = ?", u.ID, engagement.FirstLesson))
	assert.Equal(t, int64(1), e.count(t, &types.Notification{}, "user_id = ? AND type = ?", u.ID, engagement.NotifyAchievement))
}

func TestAwardChapterKeyPerInstance(t *testing.T) {
	e := newTestEnv(t)
	u := e.user(t, "alice", types.TierBasic)
	ch1 := engagement.ChapterCompleteKey{ChapterID: uuid.New(), ChapterTitle: "One"}
	ch2 := engagement.ChapterCompleteKey{ChapterID: uuid.New(), ChapterTitle: "Two"}

	a, _ := e.achievements.Award(e.ctx, u.ID, ch1)
	require.NotNil(t, a)
	a, _ = e.achievements.Award(e.ctx, u.ID, ch1)
	assert.Nil(t, a)
	a, _ = e.achievements.Award(e.ctx, u.ID, ch2)
	require.NotNil(t, a)

	assert.Equal(t, int64(2), e.count(t, &types.Achievement{}, "user_id = ? AND type = ?", u.ID, engagement.ChapterComplete))
	assert.Equal(t, int64(1), e.count(t, &types.Achievement{}, "user_id = ? AND award_key = ?", u.ID, ch1.Instance()))
}

func TestCheckTimeAchievementsAwardsEveryCrossedThreshold(t *testing.T) {
	e := newTestEnv(t)
	u := e.user(t, "alice", types.TierBasic)
	m := e.seedModule(t, "go", 1)
	lesson := m.Chapters[0].Lessons[0]

	now := e.clock.Now()
	for i := 0; i < 6; i++ {
		end := now
		require.NoError(t, e.db.Create(&types.LearningSession{
			UserID: u.ID, LessonID: lesson.ID, ModuleID: m.ID,
			StartTime: now, LastPing: now, EndTime: &end, Duration: pointers.Ptr(learning.MaxSessionSeconds),
		}).Error)
	}

	got := e.achievements.CheckTimeAchievements(e.ctx, u.ID)
	var kinds []engagement.AchievementType
	for _, a := range got {
		kinds = append(kinds, a.Type)
	}
	assert.ElementsMatch(t, []engagement.AchievementType{engagement.Time1H, engagement.Time5H}, kinds)
	assert.Empty(t, e.achievements.CheckTimeAchievements(e.ctx, u.ID))

	list, err := e.achievements.List(e.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(360), list.TotalLearningMinutes)
	assert.Len(t, list.Achievements, 2)
	assert.NotEmpty(t, list.AvailableBadges)
}

func TestCheckProfileComplete(t *testing.T) {
	e := newTestEnv(t)
	u := e.user(t, "alice", types.TierBasic)
	_, err := e.repos.Profile.Ensure(dbcOf(e), u.ID, "Alice")
	require.NoError(t, err)

	assert.Nil(t, e.achievements.CheckProfileComplete(e.ctx, u.ID))

	require.NoError(t, e.repos.Profile.UpdateFields(dbcOf(e), u.ID, map[string]any{
		"bio":        "learning go",
		"avatar_url": "/static/avatars/a.png",
	}))
	a := e.achievements.CheckProfileComplete(e.ctx, u.ID)
	require.NotNil(t, a)
	assert.Equal(t, engagement.ProfileComplete, a.Type)
}

func TestSelectBadge(t *testing.T) {
	e := newTestEnv(t)
	alice := e.user(t, "alice", types.TierBasic)
	bob := e.user(t, "bob", types.TierBasic)

	a, err := e.achievements.Award(e.ctx, alice.ID, engagement.SingleKey{T: engagement.FirstLesson})
	require.NoError(t, err)
	require.NotNil(t, a)

	_, err = e.achievements.SelectBadge(e.ctx, bob.ID, a.ID)
	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))

	_, err = e.achievements.SelectBadge(e.ctx, alice.ID, a.ID)
	require.NoError(t, err)
	p, err := e.repos.Profile.GetByUserID(dbcOf(e), alice.ID)
	require.NoError(t, err)
	require.NotNil(t, p.SelectedBadge)
	assert.Equal(t, string(engagement.FirstLesson), *p.SelectedBadge)
}
