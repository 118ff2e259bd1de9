package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnit-backend/internal/domain"
)

func TestAverageCompletion(t *testing.T) {
	cases := []struct {
		completed, students, lessons int64
		want                         int
	}{
		{0, 0, 10, 0},
		{5, 3, 0, 0},
		{3, 2, 4, 38},
		{8, 2, 4, 100},
		{20, 2, 4, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, averageCompletion(tc.completed, tc.students, tc.lessons), "%+v", tc)
	}
}

func TestDashboardStats(t *testing.T) {
	e := newTestEnv(t)
	m := e.seedModule(t, "go", 2, 2)
	testutil.SeedAdmin(t, e.ctx, e.db, "root")
	alice := e.user(t, "alice", types.TierBasic)
	e.user(t, "bob", types.TierBasic)

	_, err := e.enrollments.Enroll(e.ctx, alice.ID, m.ID)
	require.NoError(t, err)
	for _, l := range m.Chapters[0].Lessons {
		_, err := e.progress.CompleteLesson(e.ctx, alice.ID, l.ID)
		require.NoError(t, err)
	}

	stats, err := e.admin.Stats(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalStudents)
	assert.Equal(t, int64(1), stats.ActiveModules)
	assert.Equal(t, int64(1), stats.TotalEnrollments)
	assert.Equal(t, int64(4), stats.TotalLessons)
	assert.Equal(t, 25, stats.AvgCompletion)

	rows, err := e.admin.UserProgress(e.ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, alice.ID, rows[0].ID)
	assert.Equal(t, 50, rows[0].ProgressPercent)
	assert.Equal(t, 1, rows[0].EnrolledModules)

	activity, err := e.admin.RecentActivity(e.ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, activity)
	assert.LessOrEqual(t, len(activity), 10)
	for i := 1; i < len(activity); i++ {
		assert.False(t, activity[i].Timestamp.After(activity[i-1].Timestamp))
	}
}
