package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/repos"
	"github.com/yungbote/learnit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/cache"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/realtime"
	"github.com/yungbote/learnit-backend/internal/realtime/bus"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// testEnv is every service wired against a private SQLite database.
type testEnv struct {
	ctx   context.Context
	db    *gorm.DB
	repos repos.Set
	hub   *realtime.SSEHub
	tiers map[types.TierName]*types.SubscriptionTier
	clock *fakeClock

	notifications NotificationService
	achievements  AchievementService
	enrollments   EnrollmentService
	progress      ProgressService
	sessions      SessionService
	subscriptions SubscriptionService
	catalog       CatalogService
	content       AdminContentService
	adminUsers    AdminUserService
	admin         AdminService
	avatars       AvatarService
	auth          AuthService
	users         UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	rs := repos.NewSet(gdb, log)
	hub := realtime.NewSSEHub(log)
	clock := newFakeClock()

	e := &testEnv{ctx: ctx, db: gdb, repos: rs, hub: hub, clock: clock}
	e.tiers = testutil.SeedTiers(t, ctx, gdb)

	e.notifications = NewNotificationService(gdb, log, rs.Notification, bus.NewLocal(hub))
	e.achievements = NewAchievementService(gdb, log, rs.Achievement, rs.Session, rs.Profile, e.notifications)
	e.enrollments = NewEnrollmentService(gdb, log, rs.Module, rs.Enrollment, rs.Subscription)
	e.progress = NewProgressService(gdb, log, rs.Module, rs.Lesson, rs.Enrollment, rs.Progress, e.achievements, e.notifications)
	e.sessions = NewSessionService(gdb, log, rs.Session, rs.Lesson, rs.Module, e.achievements)
	e.sessions.(*sessionService).now = clock.Now
	e.subscriptions = NewSubscriptionService(gdb, log, rs.Tier, rs.Subscription, rs.Module, e.achievements, e.notifications, cache.Nop(), time.Minute)
	e.catalog = NewCatalogService(gdb, log, rs.Module, rs.Path, cache.Nop(), time.Minute)
	e.content = NewAdminContentService(gdb, log, rs.Module, rs.Chapter, rs.Lesson, rs.Path, rs.Subscription, e.catalog)
	e.adminUsers = NewAdminUserService(gdb, log, rs.User, rs.Enrollment, rs.Progress, rs.Achievement, rs.Subscription)
	e.admin = NewAdminService(gdb, log, rs.User, rs.Module, rs.Lesson, rs.Enrollment, rs.Progress, rs.Notification)

	avatars, err := NewAvatarService(log, t.TempDir(), "/static/avatars")
	if err != nil {
		t.Fatalf("avatar service: %v", err)
	}
	e.avatars = avatars
	e.auth = NewAuthService(gdb, log, rs.User, rs.Profile, e.subscriptions, avatars, "test-secret", time.Hour)
	e.users = NewUserService(gdb, log, rs.User, rs.Profile, avatars, e.achievements)
	return e
}

func (e *testEnv) user(t *testing.T, name string, tier types.TierName, selected ...uuid.UUID) *types.User {
	t.Helper()
	u := testutil.SeedUser(t, e.ctx, e.db, name)
	if tier != "" {
		testutil.SeedSubscription(t, e.ctx, e.db, u.ID, e.tiers[tier], selected...)
	}
	return u
}

func (e *testEnv) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	return testutil.Count(t, e.db, model, where, args...)
}

func dbcOf(e *testEnv) dbctx.Context { return dbctx.New(e.ctx) }

func (e *testEnv) seedModule(t *testing.T, slug string, lessonsPerChapter ...int) *types.Module {
	t.Helper()
	return testutil.SeedModule(t, e.ctx, e.db, slug, lessonsPerChapter...)
}
