package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/domain/learning"
	"github.com/yungbote/learnit-backend/internal/pkg/pointers"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{
		Email:    username + "@example.com",
		Username: username,
		Password: "pw",
		Role:     types.RoleUser,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedAdmin(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := SeedUser(tb, ctx, tx, username)
	if err := tx.WithContext(ctx).Model(u).Update("role", types.RoleAdmin).Error; err != nil {
		tb.Fatalf("promote admin: %v", err)
	}
	u.Role = types.RoleAdmin
	return u
}

// SeedModule creates a module with the given number of lessons per chapter.
func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string, lessonsPerChapter ...int) *types.Module {
	tb.Helper()
	m := &types.Module{
		Title:          "Module " + slug,
		Slug:           slug,
		Description:    "about " + slug,
		Category:       learning.CategoryFundamental,
		EstimatedHours: 2,
		IsPublished:    true,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	for ci, n := range lessonsPerChapter {
		ch := types.Chapter{ModuleID: m.ID, Title: fmt.Sprintf("Chapter %d", ci+1), Order: ci + 1}
		if err := tx.WithContext(ctx).Create(&ch).Error; err != nil {
			tb.Fatalf("seed chapter: %v", err)
		}
		for li := 0; li < n; li++ {
			l := types.Lesson{ChapterID: ch.ID, Title: fmt.Sprintf("Lesson %d.%d", ci+1, li+1), Order: li + 1, Content: "body"}
			if err := tx.WithContext(ctx).Create(&l).Error; err != nil {
				tb.Fatalf("seed lesson: %v", err)
			}
			ch.Lessons = append(ch.Lessons, l)
		}
		m.Chapters = append(m.Chapters, ch)
	}
	return m
}

// SeedTiers inserts BASIC (1), PRO (3) and PREMIUM (unlimited).
func SeedTiers(tb testing.TB, ctx context.Context, tx *gorm.DB) map[types.TierName]*types.SubscriptionTier {
	tb.Helper()
	tiers := []*types.SubscriptionTier{
		{Name: types.TierBasic, DisplayName: "Basic", ModuleLimit: pointers.Ptr(1), Price: 0, Features: datatypes.JSONSlice[string]{"1 module"}},
		{Name: types.TierPro, DisplayName: "Pro", ModuleLimit: pointers.Ptr(3), Price: 99000, Features: datatypes.JSONSlice[string]{"3 modules"}},
		{Name: types.TierPremium, DisplayName: "Premium", Price: 199000, Features: datatypes.JSONSlice[string]{"all modules"}},
	}
	out := make(map[types.TierName]*types.SubscriptionTier, len(tiers))
	for _, t := range tiers {
		if err := tx.WithContext(ctx).Create(t).Error; err != nil {
			tb.Fatalf("seed tier: %v", err)
		}
		out[t.Name] = t
	}
	return out
}

func SeedSubscription(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, tier *types.SubscriptionTier, selected ...uuid.UUID) *types.UserSubscription {
	tb.Helper()
	s := &types.UserSubscription{
		UserID:          userID,
		TierID:          tier.ID,
		SelectedModules: datatypes.JSONSlice[uuid.UUID](selected),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subscription: %v", err)
	}
	s.Tier = tier
	return s
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, moduleID uuid.UUID) *types.Enrollment {
	tb.Helper()
	e := &types.Enrollment{UserID: userID, ModuleID: moduleID}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}
