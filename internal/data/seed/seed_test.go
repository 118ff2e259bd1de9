package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnit-backend/internal/data/repos"
	"github.com/yungbote/learnit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
)

func TestEmbeddedCatalogIsValid(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.Len(t, c.Tiers, 3)
	assert.NotEmpty(t, c.Modules)
	assert.NotEmpty(t, c.Paths)
}

func TestParseRejectsUnknownPathModule(t *testing.T) {
	_, err := Parse([]byte(`
modules:
  - slug: a
    title: A
    category: WEB_DEV
paths:
  - slug: p
    title: P
    modules: [a, missing]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown module missing")
}

func TestParseRejectsBadCategory(t *testing.T) {
	_, err := Parse([]byte(`
modules:
  - slug: a
    title: A
    category: COOKING
`))
	require.Error(t, err)
}

func TestSeederRunIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	s := NewSeeder(db, log, set)
	dbc := dbctx.New(context.Background())

	c, err := Load()
	require.NoError(t, err)

	first, err := s.Run(dbc, c)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Tiers)
	assert.Equal(t, len(c.Modules), first.Modules)
	assert.Equal(t, len(c.Paths), first.Paths)

	second, err := s.Run(dbc, c)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Modules)
	assert.Equal(t, 0, second.Paths)

	assert.Equal(t, int64(3), testutil.Count(t, db, &types.SubscriptionTier{}, ""))
	assert.Equal(t, int64(len(c.Modules)), testutil.Count(t, db, &types.Module{}, ""))

	pro, err := set.Tier.GetByName(dbc, types.TierPro)
	require.NoError(t, err)
	require.NotNil(t, pro)
	require.NotNil(t, pro.ModuleLimit)
	assert.Equal(t, 3, *pro.ModuleLimit)

	premium, err := set.Tier.GetByName(dbc, types.TierPremium)
	require.NoError(t, err)
	assert.True(t, premium.Unlimited())

	web, err := set.Module.GetBySlug(dbc, "web-developer")
	require.NoError(t, err)
	require.NotNil(t, web)
	pre, err := set.Path.Prerequisites(dbc, web.ID)
	require.NoError(t, err)
	require.Len(t, pre, 1)
	assert.Equal(t, "fundamental-informatics", pre[0].Slug)

	full, err := set.Module.GetWithContent(dbc, web.ID)
	require.NoError(t, err)
	require.Len(t, full.Chapters, 1)
	require.Len(t, full.Chapters[0].Lessons, 2)
	assert.Equal(t, 1, full.Chapters[0].Lessons[0].Order)
	assert.Equal(t, 2, full.Chapters[0].Lessons[1].Order)
}
