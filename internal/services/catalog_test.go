package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
)

func TestCatalogHidesUnpublished(t *testing.T) {
	e := newTestEnv(t)
	pub := e.seedModule(t, "pub", 2, 1)
	draft := e.seedModule(t, "draft", 1)
	require.NoError(t, e.db.Model(draft).Update("is_published", false).Error)

	cards, err := e.catalog.ListModules(e.ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, pub.ID, cards[0].ID)
	assert.Equal(t, int64(2), cards[0].ChapterCount)
	assert.Equal(t, int64(3), cards[0].LessonCount)

	_, err = e.catalog.GetModule(e.ctx, draft.ID)
	assert.Equal(t, apierr.CodeModuleNotFound, apierr.CodeOf(err))
}

func TestRoadmapAndPrerequisites(t *testing.T) {
	e := newTestEnv(t)
	a := e.seedModule(t, "a", 1)
	b := e.seedModule(t, "b", 1)
	c := e.seedModule(t, "c", 1)
	path := &types.LearningPath{Title: "Web", Slug: "web", ModuleIDs: datatypes.JSONSlice[uuid.UUID]{a.ID, b.ID, c.ID}}
	require.NoError(t, e.repos.Path.Create(dbcOf(e), path))
	require.NoError(t, e.repos.Path.AddPrerequisite(dbcOf(e), b.ID, a.ID))

	entries, err := e.catalog.Roadmap(e.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Position)
	assert.Equal(t, 3, entries[0].Total)
	assert.Equal(t, a.ID, entries[0].Previous.ID)
	assert.Equal(t, c.ID, entries[0].Next.ID)

	pre, err := e.catalog.Prerequisites(e.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, pre, 1)
	assert.Equal(t, a.ID, pre[0].ID)

	view, err := e.catalog.GetPath(e.ctx, path.ID)
	require.NoError(t, err)
	assert.Len(t, view.ModuleDetails, 3)

	_, err = e.catalog.Roadmap(e.ctx, uuid.New())
	assert.Equal(t, apierr.CodeModuleNotFound, apierr.CodeOf(err))
}
