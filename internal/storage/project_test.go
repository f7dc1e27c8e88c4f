package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistdesk/pkg/desktypes"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assistdesk.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func TestProjectRepository_InsertAndList(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, desktypes.Project{
		ID: "p1", Name: "Work", APIKey: "sk-work", ModelCount: 3, CreatedAt: created,
	}))
	require.NoError(t, repo.Insert(ctx, desktypes.Project{
		ID: desktypes.DefaultProjectID, Name: "Default project", APIKey: "sk-default",
		IsDefault: true, CreatedAt: created.Add(time.Hour),
	}))

	projects, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	// Default first regardless of creation order.
	assert.Equal(t, desktypes.DefaultProjectID, projects[0].ID)
	assert.True(t, projects[0].IsDefault)
	assert.Equal(t, "p1", projects[1].ID)
	assert.Equal(t, 3, projects[1].ModelCount)
}

func TestProjectRepository_ListEmpty(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewProjectRepository(db)

	projects, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestProjectRepository_Delete(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, desktypes.Project{
		ID: "p1", Name: "Work", APIKey: "sk-work", CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.Delete(ctx, "p1"))

	projects, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestProjectRepository_DeleteUnknown(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewProjectRepository(db)

	err := repo.Delete(context.Background(), "missing")
	var notFound *desktypes.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "project", notFound.Kind)
	assert.Equal(t, "missing", notFound.ID)
}

func TestProjectRepository_ActiveID(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	id, err := repo.ActiveID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, repo.SetActiveID(ctx, "p1"))
	id, err = repo.ActiveID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	// Upsert, not insert-only.
	require.NoError(t, repo.SetActiveID(ctx, "p2"))
	id, err = repo.ActiveID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p2", id)
}

func TestProjectRepository_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistdesk.db")

	db, err := Open(path)
	require.NoError(t, err)
	repo := NewProjectRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, desktypes.Project{
		ID: "p1", Name: "Work", APIKey: "sk-work", CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, repo.SetActiveID(ctx, "p1"))
	require.NoError(t, db.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	repo = NewProjectRepository(reopened)
	projects, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "p1", projects[0].ID)

	id, err := repo.ActiveID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p1", id)
}
