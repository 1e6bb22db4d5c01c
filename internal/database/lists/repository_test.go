package lists

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wasomaji/kitabu/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()
	dbPath := "./test_lists_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entities.ReadingList{}))

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_Create(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	list, err := repo.Create(context.Background(), "u1", "Set Books 2026", "KCSE set books", true)
	require.NoError(t, err)
	assert.NotEmpty(t, list.ID)
	assert.True(t, list.IsPublic)

	t.Run("default name is reserved for the virtual list", func(t *testing.T) {
		_, err := repo.Create(context.Background(), "u1", "default", "", false)
		assert.ErrorIs(t, err, ErrReservedName)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := repo.Create(context.Background(), "u1", "", "", false)
		assert.ErrorIs(t, err, ErrReservedName)
	})
}

func TestRepository_Update(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	list, err := repo.Create(context.Background(), "u1", "Holiday reads", "", false)
	require.NoError(t, err)

	updated, err := repo.Update(context.Background(), list.ID, "Holiday reads 2026", "revised", true)
	require.NoError(t, err)
	assert.Equal(t, "Holiday reads 2026", updated.Name)
	assert.True(t, updated.IsPublic)

	_, err = repo.Update(context.Background(), "missing", "x", "", false)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ListForUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := repo.Create(ctx, "u1", "First", "", false)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "u1", "Second", "", false)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "u2", "Other", "", false)
	require.NoError(t, err)

	lists, err := repo.ListForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, lists, 2)
}

func TestRepository_Delete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	list, err := repo.Create(context.Background(), "u1", "Ephemeral", "", false)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(context.Background(), list.ID))

	_, err = repo.GetByID(context.Background(), list.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
