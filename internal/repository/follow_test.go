package repository

import (
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowEnsureIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewFollowRepository(db)

	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")

	require.NoError(t, repo.Ensure(testCtx, reader.ID, author.ID))
	require.NoError(t, repo.Ensure(testCtx, reader.ID, author.ID))
	require.NoError(t, repo.Ensure(testCtx, reader.ID, author.ID))

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "repeated follows must keep a single edge")
}

func TestFollowExists(t *testing.T) {
	db := newTestDB(t)
	repo := NewFollowRepository(db)

	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")

	following, err := repo.Exists(testCtx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, repo.Ensure(testCtx, reader.ID, author.ID))

	following, err = repo.Exists(testCtx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// The edge is directed; the author does not follow the reader back.
	reverse, err := repo.Exists(testCtx, author.ID, reader.ID)
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestFollowRemove(t *testing.T) {
	db := newTestDB(t)
	repo := NewFollowRepository(db)

	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")

	require.NoError(t, repo.Ensure(testCtx, reader.ID, author.ID))
	require.NoError(t, repo.Remove(testCtx, reader.ID, author.ID))

	following, err := repo.Exists(testCtx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, following)

	// Removing an edge that is already gone is not an error.
	require.NoError(t, repo.Remove(testCtx, reader.ID, author.ID))
}
