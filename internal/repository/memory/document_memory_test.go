package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdnapi/internal/model"
	"cdnapi/internal/repository"
)

const testHash = "8f434346648f6b96df89dda901c5176b10a6d83961dd3c1ac88b59b2dc327aa4"

func TestDocumentMemory_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentMemory()

	created, err := repo.Create(ctx, &model.Document{
		Hash:         testHash,
		StoragePath:  "documents/" + testHash + ".txt",
		Size:         2,
		ContentType:  "text/plain",
		CreatedAt:    time.Now().UTC(),
		Descriptions: []string{"greeting"},
	})
	require.NoError(t, err)
	assert.Equal(t, testHash, created.ID)

	byHash, err := repo.FindByHash(ctx, testHash)
	require.NoError(t, err)
	assert.Equal(t, created, byHash)

	byID, err := repo.FindByID(ctx, testHash)
	require.NoError(t, err)
	assert.Equal(t, created, byID)
}

func TestDocumentMemory_FindMissing(t *testing.T) {
	repo := NewDocumentMemory()

	doc, err := repo.FindByID(context.Background(), testHash)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, doc)
}

func TestDocumentMemory_AppendDescription(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentMemory()

	_, err := repo.Create(ctx, &model.Document{Hash: testHash, CreatedAt: time.Now()})
	require.NoError(t, err)

	require.NoError(t, repo.AppendDescription(ctx, testHash, "first"))
	require.NoError(t, repo.AppendDescription(ctx, testHash, "second"))

	doc, err := repo.FindByID(ctx, testHash)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, doc.Descriptions)

	err = repo.AppendDescription(ctx, "missing", "x")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDocumentMemory_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentMemory()

	_, err := repo.Create(ctx, &model.Document{Hash: testHash, Descriptions: []string{"original"}})
	require.NoError(t, err)

	doc, err := repo.FindByID(ctx, testHash)
	require.NoError(t, err)
	doc.Descriptions[0] = "mutated"

	again, err := repo.FindByID(ctx, testHash)
	require.NoError(t, err)
	assert.Equal(t, []string{"original"}, again.Descriptions)
}

func TestDocumentMemory_List(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentMemory()

	older := "1111111111111111111111111111111111111111111111111111111111111111"
	newer := "2222222222222222222222222222222222222222222222222222222222222222"
	base := time.Now().UTC()

	_, err := repo.Create(ctx, &model.Document{Hash: older, CreatedAt: base.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &model.Document{Hash: newer, CreatedAt: base})
	require.NoError(t, err)

	items, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer, items[0].ID)
	assert.Equal(t, older, items[1].ID)

	capped, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	assert.Equal(t, newer, capped[0].ID)
}

func TestDocumentMemory_ValidID(t *testing.T) {
	repo := NewDocumentMemory()

	assert.True(t, repo.ValidID(testHash))
	assert.False(t, repo.ValidID("a2f1c6e0-5b3d-4f9a-8c2e-1d0b9a8f7e6d"))
}
