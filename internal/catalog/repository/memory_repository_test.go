package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/shopgrid/internal/catalog/domain"
)

func TestMemoryProductRepository_OrderingAndPaging(t *testing.T) {
	ctx := context.Background()
	same := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	repo := NewMemoryProductRepository().WithClock(func() time.Time { return same })

	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &domain.Product{Title: title, Category: "X"}))
	}

	all, err := repo.Find(ctx, domain.MatchAll(), domain.Page{Offset: 0, Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i-1].ID, all[i].ID, "equal timestamps fall back to id descending")
	}

	page, err := repo.Find(ctx, domain.MatchAll(), domain.Page{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, all[1].ID, page[0].ID)

	past, err := repo.Find(ctx, domain.MatchAll(), domain.Page{Offset: 3, Limit: 1})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestMemoryProductRepository_RejectsNegativeWindow(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository()
	require.NoError(t, repo.Create(ctx, &domain.Product{Title: "a", Category: "X"}))

	_, err := repo.Find(ctx, domain.MatchAll(), domain.Page{Offset: -16, Limit: 8})
	assert.ErrorIs(t, err, domain.ErrInvalidPage)
}

func TestMemoryProductRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository()

	p := &domain.Product{Title: "lamp", Category: "Home"}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "lamp", got.Title)

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = repo.FindByID(ctx, "65f0c0ffee")
	assert.ErrorIs(t, err, domain.ErrInvalidProductID)
}

func TestMemoryProductRepository_DistinctCategories(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository()

	for _, c := range []string{"Tech", "Books", "Tech", "Home"} {
		require.NoError(t, repo.Create(ctx, &domain.Product{Title: "x", Category: c}))
	}

	got, err := repo.DistinctCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Books", "Home", "Tech"}, got)
}
