package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tair/shopgrid/internal/user/domain"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	u := &domain.User{Username: "ann", Email: "ann@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, domain.RoleUser, u.Role)

	t.Run("duplicates rejected", func(t *testing.T) {
		err := repo.Create(ctx, &domain.User{Username: "ann", Email: "other@example.com"})
		assert.ErrorIs(t, err, domain.ErrUserExists)

		exists, err := repo.ExistsByEmailOrUsername(ctx, "ann@example.com", "nobody")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("lookups", func(t *testing.T) {
		byEmail, err := repo.FindByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		_, err = repo.FindByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrInvalidUserID)

		_, err = repo.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("update role", func(t *testing.T) {
		require.NoError(t, repo.UpdateRole(ctx, u.ID, domain.RoleAdmin))

		got, err := repo.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, got.IsAdmin())

		assert.ErrorIs(t, repo.UpdateRole(ctx, uuid.NewString(), domain.RoleAdmin), domain.ErrUserNotFound)
	})
}

func TestTracingUserRepository_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx := context.Background()
	repo := NewTracingUserRepository(NewMemoryUserRepository(), "memory")

	require.NoError(t, repo.Create(ctx, &domain.User{Username: "bob", Email: "bob@example.com"}))
	_, err := repo.FindByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "repository.Create", spans[0].Name())
	assert.Equal(t, "repository.FindByEmail", spans[1].Name())
	assert.NotEqual(t, codes.Error, spans[1].Status().Code, "not found is not a span error")
}
