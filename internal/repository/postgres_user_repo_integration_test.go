//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hitoshi/pwauth/internal/database"
)

// startPostgres はPostgreSQLコンテナを起動し、マイグレーション済みのリポジトリを返す。
func startPostgres(t *testing.T) *PostgresUserRepo {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("pwauth"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.RunMigrations(connStr))

	db, err := database.Open(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresUserRepo(db)
}

func TestPostgresUserRepo_Integration(t *testing.T) {
	repo := startPostgres(t)
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		id, err := repo.Create(ctx, "a@x.com", "$2a$10$digest")
		require.NoError(t, err)
		assert.Positive(t, id)

		u, err := repo.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, "$2a$10$digest", u.PasswordDigest)

		u, err = repo.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "a@x.com", u.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.Create(ctx, "dup@x.com", "d1")
		require.NoError(t, err)
		_, err = repo.Create(ctx, "dup@x.com", "d2")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("email is case-sensitive", func(t *testing.T) {
		_, err := repo.Create(ctx, "Case@x.com", "d")
		require.NoError(t, err)
		u, err := repo.FindByEmail(ctx, "case@x.com")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("missing rows return nil", func(t *testing.T) {
		u, err := repo.FindByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, u)

		u, err = repo.FindByEmail(ctx, "nobody@x.com")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("empty digest violates check constraint", func(t *testing.T) {
		_, err := repo.Create(ctx, "empty@x.com", "")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrDuplicateEmail))
	})

	t.Run("concurrent signups with same email", func(t *testing.T) {
		const n = 10
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = repo.Create(ctx, "race@x.com", "d")
			}(i)
		}
		wg.Wait()

		var ok, dup int
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrDuplicateEmail):
				dup++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, n-1, dup)
	})
}
