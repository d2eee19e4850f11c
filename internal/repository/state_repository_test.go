package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devrep/reputation-registry/internal/config"
	"github.com/devrep/reputation-registry/internal/domain"
	"github.com/devrep/reputation-registry/internal/persistence"
	"github.com/devrep/reputation-registry/internal/registry"
)

// exerciseStateRepository runs the behavior every backend must share.
func exerciseStateRepository(t *testing.T, repo StateRepository) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))

	_, ok, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Commit(ctx, []registry.Write{
		{Key: "p|alice", Value: []byte{0x01, 0x00, 0xff}},
		{Key: "count:users", Value: []byte("1")},
	}))

	v, ok, err := repo.Get(ctx, "p|alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x00, 0xff}, v)

	require.NoError(t, repo.Commit(ctx, []registry.Write{{Key: "count:users", Value: []byte("2")}}))
	v, _, err = repo.Get(ctx, "count:users")
	require.NoError(t, err)
	assert.Equal(t, "2", string(v))

	require.NoError(t, repo.Commit(ctx, nil))

	// the ledger runs unchanged on top of the backend
	ledger := registry.NewLedger(repo)
	_, err = ledger.Init(ctx, "owner")
	require.NoError(t, err)
	_, err = ledger.CreateProfile(ctx, registry.Call{Caller: "dev-1", Height: 4}, "dev")
	require.NoError(t, err)
	_, err = ledger.AddAchievement(ctx, registry.Call{Caller: "owner", Height: 5}, "dev-1",
		registry.AchievementInput{ID: 1, Title: "First", Points: 10})
	require.NoError(t, err)

	p, err := ledger.GetUserProfile(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, &domain.UserProfile{Username: "dev", Reputation: 10, JoinDate: 4}, p)
}

func TestMemoryRepository(t *testing.T) {
	repo, err := NewMemoryRepository("")
	require.NoError(t, err)
	exerciseStateRepository(t, repo)
}

func TestMemoryRepositorySnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	repo, err := NewMemoryRepository(path)
	require.NoError(t, err)
	exerciseStateRepository(t, repo)

	reopened, err := NewMemoryRepository(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, "p|alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x00, 0xff}, v)

	total, err := registry.NewLedger(reopened).GetTotalUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
}

func TestMemoryRepositoryRollsBackOnSnapshotFailure(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.Mkdir(dir, 0o755))
	repo, err := NewMemoryRepository(filepath.Join(dir, "state.json"))
	require.NoError(t, err)
	require.NoError(t, repo.Commit(ctx, []registry.Write{{Key: "a", Value: []byte("1")}}))

	require.NoError(t, os.RemoveAll(dir))
	err = repo.Commit(ctx, []registry.Write{{Key: "a", Value: []byte("2")}, {Key: "b", Value: []byte("3")}})
	require.Error(t, err)

	v, _, _ := repo.Get(ctx, "a")
	assert.Equal(t, "1", string(v))
	_, ok, _ := repo.Get(ctx, "b")
	assert.False(t, ok)
}

func TestMemoryRepositoryRejectsCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewMemoryRepository(path)
	assert.ErrorContains(t, err, "decode snapshot")
}

func TestSQLiteRepository(t *testing.T) {
	db, err := persistence.NewSQLite(context.Background(),
		config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "registry.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	exerciseStateRepository(t, NewSQLiteRepository(db.DB))
}

func TestRedisRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseStateRepository(t, NewRedisRepository(client, "test:"))
	assert.True(t, mr.Exists("test:state"))
	assert.Equal(t, "1", mr.HGet("test:state", "count:users"))
}

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("REGISTRY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("REGISTRY_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))
	_, err = pool.Exec(ctx, `TRUNCATE registry_state`)
	require.NoError(t, err)

	exerciseStateRepository(t, NewPostgresRepository(pool))
}
