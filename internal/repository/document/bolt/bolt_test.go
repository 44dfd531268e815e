package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"aiPlanner/internal/repository"
	"aiPlanner/internal/repository/document/bolt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStorage(t *testing.T) (*bolt.Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "planner.db")
	storage, err := bolt.Open(path, "")
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage, path
}

// TestStorage_PutGet тестирует запись и чтение
func TestStorage_PutGet(t *testing.T) {
	ctx := context.Background()
	storage, _ := openStorage(t)

	require.NoError(t, storage.HealthCheck(ctx))
	require.NoError(t, storage.Put(ctx, "ai_planner_users", []byte(`[{"id":"owner-mg"}]`)))

	value, err := storage.Get(ctx, "ai_planner_users")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"owner-mg"}]`, string(value))
}

// TestStorage_NotFound тестирует отсутствующий ключ
func TestStorage_NotFound(t *testing.T) {
	storage, _ := openStorage(t)

	_, err := storage.Get(context.Background(), "ai_tasks_nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStorage_MoveAndDelete тестирует перенос и удаление
func TestStorage_MoveAndDelete(t *testing.T) {
	ctx := context.Background()
	storage, _ := openStorage(t)

	require.NoError(t, storage.Put(ctx, "ai_tasks_bob", []byte(`[1]`)))
	require.NoError(t, storage.Move(ctx, "ai_tasks_bob", "ai_tasks_robert"))

	_, err := storage.Get(ctx, "ai_tasks_bob")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	value, err := storage.Get(ctx, "ai_tasks_robert")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(value))

	require.NoError(t, storage.Move(ctx, "ai_tasks_missing", "ai_tasks_robert"))
	require.NoError(t, storage.Delete(ctx, "ai_tasks_robert"))

	_, err = storage.Get(ctx, "ai_tasks_robert")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStorage_Reopen тестирует сохранность данных между запусками
func TestStorage_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "planner.db")

	storage, err := bolt.Open(path, "documents")
	require.NoError(t, err)
	require.NoError(t, storage.Put(ctx, "k", []byte("v")))
	require.NoError(t, storage.Close())

	reopened, err := bolt.Open(path, "documents")
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(value))
}
