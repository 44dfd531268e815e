package identity_test

import (
	"context"
	"testing"

	"aiPlanner/internal/models/user"
	repo "aiPlanner/internal/repository"
	"aiPlanner/internal/repository/document/inmemory"
	"aiPlanner/internal/repository/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore_LoadSave тестирует чтение и запись списка пользователей
func TestStore_LoadSave(t *testing.T) {
	ctx := context.Background()
	docs := inmemory.NewDocumentStorage()
	store := identity.New(docs)

	users, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	anna := user.New("anna", "0000")
	require.NoError(t, store.Save(ctx, []*user.User{anna}))

	users, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, anna, users[0])

	raw, err := docs.Get(ctx, repo.UsersKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"role":"USER"`)
}

// TestStore_LoadCorrupt тестирует повреждённый документ
func TestStore_LoadCorrupt(t *testing.T) {
	ctx := context.Background()
	docs := inmemory.NewDocumentStorage()
	require.NoError(t, docs.Put(ctx, repo.UsersKey, []byte(`[{"id":`)))

	users, err := identity.New(docs).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

// TestStore_MigrateLegacy тестирует одноразовый перенос старого раздела
func TestStore_MigrateLegacy(t *testing.T) {
	ctx := context.Background()
	docs := inmemory.NewDocumentStorage()
	store := identity.New(docs)

	migrated, err := store.MigrateLegacy(ctx, "MG")
	require.NoError(t, err)
	assert.False(t, migrated)

	require.NoError(t, docs.Put(ctx, repo.LegacyTasksKey, []byte(`[{"id":"legacy"}]`)))

	migrated, err = store.MigrateLegacy(ctx, "MG")
	require.NoError(t, err)
	assert.True(t, migrated)

	raw, err := docs.Get(ctx, repo.TasksKey("MG"))
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"legacy"}]`, string(raw))

	_, err = docs.Get(ctx, repo.LegacyTasksKey)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	// второй запуск ничего не делает
	migrated, err = store.MigrateLegacy(ctx, "MG")
	require.NoError(t, err)
	assert.False(t, migrated)
}
