package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axsol/backoffice/pkg/adapters/fs"
	"github.com/axsol/backoffice/pkg/core"
)

func newStorage(t *testing.T, cfg fs.Config) *fs.Storage {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "data")
	}
	s := fs.NewStorage(cfg)
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func TestStorage_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "data")
		require.NoError(t, fs.NewStorage(fs.Config{Path: path}).Initialize(ctx))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("MustExist fails on missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing")
		assert.Error(t, fs.NewStorage(fs.Config{Path: path, MustExist: true}).Initialize(ctx))
	})

	t.Run("Rejects a file path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		assert.Error(t, fs.NewStorage(fs.Config{Path: path, MustExist: true}).Initialize(ctx))
	})
}

func TestStorage_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t, fs.Config{})

	_, ok, err := s.Get(ctx, "clients")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "clients", []byte(`[{"id":1}]`)))
	require.NoError(t, s.Set(ctx, "work-orders", []byte(`[]`)))

	v, ok, err := s.Get(ctx, "clients")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(v))

	onDisk, err := os.ReadFile(filepath.Join(s.Path, "clients.json"))
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(onDisk))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"clients", "work-orders"}, keys)

	require.NoError(t, s.Remove(ctx, "clients"))
	require.NoError(t, s.Remove(ctx, "clients"))
	_, ok, _ = s.Get(ctx, "clients")
	assert.False(t, ok)

	require.NoError(t, s.Clear(ctx))
	keys, _ = s.Keys(ctx)
	assert.Empty(t, keys)
}

func TestStorage_InvalidKeys(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t, fs.Config{})
	for _, key := range []string{"", "../etc", "a/b", `a\b`} {
		_, _, err := s.Get(ctx, key)
		assert.ErrorIs(t, err, fs.ErrInvalidKey, key)
		assert.ErrorIs(t, s.Set(ctx, key, []byte("[]")), fs.ErrInvalidKey, key)
	}
}

func TestStorage_KeysIgnoresForeignFiles(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t, fs.Config{})
	require.NoError(t, os.WriteFile(filepath.Join(s.Path, "notes.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Path, fs.TempFilePrefix+"123"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(s.Path, "sub.json"), 0o755))
	require.NoError(t, s.Set(ctx, "assets", []byte("[]")))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"assets"}, keys)
}

func TestStorage_ReadOnly(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data")
	rw := newStorage(t, fs.Config{Path: path})
	require.NoError(t, rw.Set(ctx, "clients", []byte(`[{"id":1}]`)))

	ro := newStorage(t, fs.Config{Path: path, ReadOnly: true})
	v, ok, err := ro.Get(ctx, "clients")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(v))

	err = ro.Set(ctx, "clients", []byte(`[]`))
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.ErrorIs(t, err, core.ErrUnavailable)
	assert.ErrorIs(t, ro.Remove(ctx, "clients"), core.ErrReadOnly)

	store := core.NewStore(ro)
	assert.False(t, store.Delete(ctx, core.EntityClients, 1))
	assert.Len(t, store.GetAll(ctx, core.EntityClients), 1)
}

func TestStorage_WithStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data")
	store := core.NewStore(newStorage(t, fs.Config{Path: path}))
	store.Save(ctx, core.EntityProjects, core.Record{"nombre": "Parque Eólico"})

	// A second storage over the same directory sees the persisted collection.
	reopened := core.NewStore(newStorage(t, fs.Config{Path: path}))
	rec, ok := reopened.GetByID(ctx, core.EntityProjects, 1)
	require.True(t, ok)
	assert.Equal(t, "Parque Eólico", rec["nombre"])
}

func TestStorage_State(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t, fs.Config{ReadOnly: false})
	require.NoError(t, s.Set(ctx, "clients", []byte("[]")))

	state, ok := s.State().(fs.StorageState)
	require.True(t, ok)
	assert.Equal(t, s.Path, state.Path)
	assert.Equal(t, 1, state.Writes)
	assert.False(t, state.WatcherActive)
	assert.Equal(t, "fs", s.ComponentType())
}

func nextEvent(t *testing.T, events <-chan core.Event) core.Event {
	t.Helper()
	select {
	case e, ok := <-events:
		require.True(t, ok, "events channel closed")
		return e
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return core.Event{}
	}
}

func TestStorage_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newStorage(t, fs.Config{})
	require.NoError(t, s.Set(ctx, "projects", []byte("[]")))

	events, err := s.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "clients", []byte("[]")))
	e := nextEvent(t, events)
	assert.Equal(t, core.EventCreate, e.Type)
	assert.Equal(t, "clients", e.Entity)

	require.NoError(t, s.Set(ctx, "clients", []byte(`[{"id":1}]`)))
	e = nextEvent(t, events)
	assert.Equal(t, core.EventModify, e.Type)
	assert.Equal(t, "clients", e.Entity)

	require.NoError(t, s.Remove(ctx, "projects"))
	e = nextEvent(t, events)
	assert.Equal(t, core.EventDelete, e.Type)
	assert.Equal(t, "projects", e.Entity)

	assert.True(t, s.State().(fs.StorageState).WatcherActive)

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-events
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStorage_WatchMissingDirectory(t *testing.T) {
	s := fs.NewStorage(fs.Config{Path: filepath.Join(t.TempDir(), "missing")})
	_, err := s.Watch(context.Background())
	assert.Error(t, err)
}
