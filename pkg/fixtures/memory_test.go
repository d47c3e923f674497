package fixtures_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axsol/backoffice/pkg/core"
	"github.com/axsol/backoffice/pkg/fixtures"
)

func TestBuiltin(t *testing.T) {
	ctx := context.Background()
	b := fixtures.Builtin()
	assert.Equal(t, []string{core.EntityClients, core.EntityContracts, core.EntityProjects}, b.Entities())

	clients, ok, err := b.Load(ctx, core.EntityClients)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, clients, 6)

	want := core.Record{
		"id":       float64(4),
		"nombre":   "Corporación Solar Pacífico",
		"contacto": "Ana Torres",
		"email":    "atorres@solpac.com",
		"estado":   "Activo",
	}
	if diff := cmp.Diff(want, clients[3]); diff != "" {
		t.Errorf("client 4 mismatch (-want +got):\n%s", diff)
	}

	projects, _, _ := b.Load(ctx, core.EntityProjects)
	assert.Len(t, projects, 4)
	contracts, _, _ := b.Load(ctx, core.EntityContracts)
	assert.Len(t, contracts, 3)

	_, ok, err = b.Load(ctx, core.EntityInspections)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_LoadReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := fixtures.Builtin()

	first, _, _ := m.Load(ctx, core.EntityContracts)
	first[0]["tipoServicio"] = "mutated"
	first[0]["tarifas"].([]any)[0] = "mutated"

	second, _, _ := m.Load(ctx, core.EntityContracts)
	assert.Equal(t, "Inspección Drones", second[0]["tipoServicio"])
	assert.Equal(t, "Tarifa Estándar", second[0]["tarifas"].([]any)[0])
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	override := fixtures.NewMemory(map[string][]core.Record{
		core.EntityClients: {{"id": 1, "nombre": "Override"}},
	})
	chain := fixtures.Chain{override, nil, fixtures.Builtin()}

	clients, ok, err := chain.Load(ctx, core.EntityClients)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, clients, 1)
	assert.Equal(t, "Override", clients[0]["nombre"])

	projects, ok, _ := chain.Load(ctx, core.EntityProjects)
	assert.True(t, ok)
	assert.Len(t, projects, 4)

	_, ok, _ = chain.Load(ctx, core.EntityAssets)
	assert.False(t, ok)
}

func TestBuiltinWriteThrough(t *testing.T) {
	ctx := context.Background()
	storage := &countingStorage{data: map[string][]byte{}}
	store := core.NewStore(storage, core.WithFixtures(fixtures.Builtin()))

	assert.Len(t, store.GetAll(ctx, core.EntityClients), 6)
	assert.Len(t, store.GetAll(ctx, core.EntityClients), 6)
	assert.Equal(t, 1, storage.setCount(), "fixture is written through once")
}

type countingStorage struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func (s *countingStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *countingStorage) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	s.data[key] = value
	return nil
}

func (s *countingStorage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *countingStorage) setCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}
