// Package fixtures provides the read-only baseline datasets the store falls back to
// when nothing has been persisted: bundled data, a directory of files, or an HTTP origin.
package fixtures

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/axsol/backoffice/pkg/core"
)

//go:embed builtin/*.json
var builtinFS embed.FS

// Memory is a FixtureProvider over records held in memory. Load hands out copies.
type Memory struct {
	data map[string][]core.Record
}

// NewMemory creates a provider over data. The map is copied.
func NewMemory(data map[string][]core.Record) *Memory {
	m := &Memory{data: make(map[string][]core.Record, len(data))}
	for entity, records := range data {
		m.data[entity] = cloneAll(records)
	}
	return m
}

// Builtin returns the bundled mock dataset: clients, projects and contracts.
func Builtin() *Memory {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		panic(fmt.Sprintf("fixtures: read builtin: %v", err))
	}
	m := &Memory{data: make(map[string][]core.Record, len(entries))}
	for _, e := range entries {
		raw, err := builtinFS.ReadFile(path.Join("builtin", e.Name()))
		if err != nil {
			panic(fmt.Sprintf("fixtures: read %s: %v", e.Name(), err))
		}
		var records []core.Record
		if err := json.Unmarshal(raw, &records); err != nil {
			panic(fmt.Sprintf("fixtures: parse %s: %v", e.Name(), err))
		}
		m.data[strings.TrimSuffix(e.Name(), ".json")] = records
	}
	return m
}

// Load implements core.FixtureProvider.
func (m *Memory) Load(_ context.Context, entity string) ([]core.Record, bool, error) {
	records, ok := m.data[entity]
	if !ok {
		return nil, false, nil
	}
	return cloneAll(records), true, nil
}

// Entities lists the entities the provider has data for.
func (m *Memory) Entities() []string {
	out := make([]string, 0, len(m.data))
	for e := range m.data {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// cloneAll deep-copies records through JSON so nested slices are not shared.
func cloneAll(records []core.Record) []core.Record {
	raw, err := json.Marshal(records)
	if err != nil {
		out := make([]core.Record, len(records))
		for i, r := range records {
			out[i] = r.Clone()
		}
		return out
	}
	var out []core.Record
	_ = json.Unmarshal(raw, &out)
	if out == nil {
		out = []core.Record{}
	}
	return out
}

// Chain consults providers in order; the first that has the entity wins.
type Chain []core.FixtureProvider

// Load implements core.FixtureProvider.
func (c Chain) Load(ctx context.Context, entity string) ([]core.Record, bool, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		records, ok, err := p.Load(ctx, entity)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return records, true, nil
		}
	}
	return nil, false, nil
}

var (
	_ core.FixtureProvider = (*Memory)(nil)
	_ core.FixtureProvider = Chain(nil)
)
