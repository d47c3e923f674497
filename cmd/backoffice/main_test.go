package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axsol/backoffice"
	"github.com/axsol/backoffice/pkg/core"
	"github.com/axsol/backoffice/pkg/entities"
)

// run executes the CLI with an empty config file so the environment of the
// developer running the tests cannot leak in through backoffice.yaml.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "backoffice.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0644))

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
}

func TestGet_Golden(t *testing.T) {
	out, err := run(t, "", "--backend", "memory", "get", "clients", "4")
	require.NoError(t, err)
	golden(t).Assert(t, "get_clients_4", []byte(out))
}

func TestKPI_Golden(t *testing.T) {
	out, err := run(t, "", "--backend", "memory", "kpi")
	require.NoError(t, err)
	golden(t).Assert(t, "kpi", []byte(out))
}

func TestKPI_JSON(t *testing.T) {
	out, err := run(t, "", "--backend", "memory", "kpi", "--json")
	require.NoError(t, err)

	var kpis map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &kpis))
	assert.Equal(t, map[string]int{"clients": 6, "projects": 4, "active_projects": 2, "contracts": 3}, kpis)
}

func TestList(t *testing.T) {
	out, err := run(t, "", "--backend", "memory", "list", "projects")
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Len(t, records, 4)
}

func TestList_UnknownEntity(t *testing.T) {
	_, err := run(t, "", "--backend", "memory", "list", "invoices")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity")
}

func TestGet_NotFound(t *testing.T) {
	_, err := run(t, "", "--backend", "memory", "get", "clients", "99")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestFilter(t *testing.T) {
	out, err := run(t, "", "--backend", "memory", "filter", "clients", "estado=inactivo")
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	// Substring match: "Activo" does not contain "inactivo", both inactive clients do.
	require.Len(t, records, 2)
	assert.EqualValues(t, 3, records[0]["id"])
	assert.EqualValues(t, 6, records[1]["id"])
}

func TestFilter_InvalidCriterion(t *testing.T) {
	_, err := run(t, "", "--backend", "memory", "filter", "clients", "estado")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field=value")
}

func TestParseCriteria(t *testing.T) {
	got, err := parseCriteria([]string{"id=3", "activo=true", `nombre="Solar"`, "estado=Pendiente"})
	require.NoError(t, err)
	assert.Equal(t, core.Record{
		"id":     float64(3),
		"activo": true,
		"nombre": "Solar",
		"estado": "Pendiente",
	}, got)
}

func TestSaveAndDelete_Persisted(t *testing.T) {
	dir := t.TempDir()
	base := []string{"--backend", "fs", "--path", dir}

	out, err := run(t, "", append(base, "save", "clients", `{"nombre":"Nuevo Cliente","estado":"Activo"}`)...)
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	assert.EqualValues(t, 7, saved["id"])

	out, err = run(t, "", append(base, "get", "clients", "7")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Nuevo Cliente")

	out, err = run(t, "", append(base, "delete", "clients", "7")...)
	require.NoError(t, err)
	assert.Equal(t, "deleted clients 7\n", out)

	_, err = run(t, "", append(base, "delete", "clients", "7")...)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSave_Stdin(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, `{"id": 2, "estado": "Inactivo"}`, "--backend", "fs", "--path", dir, "save", "clients", "-")
	require.NoError(t, err)

	var saved map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	assert.Equal(t, "Inactivo", saved["estado"])
	assert.Equal(t, "Industrias Solares del Norte", saved["nombre"])
}

func TestSave_InvalidJSON(t *testing.T) {
	_, err := run(t, "", "--backend", "memory", "save", "clients", "{not json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid record")
}

func TestSave_TypeMismatch(t *testing.T) {
	_, err := run(t, "", "--backend", "memory", "save", "projects", `{"nombre":"Planta","clienteId":"uno"}`)
	assert.ErrorIs(t, err, entities.ErrInvalidRecord)
}

func TestSeedAndKeys(t *testing.T) {
	dir := t.TempDir()
	base := []string{"--backend", "fs", "--path", dir}

	out, err := run(t, "", append(base, "seed", "clients", "contracts")...)
	require.NoError(t, err)
	assert.Equal(t, "seeded\n", out)

	out, err = run(t, "", append(base, "keys")...)
	require.NoError(t, err)
	assert.Equal(t, "clients\ncontracts\n", out)

	out, err = run(t, "", append(base, "keys", "--sizes")...)
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Regexp(t, `(?m)^total\s+\d+$`, out)
	assert.Regexp(t, `(?m)^writable\s+true$`, out)

	// The writability check leaves no key behind.
	out, err = run(t, "", append(base, "keys")...)
	require.NoError(t, err)
	assert.Equal(t, "clients\ncontracts\n", out)
}

func TestKeys_ReadOnlyBackend(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "", "--backend", "fs", "--path", dir, "seed", "clients")
	require.NoError(t, err)

	t.Setenv("BACKOFFICE_STORAGE_READ_ONLY", "true")
	out, err := run(t, "", "--backend", "fs", "--path", dir, "keys", "--sizes")
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^writable\s+false$`, out)
}

func TestRecent(t *testing.T) {
	out, err := run(t, "", "--backend", "memory", "recent", "clients")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6) // header plus five rows
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	// Builtin clients carry no creation date, so insertion order is kept.
	assert.True(t, strings.HasPrefix(lines[1], "1 "))
}

func TestRecent_InvalidList(t *testing.T) {
	_, err := run(t, "", "--backend", "memory", "recent", "orders")
	assert.Error(t, err)
}

func TestWatch_UnsupportedBackend(t *testing.T) {
	_, err := run(t, "", "--backend", "memory", "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support watching")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "backoffice version "+backoffice.Version+"\n", out)
}

func TestInvalidBackend(t *testing.T) {
	_, err := run(t, "", "--backend", "redis", "kpi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}
