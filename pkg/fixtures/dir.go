package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/axsol/backoffice/pkg/core"
)

// DataDir is the directory fixture files live in, relative to the provider root.
const DataDir = "data"

var extensions = []string{".json", ".yaml", ".yml"}

// Dir reads fixtures from data/<entity>.{json,yaml,yml} in a file system. Every
// file is schema-validated before use.
type Dir struct {
	fsys fs.FS
}

// NewDir creates a provider over fsys, typically os.DirFS(root).
func NewDir(fsys fs.FS) *Dir {
	return &Dir{fsys: fsys}
}

// Entities lists the entities that have a fixture file.
func (d *Dir) Entities() ([]string, error) {
	matches, err := doublestar.Glob(d.fsys, DataDir+"/*.{json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("glob fixtures: %w", err)
	}
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := path.Base(m)
		entity := strings.TrimSuffix(name, path.Ext(name))
		if !seen[entity] {
			seen[entity] = true
			out = append(out, entity)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Load implements core.FixtureProvider. Extensions are tried in order json, yaml, yml.
func (d *Dir) Load(_ context.Context, entity string) ([]core.Record, bool, error) {
	if entity == "" || strings.ContainsAny(entity, `/\`) {
		return nil, false, fmt.Errorf("%w: entity %q", ErrInvalid, entity)
	}
	for _, ext := range extensions {
		name := path.Join(DataDir, entity+ext)
		raw, err := fs.ReadFile(d.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("read %s: %w", name, err)
		}
		records, err := decode(name, ext, raw)
		if err != nil {
			return nil, false, err
		}
		return records, true, nil
	}
	return nil, false, nil
}

// Fetch implements core.Fetcher. A missing file is an error.
func (d *Dir) Fetch(ctx context.Context, entity string) ([]core.Record, error) {
	records, ok, err := d.Load(ctx, entity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", DataDir, entity, fs.ErrNotExist)
	}
	return records, nil
}

func decode(name, ext string, raw []byte) ([]core.Record, error) {
	var doc any
	switch ext {
	case ".json":
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, name, err)
		}
	default:
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, name, err)
		}
	}
	if err := validate(name, doc); err != nil {
		return nil, err
	}

	// Round-trip through JSON so YAML and JSON fixtures yield the same value kinds.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, name, err)
	}
	var records []core.Record
	if err := json.Unmarshal(normalized, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, name, err)
	}
	return records, nil
}

var (
	_ core.FixtureProvider = (*Dir)(nil)
	_ core.Fetcher         = (*Dir)(nil)
)
