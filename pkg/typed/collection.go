// Package typed provides a generic, type-safe view over an entity collection.
package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/axsol/backoffice/pkg/core"
)

// Model wraps a decoded record with its id.
type Model[T any] struct {
	ID    int64
	Data  T        // The typed record fields
	Saver Saver[T] // Active Record reference
}

// Saver avoids coupling Model to the concrete collection.
type Saver[T any] interface {
	Save(ctx context.Context, m *Model[T]) error
}

// Save persists the model through the attached saver.
func (m *Model[T]) Save(ctx context.Context) error {
	if m.Saver == nil {
		return fmt.Errorf("model is detached (missing Saver)")
	}
	return m.Saver.Save(ctx, m)
}

// Collection converts between T and core.Record through JSON.
type Collection[T any] struct {
	store  *core.Store
	entity string
}

// NewCollection creates a typed view of entity in store.
func NewCollection[T any](store *core.Store, entity string) *Collection[T] {
	return &Collection[T]{store: store, entity: entity}
}

// Entity returns the collection name.
func (c *Collection[T]) Entity() string {
	return c.entity
}

// All returns every record decoded as T. Like core.Store.All, the models are returned
// even when err reports a degraded read.
func (c *Collection[T]) All(ctx context.Context) ([]*Model[T], error) {
	records, readErr := c.store.All(ctx, c.entity)
	models, err := c.decodeAll(records)
	if err != nil {
		return nil, err
	}
	return models, readErr
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(ctx context.Context, id int64) (*Model[T], error) {
	rec, err := c.store.Find(ctx, c.entity, id)
	if err != nil {
		return nil, err
	}
	return c.decode(rec)
}

// Save stores the model and updates its ID and Data with the stored record.
func (c *Collection[T]) Save(ctx context.Context, m *Model[T]) error {
	rec, err := toRecord(m.Data)
	if err != nil {
		return err
	}
	if m.ID != 0 {
		rec[core.IDField] = m.ID
	} else if id, ok := rec.ID(); !ok || id == 0 {
		delete(rec, core.IDField)
	}

	stored, putErr := c.store.Put(ctx, c.entity, rec)
	decoded, err := c.decode(stored)
	if err != nil {
		return err
	}
	m.ID, m.Data = decoded.ID, decoded.Data
	if m.Saver == nil {
		m.Saver = c
	}
	return putErr
}

// Delete removes the record with the given id.
func (c *Collection[T]) Delete(ctx context.Context, id int64) (bool, error) {
	return c.store.Remove(ctx, c.entity, id)
}

// Filter returns the records matching criteria (see core.Record.Matches).
func (c *Collection[T]) Filter(ctx context.Context, criteria core.Record) ([]*Model[T], error) {
	records, readErr := c.store.Match(ctx, c.entity, criteria)
	models, err := c.decodeAll(records)
	if err != nil {
		return nil, err
	}
	return models, readErr
}

func (c *Collection[T]) decodeAll(records []core.Record) ([]*Model[T], error) {
	out := make([]*Model[T], 0, len(records))
	for i, rec := range records {
		m, err := c.decode(rec)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", c.entity, i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *Collection[T]) decode(rec core.Record) (*Model[T], error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("record marshal failed: %w", err)
	}
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed: %w", err)
	}
	id, _ := rec.ID()
	return &Model[T]{ID: id, Data: data, Saver: c}, nil
}

func toRecord(v any) (core.Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}
	var rec core.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to convert typed data to record: %w", err)
	}
	if rec == nil {
		rec = core.Record{}
	}
	return rec, nil
}
