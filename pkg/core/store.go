package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultFetchTimeout bounds a background fixture fetch.
const DefaultFetchTimeout = 30 * time.Second

// Store provides CRUD access to named entity collections. Reads go to the persisted
// storage first, then to the fixtures; writes go to the persisted storage only.
//
// Read-modify-write cycles are not serialized: two concurrent writers on the same
// collection resolve as last write wins.
type Store struct {
	storage      Storage
	fixtures     FixtureProvider
	fetcher      Fetcher
	logger       *slog.Logger
	writeThrough bool
	fetchTimeout time.Duration
	seedLimit    int

	mu       sync.Mutex
	inflight map[string]bool
	wg       sync.WaitGroup
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithFixtures sets the provider consulted when storage has no entry.
func WithFixtures(p FixtureProvider) StoreOption {
	return func(s *Store) { s.fixtures = p }
}

// WithFetcher enables the asynchronous fallback for entities without fixtures.
func WithFetcher(f Fetcher) StoreOption {
	return func(s *Store) { s.fetcher = f }
}

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWriteThrough controls whether fixture reads are cached into storage. Enabled by default.
func WithWriteThrough(enabled bool) StoreOption {
	return func(s *Store) { s.writeThrough = enabled }
}

// WithFetchTimeout bounds background fetches. Zero keeps DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithSeedConcurrency limits how many entities Seed processes at once.
func WithSeedConcurrency(n int) StoreOption {
	return func(s *Store) { s.seedLimit = n }
}

// NewStore creates a Store over the given storage backend.
func NewStore(storage Storage, opts ...StoreOption) *Store {
	s := &Store{
		storage:      storage,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		writeThrough: true,
		fetchTimeout: DefaultFetchTimeout,
		seedLimit:    4,
		inflight:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Storage returns the persisted backend.
func (s *Store) Storage() Storage {
	return s.storage
}

// Close waits for background fetches and closes the backend if it holds resources.
func (s *Store) Close() error {
	s.Wait()
	if c, ok := s.storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Wait blocks until every scheduled background fetch has finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

// --- Strict API ---

// All returns the collection of entity. The records are always the degraded result
// of the read path (storage, fixture, empty); a non-nil error reports the first
// failure met on the way and may be ignored by callers that only need data.
//
// Workflow:
//  1. Persisted entry present and parseable -> return it.
//  2. Fixture present -> write it through to storage and return it.
//  3. Fetcher configured -> schedule a background fetch, return empty.
func (s *Store) All(ctx context.Context, entity string) ([]Record, error) {
	if entity == "" {
		return []Record{}, ErrInvalidEntity
	}
	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	raw, found, err := s.storage.Get(ctx, entity)
	switch {
	case err != nil:
		s.logger.Warn("storage read failed", "entity", entity, "error", err)
		keep(fmt.Errorf("read %s: %w: %w", entity, ErrUnavailable, err))
	case found:
		records, err := decodeRecords(raw)
		if err == nil {
			return records, nil
		}
		s.logger.Error("stored collection is corrupt", "entity", entity, "error", err)
		keep(fmt.Errorf("parse %s: %w: %w", entity, ErrCorrupt, err))
	}

	if s.fixtures != nil {
		records, ok, err := s.fixtures.Load(ctx, entity)
		switch {
		case err != nil:
			s.logger.Error("fixture load failed", "entity", entity, "error", err)
			keep(fmt.Errorf("load fixture %s: %w: %w", entity, ErrFetch, err))
		case ok:
			if s.writeThrough {
				if err := s.persist(ctx, entity, records); err != nil {
					s.logger.Error("fixture write-through failed", "entity", entity, "error", err)
					keep(err)
				} else {
					s.logger.Debug("cached fixture into storage", "entity", entity, "records", len(records))
				}
			}
			return records, firstErr
		}
	}

	if s.fetcher != nil {
		s.logger.Warn("no data in memory, fetching in background", "entity", entity)
		s.schedule(ctx, entity)
	}
	return []Record{}, firstErr
}

// Find returns the first record whose id numerically equals id.
func (s *Store) Find(ctx context.Context, entity string, id any) (Record, error) {
	records, readErr := s.All(ctx, entity)
	for _, rec := range records {
		if rec.SameID(id) {
			return rec, nil
		}
	}
	notFound := fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
	if readErr != nil {
		return nil, errors.Join(notFound, readErr)
	}
	return nil, notFound
}

// Put stores rec in entity and returns the stored record.
//
//   - id matches an existing record: fields are shallow-merged into it at the same position.
//   - id present but unmatched: rec is appended as-is, keeping its id.
//   - id absent: rec receives NextID and is appended.
//
// The whole collection is persisted. On a write failure the record is still returned
// together with the error.
func (s *Store) Put(ctx context.Context, entity string, rec Record) (Record, error) {
	if entity == "" {
		return rec, ErrInvalidEntity
	}
	records, readErr := s.All(ctx, entity)
	if readErr != nil {
		s.logger.Debug("saving over degraded read", "entity", entity, "error", readErr)
	}

	item := rec.Clone()
	if item.HasID() {
		idx := -1
		for i, existing := range records {
			if existing.SameID(item[IDField]) {
				idx = i
				break
			}
		}
		if idx >= 0 {
			merged := records[idx].Clone()
			for k, v := range item {
				merged[k] = v
			}
			records[idx] = merged
			item = merged
		} else {
			records = append(records, item)
		}
	} else {
		item[IDField] = NextID(records)
		records = append(records, item)
	}

	if err := s.persist(ctx, entity, records); err != nil {
		s.logger.Error("save failed", "entity", entity, "error", err)
		return item, err
	}
	return item, nil
}

// Remove deletes every record whose id numerically equals id. It reports whether the
// collection shrank and was persisted.
func (s *Store) Remove(ctx context.Context, entity string, id any) (bool, error) {
	if entity == "" {
		return false, ErrInvalidEntity
	}
	records, _ := s.All(ctx, entity)
	kept := make([]Record, 0, len(records))
	for _, rec := range records {
		if !rec.SameID(id) {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}
	if err := s.persist(ctx, entity, kept); err != nil {
		s.logger.Error("delete failed", "entity", entity, "id", id, "error", err)
		return false, err
	}
	return true, nil
}

// Match returns the records satisfying every non-empty criterion (see Record.Matches).
func (s *Store) Match(ctx context.Context, entity string, criteria Record) ([]Record, error) {
	records, err := s.All(ctx, entity)
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.Matches(criteria) {
			out = append(out, rec)
		}
	}
	return out, err
}

// --- Lenient API ---

// GetAll returns the collection of entity, degrading every failure to the fixture or
// an empty sequence.
func (s *Store) GetAll(ctx context.Context, entity string) []Record {
	records, _ := s.All(ctx, entity)
	return records
}

// GetByID returns the record with the given id, coercing both sides to numbers.
func (s *Store) GetByID(ctx context.Context, entity string, id any) (Record, bool) {
	rec, err := s.Find(ctx, entity, id)
	return rec, err == nil
}

// Save stores rec and returns it with its final id. Write failures are logged only.
func (s *Store) Save(ctx context.Context, entity string, rec Record) Record {
	stored, _ := s.Put(ctx, entity, rec)
	return stored
}

// Delete removes the records with the given id and reports whether anything was removed.
func (s *Store) Delete(ctx context.Context, entity string, id any) bool {
	ok, _ := s.Remove(ctx, entity, id)
	return ok
}

// Filter returns the records satisfying criteria.
func (s *Store) Filter(ctx context.Context, entity string, criteria Record) []Record {
	records, _ := s.Match(ctx, entity, criteria)
	return records
}

// --- Seeding & fetching ---

// Exists reports whether storage holds an entry for entity.
func (s *Store) Exists(ctx context.Context, entity string) bool {
	_, found, err := s.storage.Get(ctx, entity)
	return err == nil && found
}

// Seed persists the baseline dataset of every entity that has no entry yet, using the
// fixture when there is one and a synchronous fetch otherwise. With no names it seeds
// the whole entity set. All entities are attempted; the first failure is returned.
func (s *Store) Seed(ctx context.Context, entities ...string) error {
	if len(entities) == 0 {
		entities = Entities()
	}
	var g errgroup.Group
	if s.seedLimit > 0 {
		g.SetLimit(s.seedLimit)
	}
	for _, entity := range entities {
		g.Go(func() error {
			return s.seedOne(ctx, entity)
		})
	}
	return g.Wait()
}

func (s *Store) seedOne(ctx context.Context, entity string) error {
	if entity == "" {
		return ErrInvalidEntity
	}
	if s.Exists(ctx, entity) {
		s.logger.Debug("already in storage, skipping", "entity", entity)
		return nil
	}
	if s.fixtures != nil {
		records, ok, err := s.fixtures.Load(ctx, entity)
		if err != nil {
			return fmt.Errorf("load fixture %s: %w: %w", entity, ErrFetch, err)
		}
		if ok {
			if err := s.persist(ctx, entity, records); err != nil {
				return err
			}
			s.logger.Info("initialized from fixture", "entity", entity, "records", len(records))
			return nil
		}
	}
	if s.fetcher == nil {
		return nil
	}
	records, err := s.FetchEntity(ctx, entity)
	if err != nil {
		return err
	}
	s.logger.Info("initialized from fetch", "entity", entity, "records", len(records))
	return nil
}

// FetchEntity loads entity through the fetcher and persists the result. A fetch
// failure yields an empty collection and an ErrFetch error.
func (s *Store) FetchEntity(ctx context.Context, entity string) ([]Record, error) {
	if s.fetcher == nil {
		return []Record{}, fmt.Errorf("fetch %s: %w: no fetcher configured", entity, ErrFetch)
	}
	records, err := s.fetcher.Fetch(ctx, entity)
	if err != nil {
		s.logger.Error("fetch failed", "entity", entity, "error", err)
		return []Record{}, fmt.Errorf("fetch %s: %w: %w", entity, ErrFetch, err)
	}
	if records == nil {
		records = []Record{}
	}
	if err := s.persist(ctx, entity, records); err != nil {
		s.logger.Error("storing fetched data failed", "entity", entity, "error", err)
		return records, err
	}
	return records, nil
}

// schedule starts one background fetch per entity. The fetch outlives the caller's
// cancellation but not the fetch timeout.
func (s *Store) schedule(ctx context.Context, entity string) {
	s.mu.Lock()
	if s.inflight[entity] {
		s.mu.Unlock()
		return
	}
	s.inflight[entity] = true
	s.wg.Add(1)
	s.mu.Unlock()

	bg := context.WithoutCancel(ctx)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, entity)
			s.mu.Unlock()
		}()

		fetchCtx, cancel := context.WithTimeout(bg, s.fetchTimeout)
		defer cancel()
		if records, err := s.FetchEntity(fetchCtx, entity); err == nil {
			s.logger.Debug("background fetch stored", "entity", entity, "records", len(records))
		}
	}()
}

func (s *Store) persist(ctx context.Context, entity string, records []Record) error {
	data, err := encodeRecords(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w: %w", entity, ErrCorrupt, err)
	}
	if err := s.storage.Set(ctx, entity, data); err != nil {
		if !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return fmt.Errorf("write %s: %w", entity, err)
	}
	return nil
}
