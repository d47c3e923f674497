package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sort"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/axsol/backoffice/pkg/core"
)

// DebounceInterval groups bursts of filesystem events into a single event per key.
const DebounceInterval = 50 * time.Millisecond

// Watch reports changes to the collection files until ctx is cancelled, then closes
// the returned channel. Writes from this process are reported as well.
//
// Events are resolved against the directory state when the debounce window closes,
// so an atomic overwrite (temp file renamed over the target) yields one MODIFY and
// temp files never surface.
func (s *Storage) Watch(ctx context.Context) (<-chan core.Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}

	events := make(chan core.Event)
	s.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer s.setWatcherActive(false)
		defer watcher.Close()
		return s.watchLoop(ctx, watcher, known, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.config.Logger.Error("watcher stopped", "error", err)
	}))

	return events, nil
}

func (s *Storage) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, known map[string]bool, out chan<- core.Event) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if s.config.Logger.Enabled(ctx, slog.LevelDebug) {
				s.config.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			}
		}
	}()

	pending := make(map[string]bool)
	timer := time.NewTimer(DebounceInterval)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			key, ok := s.keyOf(event.Name)
			if !ok || event.Op == fsnotify.Chmod {
				continue
			}
			s.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())
			pending[key] = true
			timer.Reset(DebounceInterval)

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			s.config.Logger.Error("fsnotify error", "error", wErr)

		case <-timer.C:
			for _, e := range s.resolve(pending, known) {
				select {
				case out <- e:
				case <-ctx.Done():
					return nil
				}
			}
			clear(pending)
		}
	}
}

// resolve turns the keys touched during a debounce window into events by comparing
// the directory state against the keys known before the window.
func (s *Storage) resolve(pending, known map[string]bool) []core.Event {
	keys := make([]string, 0, len(pending))
	for k := range pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now().Unix()
	out := make([]core.Event, 0, len(keys))
	for _, key := range keys {
		name, err := s.filename(key)
		if err != nil {
			continue
		}
		_, statErr := os.Stat(name)
		exists := statErr == nil

		var t core.EventType
		switch {
		case exists && known[key]:
			t = core.EventModify
		case exists:
			t = core.EventCreate
		case known[key]:
			t = core.EventDelete
		default:
			continue
		}
		if exists {
			known[key] = true
		} else {
			delete(known, key)
		}
		out = append(out, core.Event{Type: t, Entity: key, Timestamp: now})
	}
	return out
}
