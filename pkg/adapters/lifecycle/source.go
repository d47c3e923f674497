// Package lifecycle bridges storage change events into the aretw0/lifecycle event model.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/axsol/backoffice/pkg/core"
)

type entitySource struct {
	events <-chan core.Event
	only   map[string]bool
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that re-emits storage events. When entities
// are given, events for other collections are dropped.
func NewSource(events <-chan core.Event, entities ...string) lifecycle.Source {
	var only map[string]bool
	if len(entities) > 0 {
		only = make(map[string]bool, len(entities))
		for _, e := range entities {
			only[e] = true
		}
	}
	return &entitySource{
		events: events,
		only:   only,
		out:    make(chan lifecycle.Event),
	}
}

func (s *entitySource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the input channel closes.
func (s *entitySource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if s.only != nil && !s.only[e.Entity] {
					continue
				}
				// core.Event satisfies lifecycle.Event through String().
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
