// Package history keeps the bounded replay buffer of recent chat events.
package history

import (
	"sync"

	"github.com/deforce/multichat/internal/message"
)

// DefaultSize is the replay buffer capacity used when none is configured.
const DefaultSize = 50

// Store is an ordered, capacity-bounded buffer of text and system events.
// Append evicts from the head on overflow; moderation commands remove or
// redact interior entries in place. Every operation takes the single store
// lock, so readers never observe a torn mutation.
type Store struct {
	mu       sync.Mutex
	capacity int
	events   []message.Event
}

// NewStore creates a store with the given capacity. Non-positive capacities
// fall back to DefaultSize.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultSize
	}
	return &Store{
		capacity: capacity,
		events:   make([]message.Event, 0, capacity),
	}
}

// Append adds an event at the tail, evicting the oldest entry when the store
// is full. Only text and system events are retained; anything else is
// ignored, so control events can never leak into replays.
func (s *Store) Append(ev message.Event) {
	var clone message.Event
	switch e := ev.(type) {
	case *message.TextEvent:
		clone = e.Clone()
	case *message.SystemEvent:
		clone = e.Clone()
	default:
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, clone)
	if len(s.events) > s.capacity {
		s.events = s.events[1:]
	}
}

// Snapshot returns a point-in-time copy of the retained events, oldest first.
// The returned slice and its entries are owned by the caller.
func (s *Store) Snapshot() []message.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]message.Event, 0, len(s.events))
	for _, ev := range s.events {
		switch e := ev.(type) {
		case *message.TextEvent:
			out = append(out, e.Clone())
		case *message.SystemEvent:
			out = append(out, e.Clone())
		}
	}
	return out
}

// Len reports the number of retained events.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// RemoveByIDs deletes every stored event whose id is in ids, preserving the
// order of the remaining entries. It returns the number of removed events;
// unknown ids are a no-op.
func (s *Store) RemoveByIDs(ids []string) int {
	wanted := toSet(ids)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	removed := 0
	for _, ev := range s.events {
		if _, ok := wanted[ev.EventID()]; ok {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	for i := len(kept); i < len(s.events); i++ {
		s.events[i] = nil
	}
	s.events = kept
	return removed
}

// RemoveByUsers deletes every stored text event posted by one of the named
// users. A user can have any number of retained messages; all of them go.
func (s *Store) RemoveByUsers(users []string) int {
	wanted := toSet(users)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	removed := 0
	for _, ev := range s.events {
		if te, ok := ev.(*message.TextEvent); ok {
			if _, match := wanted[te.User]; match {
				removed++
				continue
			}
		}
		kept = append(kept, ev)
	}
	for i := len(kept); i < len(s.events); i++ {
		s.events[i] = nil
	}
	s.events = kept
	return removed
}

// ReplaceByIDs redacts every stored event whose id is in ids: the text is set
// to the tombstone marker and emotes are cleared, but the entry keeps its
// identity and position. Replacing an already-replaced entry is a no-op.
func (s *Store) ReplaceByIDs(ids []string) int {
	wanted := toSet(ids)

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := 0
	for _, ev := range s.events {
		if _, ok := wanted[ev.EventID()]; ok {
			tombstone(ev)
			replaced++
		}
	}
	return replaced
}

// ReplaceByUsers redacts every stored text event posted by one of the named
// users.
func (s *Store) ReplaceByUsers(users []string) int {
	wanted := toSet(users)

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := 0
	for _, ev := range s.events {
		if te, ok := ev.(*message.TextEvent); ok {
			if _, match := wanted[te.User]; match {
				tombstone(te)
				replaced++
			}
		}
	}
	return replaced
}

func tombstone(ev message.Event) {
	switch e := ev.(type) {
	case *message.TextEvent:
		e.Text = message.Tombstone
		e.Emotes = nil
	case *message.SystemEvent:
		e.Text = message.Tombstone
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
