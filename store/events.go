package store

import (
	"github.com/matteuzdev/VerbAI-Studio/persistence"
)

type EventType string

const (
	EventTenantLoaded    EventType = "tenant.loaded"
	EventContentsChanged EventType = "contents.changed"
	EventTermsChanged    EventType = "terms.changed"
	EventLeadsChanged    EventType = "leads.changed"
	EventSettingsChanged EventType = "settings.changed"
	EventPersistFailed   EventType = "persist.failed"
)

// Event is delivered to subscribers after a change is applied.
type Event struct {
	Type     EventType           `json:"type"`
	TenantID string              `json:"tenantId"`
	Segment  persistence.Segment `json:"segment,omitempty"`
	Err      error               `json:"-"`
}

func changedEvent(segment persistence.Segment) EventType {
	switch segment {
	case persistence.SegmentContents:
		return EventContentsChanged
	case persistence.SegmentTerms:
		return EventTermsChanged
	case persistence.SegmentLeads:
		return EventLeadsChanged
	default:
		return EventSettingsChanged
	}
}

// Subscribe registers fn for every subsequent event. Events are delivered
// synchronously on the mutating goroutine, after the store lock is released.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subLock.Lock()
	defer s.subLock.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subLock.Lock()
		defer s.subLock.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) emit(events ...Event) {
	s.subLock.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subLock.Unlock()

	for _, e := range events {
		for _, fn := range fns {
			fn(e)
		}
	}
}
