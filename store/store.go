// Package store holds the data of the selected tenant in memory and writes
// every change through to a persistence adapter.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/matteuzdev/VerbAI-Studio/content"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/internal/ids"
	"github.com/matteuzdev/VerbAI-Studio/leads"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/matteuzdev/VerbAI-Studio/site"
	"github.com/matteuzdev/VerbAI-Studio/tenants"
	"github.com/rs/zerolog/log"
)

// TenantDirectory resolves tenant ids to tenants. *tenants.Registry satisfies it.
type TenantDirectory interface {
	Get(id string) (*tenants.Tenant, error)
}

// Store is the tenant-scoped data store. Mutations are serialised and each one
// holds the lock until its segment write returns. Nothing coordinates writers
// in other processes; the last write wins.
type Store struct {
	adapter   persistence.Adapter
	directory TenantDirectory
	defaultID string
	nowTime   func() time.Time
	newID     func() string

	lock     sync.RWMutex
	tenantID string
	unread   map[persistence.Segment]bool // segments whose last read failed
	settings site.Settings
	contents []content.Content
	terms    []content.Term
	leads    []leads.Lead

	subLock sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

type Option func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithIDGenerator replaces the snowflake id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithTenantDirectory lets bootstrap use the tenant's display name.
func WithTenantDirectory(d TenantDirectory) Option {
	return func(s *Store) {
		s.directory = d
	}
}

// WithDefaultTenantID names the install's own tenant, which bootstraps with
// the agency landing page instead of the client template.
func WithDefaultTenantID(id string) Option {
	return func(s *Store) {
		if id != "" {
			s.defaultID = id
		}
	}
}

func New(adapter persistence.Adapter, options ...Option) (*Store, error) {
	if adapter == nil {
		return nil, errors.New("[store New] persistence adapter is required")
	}
	s := &Store{
		adapter:   adapter,
		defaultID: tenants.DefaultTenantID,
		nowTime:   time.Now,
		newID:     ids.New,
		subs:      make(map[int]func(Event)),
	}
	for _, opt := range options {
		opt(s)
	}
	s.resetLocked("")
	return s, nil
}

func (s *Store) resetLocked(tenantID string) {
	s.tenantID = tenantID
	s.unread = make(map[persistence.Segment]bool)
	s.settings = site.Settings{Sections: []site.Section{}, SiteConfig: site.DefaultSiteConfig(s.nowTime())}
	s.contents = []content.Content{}
	s.terms = []content.Term{}
	s.leads = []leads.Lead{}
}

func (s *Store) tenantName(id string) string {
	if s.directory == nil {
		return id
	}
	t, err := s.directory.Get(id)
	if err != nil {
		return id
	}
	return t.Name
}

func (s *Store) bootstrapSettings(tenantID, name string) site.Settings {
	if tenantID == s.defaultID {
		return site.AgencySettings(s.nowTime())
	}
	return site.NewTenantSettings(name, s.nowTime())
}

// LoadTenant replaces the in-memory state with the persisted segments of
// tenantID. A tenant with no settings is bootstrapped and all four segments
// are written so the next load finds them.
//
// When a segment cannot be read because the backend failed, the store keeps
// defaults in memory, writes nothing and returns the read error. The store is
// then Degraded: the first mutation of a failed segment reads it again and is
// refused with ErrDegraded while the backend still fails, so defaults never
// overwrite stored data.
func (s *Store) LoadTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return errors.Wrapf(errors.ErrInvalidTenant, "[Store LoadTenant] empty tenant id")
	}
	name := s.tenantName(tenantID)

	var (
		settings site.Settings
		contents []content.Content
		terms    []content.Term
		leadList []leads.Lead
		readErr  error
		failed   = make(map[persistence.Segment]bool)
	)
	read := func(seg persistence.Segment, out any) bool {
		found, err := s.adapter.ReadSegment(ctx, tenantID, seg, out)
		if err != nil {
			log.Err(err).Str("tenant", tenantID).Stringer("segment", seg).Msg("failed to read segment")
			failed[seg] = true
			if readErr == nil {
				readErr = err
			}
			return false
		}
		return found
	}
	hasSettings := read(persistence.SegmentSettings, &settings)
	if !read(persistence.SegmentContents, &contents) {
		contents = nil
	}
	if !read(persistence.SegmentLeads, &leadList) {
		leadList = nil
	}
	if !read(persistence.SegmentTerms, &terms) {
		terms = nil
	}

	s.lock.Lock()
	s.resetLocked(tenantID)
	if hasSettings {
		settings.Normalize(site.DefaultSiteConfig(s.nowTime()))
		s.settings = settings
	} else {
		s.settings = s.bootstrapSettings(tenantID, name)
	}
	if contents != nil {
		s.contents = contents
	}
	for i := range s.contents {
		s.contents[i].Normalize()
	}
	if leadList != nil {
		s.leads = leadList
	}
	if terms != nil {
		s.terms = terms
	}

	var writeErr error
	switch {
	case readErr != nil:
		s.unread = failed
	case !hasSettings:
		log.Info().Str("tenant", tenantID).Msg("bootstrapping tenant data")
		writeErr = s.writeAllLocked(ctx)
	}
	s.lock.Unlock()

	if readErr != nil {
		return errors.Wrapf(readErr, "[Store LoadTenant] %s loaded with defaults", tenantID)
	}
	if writeErr != nil {
		s.emit(Event{Type: EventPersistFailed, TenantID: tenantID, Err: writeErr})
		return errors.Wrapf(writeErr, "[Store LoadTenant] failed to persist bootstrap of %s", tenantID)
	}
	s.emit(Event{Type: EventTenantLoaded, TenantID: tenantID})
	return nil
}

func (s *Store) writeAllLocked(ctx context.Context) error {
	for _, seg := range persistence.Segments {
		if err := s.adapter.WriteSegment(ctx, s.tenantID, seg, s.segmentDataLocked(seg)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) segmentDataLocked(seg persistence.Segment) any {
	switch seg {
	case persistence.SegmentContents:
		return s.contents
	case persistence.SegmentTerms:
		return s.terms
	case persistence.SegmentLeads:
		return s.leads
	default:
		return s.settings
	}
}

// Onboard writes the bootstrap segments of a tenant that has no settings yet,
// without switching the store to it.
func (s *Store) Onboard(ctx context.Context, t tenants.Tenant) error {
	var existing site.Settings
	found, err := s.adapter.ReadSegment(ctx, t.ID, persistence.SegmentSettings, &existing)
	if err != nil {
		return errors.Wrapf(err, "[Store Onboard] failed to check %s", t.ID)
	}
	if found {
		return nil
	}

	seed := map[persistence.Segment]any{
		persistence.SegmentSettings: s.bootstrapSettings(t.ID, t.Name),
		persistence.SegmentContents: []content.Content{},
		persistence.SegmentLeads:    []leads.Lead{},
		persistence.SegmentTerms:    []content.Term{},
	}
	for _, seg := range persistence.Segments {
		if err := s.adapter.WriteSegment(ctx, t.ID, seg, seed[seg]); err != nil {
			return errors.Wrapf(err, "[Store Onboard] failed to seed %s/%s", t.ID, seg)
		}
	}
	log.Info().Str("tenant", t.ID).Msg("onboarded tenant")
	return nil
}

// Purge drops the persisted data of a removed tenant when the adapter
// supports it.
func (s *Store) Purge(ctx context.Context, t tenants.Tenant) error {
	p, ok := s.adapter.(persistence.Purger)
	if !ok {
		log.Warn().Str("tenant", t.ID).Msg("backend cannot purge tenant data, leaving it in place")
		return nil
	}
	return p.PurgeTenant(ctx, t.ID)
}

// mutate runs fn under the store lock and, when fn reports a change, writes
// segment before releasing the lock. A failed write leaves the change applied.
func (s *Store) mutate(ctx context.Context, segment persistence.Segment, fn func() (bool, error)) error {
	return s.mutateSegments(ctx, []persistence.Segment{segment}, func() ([]persistence.Segment, error) {
		changed, err := fn()
		if err != nil || !changed {
			return nil, err
		}
		return []persistence.Segment{segment}, nil
	})
}

// mutateSegments is mutate for changes spanning several segments. fn returns
// the segments it changed, which must be among segments; they are written in
// that order under the same lock, stopping at the first failure.
func (s *Store) mutateSegments(ctx context.Context, segments []persistence.Segment, fn func() ([]persistence.Segment, error)) error {
	s.lock.Lock()
	if s.tenantID == "" {
		s.lock.Unlock()
		return errors.Wrapf(errors.ErrTenantNotFound, "[Store] no tenant loaded")
	}
	tenantID := s.tenantID
	for _, seg := range segments {
		if err := s.recoverLocked(ctx, seg); err != nil {
			s.lock.Unlock()
			return err
		}
	}
	changed, err := fn()
	if err != nil || len(changed) == 0 {
		s.lock.Unlock()
		return err
	}

	var (
		written []Event
		failed  persistence.Segment
	)
	for _, seg := range changed {
		if err = s.adapter.WriteSegment(ctx, tenantID, seg, s.segmentDataLocked(seg)); err != nil {
			failed = seg
			break
		}
		written = append(written, Event{Type: changedEvent(seg), TenantID: tenantID, Segment: seg})
	}
	s.lock.Unlock()

	s.emit(written...)
	if err != nil {
		log.Err(err).Str("tenant", tenantID).Stringer("segment", failed).Msg("failed to persist segment")
		s.emit(Event{Type: EventPersistFailed, TenantID: tenantID, Segment: failed, Err: err})
		return errors.Wrapf(err, "[Store] failed to persist %s/%s", tenantID, failed)
	}
	return nil
}

// recoverLocked reads seg again when the last load could not. On success the
// stored data replaces the in-memory defaults; on failure the mutation is
// refused.
func (s *Store) recoverLocked(ctx context.Context, seg persistence.Segment) error {
	if !s.unread[seg] {
		return nil
	}

	var (
		found bool
		err   error
	)
	switch seg {
	case persistence.SegmentSettings:
		var settings site.Settings
		if found, err = s.adapter.ReadSegment(ctx, s.tenantID, seg, &settings); err == nil && found {
			settings.Normalize(site.DefaultSiteConfig(s.nowTime()))
			s.settings = settings
		}
	case persistence.SegmentContents:
		var contents []content.Content
		if found, err = s.adapter.ReadSegment(ctx, s.tenantID, seg, &contents); err == nil && found && contents != nil {
			for i := range contents {
				contents[i].Normalize()
			}
			s.contents = contents
		}
	case persistence.SegmentTerms:
		var terms []content.Term
		if found, err = s.adapter.ReadSegment(ctx, s.tenantID, seg, &terms); err == nil && found && terms != nil {
			s.terms = terms
		}
	case persistence.SegmentLeads:
		var leadList []leads.Lead
		if found, err = s.adapter.ReadSegment(ctx, s.tenantID, seg, &leadList); err == nil && found && leadList != nil {
			s.leads = leadList
		}
	}
	if err != nil {
		log.Err(err).Str("tenant", s.tenantID).Stringer("segment", seg).Msg("segment still unreadable, refusing write")
		return errors.Wrapf(errors.ErrDegraded, "[Store] %s/%s: %v", s.tenantID, seg, err)
	}

	delete(s.unread, seg)
	log.Info().Str("tenant", s.tenantID).Stringer("segment", seg).Bool("found", found).Msg("segment recovered from backend")
	return nil
}

func (s *Store) TenantID() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.tenantID
}

// Degraded reports whether any segment of the loaded tenant is still held as
// defaults after a backend read failure.
func (s *Store) Degraded() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.unread) > 0
}
