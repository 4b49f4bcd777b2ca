// Package docstore is the storage behind the document service: one JSON file
// per tenant holding its site config, settings and collections.
package docstore

import (
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/matteuzdev/VerbAI-Studio/content"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/internal/ids"
	"github.com/matteuzdev/VerbAI-Studio/leads"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/matteuzdev/VerbAI-Studio/site"
	"github.com/matteuzdev/VerbAI-Studio/tenants"
	"github.com/rs/zerolog/log"
)

const fileExt = ".json"

// Change describes a successful write.
type Change struct {
	TenantID string              `json:"tenantId"`
	Segment  persistence.Segment `json:"segment"`
}

// Store serialises access to the tenant files in a directory. Documents are
// cached in memory; files edited by other processes are dropped from the cache
// when the watcher sees them change.
type Store struct {
	dir       string
	defaultID string
	nowTime   func() time.Time
	newID     func() string
	onChange  func(Change)
	watch     bool

	lock      sync.Mutex
	cache     map[string]*Document
	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

type Option func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithDefaultTenantID sets the tenant used by requests that name none.
func WithDefaultTenantID(id string) Option {
	return func(s *Store) {
		if id != "" {
			s.defaultID = id
		}
	}
}

// WithChangeHook is called after every successful write, outside the lock.
func WithChangeHook(fn func(Change)) Option {
	return func(s *Store) {
		s.onChange = fn
	}
}

// WithoutWatcher disables file watching; the cache then trusts its own writes.
func WithoutWatcher() Option {
	return func(s *Store) {
		s.watch = false
	}
}

// Open prepares dir and starts watching it.
func Open(dir string, options ...Option) (*Store, error) {
	s := &Store{
		dir:       dir,
		defaultID: tenants.DefaultTenantID,
		nowTime:   time.Now,
		newID:     ids.New,
		watch:     true,
		cache:     make(map[string]*Document),
		done:      make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "[docstore Open] failed to create %s", dir)
	}
	if s.watch {
		if err := s.startWatcher(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) startWatcher() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrapf(err, "[docstore Open] failed to create watcher")
	}
	if err := w.Add(s.dir); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "[docstore Open] failed to watch %s", s.dir)
	}
	s.watcher = w

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				name := filepath.Base(event.Name)
				if !strings.HasSuffix(name, fileExt) {
					continue
				}
				s.invalidate(strings.TrimSuffix(name, fileExt))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Str("dir", s.dir).Msg("document watcher error")
			case <-s.done:
				return
			}
		}
	}()
	return nil
}

func (s *Store) invalidate(tenantID string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.cache, tenantID)
}

// Close stops the watcher. Calls after the first are no-ops.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}

// DefaultTenantID is the tenant used for requests without one.
func (s *Store) DefaultTenantID() string {
	return s.defaultID
}

// Resolve maps an empty tenant id to the default and rejects ids that are not
// safe as file names.
func (s *Store) Resolve(tenantID string) (string, error) {
	if tenantID == "" {
		return s.defaultID, nil
	}
	if !tenants.ValidID(tenantID) {
		return "", errors.Wrapf(errors.ErrInvalidTenant, "[Store Resolve] %q", tenantID)
	}
	return tenantID, nil
}

func (s *Store) path(tenantID string) string {
	return filepath.Join(s.dir, tenantID+fileExt)
}

// loadLocked returns the cached document, reading or seeding the file when needed.
func (s *Store) loadLocked(tenantID string) (*Document, error) {
	if doc, ok := s.cache[tenantID]; ok {
		return doc, nil
	}

	raw, err := os.ReadFile(s.path(tenantID))
	switch {
	case errors.Is(err, os.ErrNotExist):
		doc := seedDocument()
		if err := s.writeLocked(tenantID, doc); err != nil {
			return nil, err
		}
		log.Info().Str("tenant", tenantID).Msg("seeded document")
		return doc, nil
	case err != nil:
		return nil, errors.Wrapf(err, "[Store load] failed to read %s", s.path(tenantID))
	}

	doc := &Document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		log.Err(err).Str("tenant", tenantID).Msg("malformed document, serving empty defaults until next write")
		doc = &Document{}
	}
	doc.normalize()
	s.cache[tenantID] = doc
	return doc, nil
}

// writeLocked replaces the file atomically and caches doc.
func (s *Store) writeLocked(tenantID string, doc *Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "[Store write] failed to encode %s", tenantID)
	}
	tmp, err := os.CreateTemp(s.dir, "."+tenantID+"-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "[Store write] failed to create temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "[Store write] failed to write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "[Store write] failed to close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), s.path(tenantID)); err != nil {
		return errors.Wrapf(err, "[Store write] failed to replace %s", s.path(tenantID))
	}
	s.cache[tenantID] = doc
	return nil
}

// read runs fn against the tenant document.
func (s *Store) read(tenantID string, fn func(doc *Document) error) error {
	id, err := s.Resolve(tenantID)
	if err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	doc, err := s.loadLocked(id)
	if err != nil {
		return err
	}
	return fn(doc)
}

// update runs fn against the tenant document and writes it when fn succeeds.
func (s *Store) update(tenantID string, segment persistence.Segment, fn func(doc *Document) error) error {
	id, err := s.Resolve(tenantID)
	if err != nil {
		return err
	}
	s.lock.Lock()
	doc, err := s.loadLocked(id)
	if err == nil {
		err = fn(doc)
	}
	if err == nil {
		if err = s.writeLocked(id, doc); err != nil {
			// The cached copy is ahead of the file now.
			delete(s.cache, id)
		}
	}
	s.lock.Unlock()
	if err != nil {
		return err
	}
	if s.onChange != nil {
		s.onChange(Change{TenantID: id, Segment: segment})
	}
	return nil
}

// SiteConfig returns the tenant's site config, or the service seed when the
// stored one is empty.
func (s *Store) SiteConfig(tenantID string) (site.SiteConfig, error) {
	var cfg site.SiteConfig
	err := s.read(tenantID, func(doc *Document) error {
		cfg = doc.SiteConfig.Clone()
		if doc.SiteConfig.IsZero() {
			cfg = site.ServiceSiteConfig()
		}
		return nil
	})
	return cfg, err
}

// MergeSiteConfig shallow-merges patch keys into the site config.
func (s *Store) MergeSiteConfig(tenantID string, patch map[string]any) (site.SiteConfig, error) {
	var merged site.SiteConfig
	err := s.update(tenantID, persistence.SegmentSettings, func(doc *Document) error {
		raw, err := json.Marshal(doc.SiteConfig)
		if err != nil {
			return err
		}
		m := map[string]any{}
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		maps.Copy(m, patch)
		raw, err = json.Marshal(m)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidRequest, "%v", err)
		}
		var next site.SiteConfig
		if err := json.Unmarshal(raw, &next); err != nil {
			return errors.Wrapf(errors.ErrInvalidRequest, "[Store MergeSiteConfig] %v", err)
		}
		doc.SiteConfig = next.Clone()
		merged = doc.SiteConfig.Clone()
		return nil
	})
	return merged, err
}

// Settings returns the settings segment and whether one was ever written.
func (s *Store) Settings(tenantID string) (site.Settings, bool, error) {
	var (
		out   site.Settings
		found bool
	)
	err := s.read(tenantID, func(doc *Document) error {
		found = doc.hasSettings()
		if found {
			out = doc.settings()
		}
		return nil
	})
	return out, found, err
}

func (s *Store) PutSettings(tenantID string, settings site.Settings) error {
	return s.update(tenantID, persistence.SegmentSettings, func(doc *Document) error {
		doc.setSettings(settings)
		return nil
	})
}

func (s *Store) collection(doc *Document, segment persistence.Segment) (*[]Record, error) {
	switch segment {
	case persistence.SegmentContents:
		return &doc.Contents, nil
	case persistence.SegmentTerms:
		return &doc.Terms, nil
	case persistence.SegmentLeads:
		return &doc.Leads, nil
	}
	return nil, errors.Wrapf(errors.ErrInvalidSegment, "%q is not a collection", segment)
}

// List returns copies of the records of a collection in stored order.
func (s *Store) List(tenantID string, segment persistence.Segment) ([]Record, error) {
	var out []Record
	err := s.read(tenantID, func(doc *Document) error {
		coll, err := s.collection(doc, segment)
		if err != nil {
			return err
		}
		out = make([]Record, len(*coll))
		for i, r := range *coll {
			out[i] = r.Clone()
		}
		return nil
	})
	return out, err
}

// ListContents returns content records of type t (all when empty), newest first.
func (s *Store) ListContents(tenantID, t string) ([]Record, error) {
	all, err := s.List(tenantID, persistence.SegmentContents)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, r := range all {
		if t == "" || r["type"] == t {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		return createdAt(b).Compare(createdAt(a))
	})
	return out, nil
}

func createdAt(r Record) time.Time {
	s, _ := r["createdAt"].(string)
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// Upsert stores rec in a collection and returns its id.
//
// Contents merge into the stored record and are stamped with updatedAt;
// new contents also get createdAt. Terms and leads replace the stored record.
// New leads go to the head of the list, everything else is appended.
func (s *Store) Upsert(tenantID string, segment persistence.Segment, rec Record) (id string, created bool, err error) {
	err = s.update(tenantID, segment, func(doc *Document) error {
		coll, err := s.collection(doc, segment)
		if err != nil {
			return err
		}
		rec = rec.Clone()
		id = rec.ID()
		idx := -1
		if id != "" {
			idx = slices.IndexFunc(*coll, func(r Record) bool { return r.ID() == id })
		}
		now := s.nowTime().UTC().Format(time.RFC3339Nano)

		if idx >= 0 {
			if segment == persistence.SegmentContents {
				merged := (*coll)[idx]
				maps.Copy(merged, rec)
				merged["id"] = id
				merged["updatedAt"] = now
				return nil
			}
			rec["id"] = id
			(*coll)[idx] = rec
			return nil
		}

		created = true
		if id == "" {
			id = s.newID()
		}
		rec["id"] = id
		switch segment {
		case persistence.SegmentContents:
			rec["createdAt"] = now
			rec["updatedAt"] = now
			*coll = append(*coll, rec)
		case persistence.SegmentLeads:
			*coll = slices.Insert(*coll, 0, rec)
		default:
			*coll = append(*coll, rec)
		}
		return nil
	})
	return id, created, err
}

// Delete removes the record with id. Missing records return ErrNotFound.
func (s *Store) Delete(tenantID string, segment persistence.Segment, id string) error {
	return s.update(tenantID, segment, func(doc *Document) error {
		coll, err := s.collection(doc, segment)
		if err != nil {
			return err
		}
		n := len(*coll)
		*coll = slices.DeleteFunc(*coll, func(r Record) bool { return r.ID() == id })
		if len(*coll) == n {
			return errors.Wrapf(errors.ErrNotFound, "[Store Delete] %s %s", segment, id)
		}
		return nil
	})
}

// ReadSegment returns the JSON of a whole segment, and false when the tenant
// has never written it. Collections always exist once the document does.
func (s *Store) ReadSegment(tenantID string, segment persistence.Segment) (json.RawMessage, bool, error) {
	if !segment.Valid() {
		return nil, false, errors.Wrapf(errors.ErrInvalidSegment, "%q", segment)
	}
	var (
		raw   []byte
		found bool
	)
	err := s.read(tenantID, func(doc *Document) error {
		var v any
		if segment == persistence.SegmentSettings {
			if !doc.hasSettings() {
				return nil
			}
			v = doc.settings()
		} else {
			coll, err := s.collection(doc, segment)
			if err != nil {
				return err
			}
			v = *coll
		}
		var err error
		raw, err = json.Marshal(v)
		found = err == nil
		return err
	})
	return raw, found, err
}

// WriteSegment replaces a whole segment with raw.
func (s *Store) WriteSegment(tenantID string, segment persistence.Segment, raw json.RawMessage) error {
	if !segment.Valid() {
		return errors.Wrapf(errors.ErrInvalidSegment, "%q", segment)
	}
	if segment == persistence.SegmentSettings {
		var settings site.Settings
		if err := json.Unmarshal(raw, &settings); err != nil {
			return errors.Wrapf(errors.ErrInvalidRequest, "[Store WriteSegment] settings: %v", err)
		}
		return s.PutSettings(tenantID, settings)
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "[Store WriteSegment] %s: %v", segment, err)
	}
	if records == nil {
		records = []Record{}
	}
	return s.update(tenantID, segment, func(doc *Document) error {
		coll, err := s.collection(doc, segment)
		if err != nil {
			return err
		}
		*coll = records
		return nil
	})
}

// Leads returns the tenant's leads decoded for export.
func (s *Store) Leads(tenantID string) ([]leads.Lead, error) {
	recs, err := s.List(tenantID, persistence.SegmentLeads)
	if err != nil {
		return nil, err
	}
	return decodeRecords[leads.Lead](tenantID, recs), nil
}

// Posts returns the tenant's posts decoded, in stored order.
func (s *Store) Posts(tenantID string) ([]content.Content, error) {
	recs, err := s.List(tenantID, persistence.SegmentContents)
	if err != nil {
		return nil, err
	}
	return content.FilterByType(decodeRecords[content.Content](tenantID, recs), content.TypePost), nil
}
