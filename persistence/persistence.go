// Package persistence defines how tenant segments are read and written.
// A segment is one of the four independently persisted slices of a tenant's
// data. Implementations live in the kvstore, remote and pgstore packages.
package persistence

import (
	"context"
	"encoding/json"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/rs/zerolog/log"
)

type Segment string

const (
	SegmentSettings Segment = "settings"
	SegmentContents Segment = "contents"
	SegmentLeads    Segment = "leads"
	SegmentTerms    Segment = "terms"
)

// Segments lists every segment in load order.
var Segments = []Segment{SegmentSettings, SegmentContents, SegmentLeads, SegmentTerms}

func (s Segment) Valid() bool {
	switch s {
	case SegmentSettings, SegmentContents, SegmentLeads, SegmentTerms:
		return true
	}
	return false
}

func (s Segment) String() string { return string(s) }

func ParseSegment(s string) (Segment, error) {
	seg := Segment(s)
	if !seg.Valid() {
		return "", errors.Wrapf(errors.ErrInvalidSegment, "unknown segment %q", s)
	}
	return seg, nil
}

// Adapter reads and writes segments of a tenant.
//
// ReadSegment decodes the stored segment into out and reports whether it was
// present. Malformed stored data is reported as absent, not as an error.
type Adapter interface {
	ReadSegment(ctx context.Context, tenantID string, segment Segment, out any) (bool, error)
	WriteSegment(ctx context.Context, tenantID string, segment Segment, data any) error
}

// Purger is implemented by adapters that can drop every segment of a tenant.
type Purger interface {
	PurgeTenant(ctx context.Context, tenantID string) error
}

// Decode unmarshals raw into out. Malformed data is logged and reported as
// absent so callers fall back to defaults.
func Decode(tenantID string, segment Segment, raw []byte, out any) bool {
	if len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Warn().Err(err).Str("tenant", tenantID).Stringer("segment", segment).Msg("discarding malformed segment")
		return false
	}
	return true
}

// Check validates the arguments shared by every adapter call.
func Check(tenantID string, segment Segment) error {
	if tenantID == "" {
		return errors.Wrapf(errors.ErrInvalidTenant, "empty tenant id")
	}
	if !segment.Valid() {
		return errors.Wrapf(errors.ErrInvalidSegment, "unknown segment %q", segment)
	}
	return nil
}
