package persistence_test

import (
	"testing"

	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/stretchr/testify/require"
)

// TestParseSegment accepts the four segments only.
func TestParseSegment(t *testing.T) {
	for _, s := range persistence.Segments {
		got, err := persistence.ParseSegment(string(s))
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	_, err := persistence.ParseSegment("users")
	require.ErrorIs(t, err, errors.ErrInvalidSegment)
}

// TestDecode_Malformed verifies malformed data is reported as absent.
func TestDecode_Malformed(t *testing.T) {
	var out []string
	require.False(t, persistence.Decode("acme", persistence.SegmentTerms, []byte("{nope"), &out))
	require.False(t, persistence.Decode("acme", persistence.SegmentTerms, nil, &out))
	require.True(t, persistence.Decode("acme", persistence.SegmentTerms, []byte(`["a"]`), &out))
	require.Equal(t, []string{"a"}, out)
}

// TestCheck rejects empty tenants and unknown segments.
func TestCheck(t *testing.T) {
	require.NoError(t, persistence.Check("acme", persistence.SegmentLeads))
	require.ErrorIs(t, persistence.Check("", persistence.SegmentLeads), errors.ErrInvalidTenant)
	require.ErrorIs(t, persistence.Check("acme", "bogus"), errors.ErrInvalidSegment)
}
