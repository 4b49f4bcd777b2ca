package ids_test

import (
	"testing"

	"github.com/matteuzdev/VerbAI-Studio/internal/ids"
	"github.com/stretchr/testify/require"
)

// TestNew_Unique verifies generated ids do not repeat.
func TestNew_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := ids.New()
		require.False(t, seen[id], id)
		seen[id] = true
	}
}

// TestGenerator_RejectsBadNode verifies the node range check.
func TestGenerator_RejectsBadNode(t *testing.T) {
	_, err := ids.Generator(5000)
	require.Error(t, err)

	gen, err := ids.Generator(2)
	require.NoError(t, err)
	require.NotEqual(t, gen(), gen())
}
