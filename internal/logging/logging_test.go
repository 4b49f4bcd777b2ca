package logging_test

import (
	"bytes"
	"testing"

	"github.com/matteuzdev/VerbAI-Studio/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

// TestConfigure_JSONOutsideDev verifies structured output and level filtering.
func TestConfigure_JSONOutsideDev(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	logging.Configure(&buf, "PROD", "warn")

	log.Info().Msg("hidden")
	log.Warn().Str("tenant", "acme").Msg("shown")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, `"tenant":"acme"`)
	require.Contains(t, out, `"message":"shown"`)
}

// TestConfigure_BadLevelDefaultsToInfo verifies an unknown level is not fatal.
func TestConfigure_BadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logging.Configure(&buf, "PROD", "loud")

	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	log.Debug().Msg("dropped")
	require.Empty(t, buf.String())
}
