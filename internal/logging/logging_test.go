package logging_test

import (
	"bytes"
	"testing"

	"github.com/far7tna/portal/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	logging.Setup("PROD", "warn", &buf)

	log.Info().Msg("hidden")
	log.Warn().Str("component", "test").Msg("shown")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, `"component":"test"`)
	require.Contains(t, out, `"message":"shown"`)
}

func TestSetupInvalidLevelDefaultsToInfo(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	logging.Setup("PROD", "nonsense", &buf)
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
