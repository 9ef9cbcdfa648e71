package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestInit_Levels(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	Init(false, &buf)
	log.Debug().Msg("hidden")
	log.Info().Str("command", "plan").Msg("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "command=")

	buf.Reset()
	Init(true, &buf)
	log.Debug().Msg("shown now")
	assert.Contains(t, buf.String(), "shown now")
}
