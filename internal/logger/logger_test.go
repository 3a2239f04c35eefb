package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, false)
	log.Debug("hidden")
	log.Info("shown")
	_ = log.Sync()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	log = newLogger(&buf, true)
	log.Debug("now visible")
	_ = log.Sync()
	assert.Contains(t, buf.String(), "now visible")
}
