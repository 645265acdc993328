package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{})
	logger.Debug("hidden")
	logger.Warn("shown", "path", "a.go")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "path=a.go")
	// a buffer is not a terminal, so no escape codes
	assert.NotContains(t, out, "\x1b[")

	buf.Reset()
	New(&buf, Options{Verbose: true}).Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
