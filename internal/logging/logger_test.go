package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSONWithComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	l := Component(New("info", "json", buf), "ratelimit")

	l.Info("rate limit exceeded", "user_id", "u1")

	assert.Contains(t, buf.String(), `"component":"ratelimit"`)
	assert.Contains(t, buf.String(), `"msg":"rate limit exceeded"`)
}

func TestNew_LevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New("warn", "text", buf)

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
