package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDropsTime(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo).WithGroup("handler").Info("saved", "target", "cat.png")

	assert.Equal(t, "level=INFO msg=saved handler.target=cat.png\n", buf.String())
}

func TestNewHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	var level slog.LevelVar
	logger := New(&buf, &level)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	level.Set(slog.LevelDebug)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)

	assert.Same(t, logger, FromContextOrDiscard(NewContext(context.Background(), logger)))
	assert.Same(t, discardLogger, FromContextOrDiscard(context.Background()))
}
