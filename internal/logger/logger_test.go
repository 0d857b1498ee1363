package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_WritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	l, err := New(Options{Dir: dir, Level: "debug"})
	require.NoError(t, err)
	l.Infow("hello", "k", "v")
	_ = l.Sync()

	name := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"hello"`)
	assert.Contains(t, string(raw), `"k":"v"`)
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Dir: t.TempDir(), Level: "chatty"})
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core).Sugar()

	ctx := WithContext(context.Background(), l)
	FromContext(ctx).Infow("scoped")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "scoped", logs.All()[0].Message)

	assert.NotNil(t, FromContext(context.Background()))
}
