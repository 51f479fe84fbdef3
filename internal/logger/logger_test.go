package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Init_Disabled(t *testing.T) {
	require.NoError(t, Init(Options{}))
	require.False(t, L.Enabled(t.Context(), slog.LevelError))
}

func Test_Init_Stderr(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, Level: slog.LevelDebug, Stderr: &out}))
	t.Cleanup(func() { _ = Init(Options{}) })

	Debug("page acquired", "base", "0x2000")
	require.Contains(t, out.String(), "page acquired")
	require.Contains(t, out.String(), "base=0x2000")
}

func Test_Init_LogDir(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, logPrefix+time.Now().AddDate(0, 0, -retentionDays-5).Format("2006-01-02")+logSuffix)
	keep := filepath.Join(dir, "unrelated.log")
	require.NoError(t, os.WriteFile(old, nil, 0o644))
	require.NoError(t, os.WriteFile(keep, nil, 0o644))

	require.NoError(t, Init(Options{Enabled: true, LogDir: dir}))
	t.Cleanup(func() { _ = Init(Options{}) })
	Info("replay finished", "ops", 8)

	_, err := os.Stat(old)
	require.True(t, os.IsNotExist(err), "expired log should be removed")
	_, err = os.Stat(keep)
	require.NoError(t, err)

	today := filepath.Join(dir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	data, err := os.ReadFile(today)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"replay finished"`)
}
