package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/budkit/heap/trace"
)

func setGenFlags(seed int64, requests int, out string) {
	genSeed = seed
	genRequests = requests
	genMaxLive = 32
	genMaxSize = 0
	genLargeRatio = 0.1
	genPageSize = 0
	genOutput = out
}

func TestGenCommand_File(t *testing.T) {
	resetFlags()
	path := filepath.Join(t.TempDir(), "gen.trace")
	setGenFlags(5, 300, path)

	output, err := captureOutput(t, runGen)
	require.NoError(t, err)
	require.Empty(t, output)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	ops, err := trace.Parse(f)
	require.NoError(t, err)
	require.Len(t, ops, 600)
	require.True(t, trace.Balanced(ops))
}

func TestGenCommand_Stdout(t *testing.T) {
	resetFlags()
	setGenFlags(5, 10, "")

	output, err := captureOutput(t, runGen)
	require.NoError(t, err)
	assertContains(t, output, []string{"# budctl gen --seed 5", "REQUEST 0 ", "FREE "})
}
