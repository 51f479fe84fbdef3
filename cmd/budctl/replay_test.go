package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/budkit/heap/page"
	"github.com/joshuapare/budkit/internal/testutil"
)

func setReplayFlags(provider string) {
	replayFlags = heapFlags{
		pageSize: page.DefaultSize,
		minBlock: 8,
		provider: provider,
	}
	replayVerify = true
	replayReleaseLeaks = false
	replayCheck = true
}

func TestReplayCommand(t *testing.T) {
	tests := []struct {
		name        string
		trace       string
		provider    string
		wantJSON    bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "four small",
			trace:       testutil.TraceFourSmall,
			provider:    providerMem,
			wantContain: []string{"Operations:   8 (4 requests, 4 frees)", "Peak pages:   1", "Verified:     4"},
		},
		{
			name:        "mixed",
			trace:       testutil.TraceMixed,
			provider:    providerMem,
			wantContain: []string{"Peak pages:   2"},
		},
		{
			name:        "mixed json",
			trace:       testutil.TraceMixed,
			provider:    providerMem,
			wantJSON:    true,
			wantContain: []string{`"peak_pages": 2`, `"provider": "mem"`},
		},
		{
			name:        "large on mmap",
			trace:       testutil.TraceLarge,
			provider:    providerMmap,
			wantContain: []string{"Peak pages:   1"},
		},
		{
			name:     "bad provider",
			trace:    testutil.TraceLarge,
			provider: "disk",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = tt.wantJSON
			setReplayFlags(tt.provider)
			args := []string{testutil.TracePath(t, tt.trace)}

			output, err := captureOutput(t, func() error {
				return runReplay(context.Background(), args)
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("runReplay() error = %v, wantErr %v\nOutput: %s", err, tt.wantErr, output)
				return
			}
			if tt.wantJSON && !tt.wantErr {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestReplayCommand_Errors(t *testing.T) {
	resetFlags()
	setReplayFlags(providerMem)

	_, err := captureOutput(t, func() error {
		return runReplay(context.Background(), []string{"does-not-exist.trace"})
	})
	require.Error(t, err)

	bad := testutil.WriteTrace(t, "bad.trace", "REQUEST 0 10\nFREE 1\n")
	_, err = captureOutput(t, func() error {
		return runReplay(context.Background(), []string{bad})
	})
	require.ErrorContains(t, err, "line 2")

	syntax := testutil.WriteTrace(t, "syntax.trace", "ALLOC 0 10\n")
	_, err = captureOutput(t, func() error {
		return runReplay(context.Background(), []string{syntax})
	})
	require.ErrorContains(t, err, "line 1")
}

func TestReplayCommand_Leaks(t *testing.T) {
	resetFlags()
	setReplayFlags(providerMem)
	path := testutil.WriteTrace(t, "leak.trace", "REQUEST 0 10\nREQUEST 1 6000\n")

	output, err := captureOutput(t, func() error {
		return runReplay(context.Background(), []string{path})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{"Leaks:        2"})
}
