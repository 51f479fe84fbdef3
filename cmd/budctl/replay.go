package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/budkit/heap/buddy"
	"github.com/joshuapare/budkit/heap/page"
	"github.com/joshuapare/budkit/heap/trace"
	"github.com/joshuapare/budkit/internal/logger"
)

var (
	replayFlags        heapFlags
	replayVerify       bool
	replayReleaseLeaks bool
	replayCheck        bool
)

func init() {
	cmd := newReplayCmd()
	replayFlags.register(cmd)
	cmd.Flags().BoolVar(&replayVerify, "verify", true, "Verify block contents before each release")
	cmd.Flags().BoolVar(&replayReleaseLeaks, "release-leaks", false, "Free blocks still live at the end of the trace")
	cmd.Flags().BoolVar(&replayCheck, "check", false, "Run the heap consistency check after the replay")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay a trace against a fresh heap",
		Long: `The replay command runs every REQUEST and FREE of a trace file
against a new heap and reports peak page usage, utilization and leaks.

Example:
  budctl replay testdata/traces/mixed.trace
  budctl replay churn.trace --provider mmap --json
  budctl replay churn.trace --page-size 4096 --no-tags --verify=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
	return cmd
}

// ReplayReport is the replay command's output.
type ReplayReport struct {
	Trace    string       `json:"trace"`
	Provider string       `json:"provider"`
	Result   trace.Result `json:"result"`
	Heap     buddy.Stats  `json:"heap"`
	Pages    page.Stats   `json:"pages"`
	Elapsed  string       `json:"elapsed"`
}

func runReplay(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path := args[0]

	printVerbose("Reading trace: %s\n", path)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	ops, err := trace.Parse(f)
	f.Close()
	if err != nil {
		return err
	}

	ba, p, err := replayFlags.newHeap()
	if err != nil {
		return err
	}
	defer ba.Close()

	start := time.Now()
	r := trace.NewReplayer(ba, p, trace.ReplayOptions{
		Verify:       replayVerify,
		ReleaseLeaks: replayReleaseLeaks,
		Logger:       logger.L,
	})
	res, err := r.Replay(ctx, ops)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}
	logger.Info("replay finished", "trace", path, "ops", res.Ops, "elapsed", elapsed)

	if replayCheck {
		if err := ba.Check(); err != nil {
			return err
		}
	}

	report := ReplayReport{
		Trace:    path,
		Provider: replayFlags.provider,
		Result:   res,
		Heap:     ba.Stats(),
		Pages:    p.Stats(),
		Elapsed:  elapsed.String(),
	}
	if jsonOut {
		return printJSON(report)
	}
	printReplayReport(report)
	return nil
}

func printReplayReport(r ReplayReport) {
	res := r.Result
	printInfo("Trace:        %s\n", r.Trace)
	printInfo("Operations:   %d (%d requests, %d frees)\n", res.Ops, res.Requests, res.Frees)
	printInfo("Peak pages:   %d (%d bytes each)\n", res.PeakPages, res.PageSize)
	printInfo("Peak request: %d bytes\n", res.PeakRequested)
	printInfo("Utilization:  %.2f%%\n", res.Utilization*100)
	if res.Verified > 0 {
		printInfo("Verified:     %d blocks\n", res.Verified)
	}
	if res.Leaks > 0 {
		printInfo("Leaks:        %d blocks still live at end of trace\n", res.Leaks)
	}

	printVerbose("\nHeap:\n")
	printVerbose("  Fast/slow path allocs:  %d/%d\n", r.Heap.AllocFastPath, r.Heap.AllocSlowPath)
	printVerbose("  Large allocs:           %d\n", r.Heap.LargeAllocs)
	printVerbose("  Splits/coalesces:       %d/%d\n", r.Heap.Splits, r.Heap.Coalesces)
	printVerbose("  Pages acquired/released: %d/%d\n", r.Heap.PagesAcquired, r.Heap.PagesReleased)
	printVerbose("  Directory bootstraps:   %d\n", r.Heap.DirectoryBootstraps)
	printVerbose("  Provider peak in use:   %d\n", r.Pages.Peak)
	printVerbose("  Elapsed:                %s\n", r.Elapsed)
}
