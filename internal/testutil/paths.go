package testutil

// Trace fixture paths relative to the repository root.
// These constants should be used instead of hardcoding paths in test files.
const (
	// TraceFourSmall requests four 100-byte blocks and frees them in reverse.
	TraceFourSmall = "testdata/traces/four_small.trace"

	// TraceLarge requests and frees one dedicated-page block.
	TraceLarge = "testdata/traces/large.trace"

	// TraceMixed interleaves small and large requests.
	TraceMixed = "testdata/traces/mixed.trace"

	// TraceUTF16 is TraceFourSmall encoded as UTF-16LE with a byte order mark.
	TraceUTF16 = "testdata/traces/four_small_utf16.trace"
)
