package trace

// Trace file keywords and syntax.
const (
	KeywordRequest = "REQUEST"
	KeywordFree    = "FREE"
	CommentPrefix  = "#"
)

// Scanner buffer sizes.
const (
	ScannerInitialBufferSize = 64 * 1024
	ScannerMaxLineSize       = 1024 * 1024
)

// Replay tuning.
const (
	// ctxCheckInterval is how many ops run between context checks.
	ctxCheckInterval = 1024
)
