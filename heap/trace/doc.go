// Package trace replays allocation traces against a buddy heap.
//
// A trace is a text file of REQUEST and FREE operations keyed by id:
//
//	# four 100-byte blocks
//	REQUEST 0 100
//	REQUEST 1 100
//	FREE 1
//	FREE 0
//
// Parse reads traces (UTF-8, or UTF-16 with a byte order mark), Write emits
// them, and Generate produces seeded synthetic ones. A Replayer executes a
// trace, tracks peak page usage through the provider, and can verify that
// no block's content changes while it is live.
package trace
