package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/budkit/heap/buddy"
	"github.com/joshuapare/budkit/heap/page"
)

// SetupHeap creates a default heap over a fresh MemProvider.
// Returns the heap, its provider, and a cleanup function that closes the heap.
//
// Example:
//
//	ba, p, cleanup := testutil.SetupHeap(t)
//	defer cleanup()
func SetupHeap(t *testing.T) (*buddy.BuddyAllocator, *page.MemProvider, func()) {
	t.Helper()
	return SetupHeapWith(t, page.MemOptions{}, nil)
}

// SetupHeapWith creates a heap over a MemProvider with the given options.
// cfg may be nil for the default configuration.
func SetupHeapWith(t *testing.T, opts page.MemOptions, cfg *buddy.Config) (*buddy.BuddyAllocator, *page.MemProvider, func()) {
	t.Helper()

	p, err := page.NewMem(opts)
	if err != nil {
		t.Fatalf("Failed to create page provider: %v", err)
	}
	ba, err := buddy.New(p, cfg)
	if err != nil {
		t.Fatalf("Failed to create heap: %v", err)
	}

	cleanup := func() {
		if err := ba.Close(); err != nil {
			t.Errorf("Failed to close heap: %v", err)
		}
	}
	return ba, p, cleanup
}

// TracePath resolves a trace fixture path relative to the repository root.
// Calls t.Skip if the fixture is not found.
func TracePath(t *testing.T, relativePath string) string {
	t.Helper()
	return resolveTestPath(t, relativePath)
}

// WriteTrace writes content to a file in a temporary directory and returns its path.
func WriteTrace(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write trace: %v", err)
	}
	return path
}

// resolveTestPath attempts to find a fixture by trying multiple path resolutions.
// This handles the fact that tests may be run from different working directories.
func resolveTestPath(t *testing.T, relativePath string) string {
	t.Helper()

	// Try paths in order of likelihood
	candidates := []string{
		relativePath,                  // Direct path (from repo root)
		"../" + relativePath,          // From a top-level package
		"../../" + relativePath,       // From package two levels deep (e.g., heap/trace/)
		"../../../" + relativePath,    // From package three levels deep
		"../../../../" + relativePath, // From package four levels deep
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	// If not found, skip the test
	t.Skipf("Fixture not found at any candidate path starting from: %s", relativePath)
	return "" // unreachable
}
