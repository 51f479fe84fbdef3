// Package mmfile provides platform-specific helpers for mapping anonymous
// page memory.
package mmfile
