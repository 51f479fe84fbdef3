package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/budkit/heap/buddy"
	"github.com/joshuapare/budkit/heap/page"
	"github.com/joshuapare/budkit/internal/logger"
)

// Provider kinds accepted by --provider.
const (
	providerMem  = "mem"
	providerMmap = "mmap"
)

// heapFlags are shared by every command that builds a heap.
type heapFlags struct {
	pageSize int
	minBlock int
	noTags   bool
	provider string
	maxPages int
}

// registerGeometry adds the flags that shape the size classes.
func (f *heapFlags) registerGeometry(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.pageSize, "page-size", page.DefaultSize, "Page size in bytes (power of two)")
	cmd.Flags().IntVar(&f.minBlock, "min-block", buddy.DefaultMinBlockSize, "Smallest block size in bytes (power of two)")
	cmd.Flags().BoolVar(&f.noTags, "no-tags", false, "Disable per-block allocation tags")
}

// register adds the geometry flags plus the page provider flags.
func (f *heapFlags) register(cmd *cobra.Command) {
	f.registerGeometry(cmd)
	cmd.Flags().StringVar(&f.provider, "provider", providerMem, "Page provider: mem or mmap")
	cmd.Flags().IntVar(&f.maxPages, "max-pages", 0, "Cap on outstanding pages (0 = unlimited)")
}

func (f *heapFlags) config() buddy.Config {
	return buddy.Config{
		PageSize:     f.pageSize,
		MinBlockSize: f.minBlock,
		DisableTags:  f.noTags,
		Logger:       logger.L,
	}
}

// providerStats is implemented by both built-in providers.
type providerStats interface {
	page.Provider
	Stats() page.Stats
}

func (f *heapFlags) newProvider() (providerStats, error) {
	switch f.provider {
	case providerMem:
		p, err := page.NewMem(page.MemOptions{PageSize: f.pageSize, MaxPages: f.maxPages})
		if err != nil {
			return nil, err
		}
		return p, nil
	case providerMmap:
		p, err := page.NewMmap(page.MmapOptions{PageSize: f.pageSize, MaxPages: f.maxPages})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want %s or %s)", f.provider, providerMem, providerMmap)
	}
}

// newHeap builds a provider and a heap over it.
func (f *heapFlags) newHeap() (*buddy.BuddyAllocator, providerStats, error) {
	p, err := f.newProvider()
	if err != nil {
		return nil, nil, err
	}
	cfg := f.config()
	ba, err := buddy.New(p, &cfg)
	if err != nil {
		return nil, nil, err
	}
	return ba, p, nil
}
