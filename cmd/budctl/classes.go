package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/budkit/heap/buddy"
)

var (
	classesFlags heapFlags
	classesSize  int
)

func init() {
	cmd := newClassesCmd()
	classesFlags.registerGeometry(cmd)
	cmd.Flags().IntVar(&classesSize, "size", 0, "Show only the class a request of this size maps to")
	rootCmd.AddCommand(cmd)
}

func newClassesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Print the size-class table",
		Long: `The classes command prints every free-list class of a heap
configuration: block size and the largest request each class serves. The
last row is the dedicated-page class used for large requests.

Example:
  budctl classes
  budctl classes --page-size 4096 --no-tags
  budctl classes --size 100 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses()
		},
	}
	return cmd
}

// ClassRow is one row of classes output.
type ClassRow struct {
	Class      int  `json:"class"`
	BlockSize  int  `json:"block_size"`
	MaxRequest int  `json:"max_request"`
	Large      bool `json:"large"`
}

func toRow(c buddy.ClassInfo) ClassRow {
	return ClassRow{Class: c.Class, BlockSize: c.BlockSize, MaxRequest: c.MaxRequest, Large: c.Large}
}

func runClasses() error {
	cfg := classesFlags.config()

	if classesSize != 0 {
		info, err := buddy.ClassOf(cfg, classesSize)
		if err != nil {
			return fmt.Errorf("size %d: %w", classesSize, err)
		}
		if jsonOut {
			return printJSON(toRow(info))
		}
		printClassTable([]buddy.ClassInfo{info})
		return nil
	}

	table, err := buddy.Classes(cfg)
	if err != nil {
		return err
	}
	if jsonOut {
		rows := make([]ClassRow, len(table))
		for i, c := range table {
			rows[i] = toRow(c)
		}
		return printJSON(rows)
	}

	printVerbose("Page size %d, min block %d, tags %v\n", cfg.PageSize, cfg.MinBlockSize, !cfg.DisableTags)
	printClassTable(table)
	return nil
}

func printClassTable(table []buddy.ClassInfo) {
	printInfo("%-6s %10s %12s\n", "CLASS", "BLOCK", "MAX REQUEST")
	for _, c := range table {
		label := fmt.Sprintf("%d", c.Class)
		if c.Large {
			label = "large"
		}
		printInfo("%-6s %10d %12d\n", label, c.BlockSize, c.MaxRequest)
	}
}
