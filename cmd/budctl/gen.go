package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/budkit/heap/trace"
)

var (
	genSeed       int64
	genRequests   int
	genMaxLive    int
	genMaxSize    int
	genLargeRatio float64
	genPageSize   int
	genOutput     string
)

func init() {
	cmd := newGenCmd()
	cmd.Flags().Int64Var(&genSeed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&genRequests, "requests", 1000, "Number of REQUEST operations")
	cmd.Flags().IntVar(&genMaxLive, "max-live", 128, "Maximum simultaneously live blocks")
	cmd.Flags().IntVar(&genMaxSize, "max-size", 0, "Largest small request (0 = half a page)")
	cmd.Flags().Float64Var(&genLargeRatio, "large-ratio", 0.02, "Fraction of requests that need a dedicated page")
	cmd.Flags().IntVar(&genPageSize, "page-size", 0, "Page size the sizes are drawn for (0 = default)")
	cmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(cmd)
}

func newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a synthetic allocation trace",
		Long: `The gen command writes a balanced random trace: every REQUEST is
eventually matched by a FREE. The same seed always yields the same trace.

Example:
  budctl gen --seed 7 --requests 5000 -o churn.trace
  budctl gen --large-ratio 0.2 --max-live 16`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen()
		},
	}
	return cmd
}

func runGen() error {
	opts := trace.GenOptions{
		Seed:       genSeed,
		Requests:   genRequests,
		MaxLive:    genMaxLive,
		MaxSize:    genMaxSize,
		LargeRatio: genLargeRatio,
		PageSize:   genPageSize,
	}
	ops := trace.Generate(opts)

	var w io.Writer = os.Stdout
	if genOutput != "" {
		f, err := os.Create(genOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# budctl gen --seed %d --requests %d --max-live %d --large-ratio %g\n",
		genSeed, genRequests, genMaxLive, genLargeRatio)
	if err := trace.Write(bw, ops); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	if genOutput != "" {
		printVerbose("Wrote %d operations to %s\n", len(ops), genOutput)
	}
	return nil
}
