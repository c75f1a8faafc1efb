package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-liftover/internal/bed"
	"github.com/inodb/vibe-liftover/internal/chain"
	"github.com/inodb/vibe-liftover/internal/duckdb"
	"github.com/inodb/vibe-liftover/internal/lift"
	"github.com/inodb/vibe-liftover/internal/output"
)

// cacheBatchSize is the number of results buffered before an Appender flush.
const cacheBatchSize = 10000

func newLiftCmd() *cobra.Command {
	var (
		outputFile string
		cachePath  string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "lift [input.bed]",
		Short: "Lift every region of a BED file",
		Long: `Lift every region of a BED file (plain or gzipped, '-' or no argument
for stdin) and write a tab-delimited report with one line per mapping.
Regions that do not map are reported with '-' mapped columns.`,
		Example: `  vibe-liftover --chain hg19ToHg38.over.chain.gz lift regions.bed
  vibe-liftover --chain hg19ToHg38.over.chain.gz lift -o lifted.tsv --workers 4 regions.bed.gz
  cat regions.bed | vibe-liftover --chain test.chain lift -`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			inputPath := "-"
			if len(args) == 1 {
				inputPath = args[0]
			}
			if !cmd.Flags().Changed("workers") {
				workers = viper.GetInt("workers")
			}
			cachePath = firstNonEmpty(cachePath, viper.GetString("cache"))

			logger := newLogger()
			defer logger.Sync()

			cf, chainPath, err := loadChainFile(logger)
			if err != nil {
				return err
			}

			parser, err := bed.NewParser(inputPath)
			if err != nil {
				if os.IsNotExist(err) {
					logger.Warn("check that the input path is correct", zap.String("input", inputPath))
				}
				return err
			}
			defer parser.Close()

			var out io.Writer = cmd.OutOrStdout()
			if outputFile != "" {
				f, cerr := os.Create(outputFile)
				if cerr != nil {
					return fmt.Errorf("create output file: %w", cerr)
				}
				defer closeOutput(f, &err)
				out = f
			}

			var writer lift.ResultWriter = output.NewTabWriter(out)
			if cachePath != "" {
				store, err := openCache(cachePath, chainPath, logger)
				if err != nil {
					return err
				}
				defer store.Close()
				writer = &cacheWriter{ResultWriter: writer, store: store}
			}

			lifter := lift.NewLifter(cf)
			lifter.SetWorkers(workers)
			lifter.SetLogger(logger)

			stats, err := lifter.LiftAll(cmd.Context(), parser, writer)
			if err != nil {
				return err
			}
			if stats.Unmapped > 0 {
				logger.Warn("some regions did not map",
					zap.Int("unmapped", stats.Unmapped),
					zap.Int("records", stats.Records))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&cachePath, "cache", "", "DuckDB file to store lift results in")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker goroutines (default: number of CPUs)")
	return cmd
}

// closeOutput closes c and reports its error through errp unless an
// earlier error is already set.
func closeOutput(c io.Closer, errp *error) {
	if cerr := c.Close(); cerr != nil && *errp == nil {
		*errp = fmt.Errorf("close output file: %w", cerr)
	}
}

// cacheWriter forwards results to a ResultWriter and stores them in DuckDB.
type cacheWriter struct {
	lift.ResultWriter
	store   *duckdb.Store
	pending []duckdb.LiftResult
}

func (w *cacheWriter) Write(rec *bed.Record, mapped []chain.LiftRegion) error {
	if err := w.ResultWriter.Write(rec, mapped); err != nil {
		return err
	}
	w.pending = append(w.pending, duckdb.LiftResult{Source: rec.Region, Mapped: mapped})
	if len(w.pending) >= cacheBatchSize {
		return w.flushCache()
	}
	return nil
}

func (w *cacheWriter) Flush() error {
	if err := w.flushCache(); err != nil {
		return err
	}
	return w.ResultWriter.Flush()
}

func (w *cacheWriter) flushCache() error {
	if err := w.store.WriteLiftResults(w.pending); err != nil {
		return fmt.Errorf("cache lift results: %w", err)
	}
	w.pending = w.pending[:0]
	return nil
}
