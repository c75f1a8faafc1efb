package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-liftover/internal/bed"
	"github.com/inodb/vibe-liftover/internal/chain"
	"github.com/inodb/vibe-liftover/internal/duckdb"
	"github.com/inodb/vibe-liftover/internal/genomic"
	"github.com/inodb/vibe-liftover/internal/output"
)

func newPositionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "position <chrom:pos>...",
		Short: "Lift single positions",
		Example: `  vibe-liftover --chain test.chain position chr22:24363328 chr22:24387343`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			positions := make([]genomic.Position, len(args))
			for i, arg := range args {
				p, err := genomic.ParsePosition(arg)
				if err != nil {
					return &usageError{err}
				}
				positions[i] = p
			}

			logger := newLogger()
			defer logger.Sync()

			cf, _, err := loadChainFile(logger)
			if err != nil {
				return err
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			fmt.Fprintln(w, "#position\tmapped_chrom\tmapped_pos\tstrand\tin_gap")
			for _, p := range positions {
				writePositionResults(w, p, cf.LiftOverPosition(p))
			}
			return w.Flush()
		},
	}
}

func writePositionResults(w *bufio.Writer, p genomic.Position, mapped []chain.LiftPosition) {
	if len(mapped) == 0 {
		fmt.Fprintf(w, "%s\t-\t-\t-\t-\n", p)
		return
	}
	for _, m := range mapped {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", p, m.Chrom, m.Pos, m.Strand, strconv.FormatBool(m.InGap))
	}
}

func newRegionCmd() *cobra.Command {
	var cachePath string

	cmd := &cobra.Command{
		Use:   "region <chrom:start-stop>...",
		Short: "Lift half-open regions",
		Example: `  vibe-liftover --chain test.chain region chr22:24363325-24364960
  vibe-liftover --chain test.chain region --cache lift.duckdb chr22:24387300-24387400`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			regions := make([]genomic.Region, len(args))
			for i, arg := range args {
				r, err := genomic.ParseRegion(arg)
				if err != nil {
					return &usageError{err}
				}
				regions[i] = r
			}

			logger := newLogger()
			defer logger.Sync()

			cf, chainPath, err := loadChainFile(logger)
			if err != nil {
				return err
			}

			lookup := func(r genomic.Region) ([]chain.LiftRegion, error) {
				return cf.LiftOverRegion(r), nil
			}
			if cachePath = firstNonEmpty(cachePath, viper.GetString("cache")); cachePath != "" {
				store, err := openCache(cachePath, chainPath, logger)
				if err != nil {
					return err
				}
				defer store.Close()
				lookup = cachedLookup(store, cf, logger)
			}

			tw := output.NewTabWriter(cmd.OutOrStdout())
			if err := tw.WriteHeader(); err != nil {
				return err
			}
			for _, r := range regions {
				mapped, err := lookup(r)
				if err != nil {
					return err
				}
				if err := tw.Write(&bed.Record{Region: r}, mapped); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&cachePath, "cache", "", "DuckDB file caching lift results")
	return cmd
}

// cachedLookup serves regions from store, lifting and storing misses.
func cachedLookup(store *duckdb.Store, cf *chain.File, logger *zap.Logger) func(genomic.Region) ([]chain.LiftRegion, error) {
	return func(r genomic.Region) ([]chain.LiftRegion, error) {
		mapped, found, err := store.LookupRegion(r)
		if err != nil {
			return nil, err
		}
		if found {
			logger.Debug("cache hit", zap.String("region", r.String()))
			return mapped, nil
		}
		mapped = cf.LiftOverRegion(r)
		if err := store.WriteLiftResults([]duckdb.LiftResult{{Source: r, Mapped: mapped}}); err != nil {
			return nil, fmt.Errorf("cache lift result: %w", err)
		}
		return mapped, nil
	}
}

// openCache opens the result cache and ties it to the chain file at chainPath.
func openCache(path, chainPath string, logger *zap.Logger) (*duckdb.Store, error) {
	if chainPath == "-" {
		return nil, &usageError{fmt.Errorf("--cache needs a chain file path, not stdin")}
	}
	fp, err := duckdb.StatFile(chainPath)
	if err != nil {
		return nil, fmt.Errorf("stat chain file: %w", err)
	}

	store, err := duckdb.Open(path)
	if err != nil {
		return nil, err
	}
	current, err := store.IsCurrent(fp)
	if err != nil {
		store.Close()
		return nil, err
	}
	if !current {
		logger.Info("chain file changed, resetting cache", zap.String("cache", path))
		if err := store.SetChainFile(fp); err != nil {
			store.Close()
			return nil, err
		}
	}
	return store, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
