package main

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-liftover/internal/chain"
)

func newChainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chains [chrom...]",
		Short: "List the chains of a chain file",
		Long:  "List chains in file order, optionally restricted to reference chromosomes.",
		Example: `  vibe-liftover --chain test.chain chains
  vibe-liftover --chain hg19ToHg38.over.chain.gz chains chr22`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()

			cf, _, err := loadChainFile(logger)
			if err != nil {
				return err
			}

			chains := cf.Chains()
			if len(args) > 0 {
				chains = nil
				for _, chrom := range args {
					chains = append(chains, cf.ChainsByChrom(chrom)...)
				}
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			fmt.Fprintln(w, "#id\treference\tquery\tstrand\tscore\tintervals")
			for _, c := range chains {
				writeChainSummary(w, c)
			}
			return w.Flush()
		},
	}
}

func writeChainSummary(w *bufio.Writer, c *chain.Chain) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
		c.ID,
		c.RefRegion(),
		c.QueryRegion(),
		c.QueryStrand,
		strconv.FormatFloat(c.Score, 'f', -1, 64),
		len(c.Intervals))
}
