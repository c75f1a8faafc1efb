package chain

import (
	"sort"

	"github.com/inodb/vibe-liftover/internal/genomic"
)

// File holds every chain of a chain file, indexed by reference chromosome.
// It is not modified after NewFile and is safe for concurrent use.
type File struct {
	chains []*Chain
	// byChrom keeps chains in file order within each chromosome
	byChrom map[string][]*Chain
}

// NewFile builds the chromosome index over chains.
func NewFile(chains []*Chain) *File {
	f := &File{
		chains:  chains,
		byChrom: make(map[string][]*Chain),
	}
	for _, c := range chains {
		f.byChrom[c.RefChrom] = append(f.byChrom[c.RefChrom], c)
	}
	return f
}

// Chains returns all chains in file order.
func (f *File) Chains() []*Chain {
	return f.chains
}

// ChainCount returns the number of chains.
func (f *File) ChainCount() int {
	return len(f.chains)
}

// ChainsByChrom returns the chains on a reference chromosome, in file order.
func (f *File) ChainsByChrom(chrom string) []*Chain {
	return f.byChrom[chrom]
}

// Chromosomes returns a sorted list of reference chromosomes.
func (f *File) Chromosomes() []string {
	chroms := make([]string, 0, len(f.byChrom))
	for chrom := range f.byChrom {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// OverlappedChainsWithPosition returns the chains whose reference span contains p.
func (f *File) OverlappedChainsWithPosition(p genomic.Position) []*Chain {
	var result []*Chain
	for _, c := range f.byChrom[p.Chrom] {
		if c.IsRefOverlapPosition(p) {
			result = append(result, c)
		}
	}
	return result
}

// OverlappedChains returns the chains whose reference span overlaps r.
func (f *File) OverlappedChains(r genomic.Region) []*Chain {
	var result []*Chain
	for _, c := range f.byChrom[r.Chrom] {
		if c.IsRefOverlap(r) {
			result = append(result, c)
		}
	}
	return result
}

// LiftOverPosition maps p through every overlapping chain. The result is
// empty when no chain covers p and may hold several mappings.
func (f *File) LiftOverPosition(p genomic.Position) []LiftPosition {
	var result []LiftPosition
	for _, c := range f.OverlappedChainsWithPosition(p) {
		if lp, ok := c.LiftOverPosition(p); ok {
			result = append(result, lp)
		}
	}
	return result
}

// LiftOverRegion maps r through every overlapping chain.
func (f *File) LiftOverRegion(r genomic.Region) []LiftRegion {
	var result []LiftRegion
	for _, c := range f.OverlappedChains(r) {
		if lr, ok := c.LiftOverRegion(r); ok {
			result = append(result, lr)
		}
	}
	return result
}
