// Package chain parses UCSC chain files and lifts coordinates from the
// reference assembly of a chain onto its query assembly.
package chain

import (
	"fmt"
	"strconv"

	"github.com/inodb/vibe-liftover/internal/genomic"
)

// Interval is one ungapped alignment block followed by the gaps that
// separate it from the next block.
type Interval struct {
	Size      int64 // Ungapped block length
	DiffRef   int64 // Reference-only bases after the block
	DiffQuery int64 // Query-only bases after the block
}

// RefLength returns the reference bases consumed by the interval.
func (iv Interval) RefLength() int64 {
	return iv.Size + iv.DiffRef
}

// QueryLength returns the query bases consumed by the interval.
func (iv Interval) QueryLength() int64 {
	return iv.Size + iv.DiffQuery
}

// Chain is a single chain block: a header plus its ordered intervals.
// The last interval always has zero gap deltas.
type Chain struct {
	Intervals        []Interval
	Score            float64
	RefChrom         string
	RefChromLength   int64
	RefStrand        genomic.Strand // Always Plus
	RefStart         int64
	RefEnd           int64
	QueryChrom       string
	QueryChromLength int64
	QueryStrand      genomic.Strand
	QueryStart       int64 // On QueryStrand
	QueryEnd         int64 // On QueryStrand
	ID               string
}

// LiftPosition is a position mapped onto the query assembly.
type LiftPosition struct {
	genomic.Position
	Strand genomic.Strand
	InGap  bool // The source position fell in a reference-only gap
}

// LiftRegion is a region mapped onto the query assembly.
type LiftRegion struct {
	genomic.Region
	Strand   genomic.Strand
	StartGap int64 // Bases of the source region clipped before the chain, on the mapped strand
	StopGap  int64 // Bases of the source region clipped after the chain, on the mapped strand
}

// String returns the mapped position with its strand, e.g. "chr22:23948129 - inGap=false".
func (lp LiftPosition) String() string {
	return fmt.Sprintf("%s %s inGap=%t", lp.Position, lp.Strand, lp.InGap)
}

// String returns the mapped region with its strand and clipped overhangs.
func (lr LiftRegion) String() string {
	return fmt.Sprintf("%s %s startGap=%d stopGap=%d", lr.Region, lr.Strand, lr.StartGap, lr.StopGap)
}

// RefLength returns the reference span of the chain.
func (c *Chain) RefLength() int64 {
	return c.RefEnd - c.RefStart
}

// QueryLength returns the query span of the chain.
func (c *Chain) QueryLength() int64 {
	return c.QueryEnd - c.QueryStart
}

// RefRegion returns the reference span as a region.
func (c *Chain) RefRegion() genomic.Region {
	return genomic.Region{Chrom: c.RefChrom, Start: c.RefStart, Stop: c.RefEnd}
}

// QueryRegion returns the query span as a region in QueryStrand coordinates.
func (c *Chain) QueryRegion() genomic.Region {
	return genomic.Region{Chrom: c.QueryChrom, Start: c.QueryStart, Stop: c.QueryEnd}
}

// IsRefOverlap reports whether r overlaps the reference span of the chain.
func (c *Chain) IsRefOverlap(r genomic.Region) bool {
	return c.RefRegion().Overlaps(r)
}

// IsRefOverlapPosition reports whether p falls inside the reference span.
func (c *Chain) IsRefOverlapPosition(p genomic.Position) bool {
	return c.RefRegion().OverlapsPosition(p)
}

// OverlappedLength returns the number of reference bases shared with r.
func (c *Chain) OverlappedLength(r genomic.Region) int64 {
	return c.RefRegion().OverlappedLength(r)
}

// Validate checks that the intervals cover exactly the header spans.
func (c *Chain) Validate() error {
	if len(c.Intervals) == 0 {
		return fmt.Errorf("chain %s has no intervals", c.ID)
	}
	last := c.Intervals[len(c.Intervals)-1]
	if last.DiffRef != 0 || last.DiffQuery != 0 {
		return fmt.Errorf("chain %s: last interval has non-zero gaps", c.ID)
	}
	var refSum, querySum int64
	for _, iv := range c.Intervals {
		refSum += iv.RefLength()
		querySum += iv.QueryLength()
	}
	if refSum != c.RefLength() {
		return fmt.Errorf("chain %s: intervals cover %d reference bases, header spans %d",
			c.ID, refSum, c.RefLength())
	}
	if querySum != c.QueryLength() {
		return fmt.Errorf("chain %s: intervals cover %d query bases, header spans %d",
			c.ID, querySum, c.QueryLength())
	}
	return nil
}

// LiftOverPosition maps p onto the query assembly. It returns false when p
// lies outside the reference span of the chain.
//
// A position inside a reference-only gap maps to the query base right after
// the preceding block and is flagged InGap. Minus-strand results are
// reflected against the query chromosome length.
func (c *Chain) LiftOverPosition(p genomic.Position) (LiftPosition, bool) {
	if !c.IsRefOverlapPosition(p) {
		return LiftPosition{}, false
	}

	refCursor := c.RefStart
	queryCursor := c.QueryStart
	for _, iv := range c.Intervals {
		nextRef := refCursor + iv.RefLength()
		if p.Pos < nextRef {
			inGap := false
			queryPos := queryCursor + (p.Pos - refCursor)
			if refCursor+iv.Size <= p.Pos {
				queryPos = queryCursor + iv.Size
				inGap = true
			}
			if c.QueryStrand == genomic.Minus {
				queryPos = c.QueryChromLength - queryPos
			}
			return LiftPosition{
				Position: genomic.Position{Chrom: c.QueryChrom, Pos: queryPos},
				Strand:   c.QueryStrand,
				InGap:    inGap,
			}, true
		}
		refCursor = nextRef
		queryCursor += iv.QueryLength()
	}

	panic(fmt.Sprintf("chain %s: intervals end at %d before reference end %d", c.ID, refCursor, c.RefEnd))
}

// LiftOverRegion maps r onto the query assembly. It returns false when r does
// not overlap the reference span of the chain. Parts of r hanging over either
// end of the chain are clipped and reported as StartGap/StopGap.
func (c *Chain) LiftOverRegion(r genomic.Region) (LiftRegion, bool) {
	if !c.IsRefOverlap(r) {
		return LiftRegion{}, false
	}

	startGap := max(0, c.RefStart-r.Start)
	stopGap := max(0, r.Stop-c.RefEnd)

	// Overhanging ends fall back to the query span boundaries.
	start, stop := c.QueryStart, c.QueryEnd-1
	if first, ok := c.LiftOverPosition(r.StartPosition()); ok {
		start = first.Pos
	}
	if last, ok := c.LiftOverPosition(r.StopPosition()); ok {
		stop = last.Pos
	}

	if c.QueryStrand == genomic.Plus {
		return LiftRegion{
			Region:   genomic.Region{Chrom: c.QueryChrom, Start: start, Stop: stop + 1},
			Strand:   c.QueryStrand,
			StartGap: startGap,
			StopGap:  stopGap,
		}, true
	}
	// The 5' end of the mapped minus strand is the 3' end of the reference.
	return LiftRegion{
		Region:   genomic.Region{Chrom: c.QueryChrom, Start: stop, Stop: start + 1},
		Strand:   c.QueryStrand,
		StartGap: stopGap,
		StopGap:  startGap,
	}, true
}

// String returns the chain header line.
func (c *Chain) String() string {
	return fmt.Sprintf("chain %s %s %d %s %d %d %s %d %s %d %d %s",
		strconv.FormatFloat(c.Score, 'f', -1, 64),
		c.RefChrom, c.RefChromLength, c.RefStrand, c.RefStart, c.RefEnd,
		c.QueryChrom, c.QueryChromLength, c.QueryStrand, c.QueryStart, c.QueryEnd,
		c.ID)
}
