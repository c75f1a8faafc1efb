package genomic

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a single zero-based coordinate on a named sequence.
type Position struct {
	Chrom string
	Pos   int64
}

// String formats the position as chrom:pos.
func (p Position) String() string {
	return fmt.Sprintf("%s:%d", p.Chrom, p.Pos)
}

// Region is a half-open interval [Start, Stop) on a named sequence.
// Start <= Stop is expected but not enforced.
type Region struct {
	Chrom string
	Start int64 // included
	Stop  int64 // excluded
}

// String formats the region as chrom:start-stop.
func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.Stop)
}

// Len returns the number of bases covered by the region.
func (r Region) Len() int64 {
	return r.Stop - r.Start
}

// StartPosition returns the first included coordinate.
func (r Region) StartPosition() Position {
	return Position{Chrom: r.Chrom, Pos: r.Start}
}

// StopPosition returns the last included coordinate, Stop-1.
func (r Region) StopPosition() Position {
	return Position{Chrom: r.Chrom, Pos: r.Stop - 1}
}

// Overlaps reports whether two regions share at least one base.
func (r Region) Overlaps(other Region) bool {
	if r.Chrom != other.Chrom {
		return false
	}
	return r.Start < other.Stop && other.Start < r.Stop
}

// OverlapsPosition reports whether p falls inside the region.
func (r Region) OverlapsPosition(p Position) bool {
	if r.Chrom != p.Chrom {
		return false
	}
	return r.Start <= p.Pos && p.Pos < r.Stop
}

// OverlappedLength returns the number of bases shared with other.
func (r Region) OverlappedLength(other Region) int64 {
	if r.Chrom != other.Chrom {
		return 0
	}
	return max(0, min(r.Stop, other.Stop)-max(r.Start, other.Start))
}

// ParsePosition parses "chrom:pos". Commas in the number are ignored.
func ParsePosition(s string) (Position, error) {
	chrom, rest, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || chrom == "" {
		return Position{}, fmt.Errorf("invalid position %q: expected chrom:pos", s)
	}
	pos, err := parseCoord(rest)
	if err != nil {
		return Position{}, fmt.Errorf("invalid position %q: %w", s, err)
	}
	return Position{Chrom: chrom, Pos: pos}, nil
}

// ParseRegion parses "chrom:start-stop". Commas in the numbers are ignored.
func ParseRegion(s string) (Region, error) {
	chrom, rest, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || chrom == "" {
		return Region{}, fmt.Errorf("invalid region %q: expected chrom:start-stop", s)
	}
	startStr, stopStr, ok := strings.Cut(rest, "-")
	if !ok {
		return Region{}, fmt.Errorf("invalid region %q: expected chrom:start-stop", s)
	}
	start, err := parseCoord(startStr)
	if err != nil {
		return Region{}, fmt.Errorf("invalid region %q: %w", s, err)
	}
	stop, err := parseCoord(stopStr)
	if err != nil {
		return Region{}, fmt.Errorf("invalid region %q: %w", s, err)
	}
	if start > stop {
		return Region{}, fmt.Errorf("invalid region %q: start after stop", s)
	}
	return Region{Chrom: chrom, Start: start, Stop: stop}, nil
}

func parseCoord(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
}
