package chain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-liftover/internal/genomic"
)

func newTestChain() *Chain {
	return &Chain{
		Intervals: []Interval{
			{Size: 36, DiffRef: 0, DiffQuery: 9},
			{Size: 1362, DiffRef: 1, DiffQuery: 0},
			{Size: 224},
		},
		Score:            4900,
		RefChrom:         "chr22",
		RefChromLength:   51304566,
		RefStrand:        genomic.Plus,
		RefStart:         24363328,
		RefEnd:           24364951,
		QueryChrom:       "chr22",
		QueryChromLength: 50818468,
		QueryStrand:      genomic.Plus,
		QueryStart:       23938300,
		QueryEnd:         23939931,
		ID:               "20",
	}
}

func loadTestChains(t *testing.T) []*Chain {
	t.Helper()
	cf, err := Load("testdata/testchain1.chain")
	require.NoError(t, err)
	require.Len(t, cf.Chains(), 3)
	return cf.Chains()
}

func pos(p int64) genomic.Position {
	return genomic.Position{Chrom: "chr22", Pos: p}
}

func lifted(p int64, strand genomic.Strand, inGap bool) LiftPosition {
	return LiftPosition{Position: pos(p), Strand: strand, InGap: inGap}
}

func TestInterval_Lengths(t *testing.T) {
	iv := Interval{Size: 36, DiffRef: 1, DiffQuery: 9}
	assert.Equal(t, int64(37), iv.RefLength())
	assert.Equal(t, int64(45), iv.QueryLength())

	last := Interval{Size: 224}
	assert.Equal(t, int64(224), last.RefLength())
	assert.Equal(t, int64(224), last.QueryLength())
}

func TestChain_Overlap(t *testing.T) {
	c := newTestChain()

	assert.False(t, c.IsRefOverlapPosition(pos(24363327)))
	assert.True(t, c.IsRefOverlapPosition(pos(24363328)))
	assert.True(t, c.IsRefOverlapPosition(pos(24364950)))
	assert.False(t, c.IsRefOverlapPosition(pos(24364951)))
	assert.False(t, c.IsRefOverlapPosition(genomic.Position{Chrom: "chr21", Pos: 24363328}))

	before := genomic.Region{Chrom: "chr22", Start: 24363327, Stop: 24363328}
	assert.False(t, c.IsRefOverlap(before))
	assert.Equal(t, int64(0), c.OverlappedLength(before))

	head := genomic.Region{Chrom: "chr22", Start: 24363328, Stop: 24363330}
	assert.True(t, c.IsRefOverlap(head))
	assert.Equal(t, int64(2), c.OverlappedLength(head))

	assert.Equal(t, int64(1623), c.RefLength())
	assert.Equal(t, int64(1631), c.QueryLength())
}

func TestChain_Validate(t *testing.T) {
	c := newTestChain()
	require.NoError(t, c.Validate())

	c.RefEnd++
	assert.Error(t, c.Validate(), "reference span mismatch")

	c = newTestChain()
	c.QueryEnd--
	assert.Error(t, c.Validate(), "query span mismatch")

	c = newTestChain()
	c.Intervals[2].DiffRef = 1
	c.RefEnd++
	assert.Error(t, c.Validate(), "trailing gap")

	c = newTestChain()
	c.Intervals = nil
	assert.Error(t, c.Validate())
}

func TestChain_LiftOverPosition_PlusStrand(t *testing.T) {
	c := loadTestChains(t)[0]

	tests := []struct {
		name string
		pos  int64
		want LiftPosition
	}{
		{"chain start", 24363328, lifted(23938300, genomic.Plus, false)},
		{"end of first block", 24363328 + 35, lifted(23938300+35, genomic.Plus, false)},
		{"after query gap", 24363328 + 36, lifted(23938300+36+9, genomic.Plus, false)},
		{"end of second block", 24363328 + 36 + 1361, lifted(23938300+36+9+1361, genomic.Plus, false)},
		{"reference gap", 24363328 + 36 + 1362, lifted(23938300+36+9+1362, genomic.Plus, true)},
		{"after reference gap", 24363328 + 36 + 1363, lifted(23938300+36+9+1362, genomic.Plus, false)},
		{"chain end", 24364950, lifted(23939930, genomic.Plus, false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.LiftOverPosition(pos(tt.pos))
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChain_LiftOverPosition_MultipleGaps(t *testing.T) {
	c := loadTestChains(t)[1]
	base := int64(24387233)
	qbase := int64(23993103)

	tests := []struct {
		pos  int64
		want LiftPosition
	}{
		{base, lifted(qbase, genomic.Plus, false)},
		{base + 39, lifted(qbase+39, genomic.Plus, false)},
		{base + 40, lifted(qbase+40, genomic.Plus, true)},
		{base + 40 + 1, lifted(qbase+40, genomic.Plus, false)},
		{base + 40 + 1 + 328, lifted(qbase+40+328, genomic.Plus, false)},
		{base + 40 + 1 + 329, lifted(qbase+40+329, genomic.Plus, true)},
		{base + 40 + 1 + 330, lifted(qbase+40+329, genomic.Plus, true)},
		{base + 40 + 1 + 331, lifted(qbase+40+329, genomic.Plus, false)},
	}

	for _, tt := range tests {
		got, ok := c.LiftOverPosition(pos(tt.pos))
		require.True(t, ok, "pos=%d", tt.pos)
		assert.Equal(t, tt.want, got, "pos=%d", tt.pos)
	}
}

func TestChain_LiftOverPosition_MinusStrand(t *testing.T) {
	c := loadTestChains(t)[2]
	const qlen = 50818468

	tests := []struct {
		pos  int64
		want LiftPosition
	}{
		{24387343, lifted(qlen-26870339, genomic.Minus, false)},
		{24387343 + 262, lifted(qlen-26870339-262, genomic.Minus, false)},
		{24387343 + 263, lifted(qlen-26870339-263, genomic.Minus, true)},
		{24387819, lifted(qlen-26870813, genomic.Minus, false)},
	}

	for _, tt := range tests {
		got, ok := c.LiftOverPosition(pos(tt.pos))
		require.True(t, ok, "pos=%d", tt.pos)
		assert.Equal(t, tt.want, got, "pos=%d", tt.pos)
	}
}

func TestChain_LiftOverPosition_Outside(t *testing.T) {
	c := newTestChain()

	_, ok := c.LiftOverPosition(pos(24363327))
	assert.False(t, ok)
	_, ok = c.LiftOverPosition(pos(24364951))
	assert.False(t, ok)
	_, ok = c.LiftOverPosition(genomic.Position{Chrom: "chr1", Pos: 24363328})
	assert.False(t, ok)
}

func TestChain_LiftOverPosition_BrokenChainPanics(t *testing.T) {
	c := newTestChain()
	c.Intervals = c.Intervals[:2]

	assert.Panics(t, func() {
		c.LiftOverPosition(pos(24364950))
	})
}

func TestChain_LiftOverRegion_PlusStrand(t *testing.T) {
	c := loadTestChains(t)[0]

	got, ok := c.LiftOverRegion(genomic.Region{Chrom: "chr22", Start: 24363328, Stop: 24364950})
	require.True(t, ok)
	assert.Equal(t, LiftRegion{
		Region: genomic.Region{Chrom: "chr22", Start: 23938300, Stop: 23939930},
		Strand: genomic.Plus,
	}, got)

	got, ok = c.LiftOverRegion(genomic.Region{Chrom: "chr22", Start: 24363325, Stop: 24364960})
	require.True(t, ok)
	assert.Equal(t, LiftRegion{
		Region:   genomic.Region{Chrom: "chr22", Start: 23938300, Stop: 23939931},
		Strand:   genomic.Plus,
		StartGap: 3,
		StopGap:  9,
	}, got)
}

func TestChain_LiftOverRegion_MinusStrand(t *testing.T) {
	c := loadTestChains(t)[2]

	want := genomic.Region{Chrom: "chr22", Start: 50818468 - 26870813, Stop: 50818468 - 26870339 + 1}

	got, ok := c.LiftOverRegion(genomic.Region{Chrom: "chr22", Start: 24387343, Stop: 24387820})
	require.True(t, ok)
	assert.Equal(t, LiftRegion{Region: want, Strand: genomic.Minus}, got)

	// Overhang of 3 before and 5 after the chain: both ends fall back to
	// QueryStart and QueryEnd-1, and the gaps swap on the minus strand.
	got, ok = c.LiftOverRegion(genomic.Region{Chrom: "chr22", Start: 24387340, Stop: 24387825})
	require.True(t, ok)
	assert.Equal(t, LiftRegion{
		Region:   genomic.Region{Chrom: "chr22", Start: 26870814 - 1, Stop: 26870339 + 1},
		Strand:   genomic.Minus,
		StartGap: 5,
		StopGap:  3,
	}, got)

	// Overhang on one side only keeps the lifted end of the other side.
	got, ok = c.LiftOverRegion(genomic.Region{Chrom: "chr22", Start: 24387343, Stop: 24387825})
	require.True(t, ok)
	assert.Equal(t, LiftRegion{
		Region:   genomic.Region{Chrom: "chr22", Start: 26870814 - 1, Stop: 50818468 - 26870339 + 1},
		Strand:   genomic.Minus,
		StartGap: 5,
	}, got)
}

func TestChain_LiftOverRegion_NoOverlap(t *testing.T) {
	c := newTestChain()

	_, ok := c.LiftOverRegion(genomic.Region{Chrom: "chr22", Start: 100, Stop: 24363328})
	assert.False(t, ok)
	_, ok = c.LiftOverRegion(genomic.Region{Chrom: "chr21", Start: 24363328, Stop: 24364950})
	assert.False(t, ok)
}

func TestLiftResult_String(t *testing.T) {
	lp := LiftPosition{
		Position: genomic.Position{Chrom: "chr22", Pos: 23948129},
		Strand:   genomic.Minus,
		InGap:    true,
	}
	assert.Equal(t, "chr22:23948129 - inGap=true", lp.String())
	assert.Equal(t, "chr22:23948129 - inGap=true", fmt.Sprint(lp))

	lr := LiftRegion{
		Region:   genomic.Region{Chrom: "chr22", Start: 23938300, Stop: 23939931},
		Strand:   genomic.Plus,
		StartGap: 3,
		StopGap:  9,
	}
	assert.Equal(t, "chr22:23938300-23939931 + startGap=3 stopGap=9", fmt.Sprint(lr))
}

func TestChain_String(t *testing.T) {
	assert.Equal(t,
		"chain 4900 chr22 51304566 + 24363328 24364951 chr22 50818468 + 23938300 23939931 20",
		newTestChain().String())
}
