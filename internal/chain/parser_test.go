package chain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-liftover/internal/genomic"
)

func TestLoad_TestChainFile(t *testing.T) {
	chains := loadTestChains(t)

	assert.Equal(t, newTestChain(), chains[0])

	assert.Equal(t, &Chain{
		Intervals: []Interval{
			{Size: 40, DiffRef: 1, DiffQuery: 0},
			{Size: 329, DiffRef: 2, DiffQuery: 0},
			{Size: 211, DiffRef: 308, DiffQuery: 0},
			{Size: 186, DiffRef: 18, DiffQuery: 0},
			{Size: 242},
		},
		Score:            4900,
		RefChrom:         "chr22",
		RefChromLength:   51304566,
		RefStrand:        genomic.Plus,
		RefStart:         24387233,
		RefEnd:           24388570,
		QueryChrom:       "chr22",
		QueryChromLength: 50818468,
		QueryStrand:      genomic.Plus,
		QueryStart:       23993103,
		QueryEnd:         23994111,
		ID:               "23",
	}, chains[1])

	assert.Equal(t, &Chain{
		Intervals: []Interval{
			{Size: 263, DiffRef: 2, DiffQuery: 0},
			{Size: 212},
		},
		Score:            4900,
		RefChrom:         "chr22",
		RefChromLength:   51304566,
		RefStrand:        genomic.Plus,
		RefStart:         24387343,
		RefEnd:           24387820,
		QueryChrom:       "chr22",
		QueryChromLength: 50818468,
		QueryStrand:      genomic.Minus,
		QueryStart:       26870339,
		QueryEnd:         26870814,
		ID:               "24",
	}, chains[2])
}

func TestParse_Formatting(t *testing.T) {
	text := "#header comment\r\n" +
		"\n" +
		"  chain 100  chrA 1000 + 10 20\tchrB 2000 - 5 15 7  \r\n" +
		"# comment inside a chain\n" +
		"4 1 1\n" +
		"  5  \n" +
		"\n\n" +
		"chain 1.5 chrA 1000 + 30 32 chrC 50 + 0 2 8\n" +
		"2"

	chains, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, chains, 2)

	assert.Equal(t, "7", chains[0].ID)
	assert.Equal(t, genomic.Minus, chains[0].QueryStrand)
	assert.Equal(t, []Interval{{Size: 4, DiffRef: 1, DiffQuery: 1}, {Size: 5}}, chains[0].Intervals)
	assert.Equal(t, 1.5, chains[1].Score)
	assert.Equal(t, []Interval{{Size: 2}}, chains[1].Intervals)
}

func TestParse_Empty(t *testing.T) {
	chains, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, chains)

	chains, err = Parse("# only comments\n\n")
	require.NoError(t, err)
	assert.Empty(t, chains)
}

func TestParse_Errors(t *testing.T) {
	const header = "chain 10 chr1 100 + 0 10 chr2 100 + 0 10 1\n"

	tests := []struct {
		name string
		text string
		kind error
		line int
	}{
		{"short header", "chain 10 chr1 100 + 0 10\n10\n", ErrHeaderArity, 1},
		{"long header", strings.TrimSpace(header) + " extra\n10\n", ErrHeaderArity, 1},
		{"wrong keyword", "chian 10 chr1 100 + 0 10 chr2 100 + 0 10 1\n10\n", ErrMissingChainKeyword, 1},
		{"minus reference", "chain 10 chr1 100 - 0 10 chr2 100 + 0 10 1\n10\n", ErrInvalidReferenceStrand, 1},
		{"bad query strand", "chain 10 chr1 100 + 0 10 chr2 100 x 0 10 1\n10\n", genomic.ErrInvalidStrand, 1},
		{"two interval fields", header + "5 5\n", ErrIntervalArity, 2},
		{"blank line in chain", header + "\n10\n", ErrIntervalArity, 2},
		{"bad score", "chain abc chr1 100 + 0 10 chr2 100 + 0 10 1\n10\n", ErrInvalidNumber, 1},
		{"bad start", "chain 10 chr1 100 + zero 10 chr2 100 + 0 10 1\n10\n", ErrInvalidNumber, 1},
		{"bad interval", header + "ten\n", ErrInvalidNumber, 2},
		{"negative interval", header + "-10\n", ErrInvalidNumber, 2},
		{"span mismatch", header + "9\n", ErrInconsistentChain, 2},
		{"truncated", header + "5 0 0\n", ErrTruncatedChain, 2},
		{"header only", header, ErrTruncatedChain, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chains, err := Parse(tt.text)
			require.Error(t, err)
			assert.Nil(t, chains, "no partial result")
			assert.ErrorIs(t, err, tt.kind)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestParse_ErrorAbortsWholeFile(t *testing.T) {
	text := "chain 10 chr1 100 + 0 10 chr2 100 + 0 10 1\n10\n\n" +
		"chain 10 chr1 100 + 0 10 chr2 100 + 0 10 2\n1 2\n"

	chains, err := Parse(text)
	assert.ErrorIs(t, err, ErrIntervalArity)
	assert.Nil(t, chains)
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Line: 4, Err: ErrIntervalArity, Message: "expected 3 or 1 fields, found 2"}
	assert.Equal(t, "chain parse error at line 4: invalid number of interval fields: expected 3 or 1 fields, found 2", err.Error())

	err = &ParseError{Line: 1, Err: ErrTruncatedChain}
	assert.Equal(t, "chain parse error at line 1: input ended inside a chain", err.Error())
}

func TestParseReader(t *testing.T) {
	chains, err := ParseReader(strings.NewReader("chain 10 chr1 100 + 0 10 chr2 100 + 0 10 1\n10\n"))
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Equal(t, "chr2", chains[0].QueryChrom)
}
