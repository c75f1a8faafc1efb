package chain

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-liftover/internal/genomic"
)

const headerFields = 13

type parseState int

const (
	stateOutside parseState = iota
	stateInChain
)

// parser holds the state machine for one Parse call.
type parser struct {
	state     parseState
	line      int
	current   *Chain
	intervals []Interval
	chains    []*Chain
}

// Parse parses chain file text into chains, in file order. Any malformed
// line aborts the parse and no chains are returned.
func Parse(text string) ([]*Chain, error) {
	p := &parser{}
	// A trailing newline does not start another line.
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		p.line++
		if err := p.parseLine(strings.TrimSpace(line)); err != nil {
			return nil, err
		}
	}
	if p.state == stateInChain {
		return nil, p.errorf(ErrTruncatedChain, "chain %s has no terminating interval", p.current.ID)
	}
	return p.chains, nil
}

// ParseReader reads r to the end and parses its contents.
func ParseReader(r io.Reader) ([]*Chain, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read chain data: %w", err)
	}
	return Parse(string(data))
}

func (p *parser) parseLine(line string) error {
	if strings.HasPrefix(line, "#") {
		return nil
	}

	switch p.state {
	case stateOutside:
		if line == "" {
			return nil
		}
		c, err := p.parseHeader(strings.Fields(line))
		if err != nil {
			return err
		}
		p.current = c
		p.intervals = p.intervals[:0]
		p.state = stateInChain

	case stateInChain:
		fields := strings.Fields(line)
		switch len(fields) {
		case 3:
			iv, err := p.parseInterval(fields)
			if err != nil {
				return err
			}
			p.intervals = append(p.intervals, iv)
		case 1:
			iv, err := p.parseInterval(fields)
			if err != nil {
				return err
			}
			p.intervals = append(p.intervals, iv)
			if err := p.finish(); err != nil {
				return err
			}
			p.state = stateOutside
		default:
			return p.errorf(ErrIntervalArity, "expected 3 or 1 fields, found %d", len(fields))
		}
	}
	return nil
}

func (p *parser) parseHeader(fields []string) (*Chain, error) {
	if len(fields) != headerFields {
		return nil, p.errorf(ErrHeaderArity, "expected %d fields, found %d", headerFields, len(fields))
	}
	if fields[0] != "chain" {
		return nil, p.errorf(ErrMissingChainKeyword, "found %q", fields[0])
	}
	if fields[4] != "+" {
		return nil, p.errorf(ErrInvalidReferenceStrand, "found %q", fields[4])
	}

	score, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return nil, p.errorf(ErrInvalidNumber, "score %q", fields[1])
	}
	queryStrand, err := genomic.ParseStrand(fields[9])
	if err != nil {
		return nil, p.errorf(genomic.ErrInvalidStrand, "query strand %q", fields[9])
	}

	c := &Chain{
		Score:       score,
		RefChrom:    fields[2],
		RefStrand:   genomic.Plus,
		QueryChrom:  fields[7],
		QueryStrand: queryStrand,
		ID:          fields[12],
	}
	ints := []struct {
		dst  *int64
		idx  int
		name string
	}{
		{&c.RefChromLength, 3, "reference size"},
		{&c.RefStart, 5, "reference start"},
		{&c.RefEnd, 6, "reference end"},
		{&c.QueryChromLength, 8, "query size"},
		{&c.QueryStart, 10, "query start"},
		{&c.QueryEnd, 11, "query end"},
	}
	for _, f := range ints {
		v, err := strconv.ParseInt(fields[f.idx], 10, 64)
		if err != nil {
			return nil, p.errorf(ErrInvalidNumber, "%s %q", f.name, fields[f.idx])
		}
		*f.dst = v
	}
	return c, nil
}

// parseInterval parses a "size dref dquery" or terminal "size" row.
func (p *parser) parseInterval(fields []string) (Interval, error) {
	var vals [3]int64
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil || v < 0 {
			return Interval{}, p.errorf(ErrInvalidNumber, "interval field %q", f)
		}
		vals[i] = v
	}
	return Interval{Size: vals[0], DiffRef: vals[1], DiffQuery: vals[2]}, nil
}

// finish freezes the open chain's intervals and appends it to the output.
func (p *parser) finish() error {
	c := p.current
	c.Intervals = make([]Interval, len(p.intervals))
	copy(c.Intervals, p.intervals)
	if err := c.Validate(); err != nil {
		return p.errorf(ErrInconsistentChain, "%v", err)
	}
	p.chains = append(p.chains, c)
	p.current = nil
	return nil
}

func (p *parser) errorf(kind error, format string, args ...any) error {
	return &ParseError{
		Line:    p.line,
		Err:     kind,
		Message: fmt.Sprintf(format, args...),
	}
}
