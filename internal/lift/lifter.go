// Package lift applies a chain file to streams of query regions.
package lift

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/inodb/vibe-liftover/internal/bed"
	"github.com/inodb/vibe-liftover/internal/chain"
	"github.com/inodb/vibe-liftover/internal/genomic"
)

// RegionLookup maps a region through a set of chains. *chain.File implements it.
type RegionLookup interface {
	LiftOverRegion(r genomic.Region) []chain.LiftRegion
}

// RecordParser is the source of regions to lift. *bed.Parser implements it.
type RecordParser interface {
	// Next returns nil, nil when there are no more records.
	Next() (*bed.Record, error)
}

// ResultWriter receives each input record with its mappings, in input order.
// An unmapped record is written with an empty mapped slice.
type ResultWriter interface {
	WriteHeader() error
	Write(rec *bed.Record, mapped []chain.LiftRegion) error
	Flush() error
}

// Stats summarizes a LiftAll run.
type Stats struct {
	Records     int
	Mapped      int // records with at least one mapping
	Unmapped    int
	MultiMapped int // records with more than one mapping
}

// Lifter lifts regions through a chain file.
type Lifter struct {
	chains  RegionLookup
	workers int
	logger  *zap.Logger
}

// NewLifter creates a lifter over the given chains.
func NewLifter(chains RegionLookup) *Lifter {
	return &Lifter{
		chains: chains,
		logger: zap.NewNop(),
	}
}

// SetWorkers sets the worker count for LiftAll. Zero means runtime.NumCPU().
func (l *Lifter) SetWorkers(n int) {
	l.workers = n
}

// SetLogger sets the logger for warning and info messages.
func (l *Lifter) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Lift maps a single record.
func (l *Lifter) Lift(rec *bed.Record) []chain.LiftRegion {
	return l.chains.LiftOverRegion(rec.Region)
}

// LiftAll lifts every record from parser and writes the results in input order.
func (l *Lifter) LiftAll(ctx context.Context, parser RecordParser, writer ResultWriter) (Stats, error) {
	var stats Stats
	workers := l.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if err := writer.WriteHeader(); err != nil {
		return stats, fmt.Errorf("write header: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items := make(chan WorkItem, 2*workers)
	var parseErr error

	go func() {
		defer close(items)
		seq := 0
		for {
			rec, err := parser.Next()
			if err != nil {
				parseErr = fmt.Errorf("read region: %w", err)
				return
			}
			if rec == nil {
				return
			}
			select {
			case items <- WorkItem{Seq: seq, Record: rec}:
				seq++
			case <-ctx.Done():
				return
			}
		}
	}()

	results := l.ParallelLift(items, workers)

	if err := OrderedCollect(results, func(r WorkResult) error {
		stats.Records++
		if len(r.Mapped) == 0 {
			stats.Unmapped++
			l.logger.Debug("region not mapped",
				zap.String("region", r.Record.Region.String()),
				zap.Int("line", r.Record.Line))
		} else {
			stats.Mapped++
			if len(r.Mapped) > 1 {
				stats.MultiMapped++
			}
		}
		if err := writer.Write(r.Record, r.Mapped); err != nil {
			// Stop the producer; OrderedCollect drains what is in flight.
			cancel()
			return fmt.Errorf("write result: %w", err)
		}
		return nil
	}); err != nil {
		return stats, err
	}

	if parseErr != nil {
		return stats, parseErr
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	if stats.Records == 0 {
		l.logger.Info("0 regions processed")
	}
	l.logger.Info("lift complete",
		zap.Int("records", stats.Records),
		zap.Int("mapped", stats.Mapped),
		zap.Int("unmapped", stats.Unmapped),
		zap.Int("multi_mapped", stats.MultiMapped))

	return stats, writer.Flush()
}
