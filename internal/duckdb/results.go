package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-liftover/internal/chain"
	"github.com/inodb/vibe-liftover/internal/genomic"
)

// LiftResult holds a source region and every mapping found for it.
// An empty Mapped slice records that the region did not map.
type LiftResult struct {
	Source genomic.Region
	Mapped []chain.LiftRegion
}

// WriteLiftResults batch-inserts lift results into DuckDB using the Appender API.
// Results for a source region replace any previously cached for it; repeated
// regions within the batch are written once.
func (s *Store) WriteLiftResults(results []LiftResult) error {
	if len(results) == 0 {
		return nil
	}

	seen := make(map[genomic.Region]bool, len(results))
	deduped := make([]LiftResult, 0, len(results))
	for _, r := range results {
		if !seen[r.Source] {
			seen[r.Source] = true
			deduped = append(deduped, r)
		}
	}

	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	// The deletes and the appended rows commit together, so a failed batch
	// leaves the previously cached results in place.
	if _, err := conn.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(ctx, "ROLLBACK")
		}
	}()

	for _, r := range deduped {
		if _, err := conn.ExecContext(ctx,
			`DELETE FROM lift_results WHERE ref_chrom=? AND ref_start=? AND ref_stop=?`,
			r.Source.Chrom, r.Source.Start, r.Source.Stop); err != nil {
			return fmt.Errorf("delete cached result: %w", err)
		}
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "lift_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}

	err = appendRows(appender, deduped)
	// Close flushes the remaining rows.
	if cerr := appender.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("flush appender: %w", cerr)
	}
	if err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit lift results: %w", err)
	}
	committed = true
	return nil
}

// appendRows is replaced in tests to simulate a failing batch.
var appendRows = appendLiftResults

func appendLiftResults(appender *goduckdb.Appender, results []LiftResult) error {
	for _, r := range results {
		src := r.Source
		if len(r.Mapped) == 0 {
			if err := appender.AppendRow(
				src.Chrom, src.Start, src.Stop, false,
				"", int64(0), int64(0), "", int64(0), int64(0), int32(0),
			); err != nil {
				return fmt.Errorf("append lift result: %w", err)
			}
			continue
		}
		for i, m := range r.Mapped {
			if err := appender.AppendRow(
				src.Chrom, src.Start, src.Stop, true,
				m.Chrom, m.Start, m.Stop, m.Strand.String(), m.StartGap, m.StopGap, int32(i),
			); err != nil {
				return fmt.Errorf("append lift result: %w", err)
			}
		}
	}
	return nil
}

// ClearLiftResults removes all cached lift results.
func (s *Store) ClearLiftResults() error {
	_, err := s.db.Exec("DELETE FROM lift_results")
	return err
}

// ResultCount returns the number of cached source regions.
func (s *Store) ResultCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM (SELECT DISTINCT ref_chrom, ref_start, ref_stop FROM lift_results)`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count lift results: %w", err)
	}
	return n, nil
}

// LookupRegion returns the cached mappings for r in the order they were written.
// found is false when r has never been cached; a cached unmapped region
// returns found with no mappings.
func (s *Store) LookupRegion(r genomic.Region) (mapped []chain.LiftRegion, found bool, err error) {
	rows, err := s.db.Query(`SELECT
		mapped, mapped_chrom, mapped_start, mapped_stop, strand, start_gap, stop_gap
		FROM lift_results
		WHERE ref_chrom=? AND ref_start=? AND ref_stop=?
		ORDER BY mapping_index`,
		r.Chrom, r.Start, r.Stop)
	if err != nil {
		return nil, false, fmt.Errorf("query lift result: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ok     bool
			lr     chain.LiftRegion
			strand string
		)
		if err := rows.Scan(&ok, &lr.Chrom, &lr.Start, &lr.Stop, &strand, &lr.StartGap, &lr.StopGap); err != nil {
			return nil, false, fmt.Errorf("scan lift result: %w", err)
		}
		found = true
		if !ok {
			continue
		}
		if lr.Strand, err = genomic.ParseStrand(strand); err != nil {
			return nil, false, fmt.Errorf("scan lift result: %w", err)
		}
		mapped = append(mapped, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate lift results: %w", err)
	}
	return mapped, found, nil
}
