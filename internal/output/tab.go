// Package output provides lift result formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-liftover/internal/bed"
	"github.com/inodb/vibe-liftover/internal/chain"
)

// TabWriter writes lift results in tab-delimited format, one line per mapping.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#chrom",
			"start",
			"stop",
			"name",
			"mapped_chrom",
			"mapped_start",
			"mapped_stop",
			"strand",
			"start_gap",
			"stop_gap",
			"chain_count",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes one line per mapping of rec, or a single line with "-"
// mapped columns when rec did not map.
func (tw *TabWriter) Write(rec *bed.Record, mapped []chain.LiftRegion) error {
	name := rec.Name
	if name == "" {
		name = "-"
	}
	source := []string{
		rec.Chrom,
		strconv.FormatInt(rec.Start, 10),
		strconv.FormatInt(rec.Stop, 10),
		name,
	}
	count := strconv.Itoa(len(mapped))

	if len(mapped) == 0 {
		return tw.writeRow(source, "-", "-", "-", "-", "-", "-", count)
	}

	for _, m := range mapped {
		if err := tw.writeRow(source,
			m.Chrom,
			strconv.FormatInt(m.Start, 10),
			strconv.FormatInt(m.Stop, 10),
			m.Strand.String(),
			strconv.FormatInt(m.StartGap, 10),
			strconv.FormatInt(m.StopGap, 10),
			count,
		); err != nil {
			return err
		}
	}
	return nil
}

func (tw *TabWriter) writeRow(source []string, values ...string) error {
	row := make([]string, 0, len(source)+len(values))
	row = append(row, source...)
	row = append(row, values...)
	_, err := tw.w.WriteString(strings.Join(row, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
