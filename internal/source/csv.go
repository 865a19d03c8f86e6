package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/beesafe/broodwatch/internal/corridor"
)

// CSV column names, matched case-insensitively against the header row.
const (
	colTimestamp    = "timestamp"
	colTemperature  = "temperature_c"
	colHiveID       = "hive_id"
	colAmbient      = "ambient_c"
	colHiveInternal = "hive_internal_c"
	colWBGT         = "wbgt_c"
	colSolar        = "solar_w_m2"
	colHumidity     = "rh_pct"
	colBrain        = "brain_c"
)

// csvSource reads samples from a CSV file with a header row.
// Timestamps are RFC 3339. Extra columns are ignored.
type csvSource struct {
	path string
}

func (s *csvSource) Samples(ctx context.Context) ([]corridor.Sample, error) {
	tbl, err := readTable(s.path)
	if err != nil {
		return nil, err
	}
	if err := tbl.require(colTimestamp, colTemperature); err != nil {
		return nil, err
	}

	out := make([]corridor.Sample, 0, len(tbl.rows))
	for _, r := range tbl.rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ts, err := r.timestamp(colTimestamp)
		if err != nil {
			return nil, err
		}
		temp, err := r.number(colTemperature)
		if err != nil {
			return nil, err
		}
		out = append(out, corridor.Sample{Timestamp: ts, TemperatureC: temp})
	}
	return out, nil
}

func (s *csvSource) ThermalSamples(ctx context.Context) ([]corridor.ThermalSample, error) {
	tbl, err := readTable(s.path)
	if err != nil {
		return nil, err
	}
	if err := tbl.require(colTimestamp, colHiveID, colAmbient, colHiveInternal,
		colWBGT, colSolar, colHumidity, colBrain); err != nil {
		return nil, err
	}

	out := make([]corridor.ThermalSample, 0, len(tbl.rows))
	for _, r := range tbl.rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var ts corridor.ThermalSample
		if ts.Timestamp, err = r.timestamp(colTimestamp); err != nil {
			return nil, err
		}
		ts.HiveID = r.str(colHiveID)

		for _, f := range []struct {
			col string
			dst *float64
		}{
			{colAmbient, &ts.AmbientC},
			{colHiveInternal, &ts.HiveInternalC},
			{colWBGT, &ts.WBGTC},
			{colSolar, &ts.SolarWm2},
			{colHumidity, &ts.HumidityPct},
			{colBrain, &ts.BrainTempC},
		} {
			if *f.dst, err = r.number(f.col); err != nil {
				return nil, err
			}
		}
		out = append(out, ts)
	}
	return out, nil
}

// table is a parsed CSV file: header index plus data rows.
type table struct {
	path string
	cols map[string]int
	rows []row
}

type row struct {
	t      *table
	line   int
	fields []string
}

// readTable parses path. Blank lines and lines starting with '#' are skipped.
func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source %q: open: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("source %q: missing header row", path)
	}
	if err != nil {
		return nil, fmt.Errorf("source %q: read header: %w", path, err)
	}

	tbl := &table{path: path, cols: make(map[string]int, len(header))}
	for i, name := range header {
		tbl.cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", path, err)
		}
		line, _ := r.FieldPos(0)
		tbl.rows = append(tbl.rows, row{t: tbl, line: line, fields: fields})
	}
	return tbl, nil
}

func (t *table) require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := t.cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("source %q: missing columns: %s", t.path, strings.Join(missing, ", "))
	}
	return nil
}

func (r row) str(col string) string {
	return strings.TrimSpace(r.fields[r.t.cols[col]])
}

func (r row) number(col string) (float64, error) {
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil {
		return 0, fmt.Errorf("source %q: line %d: %s: %w", r.t.path, r.line, col, err)
	}
	return v, nil
}

func (r row) timestamp(col string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, r.str(col))
	if err != nil {
		return time.Time{}, fmt.Errorf("source %q: line %d: %s: %w", r.t.path, r.line, col, err)
	}
	return ts, nil
}
