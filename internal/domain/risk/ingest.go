package risk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// missingMarkers are cell values treated as absent, matching the dataframe
// reader the indicator files are exported from.
var missingMarkers = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
}

// LoadStats describes what ingestion kept and dropped.
type LoadStats struct {
	Read    int
	Kept    int
	Dropped int
}

// LoadTable reads the indicator table at path.
func LoadTable(path string) ([]IndicatorRow, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, LoadStats{}, apperrors.Ingestion(err, "dataset file not found").WithDetail(path)
		}
		return nil, LoadStats{}, apperrors.Ingestion(err, "failed to open dataset").WithDetail(path)
	}
	defer f.Close()

	return ReadTable(f)
}

// ReadTable parses an indicator table from r. Rows with any missing required
// value are dropped; a non-numeric indicator fails the whole load.
func ReadTable(r io.Reader) ([]IndicatorRow, LoadStats, error) {
	var stats LoadStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, apperrors.Ingestion(err, "dataset is empty")
		}
		return nil, stats, apperrors.Ingestion(err, "malformed dataset header")
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, stats, err
	}

	var rows []IndicatorRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, apperrors.Ingestion(err, "malformed dataset")
		}
		stats.Read++

		cells, ok := requiredCells(rec, idx)
		if !ok {
			stats.Dropped++
			continue
		}

		row, err := parseRow(cells)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, stats, apperrors.Ingestion(err, "malformed dataset").WithDetail(fmt.Sprintf("line %d", line))
		}
		rows = append(rows, row)
	}

	stats.Kept = len(rows)
	if len(rows) == 0 {
		return nil, stats, apperrors.Ingestion(nil, "dataset has no complete rows")
	}
	return rows, stats, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.Ingestion(nil, "dataset is missing required columns").
			WithDetail(strings.Join(missing, ", "))
	}
	return idx, nil
}

// requiredCells returns the trimmed required values in RequiredColumns order,
// or false when any is missing.
func requiredCells(rec []string, idx map[string]int) ([]string, bool) {
	cells := make([]string, len(RequiredColumns))
	for i, col := range RequiredColumns {
		pos := idx[col]
		if pos >= len(rec) {
			return nil, false
		}
		v := strings.TrimSpace(rec[pos])
		if _, absent := missingMarkers[strings.ToLower(v)]; absent {
			return nil, false
		}
		cells[i] = v
	}
	return cells, true
}

func parseRow(cells []string) (IndicatorRow, error) {
	var nums [6]float64
	for i := range nums {
		v, err := strconv.ParseFloat(cells[i+1], 64)
		if err != nil || math.IsInf(v, 0) {
			return IndicatorRow{}, fmt.Errorf("column %s: %q is not a number", RequiredColumns[i+1], cells[i+1])
		}
		nums[i] = v
	}

	return IndicatorRow{
		Country:            cells[0],
		PoliticalStability: nums[0],
		EconomicStability:  nums[1],
		ExportIncentives:   nums[2],
		DutyDrawback:       nums[3],
		TradeAgreements:    nums[4],
		CostSaving:         nums[5],
		MarketRiskScore:    MarketRiskScore(nums[0], nums[1]),
	}, nil
}
