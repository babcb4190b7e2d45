package features

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/okian/fairway/internal/domain/model"
)

// TrainingColumns returns the columns a training file must carry, in frame order.
func TrainingColumns() []string {
	return append(model.FeatureColumns(), model.ColScore)
}

// ReadTrainingCSV reads training rows with a header line. Columns are matched
// by name, so their order in the file is free; unknown columns are ignored.
// day_of_week_int must hold whole days on the 0 = Monday ... 6 = Sunday scale.
func ReadTrainingCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header", ErrMalformedCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}

	columns := TrainingColumns()
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	positions := make([]int, len(columns))
	dayCol := -1
	for j, name := range columns {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		positions[j] = i
		if name == model.ColDayOfWeek {
			dayCol = j
		}
	}

	var rows [][]float64
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}
		row := make([]float64, len(columns))
		for j, pos := range positions {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[pos]), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: line %d column %s: %q is not a finite number",
					ErrMalformedCSV, line, columns[j], rec[pos])
			}
			row[j] = v
		}
		if !model.ValidDayOfWeek(row[dayCol]) {
			return nil, fmt.Errorf("%w: line %d column %s: %q is not a whole day 0..6",
				ErrMalformedCSV, line, model.ColDayOfWeek, rec[positions[dayCol]])
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFrame
	}
	return NewFrame(columns, rows...)
}
