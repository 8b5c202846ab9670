package views

import (
	"strconv"

	"bus-telemetry-dashboard/internal/dataset"
	"bus-telemetry-dashboard/internal/models"
)

// SummaryTable formats the overall summary table with two decimals. The
// label column has an empty name.
func SummaryTable(ds *dataset.Store) models.SummaryTable {
	overall := ds.Overall()
	table := models.SummaryTable{
		Columns: append([]string{""}, overall.Columns...),
		Rows:    make([]map[string]string, 0, len(overall.Rows)),
	}
	for _, r := range overall.Rows {
		row := map[string]string{"": r.Label}
		for i, col := range overall.Columns {
			row[col] = strconv.FormatFloat(r.Values[i], 'f', 2, 64)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// DefaultDriver is the second unique driver in source order, or the first
// when only one driver exists.
func DefaultDriver(ds *dataset.Store) string {
	drivers := ds.Drivers()
	switch {
	case len(drivers) >= 2:
		return drivers[1]
	case len(drivers) == 1:
		return drivers[0]
	default:
		return ""
	}
}

// Drivers returns the driver dropdown options
func Drivers(ds *dataset.Store) models.DriverOptions {
	return models.DriverOptions{Drivers: ds.Drivers(), Default: DefaultDriver(ds)}
}
