// Package export writes execution results to JSON or XLSX.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/dashspec-cli/internal/engine"
	"github.com/sells-group/dashspec-cli/internal/model"
)

// WriteJSON writes the results as indented JSON.
func WriteJSON(w io.Writer, results *engine.Results) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(results), "export: encode json")
}

// WriteXLSX writes one sheet per page with its computed metrics, plus a
// summary sheet for the data-quality report when one exists.
func WriteXLSX(path string, results *engine.Results, report *model.DataQualityReport) error {
	f := xlsx.NewFile()

	for _, page := range results.Pages {
		sheet, err := f.AddSheet(sheetName(page.ID))
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %s", page.ID)
		}

		header := sheet.AddRow()
		header.AddCell().SetString("metric")
		header.AddCell().SetString("value")

		for _, id := range sortedKeys(page.Metrics) {
			row := sheet.AddRow()
			row.AddCell().SetString(id)
			setCell(row.AddCell(), page.Metrics[id])
		}

		footer := sheet.AddRow()
		footer.AddCell().SetString("rows")
		footer.AddCell().SetInt(page.Rows)
	}

	if report != nil {
		if err := addReportSheet(f, report); err != nil {
			return err
		}
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func addReportSheet(f *xlsx.File, report *model.DataQualityReport) error {
	sheet, err := f.AddSheet("data_quality")
	if err != nil {
		return eris.Wrap(err, "export: add data_quality sheet")
	}

	counters := []struct {
		name  string
		value int
	}{
		{"rows_initial", report.RowsInitial},
		{"rows_final", report.RowsFinal},
		{"rows_dropped", report.RowsDropped},
		{"missing_values_filled", report.MissingValuesFilled},
		{"outliers_detected", report.OutliersDetected},
		{"outliers_capped", report.OutliersCapped},
		{"duplicates_found", report.DuplicatesFound},
		{"duplicates_removed", report.DuplicatesRemoved},
		{"validation_failures", report.ValidationFailures},
		{"transformations_applied", report.TransformationsApplied},
		{"issues_detected", report.IssuesDetected},
	}
	for _, c := range counters {
		row := sheet.AddRow()
		row.AddCell().SetString(c.name)
		row.AddCell().SetInt(c.value)
	}

	for _, d := range report.Details {
		row := sheet.AddRow()
		row.AddCell().SetString(d.Operation)
		row.AddCell().SetString(d.Field)
		row.AddCell().SetInt(d.Count)
		row.AddCell().SetString(d.Description)
	}
	return nil
}

func setCell(cell *xlsx.Cell, v any) {
	switch x := v.(type) {
	case nil:
		cell.SetString("")
	case float64:
		cell.SetFloat(x)
	case int:
		cell.SetInt(x)
	case int64:
		cell.SetInt64(x)
	case string:
		cell.SetString(x)
	default:
		cell.SetString(fmt.Sprintf("%v", x))
	}
}

// sheetName trims a page ID to the 31-character sheet name limit.
func sheetName(id string) string {
	if len(id) > 31 {
		return id[:31]
	}
	return id
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
