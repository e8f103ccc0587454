package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/dashspec-cli/internal/engine"
	"github.com/sells-group/dashspec-cli/internal/model"
)

func sampleResults() *engine.Results {
	return &engine.Results{
		DashboardID: "sales",
		Pages: []engine.PageResult{{
			ID:    "overview",
			Title: "Overview",
			Rows:  42,
			Metrics: map[string]any{
				"total":  1234.5,
				"orders": 42,
				"empty":  nil,
			},
		}},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResults()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "sales", decoded["dashboard_id"])

	pages := decoded["pages"].([]any)
	require.Len(t, pages, 1)
	metrics := pages[0].(map[string]any)["metrics"].(map[string]any)
	assert.Equal(t, 1234.5, metrics["total"])
	assert.Nil(t, metrics["empty"])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	report := &model.DataQualityReport{
		RowsInitial: 50,
		RowsFinal:   42,
		RowsDropped: 8,
		Details: []model.ReportDetail{
			{Operation: "missing_values", Field: "amount", Count: 8, Description: "Dropped 8 rows"},
		},
	}

	require.NoError(t, WriteXLSX(path, sampleResults(), report))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	page := f.Sheet["overview"]
	require.NotNil(t, page)
	assert.Equal(t, "metric", page.Rows[0].Cells[0].String())
	// Metric rows come back in sorted key order.
	assert.Equal(t, "empty", page.Rows[1].Cells[0].String())
	assert.Equal(t, "orders", page.Rows[2].Cells[0].String())
	assert.Equal(t, "total", page.Rows[3].Cells[0].String())
	assert.Equal(t, "rows", page.Rows[4].Cells[0].String())

	dq := f.Sheet["data_quality"]
	require.NotNil(t, dq)
	assert.Equal(t, "rows_initial", dq.Rows[0].Cells[0].String())
	v, err := dq.Rows[0].Cells[1].Int()
	require.NoError(t, err)
	assert.Equal(t, 50, v)
}

func TestWriteXLSXWithoutReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(path, sampleResults(), nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Sheets, 1)
}

func TestSheetNameLimit(t *testing.T) {
	long := strings.Repeat("x", 40)
	assert.Len(t, sheetName(long), 31)
	assert.Equal(t, "short", sheetName("short"))
}
