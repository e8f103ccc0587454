package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dashspec-cli/internal/config"
	"github.com/sells-group/dashspec-cli/internal/loader"
)

const testSpec = `
dsl_version: "1.2.0"
dashboard:
  id: sales
  title: Sales
  data_source:
    path: data/sales.parquet
  pages:
    - id: overview
      title: Overview
      metrics:
        - id: total
          field: amount
          aggregation: sum
`

func setTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Validate: config.ValidateConfig{Strictness: "moderate"},
		Execute:  config.ExecuteConfig{PageWorkers: 2},
	}
	t.Cleanup(func() { cfg = prev })
}

func TestHandleValidateOK(t *testing.T) {
	setTestConfig(t)

	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(testSpec))
	rr := httptest.NewRecorder()

	handleValidate(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Valid      bool  `json:"valid"`
		Violations []any `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Valid)
}

func TestHandleValidateReportsViolations(t *testing.T) {
	setTestConfig(t)

	spec := `
dsl_version: "1.2.0"
dashboard:
  title: T
  data_source: {path: d.parquet}
  pages:
    - {id: p, title: A}
    - {id: p, title: B}
`
	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(spec))
	rr := httptest.NewRecorder()

	handleValidate(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Valid      bool  `json:"valid"`
		Violations []any `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.Valid)
	assert.NotEmpty(t, body.Violations)
}

func TestHandleValidateRejectsBadYAML(t *testing.T) {
	setTestConfig(t)

	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader("- not\n- a\n- mapping"))
	rr := httptest.NewRecorder()

	handleValidate(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandleExecuteRejectsBadBody(t *testing.T) {
	setTestConfig(t)
	handler := handleExecute(loader.New(loader.DefaultPolicy(), nil))

	req := httptest.NewRequest(http.MethodPost, "/api/execute", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()

	handler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleExecuteBlockingViolations(t *testing.T) {
	setTestConfig(t)
	handler := handleExecute(loader.New(loader.DefaultPolicy(), nil))

	payload, err := json.Marshal(map[string]any{"spec": `
dsl_version: "1.2.0"
dashboard:
  title: T
  data_source: {path: d.parquet}
  pages:
    - id: p
      title: A
      layout:
        components:
          - {id: c, type: metric_card, metric_id: ghost}
`})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/execute", bytes.NewReader(payload))
	rr := httptest.NewRecorder()

	handler(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotEmpty(t, body["violations"])
}

func TestHandleExecuteMissingDataFile(t *testing.T) {
	setTestConfig(t)
	handler := handleExecute(loader.New(loader.DefaultPolicy(), nil))

	payload, err := json.Marshal(map[string]any{"spec": testSpec})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/execute", bytes.NewReader(payload))
	rr := httptest.NewRecorder()

	handler(rr, req)

	// The spec references a data file that does not exist on disk.
	assert.Equal(t, http.StatusNotFound, rr.Code)
	var body struct {
		Kind        string   `json:"kind"`
		RepairHints []string `json:"repair_hints"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "missing_file", body.Kind)
	assert.NotEmpty(t, body.RepairHints)
}
