package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/dashspec-cli/internal/config"
	"github.com/sells-group/dashspec-cli/internal/model"
)

func TestFormatViolations(t *testing.T) {
	var buf bytes.Buffer
	formatViolations(&buf, []model.Violation{
		{
			Severity: model.SeverityCritical,
			Code:     model.CodeInvalidReference,
			Path:     "/dashboard/pages/0/layout/components/0/metric_id",
			Message:  "metric_card references unknown metric",
			Repair:   "declare the metric on the page or fix the reference",
		},
		{
			Severity: model.SeverityWarning,
			Code:     model.CodeDQFieldNotInSchema,
			Path:     "/dashboard/data_source/data_quality",
			Message:  "field not in schema",
		},
	})

	out := buf.String()
	assert.Contains(t, out, "SEVERITY")
	assert.Contains(t, out, "INVALID_REFERENCE")
	assert.Contains(t, out, "fix: declare the metric")
	// The second violation has no repair line.
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("fix:")))
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("12345678-abcd-efgh"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestDefaultPolicy(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })

	cfg = nil
	assert.Nil(t, defaultPolicy())

	cfg = &config.Config{
		Validate: config.ValidateConfig{
			Strictness:    "strict",
			SuppressCodes: []string{"DQ_QUESTIONABLE_METHOD"},
		},
	}
	p := defaultPolicy()
	assert.Equal(t, "strict", p.Strictness)
	assert.Equal(t, []string{"DQ_QUESTIONABLE_METHOD"}, p.SuppressCodes)
}
