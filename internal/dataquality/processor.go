// Package dataquality applies the declarative cleaning rules of a dashboard
// spec to a loaded table: type coercion, missing-value handling, duplicate
// handling, outlier treatment, validation constraints, and transformations,
// in that fixed order. One bad rule never aborts the pass; the offending
// rule is logged and skipped. Each phase is a pure fold step returning a
// new table and a report delta, which the processor merges.
package dataquality

import (
	"go.uber.org/zap"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

// Processor applies one data-quality rule set.
type Processor struct {
	rules *model.DataQualityRules
}

// New creates a processor for the given rule set. A nil rule set yields a
// processor whose Process is a plain copy.
func New(rules *model.DataQualityRules) *Processor {
	return &Processor{rules: rules}
}

// delta is the report contribution of a single phase.
type delta struct {
	filled             int
	outliersDetected   int
	outliersCapped     int
	duplicatesFound    int
	duplicatesRemoved  int
	validationFailures int
	transformsApplied  int
	details            []model.ReportDetail
}

func (d *delta) log(operation, field string, count int, description string) {
	d.details = append(d.details, model.ReportDetail{
		Operation:   operation,
		Field:       field,
		Count:       count,
		Description: description,
	})
}

func (d *delta) merge(other delta) {
	d.filled += other.filled
	d.outliersDetected += other.outliersDetected
	d.outliersCapped += other.outliersCapped
	d.duplicatesFound += other.duplicatesFound
	d.duplicatesRemoved += other.duplicatesRemoved
	d.validationFailures += other.validationFailures
	d.transformsApplied += other.transformsApplied
	d.details = append(d.details, other.details...)
}

// Process runs all configured phases against a defensive copy of the input
// table and returns the cleaned table with the finalized report. The
// caller's table is never mutated.
func (p *Processor) Process(t *table.Table) (*table.Table, model.DataQualityReport) {
	work := t.Clone()
	initial := work.NumRows()
	var acc delta

	zap.L().Info("dataquality: processing started", zap.Int("rows", initial))

	if p.rules != nil {
		var d delta

		if p.rules.Coercion != nil {
			work, d = applyCoercion(work, p.rules.Coercion)
			acc.merge(d)
		}
		if p.rules.MissingValues != nil {
			work, d = handleMissingValues(work, p.rules.MissingValues)
			acc.merge(d)
		}
		if p.rules.Duplicates != nil {
			work, d = handleDuplicates(work, p.rules.Duplicates)
			acc.merge(d)
		}
		if p.rules.Outliers != nil && p.rules.Outliers.IsEnabled() {
			work, d = handleOutliers(work, p.rules.Outliers)
			acc.merge(d)
		}
		if p.rules.Validation != nil {
			work, d = applyValidations(work, p.rules.Validation)
			acc.merge(d)
		}
		if len(p.rules.Transformations) > 0 {
			work, d = applyTransformations(work, p.rules.Transformations)
			acc.merge(d)
		}
	}

	final := work.NumRows()

	// Dropped rows are the final row-count delta, not a running sum: phases
	// that remove rows contribute here implicitly.
	report := model.DataQualityReport{
		RowsInitial:            initial,
		RowsFinal:              final,
		RowsDropped:            initial - final,
		MissingValuesFilled:    acc.filled,
		OutliersDetected:       acc.outliersDetected,
		OutliersCapped:         acc.outliersCapped,
		DuplicatesFound:        acc.duplicatesFound,
		DuplicatesRemoved:      acc.duplicatesRemoved,
		ValidationFailures:     acc.validationFailures,
		TransformationsApplied: acc.transformsApplied,
		Details:                acc.details,
	}
	report.IssuesDetected = report.MissingValuesFilled + report.OutliersDetected +
		report.DuplicatesFound + report.ValidationFailures
	if report.Details == nil {
		report.Details = []model.ReportDetail{}
	}

	zap.L().Info("dataquality: processing complete",
		zap.Int("rows_final", final),
		zap.Int("rows_dropped", report.RowsDropped),
	)

	return work, report
}
