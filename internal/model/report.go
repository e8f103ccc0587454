package model

// ReportDetail is one log entry describing a mutating data-quality action.
type ReportDetail struct {
	Operation   string `json:"operation"`
	Field       string `json:"field"`
	Count       int    `json:"count"`
	Description string `json:"description"`
}

// DataQualityReport summarizes one processing run. RowsDropped is the final
// row-count delta (initial minus final); the per-phase counters are running
// sums maintained independently of it.
type DataQualityReport struct {
	RowsInitial            int            `json:"total_rows_initial"`
	RowsFinal              int            `json:"total_rows_final"`
	RowsDropped            int            `json:"rows_dropped"`
	RowsModified           int            `json:"rows_modified"`
	MissingValuesFilled    int            `json:"missing_values_filled"`
	OutliersDetected       int            `json:"outliers_detected"`
	OutliersCapped         int            `json:"outliers_capped"`
	DuplicatesFound        int            `json:"duplicates_found"`
	DuplicatesRemoved      int            `json:"duplicates_removed"`
	ValidationFailures     int            `json:"validation_failures"`
	TransformationsApplied int            `json:"transformations_applied"`
	IssuesDetected         int            `json:"issues_detected"`
	Details                []ReportDetail `json:"details"`
}
