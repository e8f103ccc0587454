package model

import (
	"encoding/json"
	"time"
)

// RunStatus tracks the lifecycle of one recorded execution.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one recorded dashboard execution: which spec ran, the data-quality
// report, and the computed per-page results as stored JSON.
type Run struct {
	ID        string             `json:"id"`
	SpecName  string             `json:"spec_name"`
	Status    RunStatus          `json:"status"`
	Report    *DataQualityReport `json:"report,omitempty"`
	Results   json.RawMessage    `json:"results,omitempty"`
	Error     string             `json:"error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
