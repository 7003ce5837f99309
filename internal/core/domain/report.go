// internal/core/domain/report.go
package domain

import (
	"encoding/json"
	"time"
)

// Report es el documento final de una ejecución.
type Report struct {
	Timestamp time.Time
	Targets   []Target
	Results   *ResultStore
}

// NewReport construye el reporte a partir de un store terminado.
func NewReport(store *ResultStore, at time.Time) Report {
	return Report{Timestamp: at, Targets: store.Targets(), Results: store}
}

// MarshalJSON emite {timestamp, targets, results}.
func (r Report) MarshalJSON() ([]byte, error) {
	results := r.Results
	if results == nil {
		results = NewResultStore(r.Targets)
	}
	return json.Marshal(struct {
		Timestamp string       `json:"timestamp"`
		Targets   []string     `json:"targets"`
		Results   *ResultStore `json:"results"`
	}{
		Timestamp: r.Timestamp.Format(time.RFC3339),
		Targets:   TargetValues(r.Targets),
		Results:   results,
	})
}
