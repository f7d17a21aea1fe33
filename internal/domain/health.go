package domain

import "time"

type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status    HealthStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Message   string       `json:"message,omitempty"`
}

// InterfaceReport is the per-interface slice of a RunSummary exposed
// over the status endpoint.
type InterfaceReport struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Status    Status    `json:"status"`
	Failures  []string  `json:"failures,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// RunSummary describes the most recent completed monitoring run.
type RunSummary struct {
	RunID       string            `json:"run_id"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
	Interfaces  []InterfaceReport `json:"interfaces"`
	Transitions int               `json:"transitions"`
	DryRun      bool              `json:"dry_run,omitempty"`
}
