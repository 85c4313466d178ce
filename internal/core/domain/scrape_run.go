package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScrapeRunStatus is the lifecycle of one crawl pass.
type ScrapeRunStatus string

const (
	RunRunning   ScrapeRunStatus = "running"
	RunCompleted ScrapeRunStatus = "completed"
	RunFailed    ScrapeRunStatus = "failed"
)

// ScrapeRun records one crawl pass for the analytics surface.
// Platform is "multi" for fan-out searches.
type ScrapeRun struct {
	ID           uuid.UUID
	Platform     string
	Query        string
	StartedAt    time.Time
	FinishedAt   *time.Time
	DurationMS   int64
	Found        int
	New          int
	Failed       int
	Status       ScrapeRunStatus
	ErrorMessage string
}
