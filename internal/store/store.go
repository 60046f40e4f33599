package store

import (
	"context"
	"time"

	"github.com/sells-group/outreach-cli/internal/model"
)

// RunFilter specifies criteria for listing discovery runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Domain string          `json:"domain,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// DomainPattern is a naming convention confirmed for one domain. Once
// recorded it is never replaced; the first discovered pattern wins across
// runs as well as within one.
type DomainPattern struct {
	Domain       string    `json:"domain"`
	Pattern      string    `json:"pattern"`
	PatternIndex int       `json:"pattern_index"`
	LearnedAt    time.Time `json:"learned_at"`
}

// Store defines the persistence interface for discovery runs and learned
// domain patterns.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, domain string) (*model.DiscoveryRun, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	SaveRunResult(ctx context.Context, run *model.DiscoveryRun) error
	GetRun(ctx context.Context, runID string) (*model.DiscoveryRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.DiscoveryRun, error)

	// Learned patterns
	GetDomainPattern(ctx context.Context, domain string) (*DomainPattern, error)
	SaveDomainPattern(ctx context.Context, domain, pattern string, index int) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
