package stories

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tuannvm/taskpilot/internal/azdo"
	log "github.com/tuannvm/taskpilot/internal/logging"
)

// QueryRunner executes WIQL queries
type QueryRunner interface {
	QueryWorkItemIDs(ctx context.Context, query string) ([]int, error)
}

// StoryQuery selects open user stories in one iteration, optionally under an area path
type StoryQuery struct {
	Project       string
	IterationPath string
	AreaPath      string // empty omits the area path clause
}

// WIQL renders the query text
func (q StoryQuery) WIQL() string {
	var b strings.Builder
	b.WriteString("SELECT [System.Id] FROM WorkItems WHERE ")
	fmt.Fprintf(&b, "[System.TeamProject] = '%s'", quote(q.Project))
	fmt.Fprintf(&b, " AND [System.WorkItemType] = '%s'", azdo.TypeUserStory)
	fmt.Fprintf(&b, " AND [System.IterationPath] = '%s'", quote(q.IterationPath))
	if q.AreaPath != "" {
		fmt.Fprintf(&b, " AND [System.AreaPath] UNDER '%s'", quote(q.AreaPath))
	}
	b.WriteString(" AND [System.State] <> 'Closed' AND [System.State] <> 'Removed'")
	b.WriteString(" ORDER BY [System.Id]")
	return b.String()
}

// WithoutAreaPath returns the same query with the area path clause dropped
func (q StoryQuery) WithoutAreaPath() StoryQuery {
	q.AreaPath = ""
	return q
}

// quote escapes a WIQL string literal
func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// QueryEngine runs story queries with the area path fallback
type QueryEngine struct {
	runner QueryRunner
}

// NewQueryEngine creates a query engine on top of a WIQL runner
func NewQueryEngine(runner QueryRunner) *QueryEngine {
	return &QueryEngine{runner: runner}
}

// StoryIDs returns the ids matching q in ascending order, along with the query
// that produced them. When the server rejects the area path it retries exactly
// once without it; every other failure is returned as is.
func (e *QueryEngine) StoryIDs(ctx context.Context, q StoryQuery) ([]int, StoryQuery, error) {
	ids, err := e.runner.QueryWorkItemIDs(ctx, q.WIQL())
	if err != nil && q.AreaPath != "" && azdo.IsAreaPathInvalid(err) {
		log.Warnw("area path fallback", "areaPath", q.AreaPath, "iterationPath", q.IterationPath, "error", err)
		q = q.WithoutAreaPath()
		ids, err = e.runner.QueryWorkItemIDs(ctx, q.WIQL())
	}
	if err != nil {
		return nil, q, fmt.Errorf("failed to query user stories: %w", err)
	}

	sort.Ints(ids)
	log.Infow("query executed", "iterationPath", q.IterationPath, "areaPath", q.AreaPath, "count", len(ids))
	return ids, q, nil
}
