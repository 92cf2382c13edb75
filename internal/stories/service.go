package stories

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tuannvm/taskpilot/internal/azdo"
	log "github.com/tuannvm/taskpilot/internal/logging"
	"github.com/tuannvm/taskpilot/internal/models"
	"github.com/tuannvm/taskpilot/internal/sprint"
)

// Remote is the subset of the work tracking client the service needs
type Remote interface {
	QueryRunner
	ItemGetter
	Project() string
	ListIterations(ctx context.Context, team string) ([]models.Iteration, error)
}

// SprintStories is the outcome of resolving a sprint URL into its user stories
type SprintStories struct {
	Locator   sprint.Locator
	Iteration models.Iteration
	AreaPath  string // the project when the team's area path was rejected
	Stories   []models.UserStory
}

// Service turns a sprint board URL into the sprint's open user stories
type Service struct {
	remote  Remote
	parser  sprint.Parser
	query   *QueryEngine
	fetcher *Fetcher
}

// NewService wires the interpreter, resolver, query engine and fetcher together
func NewService(remote Remote, parser sprint.Parser, batchSize int) *Service {
	if parser == nil {
		parser = sprint.DefaultParser
	}
	return &Service{
		remote:  remote,
		parser:  parser,
		query:   NewQueryEngine(remote),
		fetcher: NewFetcher(remote, batchSize),
	}
}

// Fetcher exposes the story fetcher, used to repair incomplete snapshots
func (s *Service) Fetcher() *Fetcher {
	return s.fetcher
}

// FetchFromSprintURL parses rawURL, resolves its iteration and returns the open
// user stories in it, ascending by id. Every failure is fatal.
func (s *Service) FetchFromSprintURL(ctx context.Context, rawURL string) (*SprintStories, error) {
	loc, err := s.parser.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	iterations, err := s.remote.ListIterations(ctx, loc.Team)
	if err != nil {
		if loc.HasTeam() && azdo.StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("failed to fetch iterations for team %q, check that the team name in the URL matches a real team in the project: %w", loc.Team, err)
		}
		return nil, fmt.Errorf("failed to fetch iterations: %w", err)
	}
	log.Debugw("iterations listed", "team", loc.Team, "count", len(iterations))

	iteration, err := sprint.Resolve(iterations, loc)
	if err != nil {
		return nil, err
	}

	project := s.remote.Project()
	q := StoryQuery{Project: project, IterationPath: iteration.Path}
	if loc.HasTeam() {
		q.AreaPath = loc.AreaPath(project)
	}
	ids, ran, err := s.query.StoryIDs(ctx, q)
	if err != nil {
		return nil, err
	}
	// the team area path is only reported when the server accepted it
	areaPath := ran.AreaPath
	if areaPath == "" {
		areaPath = project
	}

	stories, err := s.fetcher.Stories(ctx, ids)
	if err != nil {
		return nil, err
	}
	log.Infow("stories fetched", "iterationPath", iteration.Path, "count", len(stories))

	return &SprintStories{
		Locator:   loc,
		Iteration: iteration,
		AreaPath:  areaPath,
		Stories:   stories,
	}, nil
}

// Exclude returns stories without the given ids. Removal is local to the working set.
func Exclude(all []models.UserStory, ids []int) []models.UserStory {
	if len(ids) == 0 {
		return all
	}
	drop := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]models.UserStory, 0, len(all))
	for _, s := range all {
		if _, ok := drop[s.ID]; !ok {
			kept = append(kept, s)
		}
	}
	return kept
}
