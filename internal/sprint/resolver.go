package sprint

import (
	"sort"
	"strings"

	log "github.com/tuannvm/taskpilot/internal/logging"
	"github.com/tuannvm/taskpilot/internal/models"
)

// Resolve picks the iteration the locator refers to from a fetched iteration list.
//
// Exact case-insensitive name matches win over substring matches. When a stage
// yields several candidates the one with the latest start date is chosen;
// iterations without a start date rank last and ties keep list order.
func Resolve(iterations []models.Iteration, loc Locator) (models.Iteration, error) {
	want := strings.ToLower(strings.TrimSpace(loc.Sprint))

	var exact, partial []models.Iteration
	for _, it := range iterations {
		name := strings.ToLower(strings.TrimSpace(it.Name))
		switch {
		case name == want:
			exact = append(exact, it)
		case strings.Contains(name, want):
			partial = append(partial, it)
		}
	}

	var (
		match    models.Iteration
		strategy string
	)
	switch {
	case len(exact) > 0:
		match, strategy = latest(exact), "exact"
	case len(partial) > 0:
		match, strategy = latest(partial), "substring"
	default:
		return models.Iteration{}, &SprintNotFoundError{SprintName: loc.Sprint, Team: loc.Team, Candidates: len(iterations)}
	}

	log.Infow("iteration resolved",
		"sprint", loc.Sprint,
		"team", loc.Team,
		"strategy", strategy,
		"candidates", len(exact)+len(partial),
		"iteration", match.Name,
		"path", match.Path,
	)
	return match, nil
}

// latest returns the candidate with the most recent start date
func latest(candidates []models.Iteration) models.Iteration {
	if len(candidates) == 1 {
		return candidates[0]
	}
	sorted := make([]models.Iteration, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].StartDate, sorted[j].StartDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return sorted[0]
}
