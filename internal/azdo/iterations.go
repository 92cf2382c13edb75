package azdo

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/tuannvm/taskpilot/internal/models"
)

// ListIterations fetches the iterations of a team, or of the project's default team when team is empty
func (c *Client) ListIterations(ctx context.Context, team string) ([]models.Iteration, error) {
	path := "/_apis/work/teamsettings/iterations"
	if team != "" {
		path = "/" + url.PathEscape(team) + path
	}

	var resp iterationsResponse
	if err := c.do(ctx, http.MethodGet, c.projectURL(path, nil), "", nil, &resp); err != nil {
		return nil, err
	}

	iterations := make([]models.Iteration, 0, len(resp.Value))
	for _, it := range resp.Value {
		iterations = append(iterations, models.Iteration{
			ID:         it.ID,
			Name:       it.Name,
			Path:       it.Path,
			StartDate:  parseDate(it.Attributes.StartDate),
			FinishDate: parseDate(it.Attributes.FinishDate),
			TimeFrame:  it.Attributes.TimeFrame,
		})
	}
	return iterations, nil
}

// parseDate parses an RFC3339 timestamp, returning nil for empty or malformed input
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
