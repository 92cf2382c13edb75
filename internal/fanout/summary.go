package fanout

import "github.com/tuannvm/taskpilot/internal/models"

// Summary counts the outcomes of a batch
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Summarize tallies results
func Summarize(results []models.CreationResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Status == models.StatusSuccess {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}
