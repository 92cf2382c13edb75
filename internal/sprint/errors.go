package sprint

import (
	"fmt"
)

// MalformedLocatorError is returned when a sprint URL has no usable final path segment
type MalformedLocatorError struct {
	URL    string
	Reason string
	Err    error
}

func (e *MalformedLocatorError) Error() string {
	return fmt.Sprintf("invalid sprint URL %q: %s", e.URL, e.Reason)
}

func (e *MalformedLocatorError) Unwrap() error { return e.Err }

// SprintNotFoundError is returned when no iteration matches the sprint name
type SprintNotFoundError struct {
	SprintName string
	Team       string
	Candidates int // number of iterations that were searched
}

func (e *SprintNotFoundError) Error() string {
	if e.Team != "" {
		return fmt.Sprintf("sprint %q could not be found in the schedule of team %q (%d iterations searched)", e.SprintName, e.Team, e.Candidates)
	}
	return fmt.Sprintf("sprint %q could not be found in the project schedule (%d iterations searched)", e.SprintName, e.Candidates)
}
