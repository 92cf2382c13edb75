package sprint

import (
	"net/url"
	"strings"

	log "github.com/tuannvm/taskpilot/internal/logging"
)

// Locator is the {team, sprint} pair read from a sprint board URL.
// Team is empty when the URL carries no team segment.
type Locator struct {
	Team   string
	Sprint string
}

// HasTeam reports whether the URL named a team
func (l Locator) HasTeam() bool {
	return l.Team != ""
}

// AreaPath returns the area path a team's stories are filed under
func (l Locator) AreaPath(project string) string {
	if l.Team == "" {
		return project
	}
	return project + `\` + l.Team
}

// Parser turns a sprint board URL into a Locator
type Parser interface {
	Parse(rawURL string) (Locator, error)
}

// anchorSegments precede the team segment in board URLs
var anchorSegments = []string{"backlog", "taskboard"}

// TerminalSegmentParser is the canonical Parser.
//
// The sprint is always the final path segment. The team is the segment right
// after the first "backlog" or "taskboard" anchor, provided at least one more
// segment follows it. Examples:
//
//	/org/project/_sprints/taskboard/Team A/Sprint 5  -> team "Team A", sprint "Sprint 5"
//	/project/_sprints/backlog/Team A/project/Sprint 5 -> team "Team A", sprint "Sprint 5"
//	/org/project/_sprints/taskboard/Sprint 5          -> no team, sprint "Sprint 5"
//	/org/project/_sprints/Sprint 5                    -> no team, sprint "Sprint 5"
type TerminalSegmentParser struct{}

// DefaultParser is the parser used when none is configured
var DefaultParser Parser = TerminalSegmentParser{}

// Parse implements Parser
func (TerminalSegmentParser) Parse(rawURL string) (Locator, error) {
	segments, err := pathSegments(rawURL)
	if err != nil {
		return Locator{}, err
	}

	anchor := anchorIndex(segments)

	last := len(segments) - 1
	if anchor == last {
		return Locator{}, &MalformedLocatorError{URL: rawURL, Reason: "URL ends at the board segment and names no sprint"}
	}

	loc := Locator{Sprint: segments[last]}
	if anchor != -1 && last-anchor >= 2 {
		loc.Team = segments[anchor+1]
	}
	if strings.TrimSpace(loc.Sprint) == "" {
		return Locator{}, &MalformedLocatorError{URL: rawURL, Reason: "sprint segment is blank"}
	}

	log.Infow("locator parsed", "team", loc.Team, "sprint", loc.Sprint)
	return loc, nil
}

// anchorIndex returns the position of the first board anchor, or -1
func anchorIndex(segments []string) int {
	for i, seg := range segments {
		for _, a := range anchorSegments {
			if strings.EqualFold(seg, a) {
				return i
			}
		}
	}
	return -1
}

// pathSegments splits an absolute URL's path into non-empty, percent-decoded segments
func pathSegments(rawURL string) ([]string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, &MalformedLocatorError{URL: rawURL, Reason: "URL cannot be parsed", Err: err}
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, &MalformedLocatorError{URL: rawURL, Reason: "URL must be absolute"}
	}

	var segments []string
	for _, raw := range strings.Split(u.EscapedPath(), "/") {
		if raw == "" {
			continue
		}
		seg, err := url.PathUnescape(raw)
		if err != nil {
			return nil, &MalformedLocatorError{URL: rawURL, Reason: "path segment cannot be decoded", Err: err}
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return nil, &MalformedLocatorError{URL: rawURL, Reason: "URL has no path segments"}
	}
	return segments, nil
}
