package templates

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/tuannvm/taskpilot/internal/models"
)

const (
	titlePrefix    = "[TEMPLATE]"
	dataMarker     = "Template Data:"
	payloadVersion = "1.0"
)

var objectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// payload is the JSON document embedded in a template work item description
type payload struct {
	Name      string             `json:"name"`
	Tasks     []models.TaskDraft `json:"tasks"`
	CreatedAt string             `json:"createdAt"`
	Version   string             `json:"version,omitempty"`
}

func templateTitle(name string) string {
	return titlePrefix + " " + name
}

// nameFromTitle returns the template name for a "[TEMPLATE] name" title
func nameFromTitle(title string) (string, bool) {
	if !strings.HasPrefix(title, titlePrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(title, titlePrefix)), true
}

// encodeDescription renders the human-readable header followed by the template data
func encodeDescription(p payload) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode template: %w", err)
	}
	return fmt.Sprintf("Task Template: %s\n\nThis template contains %d task(s).\nCreated on: %s\n\n%s\n%s",
		p.Name, len(p.Tasks), p.CreatedAt, dataMarker, data), nil
}

// encodeSimpleDescription is the reduced form used when the full save is rejected
func encodeSimpleDescription(p payload) (string, error) {
	p.Version = ""
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode template: %w", err)
	}
	return fmt.Sprintf("Task Template: %s\n\n%s\n%s", p.Name, dataMarker, data), nil
}

// decodeDescription extracts the template data from a description. The service
// may hand descriptions back as HTML, so that form is tried when plain text fails.
func decodeDescription(description string) (payload, error) {
	p, err := decodePlain(description)
	if err == nil {
		return p, nil
	}
	if !strings.Contains(description, "<") {
		return payload{}, err
	}
	text, herr := htmlToText(description)
	if herr != nil {
		return payload{}, err
	}
	return decodePlain(text)
}

func decodePlain(text string) (payload, error) {
	idx := strings.Index(text, dataMarker)
	if idx < 0 {
		return payload{}, fmt.Errorf("no template data in description")
	}
	raw, err := extractObject(text[idx+len(dataMarker):])
	if err != nil {
		return payload{}, err
	}
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return payload{}, fmt.Errorf("failed to decode template data: %w", err)
	}
	if p.Name == "" || p.Tasks == nil {
		return payload{}, fmt.Errorf("template data is missing name or tasks")
	}
	return p, nil
}

// extractObject finds the outermost JSON object in text and checks it parses
func extractObject(text string) (string, error) {
	match := objectPattern.FindString(text)
	if match == "" || !json.Valid([]byte(match)) {
		return "", fmt.Errorf("no valid JSON found in description")
	}
	return match, nil
}

func htmlToText(s string) (string, error) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML description: %w", err)
	}
	var sb strings.Builder
	writeText(doc, &sb)
	return sb.String(), nil
}

func writeText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
	case html.ElementNode:
		if n.Data == "br" {
			sb.WriteString("\n")
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, sb)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "div", "p", "li", "pre":
			sb.WriteString("\n")
		}
	}
}
