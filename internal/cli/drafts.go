package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tuannvm/taskpilot/internal/models"
)

// LoadDrafts reads task drafts from a YAML or JSON file. The file holds
// either a list of tasks or an object with a "tasks" list.
func LoadDrafts(path string) ([]models.TaskDraft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks file: %w", err)
	}
	return ParseDrafts(data)
}

// ParseDrafts decodes the contents of a tasks file
func ParseDrafts(data []byte) ([]models.TaskDraft, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tasks file: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("tasks file is empty")
	}

	var drafts []models.TaskDraft
	switch root := doc.Content[0]; root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&drafts); err != nil {
			return nil, fmt.Errorf("failed to decode tasks: %w", err)
		}
	case yaml.MappingNode:
		var wrapper struct {
			Tasks []models.TaskDraft `yaml:"tasks"`
		}
		if err := root.Decode(&wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode tasks: %w", err)
		}
		drafts = wrapper.Tasks
	default:
		return nil, fmt.Errorf("tasks file must contain a list of tasks")
	}

	if len(drafts) == 0 {
		return nil, fmt.Errorf("tasks file contains no tasks")
	}
	if err := models.ValidateDrafts(drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}
