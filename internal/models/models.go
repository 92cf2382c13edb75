package models

import (
	"fmt"
	"strings"
	"time"
)

// Iteration represents a sprint as listed by the team settings API.
// Path is the canonical identity; names collide across teams.
type Iteration struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	FinishDate *time.Time `json:"finishDate,omitempty"`
	TimeFrame  string     `json:"timeFrame,omitempty"`
}

// UserStory is an immutable snapshot of a "User Story" work item
type UserStory struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	State         string `json:"state"`
	WorkItemType  string `json:"workItemType"`
	URL           string `json:"url"`
	IterationPath string `json:"iterationPath"`
	AreaPath      string `json:"areaPath"`
}

// TaskDraft is a task authored by the user before it is created remotely
type TaskDraft struct {
	Title        string            `json:"title" yaml:"title"`
	Description  string            `json:"description" yaml:"description"`
	AssignedTo   string            `json:"assignedTo" yaml:"assignedTo"`
	CustomFields map[string]string `json:"customFields" yaml:"customFields"`
}

// Validate checks that the draft can be submitted or stored in a template
func (t TaskDraft) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Message: "task title must not be empty"}
	}
	return nil
}

// TaskTemplate is a named, ordered list of task drafts
type TaskTemplate struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Tasks     []TaskDraft `json:"tasks"`
	CreatedAt string      `json:"createdAt"` // ISO 8601 format string
}

// CreationStatus is the outcome of a single (story, task) creation attempt
type CreationStatus string

const (
	StatusSuccess CreationStatus = "success"
	StatusError   CreationStatus = "error"
)

// CreationResult records one attempted (story, task) pair
type CreationResult struct {
	UserStoryID    int            `json:"userStoryId"`
	UserStoryTitle string         `json:"userStoryTitle"`
	TaskTitle      string         `json:"taskTitle"`
	Status         CreationStatus `json:"status"`
	TaskID         int            `json:"taskId,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// ValidationError reports user-authored input that cannot be used
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidateDrafts checks every draft and reports the first offending position
func ValidateDrafts(tasks []TaskDraft) error {
	for i, t := range tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("task #%d: %w", i+1, err)
		}
	}
	return nil
}
