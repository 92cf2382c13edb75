// Package report renders stories, creation results and templates as terminal tables.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tuannvm/taskpilot/internal/fanout"
	"github.com/tuannvm/taskpilot/internal/models"
)

// Styles used by every table
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const maxCellWidth = 60

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// Stories renders the working set of user stories
func Stories(title string, stories []models.UserStory) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(titleStyle.Render(title))
		sb.WriteString("\n")
	}
	if len(stories) == 0 {
		sb.WriteString(mutedStyle.Render("No user stories found."))
		sb.WriteString("\n")
		return sb.String()
	}

	t := newTable("ID", "Title", "State", "Area Path")
	for _, s := range stories {
		t.Row(strconv.Itoa(s.ID), truncate(s.Title), s.State, s.AreaPath)
	}
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("%d user stor%s", len(stories), plural(len(stories), "y", "ies"))))
	sb.WriteString("\n")
	return sb.String()
}

// Results renders one row per attempted (story, task) pair followed by the summary
func Results(results []models.CreationResult) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Task creation results"))
	sb.WriteString("\n")

	if len(results) > 0 {
		t := newTable("Story", "Task", "Status", "Task ID / Error")
		for _, r := range results {
			status := successStyle.Render(string(r.Status))
			detail := strconv.Itoa(r.TaskID)
			if r.Status != models.StatusSuccess {
				status = errorStyle.Render(string(r.Status))
				detail = strings.Join(strings.Fields(r.Error), " ")
			}
			t.Row(fmt.Sprintf("#%d %s", r.UserStoryID, truncate(r.UserStoryTitle)), truncate(r.TaskTitle), status, detail)
		}
		sb.WriteString(t.Render())
		sb.WriteString("\n")
	}
	sb.WriteString(Summary(fanout.Summarize(results)))
	sb.WriteString("\n")
	return sb.String()
}

// Summary renders the total / succeeded / failed footer
func Summary(s fanout.Summary) string {
	failed := mutedStyle.Render(fmt.Sprintf("%d failed", s.Failed))
	if s.Failed > 0 {
		failed = errorStyle.Render(fmt.Sprintf("%d failed", s.Failed))
	}
	return fmt.Sprintf("%d total, %s, %s",
		s.Total,
		successStyle.Render(fmt.Sprintf("%d succeeded", s.Succeeded)),
		failed)
}

// Templates renders stored templates with their task titles
func Templates(templates []models.TaskTemplate) string {
	if len(templates) == 0 {
		return mutedStyle.Render("No templates saved.") + "\n"
	}
	t := newTable("ID", "Name", "Tasks", "Created")
	for _, tmpl := range templates {
		titles := make([]string, 0, len(tmpl.Tasks))
		for _, task := range tmpl.Tasks {
			titles = append(titles, task.Title)
		}
		t.Row(tmpl.ID, tmpl.Name, truncate(strings.Join(titles, ", ")), tmpl.CreatedAt)
	}
	return t.Render() + "\n"
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxCellWidth {
		return s
	}
	return string(r[:maxCellWidth-1]) + "…"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
