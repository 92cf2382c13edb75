package templates

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tuannvm/taskpilot/internal/azdo"
	log "github.com/tuannvm/taskpilot/internal/logging"
	"github.com/tuannvm/taskpilot/internal/models"
)

const (
	templateTag    = "TaskTemplate"
	fieldCreatedAt = "System.CreatedDate"
	listBatchSize  = 200
)

// RemoteClient is the subset of the work tracking client the remote store needs
type RemoteClient interface {
	Project() string
	QueryWorkItemIDs(ctx context.Context, query string) ([]int, error)
	GetWorkItems(ctx context.Context, ids []int) ([]azdo.WorkItem, error)
	CreateWorkItem(ctx context.Context, workItemType string, ops []azdo.PatchOperation) (*azdo.WorkItem, error)
	DeleteWorkItem(ctx context.Context, id int) error
}

// RemoteStore keeps each template as a tagged Task work item whose
// description carries the template as JSON
type RemoteStore struct {
	client RemoteClient
	now    func() time.Time
}

// NewRemoteStore creates a store backed by the project's work items
func NewRemoteStore(client RemoteClient) *RemoteStore {
	return &RemoteStore{client: client, now: time.Now}
}

// Save creates the template work item. If the service rejects the full
// payload, one retry is made with only title, description, type and state.
func (s *RemoteStore) Save(ctx context.Context, name string, tasks []models.TaskDraft) (models.TaskTemplate, error) {
	if err := validateTemplate(name, tasks); err != nil {
		return models.TaskTemplate{}, err
	}
	name = strings.TrimSpace(name)
	p := payload{
		Name:      name,
		Tasks:     tasks,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
		Version:   payloadVersion,
	}

	description, err := encodeDescription(p)
	if err != nil {
		return models.TaskTemplate{}, err
	}
	project := s.client.Project()
	ops := []azdo.PatchOperation{
		azdo.SetField(azdo.FieldTitle, templateTitle(name)),
		azdo.SetField(azdo.FieldDescription, description),
		azdo.SetField(azdo.FieldWorkItemType, azdo.TypeTask),
		azdo.SetField(azdo.FieldTags, templateTag),
		azdo.SetField(azdo.FieldAreaPath, project),
		azdo.SetField(azdo.FieldIterationPath, project),
		azdo.SetField(azdo.FieldState, "New"),
	}

	created, err := s.client.CreateWorkItem(ctx, azdo.TypeTask, ops)
	if err != nil {
		log.Warnw("template save rejected, retrying with simplified payload", "template", name, "error", err)

		simple, encErr := encodeSimpleDescription(p)
		if encErr != nil {
			return models.TaskTemplate{}, encErr
		}
		created, err = s.client.CreateWorkItem(ctx, azdo.TypeTask, []azdo.PatchOperation{
			azdo.SetField(azdo.FieldTitle, templateTitle(name)),
			azdo.SetField(azdo.FieldDescription, simple),
			azdo.SetField(azdo.FieldWorkItemType, azdo.TypeTask),
			azdo.SetField(azdo.FieldState, "New"),
		})
		if err != nil {
			return models.TaskTemplate{}, fmt.Errorf("failed to save task template: %w", err)
		}
	}

	log.Infow("template saved", "store", "remote", "template", name, "id", created.ID, "tasks", len(tasks))
	return models.TaskTemplate{
		ID:        strconv.Itoa(created.ID),
		Name:      name,
		Tasks:     tasks,
		CreatedAt: p.CreatedAt,
	}, nil
}

// List returns templates newest first. Items whose data cannot be decoded
// but whose title marks them as templates come back with no tasks.
func (s *RemoteStore) List(ctx context.Context) ([]models.TaskTemplate, error) {
	ids, err := s.client.QueryWorkItemIDs(ctx, s.listQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to load task templates: %w", err)
	}
	if len(ids) == 0 {
		return []models.TaskTemplate{}, nil
	}

	byID := make(map[int]azdo.WorkItem, len(ids))
	for start := 0; start < len(ids); start += listBatchSize {
		end := start + listBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		items, err := s.client.GetWorkItems(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to load task templates: %w", err)
		}
		for _, item := range items {
			if item.ID == 0 {
				continue
			}
			byID[item.ID] = item
		}
	}

	templates := make([]models.TaskTemplate, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			continue
		}
		if t, ok := s.decode(&item); ok {
			templates = append(templates, t)
		}
	}
	return templates, nil
}

func (s *RemoteStore) decode(item *azdo.WorkItem) (models.TaskTemplate, bool) {
	id := strconv.Itoa(item.ID)
	p, err := decodeDescription(item.StringField(azdo.FieldDescription))
	if err == nil {
		return models.TaskTemplate{ID: id, Name: p.Name, Tasks: p.Tasks, CreatedAt: p.CreatedAt}, true
	}

	name, ok := nameFromTitle(item.StringField(azdo.FieldTitle))
	if !ok {
		log.Warnw("skipping tagged work item without template data", "id", item.ID, "error", err)
		return models.TaskTemplate{}, false
	}
	createdAt := item.StringField(fieldCreatedAt)
	if createdAt == "" {
		createdAt = s.now().UTC().Format(time.RFC3339)
	}
	return models.TaskTemplate{ID: id, Name: name, Tasks: []models.TaskDraft{}, CreatedAt: createdAt}, true
}

// Delete removes the template work item. The id is the work item id.
func (s *RemoteStore) Delete(ctx context.Context, id string) error {
	workItemID, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return &models.ValidationError{Field: "id", Message: fmt.Sprintf("%q is not a work item id", id)}
	}
	if err := s.client.DeleteWorkItem(ctx, workItemID); err != nil {
		return fmt.Errorf("failed to delete task template: %w", err)
	}
	log.Infow("template deleted", "store", "remote", "id", workItemID)
	return nil
}

func (s *RemoteStore) listQuery() string {
	return fmt.Sprintf(
		"SELECT [System.Id], [System.Title], [System.Description] FROM WorkItems "+
			"WHERE [System.TeamProject] = '%s' AND [System.WorkItemType] = '%s' AND [System.Tags] CONTAINS '%s' "+
			"ORDER BY [System.CreatedDate] DESC",
		strings.ReplaceAll(s.client.Project(), "'", "''"), azdo.TypeTask, templateTag)
}
