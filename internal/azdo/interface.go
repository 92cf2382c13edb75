package azdo

import (
	"context"

	"github.com/tuannvm/taskpilot/internal/config"
	"github.com/tuannvm/taskpilot/internal/models"
)

// ClientInterface defines the remote operations the rest of the application consumes
type ClientInterface interface {
	Project() string
	WorkItemURL(id int) string
	ListIterations(ctx context.Context, team string) ([]models.Iteration, error)
	QueryWorkItemIDs(ctx context.Context, query string) ([]int, error)
	GetWorkItems(ctx context.Context, ids []int) ([]WorkItem, error)
	CreateWorkItem(ctx context.Context, workItemType string, ops []PatchOperation) (*WorkItem, error)
	DeleteWorkItem(ctx context.Context, id int) error
	FindIdentity(ctx context.Context, search string) (*Identity, error)
}

// NewRemoteClient creates a client for the configured organization and project
func NewRemoteClient(cfg *config.Config) ClientInterface {
	return NewClient(cfg)
}
