package stories

import (
	"context"
	"fmt"

	"github.com/tuannvm/taskpilot/internal/azdo"
	"github.com/tuannvm/taskpilot/internal/models"
)

// ItemGetter fetches work items by id
type ItemGetter interface {
	GetWorkItems(ctx context.Context, ids []int) ([]azdo.WorkItem, error)
}

// Fetcher hydrates work item ids into user stories
type Fetcher struct {
	getter    ItemGetter
	batchSize int
}

// NewFetcher creates a fetcher issuing at most batchSize ids per remote call
func NewFetcher(getter ItemGetter, batchSize int) *Fetcher {
	if batchSize < 1 {
		batchSize = 200
	}
	return &Fetcher{getter: getter, batchSize: batchSize}
}

// Stories returns the stories for ids in input order. Ids the server does not
// return are dropped. Any remote failure fails the whole fetch.
func (f *Fetcher) Stories(ctx context.Context, ids []int) ([]models.UserStory, error) {
	if len(ids) == 0 {
		return []models.UserStory{}, nil
	}

	byID := make(map[int]azdo.WorkItem, len(ids))
	for start := 0; start < len(ids); start += f.batchSize {
		end := start + f.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		items, err := f.getter.GetWorkItems(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to fetch work item details: %w", err)
		}
		for _, item := range items {
			if item.ID == 0 {
				continue
			}
			byID[item.ID] = item
		}
	}

	result := make([]models.UserStory, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			continue
		}
		result = append(result, ToUserStory(item))
	}
	return result, nil
}

// ToUserStory maps a work item onto the story snapshot
func ToUserStory(item azdo.WorkItem) models.UserStory {
	return models.UserStory{
		ID:            item.ID,
		Title:         item.StringField(azdo.FieldTitle),
		State:         item.StringField(azdo.FieldState),
		WorkItemType:  item.StringField(azdo.FieldWorkItemType),
		URL:           item.URL,
		IterationPath: item.StringField(azdo.FieldIterationPath),
		AreaPath:      item.StringField(azdo.FieldAreaPath),
	}
}
