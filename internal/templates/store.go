package templates

import (
	"context"
	"fmt"
	"strings"

	"github.com/tuannvm/taskpilot/internal/config"
	log "github.com/tuannvm/taskpilot/internal/logging"
	"github.com/tuannvm/taskpilot/internal/models"
)

// Store persists task templates. Backends are interchangeable and never merged.
type Store interface {
	List(ctx context.Context) ([]models.TaskTemplate, error)
	Save(ctx context.Context, name string, tasks []models.TaskDraft) (models.TaskTemplate, error)
	Delete(ctx context.Context, id string) error
}

// clearer is implemented by stores that can drop every template in one step
type clearer interface {
	Clear(ctx context.Context) error
}

// Open selects the backend named by cfg.TemplateStore. The returned close
// function releases any local resources and is always safe to call.
func Open(cfg *config.Config, client RemoteClient) (Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.TemplateStore {
	case config.StoreLocal:
		kv, err := OpenSQLiteKV(cfg.LocalStorePath)
		if err != nil {
			return nil, noop, err
		}
		log.Debugf("Using local template store at %s", cfg.LocalStorePath)
		return NewLocalStore(kv), kv.Close, nil
	case config.StoreRemote, "":
		if client == nil {
			return nil, noop, fmt.Errorf("remote template store requires a client")
		}
		return NewRemoteStore(client), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown template store %q", cfg.TemplateStore)
	}
}

// ClearAll removes every template from the store, stopping at the first failure
func ClearAll(ctx context.Context, store Store) (int, error) {
	existing, err := store.List(ctx)
	if err != nil {
		return 0, err
	}
	if c, ok := store.(clearer); ok {
		if err := c.Clear(ctx); err != nil {
			return 0, err
		}
		return len(existing), nil
	}
	for i, t := range existing {
		if err := store.Delete(ctx, t.ID); err != nil {
			return i, fmt.Errorf("failed to delete template %q: %w", t.Name, err)
		}
	}
	return len(existing), nil
}

// Find looks a template up by id, then by case-insensitive name. The first
// name match in list order wins.
func Find(ctx context.Context, store Store, ref string) (models.TaskTemplate, error) {
	all, err := store.List(ctx)
	if err != nil {
		return models.TaskTemplate{}, err
	}
	ref = strings.TrimSpace(ref)
	for _, t := range all {
		if t.ID == ref {
			return t, nil
		}
	}
	for _, t := range all {
		if strings.EqualFold(strings.TrimSpace(t.Name), ref) {
			return t, nil
		}
	}
	return models.TaskTemplate{}, fmt.Errorf("template %q not found", ref)
}

func validateTemplate(name string, tasks []models.TaskDraft) error {
	if strings.TrimSpace(name) == "" {
		return &models.ValidationError{Field: "name", Message: "template name must not be empty"}
	}
	if len(tasks) == 0 {
		return &models.ValidationError{Field: "tasks", Message: "template must contain at least one task"}
	}
	return models.ValidateDrafts(tasks)
}
