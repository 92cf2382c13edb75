package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	log "github.com/tuannvm/taskpilot/internal/logging"
	"github.com/tuannvm/taskpilot/internal/models"
)

// LocalStorageKey is the key under which the template list is kept
const LocalStorageKey = "azureTaskTemplates"

// KV is a minimal string key-value store
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// LocalStore keeps all templates as one JSON list under LocalStorageKey
type LocalStore struct {
	kv  KV
	now func() time.Time

	mu sync.Mutex
}

// NewLocalStore creates a store over the given key-value backend
func NewLocalStore(kv KV) *LocalStore {
	return &LocalStore{kv: kv, now: time.Now}
}

// List returns templates in the order they were saved
func (s *LocalStore) List(ctx context.Context) ([]models.TaskTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save appends a new template with a generated id
func (s *LocalStore) Save(ctx context.Context, name string, tasks []models.TaskDraft) (models.TaskTemplate, error) {
	if err := validateTemplate(name, tasks); err != nil {
		return models.TaskTemplate{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load(ctx)
	if err != nil {
		return models.TaskTemplate{}, err
	}
	t := models.TaskTemplate{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Tasks:     tasks,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.store(ctx, append(all, t)); err != nil {
		return models.TaskTemplate{}, err
	}
	log.Infow("template saved", "store", "local", "template", t.Name, "id", t.ID, "tasks", len(tasks))
	return t, nil
}

// Delete removes the template with the given id. Unknown ids are not an error.
func (s *LocalStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	for _, t := range all {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if err := s.store(ctx, kept); err != nil {
		return err
	}
	log.Infow("template deleted", "store", "local", "id", id)
	return nil
}

// Clear drops the whole template list
func (s *LocalStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, LocalStorageKey); err != nil {
		return fmt.Errorf("failed to clear local templates: %w", err)
	}
	return nil
}

func (s *LocalStore) load(ctx context.Context) ([]models.TaskTemplate, error) {
	raw, ok, err := s.kv.Get(ctx, LocalStorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read local templates: %w", err)
	}
	all := []models.TaskTemplate{}
	if !ok || raw == "" {
		return all, nil
	}
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("failed to decode local templates: %w", err)
	}
	return all, nil
}

func (s *LocalStore) store(ctx context.Context, all []models.TaskTemplate) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to encode local templates: %w", err)
	}
	if err := s.kv.Set(ctx, LocalStorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to write local templates: %w", err)
	}
	return nil
}
