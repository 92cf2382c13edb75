package fanout

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/tuannvm/taskpilot/internal/azdo"
	log "github.com/tuannvm/taskpilot/internal/logging"
	"github.com/tuannvm/taskpilot/internal/models"
)

const parentLinkComment = "Parent User Story"

// Creator is the subset of the work tracking client used to create tasks
type Creator interface {
	WorkItemURL(id int) string
	CreateWorkItem(ctx context.Context, workItemType string, ops []azdo.PatchOperation) (*azdo.WorkItem, error)
	FindIdentity(ctx context.Context, search string) (*azdo.Identity, error)
}

// StoryFetcher re-reads stories whose snapshot lacks area or iteration paths
type StoryFetcher interface {
	Stories(ctx context.Context, ids []int) ([]models.UserStory, error)
}

// Request is one fan-out batch
type Request struct {
	Stories       []models.UserStory
	Tasks         []models.TaskDraft
	AreaPath      string // used when a story has no area path of its own
	IterationPath string // used when a story has no iteration path of its own
}

// Engine creates one task per (story, task) pair
type Engine struct {
	creator     Creator
	fetcher     StoryFetcher
	concurrency int

	mu         sync.Mutex
	identities map[string]string
}

// NewEngine creates an engine running at most concurrency creation calls at once.
// A concurrency of 1 processes pairs strictly in order.
func NewEngine(creator Creator, fetcher StoryFetcher, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{
		creator:     creator,
		fetcher:     fetcher,
		concurrency: concurrency,
		identities:  make(map[string]string),
	}
}

// Run attempts every pair in story-major, task-minor order and returns one
// result per pair. A failed pair never stops the others and is never retried.
// The only error returned is for drafts that fail validation, before any call is made.
func (e *Engine) Run(ctx context.Context, req Request) ([]models.CreationResult, error) {
	if err := models.ValidateDrafts(req.Tasks); err != nil {
		return nil, err
	}

	start := time.Now()
	taskCount := len(req.Tasks)
	results := make([]models.CreationResult, len(req.Stories)*taskCount)

	if taskCount == 0 {
		return results, nil
	}

	// Paths are repaired up front so no refetch overlaps a creation call
	type pathPair struct{ area, iteration string }
	paths := make([]pathPair, len(req.Stories))
	for i, story := range req.Stories {
		paths[i].area, paths[i].iteration = e.storyPaths(ctx, story, req)
	}

	p := pool.New().WithMaxGoroutines(e.concurrency)
	for i, story := range req.Stories {
		for j, task := range req.Tasks {
			idx := i*taskCount + j
			p.Go(func() {
				results[idx] = e.createTask(ctx, story, task, paths[i].area, paths[i].iteration)
			})
		}
	}
	p.Wait()

	summary := Summarize(results)
	log.Infow("batch completed",
		"stories", len(req.Stories),
		"tasks", taskCount,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"elapsed", time.Since(start).String(),
	)
	return results, nil
}

// storyPaths returns the story's own paths, refetching the story once when
// either is missing and falling back to the batch-level paths
func (e *Engine) storyPaths(ctx context.Context, story models.UserStory, req Request) (string, string) {
	areaPath, iterationPath := story.AreaPath, story.IterationPath
	if (areaPath == "" || iterationPath == "") && e.fetcher != nil {
		fresh, err := e.fetcher.Stories(ctx, []int{story.ID})
		switch {
		case err != nil:
			log.Warnw("story refetch failed", "story", story.ID, "error", err)
		case len(fresh) > 0:
			if areaPath == "" {
				areaPath = fresh[0].AreaPath
			}
			if iterationPath == "" {
				iterationPath = fresh[0].IterationPath
			}
		}
	}
	if areaPath == "" {
		areaPath = req.AreaPath
	}
	if iterationPath == "" {
		iterationPath = req.IterationPath
	}
	return areaPath, iterationPath
}

func (e *Engine) createTask(ctx context.Context, story models.UserStory, task models.TaskDraft, areaPath, iterationPath string) models.CreationResult {
	result := models.CreationResult{
		UserStoryID:    story.ID,
		UserStoryTitle: story.Title,
		TaskTitle:      task.Title,
	}

	created, err := e.creator.CreateWorkItem(ctx, azdo.TypeTask, e.patchDocument(ctx, story, task, areaPath, iterationPath))
	if err != nil {
		log.Warnw("task creation failed", "story", story.ID, "task", task.Title, "error", err)
		result.Status = models.StatusError
		result.Error = fmt.Sprintf("failed to create task: %v", err)
		return result
	}

	log.Debugw("task created", "story", story.ID, "task", task.Title, "id", created.ID)
	result.Status = models.StatusSuccess
	result.TaskID = created.ID
	return result
}

func (e *Engine) patchDocument(ctx context.Context, story models.UserStory, task models.TaskDraft, areaPath, iterationPath string) []azdo.PatchOperation {
	parentURL := story.URL
	if parentURL == "" {
		parentURL = e.creator.WorkItemURL(story.ID)
	}

	ops := []azdo.PatchOperation{
		azdo.SetField(azdo.FieldTitle, task.Title),
		azdo.SetField(azdo.FieldDescription, task.Description),
		azdo.SetField(azdo.FieldWorkItemType, azdo.TypeTask),
		azdo.AddParent(parentURL, parentLinkComment),
	}
	if areaPath != "" {
		ops = append(ops, azdo.SetField(azdo.FieldAreaPath, areaPath))
	}
	if iterationPath != "" {
		ops = append(ops, azdo.SetField(azdo.FieldIterationPath, iterationPath))
	}
	if assignee := strings.TrimSpace(task.AssignedTo); assignee != "" {
		ops = append(ops, azdo.SetField(azdo.FieldAssignedTo, e.resolveAssignee(ctx, assignee)))
	}

	keys := make([]string, 0, len(task.CustomFields))
	for k := range task.CustomFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ops = append(ops, azdo.SetField(k, task.CustomFields[k]))
	}
	return ops
}

// resolveAssignee maps an email to "Display Name <unique name>", falling back
// to the raw email when the lookup fails or finds nobody. Successful lookups
// are remembered for the lifetime of the engine.
func (e *Engine) resolveAssignee(ctx context.Context, email string) string {
	key := strings.ToLower(email)
	e.mu.Lock()
	cached, ok := e.identities[key]
	e.mu.Unlock()
	if ok {
		return cached
	}

	identity, err := e.creator.FindIdentity(ctx, email)
	if err != nil {
		log.Warnw("identity lookup failed, assigning by email", "email", email, "error", err)
		return email
	}
	if identity == nil {
		log.Debugw("no identity found, assigning by email", "email", email)
		return email
	}

	value := identity.AssignValue()
	e.mu.Lock()
	e.identities[key] = value
	e.mu.Unlock()
	return value
}
