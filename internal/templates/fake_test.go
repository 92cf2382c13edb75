package templates

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/tuannvm/taskpilot/internal/azdo"
)

// fakeWorkItems is an in-memory stand-in for the work tracking service
type fakeWorkItems struct {
	mu      sync.Mutex
	project string
	items   map[int]azdo.WorkItem
	nextID  int

	createErrs []error
	creates    [][]azdo.PatchOperation
	queries    []string
	deleted    []int

	// staleIDs are returned by queries although the items are gone
	staleIDs []int
}

func newFakeWorkItems() *fakeWorkItems {
	return &fakeWorkItems{project: "Fabrikam", items: map[int]azdo.WorkItem{}, nextID: 500}
}

func (f *fakeWorkItems) Project() string { return f.project }

func (f *fakeWorkItems) QueryWorkItemIDs(_ context.Context, query string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	var ids []int
	for id, item := range f.items {
		// tag filtering is only honoured when the tag field was written
		if tags := item.StringField(azdo.FieldTags); tags != "" && !strings.Contains(tags, templateTag) {
			continue
		}
		ids = append(ids, id)
	}
	ids = append(ids, f.staleIDs...)
	// newest first
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	return ids, nil
}

func (f *fakeWorkItems) GetWorkItems(_ context.Context, ids []int) ([]azdo.WorkItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []azdo.WorkItem
	// reverse of the requested order, as the service does not promise ordering;
	// unknown ids come back as null entries
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, f.items[ids[i]])
	}
	return out, nil
}

func (f *fakeWorkItems) CreateWorkItem(_ context.Context, _ string, ops []azdo.PatchOperation) (*azdo.WorkItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, ops)
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	f.nextID++
	item := azdo.WorkItem{ID: f.nextID, Fields: map[string]interface{}{}}
	for _, op := range ops {
		if name, ok := strings.CutPrefix(op.Path, "/fields/"); ok {
			item.Fields[name] = op.Value
		}
	}
	f.items[item.ID] = item
	return &item, nil
}

func (f *fakeWorkItems) DeleteWorkItem(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return &azdo.RemoteCallError{Method: "DELETE", StatusCode: 404, Message: "not found"}
	}
	delete(f.items, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// mapKV is an in-memory KV
type mapKV struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func newMapKV() *mapKV { return &mapKV{values: map[string]string{}} }

func (m *mapKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mapKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

var errRejected = errors.New("TF401320: rule error for field Area Path")
