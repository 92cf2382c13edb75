package stories

import (
	"context"

	"github.com/tuannvm/taskpilot/internal/azdo"
	"github.com/tuannvm/taskpilot/internal/models"
)

type fakeRemote struct {
	project    string
	iterations []models.Iteration
	listErr    error
	listedTeam []string

	// queryResults are consumed in order; each entry answers one query
	queryResults []queryResult
	queries      []string

	items    map[int]azdo.WorkItem
	getErr   error
	getCalls [][]int
}

type queryResult struct {
	ids []int
	err error
}

func (f *fakeRemote) Project() string { return f.project }

func (f *fakeRemote) ListIterations(_ context.Context, team string) ([]models.Iteration, error) {
	f.listedTeam = append(f.listedTeam, team)
	return f.iterations, f.listErr
}

func (f *fakeRemote) QueryWorkItemIDs(_ context.Context, query string) ([]int, error) {
	f.queries = append(f.queries, query)
	if len(f.queryResults) == 0 {
		return nil, nil
	}
	r := f.queryResults[0]
	f.queryResults = f.queryResults[1:]
	return r.ids, r.err
}

func (f *fakeRemote) GetWorkItems(_ context.Context, ids []int) ([]azdo.WorkItem, error) {
	f.getCalls = append(f.getCalls, append([]int(nil), ids...))
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []azdo.WorkItem
	// Return in reverse to prove the fetcher restores input order.
	// Missing ids come back as null entries, as with errorPolicy=Omit.
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, f.items[ids[i]])
	}
	return out, nil
}

func storyItem(id int, title string) azdo.WorkItem {
	return azdo.WorkItem{
		ID:  id,
		URL: "https://dev.azure.com/contoso/_apis/wit/workItems/" + title,
		Fields: map[string]interface{}{
			azdo.FieldTitle:         title,
			azdo.FieldState:         "Active",
			azdo.FieldWorkItemType:  azdo.TypeUserStory,
			azdo.FieldIterationPath: `Fabrikam\Sprint 5`,
			azdo.FieldAreaPath:      `Fabrikam\Phoenix`,
		},
	}
}

func areaPathErr() error {
	return &azdo.AreaPathInvalidError{Err: &azdo.RemoteCallError{
		Method:     "POST",
		URL:        "wiql",
		StatusCode: 400,
		Message:    "TF51011: The specified area path does not exist.",
	}}
}
