package azdo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// GetWorkItems fetches full field sets plus relations for a batch of ids in one call.
// The server caps the batch size; callers are responsible for chunking.
// Ids that do not exist come back as zero-valued entries (ID == 0) instead of failing the batch.
func (c *Client) GetWorkItems(ctx context.Context, ids []int) ([]WorkItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = strconv.Itoa(id)
	}
	params := url.Values{}
	params.Set("ids", strings.Join(idStrs, ","))
	params.Set("$expand", "relations")
	params.Set("errorPolicy", "Omit")

	var resp workItemsResponse
	if err := c.do(ctx, http.MethodGet, c.projectURL("/_apis/wit/workitems", params), "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// CreateWorkItem creates a work item of the given type from a JSON Patch document
func (c *Client) CreateWorkItem(ctx context.Context, workItemType string, ops []PatchOperation) (*WorkItem, error) {
	path := "/_apis/wit/workitems/" + url.PathEscape("$"+workItemType)

	var created WorkItem
	if err := c.do(ctx, http.MethodPost, c.projectURL(path, nil), contentTypeJSONPatch, ops, &created); err != nil {
		return nil, err
	}
	if created.ID == 0 {
		return nil, fmt.Errorf("create %s: response did not include a work item id", workItemType)
	}
	return &created, nil
}

// DeleteWorkItem deletes a work item by id
func (c *Client) DeleteWorkItem(ctx context.Context, id int) error {
	path := fmt.Sprintf("/_apis/wit/workitems/%d", id)
	return c.do(ctx, http.MethodDelete, c.projectURL(path, nil), "", nil, nil)
}
