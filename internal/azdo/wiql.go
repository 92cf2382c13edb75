package azdo

import (
	"context"
	"net/http"
)

// QueryWorkItemIDs runs a WIQL query and returns the ids in server order.
// A failure caused by an unknown area path is returned as *AreaPathInvalidError.
func (c *Client) QueryWorkItemIDs(ctx context.Context, query string) ([]int, error) {
	var resp wiqlResponse
	err := c.do(ctx, http.MethodPost, c.projectURL("/_apis/wit/wiql", nil), contentTypeJSON, wiqlRequest{Query: query}, &resp)
	if err != nil {
		return nil, classifyQueryError(err)
	}

	ids := make([]int, 0, len(resp.WorkItems))
	for _, wi := range resp.WorkItems {
		ids = append(ids, wi.ID)
	}
	return ids, nil
}
