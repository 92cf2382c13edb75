package azdo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// FindIdentity resolves a user by email or search string.
// It returns nil, nil when the search has no match.
func (c *Client) FindIdentity(ctx context.Context, search string) (*Identity, error) {
	params := url.Values{}
	params.Set("searchFilter", "General")
	params.Set("filterValue", search)

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.collectionURL("/_apis/identities", params), "", nil, &raw); err != nil {
		return nil, err
	}

	first := gjson.GetBytes(raw, "value.0")
	if !first.Exists() {
		return nil, nil
	}

	identity := &Identity{
		ID:          first.Get("id").String(),
		DisplayName: firstNonEmpty(first, "customDisplayName", "providerDisplayName", "displayName"),
		UniqueName:  firstNonEmpty(first, "uniqueName", "properties.Account.$value", "properties.Mail.$value"),
	}
	if identity.UniqueName == "" {
		return nil, nil
	}
	return identity, nil
}

func firstNonEmpty(res gjson.Result, paths ...string) string {
	for _, p := range paths {
		if s := res.Get(p).String(); s != "" {
			return s
		}
	}
	return ""
}
