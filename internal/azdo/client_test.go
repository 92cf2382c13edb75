package azdo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannvm/taskpilot/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.Config{
		Token:          "secret-pat",
		Organization:   "contoso",
		Project:        "Fabrikam",
		BaseURL:        srv.URL,
		APIVersion:     "7.0",
		RequestTimeout: 2 * time.Second,
	})
}

func TestDeriveEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		org            string
		override       string
		wantCollection string
		wantProject    string
	}{
		{"short org slug", "contoso", "", "https://dev.azure.com/contoso", "https://dev.azure.com/contoso/My%20Project"},
		{"legacy domain", "tameeni.visualstudio.com", "", "https://tameeni.visualstudio.com", "https://tameeni.visualstudio.com/My%20Project"},
		{"legacy domain with scheme", "https://tameeni.visualstudio.com/", "", "https://tameeni.visualstudio.com", "https://tameeni.visualstudio.com/My%20Project"},
		{"override", "contoso", "http://127.0.0.1:9000/", "http://127.0.0.1:9000", "http://127.0.0.1:9000/My%20Project"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := DeriveEndpoint(tt.org, "My Project", tt.override)
			assert.Equal(t, tt.wantCollection, ep.CollectionURL)
			assert.Equal(t, tt.wantProject, ep.ProjectURL)
		})
	}
}

func TestListIterations_TeamScoped(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte(":secret-pat"))
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/Fabrikam/Team A/_apis/work/teamsettings/iterations", r.URL.Path)
		assert.Equal(t, "7.0", r.URL.Query().Get("api-version"))
		_, _ = io.WriteString(w, `{"count":2,"value":[
			{"id":"a1","name":"Sprint 1","path":"Fabrikam\\Sprint 1","attributes":{"startDate":"2025-01-06T00:00:00Z","finishDate":"2025-01-17T00:00:00Z","timeFrame":"past"}},
			{"id":"a2","name":"Sprint 2","path":"Fabrikam\\Sprint 2","attributes":{}}
		]}`)
	})

	iterations, err := client.ListIterations(context.Background(), "Team A")
	require.NoError(t, err)
	require.Len(t, iterations, 2)
	assert.Equal(t, "Sprint 1", iterations[0].Name)
	assert.Equal(t, `Fabrikam\Sprint 1`, iterations[0].Path)
	require.NotNil(t, iterations[0].StartDate)
	assert.Equal(t, 2025, iterations[0].StartDate.Year())
	assert.Equal(t, "past", iterations[0].TimeFrame)
	assert.Nil(t, iterations[1].StartDate)
}

func TestListIterations_ProjectScoped(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Fabrikam/_apis/work/teamsettings/iterations", r.URL.Path)
		_, _ = io.WriteString(w, `{"count":0,"value":[]}`)
	})

	iterations, err := client.ListIterations(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, iterations)
}

func TestQueryWorkItemIDs(t *testing.T) {
	t.Run("returns ids", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/Fabrikam/_apis/wit/wiql", r.URL.Path)
			var req wiqlRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Contains(t, req.Query, "SELECT [System.Id]")
			_, _ = io.WriteString(w, `{"queryType":"flat","workItems":[{"id":7,"url":"u7"},{"id":3,"url":"u3"}]}`)
		})

		ids, err := client.QueryWorkItemIDs(context.Background(), "SELECT [System.Id] FROM WorkItems")
		require.NoError(t, err)
		assert.Equal(t, []int{7, 3}, ids)
	})

	t.Run("classifies invalid area path", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"TF51011: The specified area path does not exist.","typeKey":"WorkItemTrackingQueryException"}`)
		})

		_, err := client.QueryWorkItemIDs(context.Background(), "q")
		require.Error(t, err)
		assert.True(t, IsAreaPathInvalid(err))

		var rcErr *RemoteCallError
		require.True(t, errors.As(err, &rcErr))
		assert.Equal(t, http.StatusBadRequest, rcErr.StatusCode)
	})

	t.Run("other errors are not area path errors", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"TF51005: The query references a field that does not exist.","typeKey":"QueryException"}`)
		})

		_, err := client.QueryWorkItemIDs(context.Background(), "q")
		require.Error(t, err)
		assert.False(t, IsAreaPathInvalid(err))

		var rcErr *RemoteCallError
		require.True(t, errors.As(err, &rcErr))
		assert.Equal(t, "QueryException", rcErr.Code)
		assert.Contains(t, rcErr.Message, "TF51005")
	})
}

func TestGetWorkItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Fabrikam/_apis/wit/workitems", r.URL.Path)
		assert.Equal(t, "1,2", r.URL.Query().Get("ids"))
		assert.Equal(t, "relations", r.URL.Query().Get("$expand"))
		if !strings.EqualFold(r.URL.Query().Get("errorPolicy"), "omit") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"TF401232: Work item 2 does not exist, or you do not have permissions to read it.","typeKey":"WorkItemUnauthorizedAccessException"}`)
			return
		}
		_, _ = io.WriteString(w, `{"count":2,"value":[{"id":1,"url":"https://x/_apis/wit/workItems/1","fields":{"System.Title":"Login page","System.AreaPath":"Fabrikam"}},null]}`)
	})

	items, err := client.GetWorkItems(context.Background(), []int{1, 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Login page", items[0].StringField(FieldTitle))
	assert.Equal(t, "", items[0].StringField(FieldIterationPath))
	assert.Zero(t, items[1].ID)
}

func TestCreateWorkItem(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/Fabrikam/_apis/wit/workitems/$Task", r.URL.Path)
		assert.Equal(t, contentTypeJSONPatch, r.Header.Get("Content-Type"))

		var ops []PatchOperation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ops))
		require.Len(t, ops, 2)
		assert.Equal(t, "/fields/System.Title", ops[0].Path)
		assert.Equal(t, "/relations/-", ops[1].Path)

		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"id":501,"fields":{"System.Title":"Write tests"}}`)
	})

	created, err := client.CreateWorkItem(context.Background(), TypeTask, []PatchOperation{
		SetField(FieldTitle, "Write tests"),
		AddParent(client.WorkItemURL(10), "Parent User Story"),
	})
	require.NoError(t, err)
	assert.Equal(t, 501, created.ID)
}

func TestDeleteWorkItem(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/Fabrikam/_apis/wit/workitems/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteWorkItem(context.Background(), 42))
}

func TestFindIdentity(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/_apis/identities", r.URL.Path)
			assert.Equal(t, "General", r.URL.Query().Get("searchFilter"))
			assert.Equal(t, "jane@contoso.com", r.URL.Query().Get("filterValue"))
			_, _ = io.WriteString(w, `{"count":1,"value":[{"id":"u1","providerDisplayName":"Jane Doe","properties":{"Account":{"$type":"System.String","$value":"jane@contoso.com"}}}]}`)
		})

		identity, err := client.FindIdentity(context.Background(), "jane@contoso.com")
		require.NoError(t, err)
		require.NotNil(t, identity)
		assert.Equal(t, "Jane Doe <jane@contoso.com>", identity.AssignValue())
	})

	t.Run("no match", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"count":0,"value":[]}`)
		})

		identity, err := client.FindIdentity(context.Background(), "ghost@contoso.com")
		require.NoError(t, err)
		assert.Nil(t, identity)
	})
}

func TestRemoteCallError_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(&config.Config{
		Token:          "t",
		Organization:   "contoso",
		Project:        "Fabrikam",
		BaseURL:        srv.URL,
		RequestTimeout: 20 * time.Millisecond,
	})

	_, err := client.ListIterations(context.Background(), "")
	require.Error(t, err)

	var rcErr *RemoteCallError
	require.True(t, errors.As(err, &rcErr))
	assert.Equal(t, 0, rcErr.StatusCode)
	assert.Equal(t, 0, StatusCode(err))
}
