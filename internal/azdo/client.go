package azdo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tuannvm/taskpilot/internal/config"
)

const legacyDomainSuffix = "visualstudio.com"

const (
	contentTypeJSON      = "application/json"
	contentTypeJSONPatch = "application/json-patch+json"
)

// Endpoint holds the base URLs every remote call is built from
type Endpoint struct {
	CollectionURL string // organization level, used for identities
	ProjectURL    string // project level, used for everything else
}

// DeriveEndpoint selects the legacy-domain or short-org-slug URL scheme for an organization.
// A non-empty override replaces the host part (tests, proxies).
func DeriveEndpoint(organization, project, override string) Endpoint {
	escapedProject := url.PathEscape(project)
	if override != "" {
		base := strings.TrimRight(override, "/")
		return Endpoint{CollectionURL: base, ProjectURL: base + "/" + escapedProject}
	}

	org := strings.TrimSpace(organization)
	org = strings.TrimPrefix(org, "https://")
	org = strings.TrimPrefix(org, "http://")
	org = strings.TrimRight(org, "/")

	var collection string
	if strings.Contains(strings.ToLower(org), legacyDomainSuffix) {
		// Old format: organization is the full domain like "contoso.visualstudio.com"
		collection = "https://" + org
	} else {
		// New format: organization is just the org name
		collection = "https://dev.azure.com/" + url.PathEscape(org)
	}
	return Endpoint{CollectionURL: collection, ProjectURL: collection + "/" + escapedProject}
}

// Client represents a work tracking API client bound to one project.
// Its credentials are fixed for its lifetime.
type Client struct {
	creds      config.Credentials
	endpoint   Endpoint
	apiVersion string
	authHeader string
	httpClient *http.Client
}

// NewClient creates a new client from the application configuration
func NewClient(cfg *config.Config) *Client {
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = config.DefaultAPIVersion
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}
	creds := cfg.Credentials()
	return &Client{
		creds:      creds,
		endpoint:   DeriveEndpoint(creds.Organization, creds.Project, cfg.BaseURL),
		apiVersion: apiVersion,
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+creds.Token)),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Project returns the project name the client is bound to
func (c *Client) Project() string {
	return c.creds.Project
}

// Endpoint returns the derived base URLs
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// WorkItemURL returns the API URL identifying a work item, used for relations
func (c *Client) WorkItemURL(id int) string {
	return fmt.Sprintf("%s/_apis/wit/workItems/%d", c.endpoint.ProjectURL, id)
}

func (c *Client) projectURL(path string, params url.Values) string {
	return c.buildURL(c.endpoint.ProjectURL, path, params)
}

func (c *Client) collectionURL(path string, params url.Values) string {
	return c.buildURL(c.endpoint.CollectionURL, path, params)
}

func (c *Client) buildURL(base, path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api-version", c.apiVersion)
	return base + path + "?" + params.Encode()
}

// do sends a request and decodes a JSON response into out when out is non-nil
func (c *Client) do(ctx context.Context, method, rawURL, contentType string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", contentTypeJSON)
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteCallError{Method: method, URL: rawURL, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteCallError{Method: method, URL: rawURL, StatusCode: resp.StatusCode, Message: "failed to read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(method, rawURL, resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", rawURL, err)
	}
	return nil
}
