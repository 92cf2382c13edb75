package azdo

// Wire types for the work tracking REST API. Only the fields this client reads are declared.

// WorkItem is a work item as returned by the work items endpoints
type WorkItem struct {
	ID        int                    `json:"id"`
	Rev       int                    `json:"rev,omitempty"`
	Fields    map[string]interface{} `json:"fields"`
	Relations []WorkItemRelation     `json:"relations,omitempty"`
	URL       string                 `json:"url"`
}

// WorkItemRelation is a link from a work item to another resource
type WorkItemRelation struct {
	Rel        string                 `json:"rel"`
	URL        string                 `json:"url"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// StringField returns a field as a string, or "" when absent or not a string
func (w *WorkItem) StringField(name string) string {
	if w == nil || w.Fields == nil {
		return ""
	}
	if s, ok := w.Fields[name].(string); ok {
		return s
	}
	return ""
}

// WorkItemReference is an id/url pair as returned by WIQL
type WorkItemReference struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

type wiqlRequest struct {
	Query string `json:"query"`
}

type wiqlResponse struct {
	QueryType       string              `json:"queryType"`
	QueryResultType string              `json:"queryResultType"`
	WorkItems       []WorkItemReference `json:"workItems"`
}

type workItemsResponse struct {
	Count int        `json:"count"`
	Value []WorkItem `json:"value"`
}

type iterationAttributes struct {
	StartDate  string `json:"startDate"`
	FinishDate string `json:"finishDate"`
	TimeFrame  string `json:"timeFrame"`
}

type iterationValue struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Path       string              `json:"path"`
	Attributes iterationAttributes `json:"attributes"`
	URL        string              `json:"url"`
}

type iterationsResponse struct {
	Count int              `json:"count"`
	Value []iterationValue `json:"value"`
}

// Identity is a resolved user identity
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
}

// AssignValue formats the identity the way System.AssignedTo accepts it
func (i *Identity) AssignValue() string {
	if i.DisplayName == "" {
		return i.UniqueName
	}
	return i.DisplayName + " <" + i.UniqueName + ">"
}

// PatchOperation is one JSON Patch operation used to create or update work items
type PatchOperation struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

// Well-known field reference names
const (
	FieldTitle         = "System.Title"
	FieldDescription   = "System.Description"
	FieldWorkItemType  = "System.WorkItemType"
	FieldState         = "System.State"
	FieldAreaPath      = "System.AreaPath"
	FieldIterationPath = "System.IterationPath"
	FieldAssignedTo    = "System.AssignedTo"
	FieldTags          = "System.Tags"

	RelParent = "System.LinkTypes.Hierarchy-Reverse"

	TypeTask      = "Task"
	TypeUserStory = "User Story"
)

// SetField builds an "add" operation for a field
func SetField(name string, value interface{}) PatchOperation {
	return PatchOperation{Op: "add", Path: "/fields/" + name, Value: value}
}

// AddParent builds an operation linking the new item to its parent
func AddParent(parentURL, comment string) PatchOperation {
	rel := WorkItemRelation{Rel: RelParent, URL: parentURL}
	if comment != "" {
		rel.Attributes = map[string]interface{}{"comment": comment}
	}
	return PatchOperation{Op: "add", Path: "/relations/-", Value: rel}
}
