package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ConfluenceSearchTool queries a Confluence-style document search API over
// HTTP with basic auth. It is a thin I/O wrapper registered as an agent
// capability; result ranking and content retrieval stay on the remote side.
type ConfluenceSearchTool struct {
	baseURL    string
	email      string
	apiToken   string
	httpClient *http.Client
}

// NewConfluenceSearchTool creates the tool for a site base URL (e.g.
// "https://example.atlassian.net") using email + API token credentials.
func NewConfluenceSearchTool(baseURL, email, apiToken string) *ConfluenceSearchTool {
	return &ConfluenceSearchTool{
		baseURL:    baseURL,
		email:      email,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name implements Tool.
func (t *ConfluenceSearchTool) Name() string { return "confluence_search" }

// Description implements Tool.
func (t *ConfluenceSearchTool) Description() string {
	return "Search the team documentation space and return matching page titles with links"
}

// Parameters implements Tool.
func (t *ConfluenceSearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Free text search query"},
			"limit": map[string]any{"type": "integer", "description": "Maximum number of results (default 10)"},
		},
		"required": []string{"query"},
	}
}

type confluenceSearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type confluenceSearchResponse struct {
	Results []confluenceSearchResult `json:"results"`
}

// Call implements Tool.
func (t *ConfluenceSearchTool) Call(ctx context.Context, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, NewToolError(t.Name(), "query must not be empty", CodeValidationError)
	}
	limit := 10
	if v, ok := args["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}

	cql := fmt.Sprintf("text~%q", query)
	endpoint := fmt.Sprintf("%s/wiki/rest/api/search?cql=%s&limit=%d", t.baseURL, url.QueryEscape(cql), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(t.email, t.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var decoded confluenceSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return decoded.Results, nil
}
