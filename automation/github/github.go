// Package github provides the GitHub automation capability: create, list,
// and delete repositories through the GitHub REST v3 API.
//
// Availability is gated by a personal access token; without one the probe
// fails and only this capability is disabled.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	quackquery "github.com/QuackQuery/QuackQuery"
)

var baseURL = "https://api.github.com"

// Capability implements quackquery.Capability for GitHub repository
// operations.
type Capability struct {
	token  string
	client *http.Client
}

// Option configures a Capability.
type Option func(*Capability)

// WithHTTPClient replaces the HTTP client (useful for tests).
func WithHTTPClient(c *http.Client) Option {
	return func(g *Capability) { g.client = c }
}

// New creates a GitHub capability. An empty token fails the probe so the
// registry marks this capability unavailable.
func New(token string, opts ...Option) (*Capability, error) {
	if token == "" {
		return nil, fmt.Errorf("no GitHub token configured (set GITHUB_TOKEN)")
	}
	g := &Capability{
		token:  token,
		client: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Name returns "github".
func (g *Capability) Name() string { return "github" }

// Parse recognizes repository commands.
//
// Grammar:
//
//	create repo|repository <name>
//	delete repo|repository <name>
//	list repos|repositories | my repos
func (g *Capability) Parse(text string) (quackquery.Intent, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	trimmed := strings.TrimSpace(text)

	switch {
	case lower == "list repos" || lower == "list repositories" || lower == "my repos" || lower == "my repositories":
		return quackquery.Intent{Operation: "list_repos"}, true

	case hasRepoPrefix(lower, "create "):
		name := repoName(trimmed)
		if name == "" {
			return quackquery.Intent{}, false
		}
		return quackquery.Intent{Operation: "create_repo", Params: map[string]string{"name": name}}, true

	case hasRepoPrefix(lower, "delete "):
		name := repoName(trimmed)
		if name == "" {
			return quackquery.Intent{}, false
		}
		return quackquery.Intent{Operation: "delete_repo", Params: map[string]string{"name": name}}, true
	}

	return quackquery.Intent{}, false
}

// hasRepoPrefix reports whether lower starts with verb followed by a repo noun.
func hasRepoPrefix(lower, verb string) bool {
	return strings.HasPrefix(lower, verb+"repo ") ||
		strings.HasPrefix(lower, verb+"repository ") ||
		strings.HasPrefix(lower, verb+"a repo ") ||
		strings.HasPrefix(lower, verb+"a repository ")
}

// repoName extracts the repository name after the repo noun, preserving case.
func repoName(text string) string {
	lower := strings.ToLower(text)
	for _, marker := range []string{"repository ", "repo "} {
		if idx := strings.Index(lower, marker); idx >= 0 {
			name := strings.TrimSpace(text[idx+len(marker):])
			// Repo names are a single token.
			if name == "" || strings.ContainsAny(name, " \t") {
				return ""
			}
			return name
		}
	}
	return ""
}

// Execute performs the repository operation.
func (g *Capability) Execute(ctx context.Context, intent quackquery.Intent) quackquery.ExecResult {
	switch intent.Operation {
	case "create_repo":
		return g.createRepo(ctx, intent.Param("name"))
	case "list_repos":
		return g.listRepos(ctx)
	case "delete_repo":
		return g.deleteRepo(ctx, intent.Param("name"))
	default:
		return quackquery.ExecResult{Error: "unknown github operation: " + intent.Operation}
	}
}

func (g *Capability) createRepo(ctx context.Context, name string) quackquery.ExecResult {
	payload, _ := json.Marshal(map[string]any{
		"name":      name,
		"private":   false,
		"auto_init": true,
	})

	var created struct {
		FullName string `json:"full_name"`
		HTMLURL  string `json:"html_url"`
	}
	if err := g.do(ctx, http.MethodPost, "/user/repos", payload, &created); err != nil {
		return quackquery.ExecResult{Error: "create repo: " + err.Error()}
	}
	return quackquery.ExecResult{Content: fmt.Sprintf("Created repository %s (%s)", created.FullName, created.HTMLURL)}
}

func (g *Capability) listRepos(ctx context.Context) quackquery.ExecResult {
	var repos []struct {
		FullName string `json:"full_name"`
		Private  bool   `json:"private"`
	}
	if err := g.do(ctx, http.MethodGet, "/user/repos?per_page=100&sort=updated", nil, &repos); err != nil {
		return quackquery.ExecResult{Error: "list repos: " + err.Error()}
	}
	if len(repos) == 0 {
		return quackquery.ExecResult{Content: "No repositories found."}
	}

	var sb strings.Builder
	for _, r := range repos {
		visibility := "public"
		if r.Private {
			visibility = "private"
		}
		fmt.Fprintf(&sb, "%s (%s)\n", r.FullName, visibility)
	}
	return quackquery.ExecResult{Content: strings.TrimSpace(sb.String())}
}

func (g *Capability) deleteRepo(ctx context.Context, name string) quackquery.ExecResult {
	login, err := g.login(ctx)
	if err != nil {
		return quackquery.ExecResult{Error: "delete repo: " + err.Error()}
	}
	if err := g.do(ctx, http.MethodDelete, fmt.Sprintf("/repos/%s/%s", login, name), nil, nil); err != nil {
		return quackquery.ExecResult{Error: "delete repo: " + err.Error()}
	}
	return quackquery.ExecResult{Content: fmt.Sprintf("Deleted repository %s/%s", login, name)}
}

// login returns the authenticated user's login name.
func (g *Capability) login(ctx context.Context) (string, error) {
	var user struct {
		Login string `json:"login"`
	}
	if err := g.do(ctx, http.MethodGet, "/user", nil, &user); err != nil {
		return "", err
	}
	if user.Login == "" {
		return "", fmt.Errorf("could not determine authenticated user")
	}
	return user.Login, nil
}

// do performs an authenticated API request and decodes the JSON response
// into out (when out is non-nil).
func (g *Capability) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// apiError extracts the "message" field from a GitHub error body.
func apiError(status int, body []byte) error {
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Message != "" {
		return fmt.Errorf("HTTP %d: %s", status, parsed.Message)
	}
	return fmt.Errorf("HTTP %d", status)
}

var _ quackquery.Capability = (*Capability)(nil)
