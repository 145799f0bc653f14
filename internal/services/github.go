// GitHub REST API implementation of [Service]
//
// Endpoint shapes follow https://docs.github.com/en/rest/releases/releases
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/shared"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

const (
	defaultGitHubBaseURL = "https://api.github.com"
	acceptHeader         = "application/vnd.github+json"
	maxPerPage           = 100
)

// APIError carries a non-2xx response from the API. The message is extracted
// from the JSON error payload when one is present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("github API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github API error: status %d", e.StatusCode)
}

// GitHubService implements the Service interface against the GitHub REST API.
// Uses an [oauth2] bearer client built from a personal access token.
type GitHubService struct {
	baseURL    string
	httpClient *http.Client
}

// NewGitHubService creates a GitHub service authenticated with the given
// token. baseURL defaults to api.github.com and exists for GHES installs and
// tests.
func NewGitHubService(token, baseURL string) *GitHubService {
	if baseURL == "" {
		baseURL = defaultGitHubBaseURL
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := oauth2.NewClient(context.Background(), src)

	return &GitHubService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

// Name returns the provider name.
func (g *GitHubService) Name() string {
	return "GitHub"
}

// doRequest performs an authenticated HTTP request against the API. A non-nil
// body is JSON-encoded; a non-nil result has the response decoded into it.
func (g *GitHubService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	apiURL := g.baseURL + endpoint

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", acceptHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    gjson.GetBytes(data, "message").String(),
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// VerifyRepository checks repository existence and accessibility.
//
// Calls GET /repos/{owner}/{repo}; a 404 wraps [shared.ErrRepoNotFound] so
// callers can distinguish missing repositories from other access errors.
func (g *GitHubService) VerifyRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	var repository Repository
	endpoint := fmt.Sprintf("/repos/%s/%s", owner, repo)

	if err := g.doRequest(ctx, http.MethodGet, endpoint, nil, &repository); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s/%s", shared.ErrRepoNotFound, owner, repo)
		}
		return nil, err
	}

	return &repository, nil
}

// ListReleases retrieves one page of releases.
//
// Calls GET /repos/{owner}/{repo}/releases?per_page=N with N clamped to
// 1..100. Exactly one request is issued; pagination past the first page is
// deliberately not performed.
func (g *GitHubService) ListReleases(ctx context.Context, owner, repo string, perPage int) ([]Release, error) {
	if perPage <= 0 {
		perPage = maxPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	var releases []Release
	endpoint := fmt.Sprintf("/repos/%s/%s/releases?per_page=%d", owner, repo, perPage)

	if err := g.doRequest(ctx, http.MethodGet, endpoint, nil, &releases); err != nil {
		return nil, err
	}

	return releases, nil
}

// UpdateReleaseBody overwrites one release's body text.
//
// Calls PATCH /repos/{owner}/{repo}/releases/{id} with {"body": ...}.
func (g *GitHubService) UpdateReleaseBody(ctx context.Context, owner, repo string, releaseID int64, body string) (*Release, error) {
	var release Release
	endpoint := fmt.Sprintf("/repos/%s/%s/releases/%d", owner, repo, releaseID)
	payload := map[string]string{"body": body}

	if err := g.doRequest(ctx, http.MethodPatch, endpoint, payload, &release); err != nil {
		return nil, err
	}

	return &release, nil
}
