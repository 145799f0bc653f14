// package services defines interface Service for the remote forge API.
package services

import (
	"context"
)

// Service defines the operations the migration needs from the hosted forge:
// verify a repository is reachable, list its releases, and rewrite one
// release's body.
type Service interface {
	// VerifyRepository checks that owner/repo exists and is accessible with
	// the configured credentials. A missing repository wraps
	// shared.ErrRepoNotFound.
	VerifyRepository(ctx context.Context, owner, repo string) (*Repository, error)

	// ListReleases retrieves a single page of releases for a repository,
	// newest first. perPage is clamped to 1..100; repositories with more
	// releases than one page only have their first page processed.
	ListReleases(ctx context.Context, owner, repo string, perPage int) ([]Release, error)

	// UpdateReleaseBody overwrites the free-text body of one release.
	UpdateReleaseBody(ctx context.Context, owner, repo string, releaseID int64, body string) (*Release, error)

	// Name returns the name of the provider (e.g., "GitHub")
	Name() string
}

// Repository represents the subset of repository metadata the tool reads.
type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
	HTMLURL  string `json:"html_url"`
}

// Release represents one release with exactly the fields the backup format
// captures. Timestamps stay RFC 3339 strings as the API sends them (null
// decodes to ""), so a backup round-trips byte-for-byte.
type Release struct {
	ID          int64  `json:"id"`
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	Body        string `json:"body"`
	CreatedAt   string `json:"created_at"`
	PublishedAt string `json:"published_at"`
	HTMLURL     string `json:"html_url"`
}
