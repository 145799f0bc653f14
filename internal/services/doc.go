// Package services defines the [Service] interface over the hosted forge API
// and implements it for GitHub.
//
// # Service Interface
//
// The migration tool touches the remote provider through exactly three
// operations: verify a repository, list its releases (one page), and update
// one release's body. Keeping the surface this small lets the orchestrator,
// the restore tool, and the tests all run against the same interface with a
// hand-rolled mock.
//
// # GitHub Implementation
//
// [GitHubService] speaks the GitHub REST v3 API with a bearer token carried
// by an [oauth2] static-token client. Every request sends
// Accept: application/vnd.github+json; the base URL is configurable for
// GitHub Enterprise Server installs and for httptest servers.
//
// # Error Handling
//
// Non-2xx responses become a typed [*APIError] with the status code and the
// "message" field extracted from the JSON error payload. A 404 on repository
// verification additionally wraps [shared.ErrRepoNotFound], which the update
// orchestrator uses to count missing repositories separately from other
// verification failures.
//
// # DTO Shapes
//
// [Release] carries exactly the field set the backup format preserves (id,
// tag_name, name, body, created_at, published_at, html_url). Timestamps stay
// strings so backups round-trip the API's representation byte-for-byte.
package services
