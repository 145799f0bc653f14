// Package tasks orchestrates mention-migration runs over release bodies.
//
// The core abstraction is [MigrationEngine], implemented by [ReleaseEngine]:
// Update rewrites mentions across a whitelist of repositories, Preview
// computes a dry run for one repository, and Restore writes bodies back from
// a backup record. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
//
// The safety protocol is enforced here: a repository is backed up before its
// first mutating call, and a backup failure withdraws the repository from
// the run entirely. Remote writes are spaced out by token-bucket [Pacer]s
// rather than fixed sleeps, so runs respect provider rate limits without
// paying for pauses they do not need.
package tasks
