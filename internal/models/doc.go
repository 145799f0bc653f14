// Package models defines the persistent entities behind the run ledger.
//
// The only entity today is [RunRecord]: one row per completed update or
// restore run, kept as an auditable trail next to the on-disk backup files.
// It implements the [Model] interface (ID generation, timestamps, validation,
// soft delete support) and is stored through the [Repository] interface.
//
// Wire-level DTOs for the GitHub API live in internal/services; backup file
// formats live in internal/backup. Neither is persisted to the database, so
// neither belongs here.
package models
