// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for restoring release bodies from backups:
//  1. [BackupListView] : Browse repositories with backups on disk
//  2. [ReleaseListView] : Inspect the releases captured in the latest backup
//  3. [ConfirmView] : Confirm the restore operation
//  4. [RestoreView] : Monitor real-time progress updates
//  5. [ResultView] : Display restored, skipped, and failed counts
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ReleaseEngine, providing non-blocking status reporting during restores.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
