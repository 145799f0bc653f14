package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/backup"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/services"
)

var (
	_ list.Item = repoItem{}
	_ list.Item = releaseItem{}
)

// repoItem wraps [backup.RepoBackups] to implement [list.Item].
type repoItem struct {
	repo backup.RepoBackups
}

func (i repoItem) FilterValue() string { return i.repo.FullName() }
func (i repoItem) Title() string       { return i.repo.FullName() }
func (i repoItem) Description() string {
	desc := fmt.Sprintf("%d backups", len(i.repo.Files))
	if latest, ok := i.repo.Latest(); ok {
		desc = fmt.Sprintf("%s • latest: %s", desc, latest.File)
	}
	return desc
}

// releaseItem wraps [services.Release] to implement [list.Item].
type releaseItem struct {
	release services.Release
}

func (i releaseItem) FilterValue() string { return i.release.TagName }
func (i releaseItem) Title() string       { return i.release.TagName }
func (i releaseItem) Description() string {
	desc := i.release.Name
	if desc == "" {
		desc = "(unnamed release)"
	}
	if i.release.PublishedAt != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.release.PublishedAt)
	}
	return desc
}
