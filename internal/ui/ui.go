package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/backup"
	"github.com/hung-cybo/update-contributors-after-migration-ghec/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BackupListView ViewState = iota
	ReleaseListView
	ConfirmView
	RestoreView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	backups      *backup.Manager
	engine       *tasks.ReleaseEngine
	width        int
	height       int
	repoList     list.Model
	repos        []backup.RepoBackups
	fromIndex    bool
	releaseList  list.Model
	record       *backup.Record
	recordPath   string
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.RestoreResult
	err          error
	help         help.Model
	keys         keyMap
}

type backupsLoadedMsg struct {
	repos     []backup.RepoBackups
	fromIndex bool
	err       error
}

type recordLoadedMsg struct {
	record *backup.Record
	path   string
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

type restoreCompleteMsg struct {
	result *tasks.RestoreResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, backups *backup.Manager, engine *tasks.ReleaseEngine) *Model {
	return &Model{
		ctx:     ctx,
		view:    BackupListView,
		backups: backups,
		engine:  engine,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init initializes the TUI by enumerating available backups.
func (m *Model) Init() tea.Cmd {
	return m.loadBackups()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.repoList.Width() == 0 {
			m.repoList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.releaseList.Width() == 0 {
			m.releaseList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case BackupListView:
			return m.handleBackupListKeys(msg)
		case ReleaseListView:
			return m.handleReleaseListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case backupsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.repos = msg.repos
		m.fromIndex = msg.fromIndex
		items := make([]list.Item, len(msg.repos))
		for i, repo := range msg.repos {
			items[i] = repoItem{repo: repo}
		}
		m.repoList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.repoList.Title = "Backed Up Repositories"
		m.repoList.SetSize(m.width-4, m.height-8)
		return m, nil

	case recordLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = BackupListView
			return m, nil
		}
		m.record = msg.record
		m.recordPath = msg.path
		items := make([]list.Item, len(msg.record.Releases))
		for i, release := range msg.record.Releases {
			items[i] = releaseItem{release: release}
		}
		m.releaseList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.releaseList.Title = fmt.Sprintf("Releases in backup of '%s'", msg.record.Repository)
		m.releaseList.SetSize(m.width-4, m.height-8)
		m.view = ReleaseListView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case restoreCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case BackupListView:
		return m.renderBackupList()
	case ReleaseListView:
		return m.renderReleaseList()
	case ConfirmView:
		return m.renderConfirm()
	case RestoreView:
		return m.renderRestore()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleBackupListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.repoList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(repoItem); ok {
				return m, m.loadRecord(item.repo)
			}
		}
	}

	var cmd tea.Cmd
	m.repoList, cmd = m.repoList.Update(msg)
	return m, cmd
}

func (m *Model) handleReleaseListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = BackupListView
		return m, nil
	case "enter":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.releaseList, cmd = m.releaseList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = ReleaseListView
		return m, nil
	case "y":
		m.view = RestoreView
		return m, m.startRestore()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = BackupListView
		m.record = nil
		m.result = nil
		m.err = nil
		return m, m.loadBackups()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case BackupListView:
		m.repoList, cmd = m.repoList.Update(msg)
	case ReleaseListView:
		m.releaseList, cmd = m.releaseList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadBackups() tea.Cmd {
	return func() tea.Msg {
		repos, fromIndex, err := m.backups.Enumerate()
		return backupsLoadedMsg{repos: repos, fromIndex: fromIndex, err: err}
	}
}

func (m *Model) loadRecord(repo backup.RepoBackups) tea.Cmd {
	return func() tea.Msg {
		path, err := m.backups.LatestFor(repo.Owner, repo.Repo)
		if err != nil {
			return recordLoadedMsg{err: err}
		}
		record, err := m.backups.Load(path)
		return recordLoadedMsg{record: record, path: path, err: err}
	}
}

func (m *Model) startRestore() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.Restore(m.ctx, m.record, m.progressChan)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return restoreCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return restoreCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderBackupList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	source := "scanned from disk"
	if m.fromIndex {
		source = "from backup index"
	}
	note := styles.help.Render(fmt.Sprintf("listing %s", source))
	return fmt.Sprintf("%s\n%s\n\n%s", m.repoList.View(), note, helpView)
}

func (m *Model) renderReleaseList() string {
	restoreKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "restore"),
	)
	helpKeys := []key.Binding{restoreKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.releaseList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Restore release bodies for '%s'?", m.record.Repository))
	info := fmt.Sprintf(
		"\nBackup: %s\nTaken: %s\nReleases: %d\n\nEvery release body will be overwritten with its backed up content.\n",
		m.recordPath, m.record.BackupTimestamp, m.record.TotalReleases,
	)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderRestore() string {
	title := styles.title.Render("Restoring Releases")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchReleases:
		phase = "Fetching live releases..."
	case tasks.Restore:
		phase = fmt.Sprintf("Restoring (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Restore failed: %v\n\nPress r to start over, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to start over, q to quit")
	}

	title := styles.ok.Render("✓ Restore Complete!")
	info := fmt.Sprintf(
		"\nRepository: %s/%s\nRestored: %d\nSkipped (tag gone): %d\nFailed: %d",
		m.result.Owner, m.result.Repo,
		m.result.RestoredCount, m.result.SkippedCount, m.result.FailedCount,
	)

	var failed string
	if m.result.FailedCount > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed to restore %d releases:", m.result.FailedCount)))
		for _, release := range m.result.Releases {
			if release.Err != nil {
				failed += fmt.Sprintf("\n  • %s: %v", release.TagName, release.Err)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
