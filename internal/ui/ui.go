package ui

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/snap2style/s2s/internal/images"
	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/workflow"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FilePickView ViewState = iota
	StylePickView
	ConfirmView
	SubmitView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	controller   *workflow.Controller
	dir          string
	width        int
	height       int
	fileList     list.Model
	styleList    list.Model
	chosenFile   string
	chosenStyle  string
	progressChan chan workflow.ProgressUpdate
	progress     workflow.ProgressUpdate
	result       *models.StyleResult
	err          error
	help         help.Model
	keys         keyMap
}

type imagesListedMsg struct {
	items []list.Item
	err   error
}

type imageSelectedMsg struct {
	path string
	err  error
}

type progressUpdateMsg workflow.ProgressUpdate

type submitCompleteMsg struct {
	result *models.StyleResult
	err    error
}

// NewModel creates a new TUI model browsing images under dir.
func NewModel(ctx context.Context, controller *workflow.Controller, dir string) *Model {
	return &Model{
		ctx:        ctx,
		view:       FilePickView,
		controller: controller,
		dir:        dir,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init initializes the TUI by listing images in the working directory.
func (m *Model) Init() tea.Cmd {
	return m.listImages()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.fileList.Width() == 0 {
			m.fileList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.styleList.Width() == 0 {
			m.styleList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FilePickView:
			return m.handleFilePickKeys(msg)
		case StylePickView:
			return m.handleStylePickKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case imagesListedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.fileList = list.New(msg.items, list.NewDefaultDelegate(), 0, 0)
		m.fileList.Title = "Pick an image"
		m.fileList.SetSize(m.width-4, m.height-8)
		return m, nil

	case imageSelectedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = FilePickView
			return m, nil
		}
		m.err = nil
		m.chosenFile = msg.path

		items := make([]list.Item, len(stylePresets))
		for i, preset := range stylePresets {
			items[i] = preset
		}
		m.styleList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.styleList.Title = "Pick a style"
		m.styleList.SetSize(m.width-4, m.height-8)
		m.view = StylePickView
		return m, nil

	case progressUpdateMsg:
		m.progress = workflow.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case submitCompleteMsg:
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
	if m.err != nil && m.view != ResultView && m.view != FilePickView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case FilePickView:
		return m.renderFilePick()
	case StylePickView:
		return m.renderStylePick()
	case ConfirmView:
		return m.renderConfirm()
	case SubmitView:
		return m.renderSubmit()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleFilePickKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.fileList.SelectedItem()
		if selected != nil {
			if f, ok := selected.(fileItem); ok {
				return m, m.selectImage(f.path)
			}
		}
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

func (m *Model) handleStylePickKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = FilePickView
		return m, nil
	case "enter":
		selected := m.styleList.SelectedItem()
		if selected != nil {
			if s, ok := selected.(styleItem); ok {
				m.chosenStyle = s.name
				m.view = ConfirmView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.styleList, cmd = m.styleList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = StylePickView
		return m, nil
	case "y":
		m.view = SubmitView
		return m, m.startSubmit()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.controller.Reset()
		m.view = FilePickView
		m.chosenFile = ""
		m.chosenStyle = ""
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case FilePickView:
		m.fileList, cmd = m.fileList.Update(msg)
	case StylePickView:
		m.styleList, cmd = m.styleList.Update(msg)
	}
	return m, cmd
}

func (m *Model) listImages() tea.Cmd {
	return func() tea.Msg {
		paths, err := images.ListImages(m.dir)
		if err != nil {
			return imagesListedMsg{err: err}
		}

		items := make([]list.Item, 0, len(paths))
		for _, path := range paths {
			var size int64
			if info, err := os.Stat(path); err == nil {
				size = info.Size()
			}
			items = append(items, fileItem{path: path, size: size})
		}
		return imagesListedMsg{items: items}
	}
}

func (m *Model) selectImage(path string) tea.Cmd {
	return func() tea.Msg {
		err := m.controller.SelectFile(path)
		return imageSelectedMsg{path: path, err: err}
	}
}

func (m *Model) startSubmit() tea.Cmd {
	m.progressChan = make(chan workflow.ProgressUpdate, 50)
	prog := m.progressChan

	go func() {
		result, err := m.controller.Submit(m.ctx, prog, m.chosenStyle, "")
		m.result = result
		m.err = err
		close(prog)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return submitCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return submitCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderFilePick() string {
	var errLine string
	if m.err != nil {
		errLine = "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s", m.fileList.View(), errLine, helpView)
}

func (m *Model) renderStylePick() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.styleList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Style '%s' as %s?", m.chosenFile, m.chosenStyle))

	info := ""
	if pending := m.controller.Pending(); pending != nil {
		info = fmt.Sprintf("\nFile: %s\nType: %s\nSize: %.1f KiB\n",
			pending.Filename, pending.ContentType, float64(pending.Size)/1024)
		if pending.Width > 0 {
			info += fmt.Sprintf("Dimensions: %dx%d\n", pending.Width, pending.Height)
		}
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSubmit() string {
	title := styles.title.Render("Styling Image")

	var phase string
	switch m.progress.Phase {
	case workflow.Upload:
		phase = "Uploading to the styling service..."
	case workflow.Persist:
		phase = "Saving result locally..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Styling failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Styling Complete!")
	info := fmt.Sprintf("\nStyle: %s\nImage: %s\nDownload: %s", m.result.Style, m.result.DisplayURL, m.result.DownloadURL)

	var note string
	if m.result.Note != "" {
		note = fmt.Sprintf("\n\n%s", styles.warn.Render(m.result.Note))
	}

	helpKeys := []key.Binding{m.keys.again, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, note, helpView)
}
