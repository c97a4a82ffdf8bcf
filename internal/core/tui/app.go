package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/export"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options configures the browse view.
type Options struct {
	Platform  platform.Platform
	Order     bookmark.Order
	ExportDir string
	// Now stamps export file names. Defaults to time.Now.
	Now func() time.Time
}

type model struct {
	opts   Options
	items  []bookmark.Bookmark
	order  bookmark.Order
	list   list.Model
	status string
	width  int
	height int
}

type bookmarkItem struct {
	bookmark bookmark.Bookmark
}

func (b bookmarkItem) Title() string {
	name := b.bookmark.Author.Name
	if b.bookmark.Author.Username != "" {
		name += " @" + b.bookmark.Author.Username
	}
	return fmt.Sprintf("%s · %s", name, export.FormatDate(b.bookmark))
}

func (b bookmarkItem) Description() string {
	text := b.bookmark.Text
	if text == "" {
		text = b.bookmark.Title
	}
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > 80 {
		text = string(r[:80]) + "..."
	}
	if text == "" {
		return b.bookmark.URL
	}
	return text
}

func (b bookmarkItem) FilterValue() string {
	return b.bookmark.Author.Name + " " + b.bookmark.Text + " " + b.bookmark.Title
}

type exportedMsg struct {
	path string
	err  error
}

func initialModel(items []bookmark.Bookmark, opts Options) model {
	if opts.Order == "" {
		opts.Order = bookmark.NewestFirst
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = opts.Platform.DisplayName() + " bookmarks"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	m := model{
		opts:   opts,
		items:  items,
		order:  opts.Order,
		list:   l,
		status: export.FetchedStatus(len(items), opts.Platform.DisplayName()),
	}
	m.applyOrder()
	return m
}

func (m *model) applyOrder() {
	sorted := bookmark.Sort(m.items, m.order)
	out := make([]list.Item, 0, len(sorted))
	for _, b := range sorted {
		out = append(out, bookmarkItem{bookmark: b})
	}
	m.list.SetItems(out)
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) writeExport() tea.Msg {
	path, err := export.WriteFile(m.opts.ExportDir, m.opts.Platform, m.opts.Now(), bookmark.Sort(m.items, m.order))
	return exportedMsg{path: path, err: err}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.order = m.order.Toggle()
			m.applyOrder()
			m.status = "Sorted " + orderLabel(m.order) + "."
			return m, nil
		case "e":
			m.status = "Exporting..."
			return m, m.writeExport
		}

	case exportedMsg:
		if msg.err != nil {
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Exported to " + msg.path
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func orderLabel(o bookmark.Order) string {
	if o == bookmark.OldestFirst {
		return "oldest first"
	}
	return "newest first"
}

func (m model) View() string {
	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true)

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		MarginTop(1)

	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("↑/↓ navigate • s sort (%s) • e export JSON • q quit", orderLabel(m.order))))
	return b.String()
}

// Run shows items in an interactive list until the user quits.
func Run(items []bookmark.Bookmark, opts Options) error {
	p := tea.NewProgram(initialModel(items, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
