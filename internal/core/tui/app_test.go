package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	tea "github.com/charmbracelet/bubbletea"
)

func sampleItems() []bookmark.Bookmark {
	day := func(d int) *time.Time {
		t := time.Date(2025, 2, d, 12, 0, 0, 0, time.UTC)
		return &t
	}
	return []bookmark.Bookmark{
		{ID: "a", Text: "oldest", Author: bookmark.Author{Name: "Ada"}, CreatedAt: day(1)},
		{ID: "c", Text: "newest", Author: bookmark.Author{Name: "Cy"}, CreatedAt: day(20)},
		{ID: "b", Text: "middle", Author: bookmark.Author{Name: "Bob"}, CreatedAt: day(10)},
	}
}

func firstID(t *testing.T, m model) string {
	t.Helper()
	items := m.list.Items()
	if len(items) == 0 {
		t.Fatal("list is empty")
	}
	return items[0].(bookmarkItem).bookmark.ID
}

func press(m model, r rune) (model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return next.(model), cmd
}

func TestInitialModel_NewestFirst(t *testing.T) {
	m := initialModel(sampleItems(), Options{Platform: platform.Twitter})

	if m.order != bookmark.NewestFirst {
		t.Errorf("expected default order newest, got %q", m.order)
	}
	if got := firstID(t, m); got != "c" {
		t.Errorf("expected newest item first, got %q", got)
	}
	if !strings.Contains(m.status, "Fetched 3") {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestUpdate_SToggles(t *testing.T) {
	m := initialModel(sampleItems(), Options{Platform: platform.Twitter})

	m, _ = press(m, 's')
	if m.order != bookmark.OldestFirst || firstID(t, m) != "a" {
		t.Errorf("after s: order=%q first=%q", m.order, firstID(t, m))
	}

	m, _ = press(m, 's')
	if m.order != bookmark.NewestFirst || firstID(t, m) != "c" {
		t.Errorf("after second s: order=%q first=%q", m.order, firstID(t, m))
	}
}

func TestUpdate_EExports(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 2, 21, 8, 0, 0, 0, time.UTC)
	m := initialModel(sampleItems(), Options{
		Platform:  platform.LinkedIn,
		ExportDir: dir,
		Now:       func() time.Time { return now },
	})

	m, cmd := press(m, 'e')
	if cmd == nil {
		t.Fatal("expected an export command when pressing e")
	}
	next, _ := m.Update(cmd())
	m = next.(model)

	want := filepath.Join(dir, "linkedin_bookmarks_2025-02-21.json")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	if m.status != "Exported to "+want {
		t.Errorf("status = %q", m.status)
	}
}

func TestUpdate_QQuits(t *testing.T) {
	m := initialModel(nil, Options{Platform: platform.Twitter})
	_, cmd := press(m, 'q')
	if cmd == nil {
		t.Fatal("expected quit command when pressing q")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg, got %T", cmd())
	}
}

func TestView_ShowsStatusAndHelp(t *testing.T) {
	m := initialModel(nil, Options{Platform: platform.LinkedIn})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := next.(model).View()
	if !strings.Contains(view, "No LinkedIn bookmarks found.") {
		t.Error("view missing status line")
	}
	if !strings.Contains(view, "e export JSON") {
		t.Error("view missing help line")
	}
}
