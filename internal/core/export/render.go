package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	authorStyle = lipgloss.NewStyle().Bold(true)
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	urlStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Underline(true)
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			Width(80)
)

// Render writes a terminal view of list, one bordered card per bookmark.
func Render(w io.Writer, list []bookmark.Bookmark) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, metaStyle.Render("No bookmarks found."))
		return err
	}
	for _, b := range list {
		if _, err := fmt.Fprintln(w, cardStyle.Render(card(b))); err != nil {
			return err
		}
	}
	return nil
}

func card(b bookmark.Bookmark) string {
	var sb strings.Builder
	sb.WriteString(authorStyle.Render(b.Author.Name))
	if b.Author.Username != "" {
		sb.WriteString(" " + metaStyle.Render("@"+b.Author.Username))
	}
	if b.Author.Headline != "" {
		sb.WriteString("\n" + metaStyle.Render(b.Author.Headline))
	}
	if b.Title != "" {
		sb.WriteString("\n" + titleStyle.Render(b.Title))
	}
	if b.Text != "" {
		sb.WriteString("\n" + b.Text)
	}
	sb.WriteString("\n" + metaStyle.Render(Meta(b)))
	if b.URL != "" {
		sb.WriteString("\n" + urlStyle.Render(b.URL))
	}
	return sb.String()
}

// Meta is the one-line date, engagement and media summary of a bookmark.
func Meta(b bookmark.Bookmark) string {
	parts := []string{FormatDate(b)}
	if b.Stats != nil {
		parts = append(parts, fmt.Sprintf("♥ %d  ↻ %d  ↩ %d", b.Stats.Likes, b.Stats.Retweets, b.Stats.Replies))
	}
	if n := len(b.Media); n > 0 {
		parts = append(parts, fmt.Sprintf("%d media", n))
	}
	if b.Client != "" {
		parts = append(parts, "via "+b.Client)
	}
	return strings.Join(parts, " · ")
}

// FormatDate renders CreatedAt for display, or "unknown date".
func FormatDate(b bookmark.Bookmark) string {
	if b.CreatedAt == nil {
		return "unknown date"
	}
	return b.CreatedAt.Local().Format("Jan 2, 2006 15:04")
}

// FetchedStatus is the status line after a successful fetch.
func FetchedStatus(count int, name string) string {
	if count == 0 {
		return fmt.Sprintf("No %s bookmarks found.", name)
	}
	return fmt.Sprintf("Fetched %d %s bookmarks.", count, name)
}

// SentStatus is the status line after a backend POST attempt.
func SentStatus(count int, err error) string {
	if err != nil {
		return "Failed to send bookmarks: " + err.Error()
	}
	return fmt.Sprintf("Sent %d bookmarks to backend.", count)
}
