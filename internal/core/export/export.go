package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
)

// FileName returns the download name for a platform's export on the given day.
func FileName(p platform.Platform, now time.Time) string {
	return fmt.Sprintf("%s_bookmarks_%s.json", p, now.Format("2006-01-02"))
}

// Encode renders the raw normalized list as indented JSON. A nil list
// encodes as an empty array.
func Encode(list []bookmark.Bookmark) ([]byte, error) {
	if list == nil {
		list = []bookmark.Bookmark{}
	}
	return json.MarshalIndent(list, "", "  ")
}

// WriteFile writes the export into dir and returns the path it wrote.
func WriteFile(dir string, p platform.Platform, now time.Time, list []bookmark.Bookmark) (string, error) {
	data, err := Encode(list)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s bookmarks: %w", p, err)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(p, now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// Record is the shape the downstream backend ingests.
type Record struct {
	ExternalID       string               `json:"externalId"`
	Content          string               `json:"content"`
	AuthorName       string               `json:"authorName"`
	AuthorUsername   string               `json:"authorUsername"`
	AuthorProfileURL string               `json:"authorProfileUrl"`
	AuthorPhoto      string               `json:"authorPhoto"`
	CreatedAt        *string              `json:"createdAt"`
	URL              string               `json:"url"`
	Media            []bookmark.MediaItem `json:"media"`
	Platform         string               `json:"platform"`
}

// Reshape maps normalized bookmarks onto backend records.
func Reshape(p platform.Platform, list []bookmark.Bookmark) []Record {
	out := make([]Record, 0, len(list))
	for _, b := range list {
		rec := Record{
			ExternalID:       b.ID,
			Content:          b.Text,
			AuthorName:       b.Author.Name,
			AuthorUsername:   b.Author.Username,
			AuthorProfileURL: b.Author.ProfileURL,
			AuthorPhoto:      b.Author.Photo,
			URL:              b.URL,
			Media:            b.Media,
			Platform:         p.ExportName(),
		}
		if rec.Media == nil {
			rec.Media = []bookmark.MediaItem{}
		}
		if b.CreatedAt != nil {
			s := b.CreatedAt.UTC().Format(time.RFC3339)
			rec.CreatedAt = &s
		}
		out = append(out, rec)
	}
	return out
}
