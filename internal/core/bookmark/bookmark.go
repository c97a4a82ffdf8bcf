package bookmark

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
)

// Media types carried by MediaItem.Type.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Author is the poster of a saved item. Only Name is always present.
type Author struct {
	Name       string `json:"name"`
	Username   string `json:"username,omitempty"`
	ProfileURL string `json:"profileUrl,omitempty"`
	Photo      string `json:"photo,omitempty"`
	Headline   string `json:"headline,omitempty"`
}

// MediaItem is an image or video attached to a post.
type MediaItem struct {
	Type             string `json:"type"`
	URL              string `json:"url"`
	IsVideoThumbnail bool   `json:"isVideoThumbnail,omitempty"`
}

// Stats holds engagement counters when the platform exposes them.
type Stats struct {
	Likes    int64 `json:"likes"`
	Retweets int64 `json:"retweets"`
	Replies  int64 `json:"replies"`
	Quotes   int64 `json:"quotes"`
}

// Bookmark is the normalized record produced by every platform fetcher.
//
// ID is unique within one fetch batch. For Twitter it is the tweet id; for
// LinkedIn it falls back to a synthetic value that is not stable across fetches.
type Bookmark struct {
	ID        string            `json:"id"`
	Platform  platform.Platform `json:"platform"`
	Text      string            `json:"text"`
	Title     string            `json:"title,omitempty"`
	Author    Author            `json:"author"`
	CreatedAt *time.Time        `json:"createdAt"`
	URL       string            `json:"url"`
	Media     []MediaItem       `json:"media"`
	Stats     *Stats            `json:"stats,omitempty"`
	Client    string            `json:"client,omitempty"`
}

// Order selects the sort direction over CreatedAt.
type Order string

const (
	NewestFirst Order = "newest"
	OldestFirst Order = "oldest"
)

// ParseOrder maps "newest"/"oldest" (or "desc"/"asc") to an Order. Empty means newest.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "newest", "desc":
		return NewestFirst, nil
	case "oldest", "asc":
		return OldestFirst, nil
	default:
		return "", fmt.Errorf("invalid sort order %q (want newest or oldest)", s)
	}
}

// Toggle returns the opposite order.
func (o Order) Toggle() Order {
	if o == OldestFirst {
		return NewestFirst
	}
	return OldestFirst
}

// Sort returns a sorted copy. Items without a timestamp sort as the zero time,
// and ties keep their original order.
func Sort(items []Bookmark, order Order) []Bookmark {
	out := make([]Bookmark, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := timeOf(out[i]), timeOf(out[j])
		if order == OldestFirst {
			return a.Before(b)
		}
		return a.After(b)
	})
	return out
}

func timeOf(b Bookmark) time.Time {
	if b.CreatedAt == nil {
		return time.Time{}
	}
	return *b.CreatedAt
}
