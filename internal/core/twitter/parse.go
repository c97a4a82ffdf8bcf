package twitter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

var errInvalidJSON = errors.New("invalid JSON in API response")

// Variant is one encoding of a video attachment.
type Variant struct {
	ContentType string
	Bitrate     int64
	URL         string
}

// SelectVideo returns the highest-bitrate video/mp4 variant.
func SelectVideo(variants []Variant) (Variant, bool) {
	var best Variant
	found := false
	for _, v := range variants {
		if v.ContentType != "video/mp4" {
			continue
		}
		if !found || v.Bitrate > best.Bitrate {
			best = v
			found = true
		}
	}
	return best, found
}

// page is one parsed timeline response.
type page struct {
	tweets     []tweetRecord
	nextCursor string
}

// tweetRecord is the typed view of one TimelineTweet entry. Every field is
// optional upstream; missing values stay at their zero value.
type tweetRecord struct {
	ID        string
	Text      string
	CreatedAt string
	Source    string
	Likes     int64
	Retweets  int64
	Replies   int64
	Quotes    int64
	User      userRecord
	Media     []mediaRecord
}

type userRecord struct {
	ScreenName string
	Name       string
	Photo      string
}

type mediaRecord struct {
	Type     string
	ImageURL string
	Variants []Variant
}

// parsePage is the only place that knows the timeline response shape.
func parsePage(data []byte) (page, error) {
	if !gjson.ValidBytes(data) {
		return page{}, errInvalidJSON
	}

	instructions := gjson.GetBytes(data, "data.bookmark_timeline_v2.timeline.instructions")
	if !instructions.IsArray() {
		return page{}, nil
	}

	var addEntries gjson.Result
	for _, instr := range instructions.Array() {
		if instr.Get("type").String() == "TimelineAddEntries" {
			addEntries = instr
			break
		}
	}
	if !addEntries.Exists() {
		return page{}, nil
	}

	var p page
	for _, entry := range addEntries.Get("entries").Array() {
		content := entry.Get("content")
		switch content.Get("entryType").String() {
		case "TimelineTimelineCursor":
			if content.Get("cursorType").String() == "Bottom" {
				p.nextCursor = content.Get("value").String()
			}
			continue
		case "TimelineTimelineItem":
		default:
			continue
		}
		if content.Get("itemContent.itemType").String() != "TimelineTweet" {
			continue
		}
		if rec, ok := parseTweet(content.Get("itemContent.tweet_results.result")); ok {
			p.tweets = append(p.tweets, rec)
		}
	}
	return p, nil
}

func parseTweet(result gjson.Result) (tweetRecord, bool) {
	if result.Get("__typename").String() == "TweetWithVisibilityResults" {
		result = result.Get("tweet")
	}
	legacy := result.Get("legacy")
	user := result.Get("core.user_results.result")
	if !legacy.Exists() || !user.Exists() {
		return tweetRecord{}, false
	}

	rec := tweetRecord{
		ID:        firstString(legacy.Get("id_str"), result.Get("rest_id")),
		Text:      firstString(result.Get("note_tweet.note_tweet_results.result.text"), legacy.Get("full_text")),
		CreatedAt: legacy.Get("created_at").String(),
		Source:    result.Get("source").String(),
		Likes:     legacy.Get("favorite_count").Int(),
		Retweets:  legacy.Get("retweet_count").Int(),
		Replies:   legacy.Get("reply_count").Int(),
		Quotes:    legacy.Get("quote_count").Int(),
		User: userRecord{
			ScreenName: firstString(user.Get("legacy.screen_name"), user.Get("core.screen_name")),
			Name:       firstString(user.Get("legacy.name"), user.Get("core.name")),
			Photo:      firstString(user.Get("legacy.profile_image_url_https"), user.Get("avatar.image_url")),
		},
	}

	for _, m := range legacy.Get("extended_entities.media").Array() {
		mr := mediaRecord{
			Type:     m.Get("type").String(),
			ImageURL: m.Get("media_url_https").String(),
		}
		for _, v := range m.Get("video_info.variants").Array() {
			mr.Variants = append(mr.Variants, Variant{
				ContentType: v.Get("content_type").String(),
				Bitrate:     v.Get("bitrate").Int(),
				URL:         v.Get("url").String(),
			})
		}
		rec.Media = append(rec.Media, mr)
	}
	return rec, true
}

func firstString(results ...gjson.Result) string {
	for _, r := range results {
		if s := r.String(); s != "" {
			return s
		}
	}
	return ""
}

func (r tweetRecord) toBookmark() bookmark.Bookmark {
	b := bookmark.Bookmark{
		ID:       r.ID,
		Platform: platform.Twitter,
		Text:     r.Text,
		Author: bookmark.Author{
			Name:     r.User.Name,
			Username: r.User.ScreenName,
			Photo:    r.User.Photo,
		},
		URL:   fmt.Sprintf("https://x.com/%s/status/%s", r.User.ScreenName, r.ID),
		Media: []bookmark.MediaItem{},
		Stats: &bookmark.Stats{
			Likes:    r.Likes,
			Retweets: r.Retweets,
			Replies:  r.Replies,
			Quotes:   r.Quotes,
		},
		Client: clientLabel(r.Source),
	}
	if r.User.ScreenName != "" {
		b.Author.ProfileURL = "https://x.com/" + r.User.ScreenName
	}
	if t, err := time.Parse(createdAtLayout, r.CreatedAt); err == nil {
		b.CreatedAt = &t
	}

	for _, m := range r.Media {
		switch m.Type {
		case "photo":
			b.Media = append(b.Media, bookmark.MediaItem{Type: bookmark.MediaImage, URL: m.ImageURL})
		case "video", "animated_gif":
			if v, ok := SelectVideo(m.Variants); ok {
				b.Media = append(b.Media, bookmark.MediaItem{Type: bookmark.MediaVideo, URL: v.URL})
			} else {
				b.Media = append(b.Media, bookmark.MediaItem{Type: bookmark.MediaVideo, URL: m.ImageURL, IsVideoThumbnail: true})
			}
		}
	}
	return b
}

// clientLabel turns the tweet "source" anchor (e.g. `<a href="...">Twitter Web App</a>`) into its text.
func clientLabel(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return ""
	}
	if a := doc.Find("a").First(); a.Length() > 0 {
		return strings.TrimSpace(a.Text())
	}
	return strings.TrimSpace(doc.Text())
}
