package linkedin

import (
	"regexp"

	"github.com/tidwall/gjson"
)

// postRecord is the typed view of one saved-post card. Every field is
// optional upstream and stays empty when its path is missing.
type postRecord struct {
	URN              string
	AuthorName       string
	AuthorHeadline   string
	AuthorProfileURL string
	AuthorPhoto      string
	Text             string
	Title            string
	URL              string
	Image            string
	RelativeTime     string
}

// extractor pulls records out of one response shape. An empty result means
// the shape did not match and the next extractor is tried.
type extractor struct {
	name string
	fn   func(doc gjson.Result) []postRecord
}

// extractors run in order; the first non-empty result wins and is never
// merged with another extractor's output.
var extractors = []extractor{
	{name: "included", fn: extractIncluded},
	{name: "legacy", fn: extractLegacy},
}

// extract returns the records of the first matching extractor and its name.
func extract(doc gjson.Result) ([]postRecord, string) {
	for _, e := range extractors {
		if recs := e.fn(doc); len(recs) > 0 {
			return recs, e.name
		}
	}
	return nil, ""
}

// extractIncluded reads card-like records (those carrying a "template" field)
// from the flat "included" array of the normalized response.
func extractIncluded(doc gjson.Result) []postRecord {
	var out []postRecord
	for _, item := range doc.Get("included").Array() {
		if !item.IsObject() || !item.Get("template").Exists() {
			continue
		}
		out = append(out, parseEntity(item))
	}
	return out
}

var legacyElementPaths = []string{
	"data.searchDashClustersByAll.elements",
	"data.data.searchDashClustersByAll.elements",
	"data.elements",
	"elements",
}

// extractLegacy walks elements -> items -> entityResult.
func extractLegacy(doc gjson.Result) []postRecord {
	var out []postRecord
	for _, path := range legacyElementPaths {
		for _, el := range doc.Get(path).Array() {
			for _, it := range el.Get("items").Array() {
				entity := it.Get("item.entityResult")
				if !entity.Exists() {
					entity = it.Get("entityResult")
				}
				if !entity.IsObject() {
					continue
				}
				out = append(out, parseEntity(entity))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return out
}

// hasContainer reports whether the response has any structure either
// extractor recognizes, even if it holds no records.
func hasContainer(doc gjson.Result) bool {
	if doc.Get("included").IsArray() {
		return true
	}
	for _, path := range legacyElementPaths {
		if doc.Get(path).IsArray() {
			return true
		}
	}
	return false
}

var paginationTokenPaths = []string{
	"data.data.searchDashClustersByAll.metadata.paginationToken",
	"data.searchDashClustersByAll.metadata.paginationToken",
	"data.metadata.paginationToken",
	"metadata.paginationToken",
}

// paginationToken returns the token for the next page, or "" when there is none.
func paginationToken(doc gjson.Result) string {
	for _, path := range paginationTokenPaths {
		if tok := doc.Get(path).String(); tok != "" {
			return tok
		}
	}
	for _, item := range doc.Get("included").Array() {
		if tok := item.Get("paginationToken").String(); tok != "" {
			return tok
		}
	}
	return ""
}

var postURNPattern = regexp.MustCompile(`urn:li:(?:activity|ugcPost|share):\d+`)

func parseEntity(e gjson.Result) postRecord {
	rec := postRecord{
		AuthorName:       e.Get("title.text").String(),
		AuthorHeadline:   e.Get("primarySubtitle.text").String(),
		AuthorProfileURL: e.Get("actorNavigationUrl").String(),
		Text:             e.Get("summary.text").String(),
		Title:            e.Get("entityEmbeddedObject.title.text").String(),
		URL:              e.Get("navigationUrl").String(),
		RelativeTime:     e.Get("secondarySubtitle.text").String(),
	}

	for _, field := range []string{"entityUrn", "trackingUrn", "navigationUrl"} {
		if urn := postURNPattern.FindString(e.Get(field).String()); urn != "" {
			rec.URN = urn
			break
		}
	}

	pic := e.Get("image.attributes.0.detailData")
	rec.AuthorPhoto = firstNonEmpty(
		vectorImageURL(pic.Get("nonEntityProfilePicture.vectorImage")),
		vectorImageURL(pic.Get("profilePicture.profilePicture.displayImageReference.vectorImage")),
	)

	embedded := e.Get("entityEmbeddedObject.image.attributes.0")
	rec.Image = firstNonEmpty(
		vectorImageURL(embedded.Get("detailData.vectorImage")),
		embedded.Get("detailData.imageUrl.url").String(),
	)
	return rec
}

// vectorImageURL joins rootUrl with the widest artifact's path segment.
func vectorImageURL(v gjson.Result) string {
	root := v.Get("rootUrl").String()
	var best gjson.Result
	var bestWidth int64 = -1
	for _, a := range v.Get("artifacts").Array() {
		if w := a.Get("width").Int(); w > bestWidth {
			best, bestWidth = a, w
		}
	}
	seg := best.Get("fileIdentifyingUrlPathSegment").String()
	if seg == "" {
		return ""
	}
	return root + seg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
