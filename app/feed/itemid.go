package feed

import (
	"fmt"
	"regexp"
	"time"
)

// maxItemIDLength bounds item ids so they stay usable as storage path segments.
const maxItemIDLength = 200

var unsafeIDChars = regexp.MustCompile(`[^\w\-.]`)

// NormalizeItemID derives a path-safe id from an item's identity value.
// The same identity always yields the same id. A degenerate identity (empty,
// or one that collapses to nothing but separators) falls back to a
// timestamp-based id; two such items within the same second can collide, which
// is accepted as inherited behavior.
func NormalizeItemID(identity string) string {
	id := unsafeIDChars.ReplaceAllString(identity, "_")
	if len(id) > maxItemIDLength {
		id = id[:maxItemIDLength]
	}
	if id == "" || id == "_" {
		return fallbackItemID()
	}
	return id
}

func fallbackItemID() string {
	return fmt.Sprintf("item_%d", time.Now().UTC().Unix())
}

// ItemXML renders one item back to an XML fragment for the raw-source
// artifact, preserving the shape of the original feed entry.
func ItemXML(item Item) []byte {
	xml := fmt.Sprintf(`<item>
    <title><![CDATA[%s]]></title>
    <link>%s</link>
    <guid>%s</guid>
    <pubDate>%s</pubDate>
    <description><![CDATA[%s]]></description>
</item>`, item.Title, item.Link, item.Identity(), item.PublishedAt, item.Description)
	return []byte(xml)
}
