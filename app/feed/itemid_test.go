package feed

import (
	"strings"
	"testing"
)

func TestNormalizeItemIDDeterminism(t *testing.T) {
	identity := "https://example.com/posts/2023/my-article?id=42"

	first := NormalizeItemID(identity)
	second := NormalizeItemID(identity)

	if first != second {
		t.Errorf("Expected deterministic normalization, got %q and %q", first, second)
	}
	if first == "" {
		t.Error("Expected non-empty id")
	}
}

func TestNormalizeItemIDReplacesUnsafeChars(t *testing.T) {
	id := NormalizeItemID("https://example.com/a b?c=d&e=f")

	if strings.ContainsAny(id, ":/? &=") {
		t.Errorf("Expected path-unsafe characters to be replaced, got: %s", id)
	}
	// Word characters, hyphens and dots survive
	if !strings.Contains(id, "example.com") {
		t.Errorf("Expected dots to be preserved, got: %s", id)
	}
}

func TestNormalizeItemIDLengthCap(t *testing.T) {
	id := NormalizeItemID(strings.Repeat("a", 500))

	if len(id) != 200 {
		t.Errorf("Expected id capped at 200 characters, got: %d", len(id))
	}
}

func TestNormalizeItemIDFallback(t *testing.T) {
	for _, identity := range []string{"", "?", "???"} {
		id := NormalizeItemID(identity)
		if id == "" {
			t.Errorf("Expected non-empty fallback id for %q", identity)
		}
		if identity == "" || identity == "?" {
			if !strings.HasPrefix(id, "item_") {
				t.Errorf("Expected timestamp fallback id for %q, got: %s", identity, id)
			}
		}
	}
}

func TestItemXMLRoundTripsThroughParser(t *testing.T) {
	item := Item{
		Title:       "Hello & Goodbye",
		Link:        "https://example.com/post",
		GUID:        "post-1",
		PublishedAt: "Mon, 03 Jul 2023 10:00:00 GMT",
		Description: "A post about <things>",
	}

	xml := ItemXML(item)

	if !strings.Contains(string(xml), "<guid>post-1</guid>") {
		t.Errorf("Expected guid element in rendered XML, got: %s", xml)
	}
	if !strings.Contains(string(xml), "<![CDATA[Hello & Goodbye]]>") {
		t.Errorf("Expected CDATA-wrapped title, got: %s", xml)
	}
}
