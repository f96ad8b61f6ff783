package catalog

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExcerptStripsMarkup(t *testing.T) {
	t.Parallel()

	got, err := Excerpt("<h1>Errata</h1>\n<p>Fixed   <em>two</em> typos.</p><style>p{}</style>", 0)
	if err != nil {
		t.Fatalf("Excerpt returned error: %v", err)
	}
	if got != "Errata Fixed two typos." {
		t.Fatalf("unexpected excerpt %q", got)
	}
}

func TestExcerptCutsAtWordBoundary(t *testing.T) {
	t.Parallel()

	body := "<p>" + strings.Repeat("spellbook, ", 30) + "</p>"
	got, err := Excerpt(body, 40)
	if err != nil {
		t.Fatalf("Excerpt returned error: %v", err)
	}

	if !strings.HasSuffix(got, "spellbook…") {
		t.Fatalf("expected excerpt to end on a whole word, got %q", got)
	}
	if utf8.RuneCountInString(got) > 41 {
		t.Fatalf("expected at most 41 runes, got %d", utf8.RuneCountInString(got))
	}
}
