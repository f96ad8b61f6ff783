package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// NewsItem is a news entry prepared for listing.
type NewsItem struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Published time.Time `json:"published"`
	Body      string    `json:"body"`
	Excerpt   string    `json:"excerpt"`
}

const excerptLength = 200

// Excerpt returns the visible text of an HTML fragment with whitespace
// collapsed, cut at a word boundary near limit runes.
func Excerpt(fragment string, limit int) (string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", eris.Wrap(err, "parsing html fragment")
	}

	var builder strings.Builder
	collectText(&builder, doc)
	text := strings.Join(strings.Fields(builder.String()), " ")

	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, nil
	}

	runes := []rune(text)
	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…", nil
}

func collectText(builder *strings.Builder, node *html.Node) {
	if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
		return
	}
	if node.Type == html.TextNode {
		builder.WriteString(node.Data)
		builder.WriteByte(' ')
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(builder, child)
	}
}

func newsItem(entry NewsEntry) (NewsItem, error) {
	excerpt, err := Excerpt(entry.Body, excerptLength)
	if err != nil {
		return NewsItem{}, eris.Wrapf(err, "excerpting news entry %d", entry.ID)
	}
	return NewsItem{
		ID:        entry.ID,
		Title:     entry.Title,
		Published: entry.Published,
		Body:      entry.Body,
		Excerpt:   excerpt,
	}, nil
}
