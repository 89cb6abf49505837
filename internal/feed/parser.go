package feed

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// SourceFormat is the wire format chosen by format detection. RSS and Atom
// share a single value because the XML parser resolves the distinction itself.
type SourceFormat int

const (
	FormatXML SourceFormat = iota
	FormatWorldNews
	FormatGenericJSON
)

// DetectFormat decides how raw feed content should be parsed. The order
// matters: content-type and declared-type hints win over sniffing, and a
// leading '<' marks XML regardless of what the server claimed.
func DetectFormat(content []byte, contentType string, declared Type) SourceFormat {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "xml"), strings.Contains(ct, "rss"), strings.Contains(ct, "atom"):
		return FormatXML
	case declared == TypeRSS, declared == TypeAtom:
		return FormatXML
	case strings.HasPrefix(strings.TrimSpace(string(content)), "<"):
		return FormatXML
	case declared == TypeWorldNews:
		return FormatWorldNews
	default:
		return FormatGenericJSON
	}
}

// ParseFeed normalizes raw response content into articles. contentType is the
// response's Content-Type header, declared the descriptor's configured type.
// When JSON decoding fails, XML is tried as a last resort in case both hints
// were wrong.
func ParseFeed(content []byte, contentType string, declared Type) ([]Article, error) {
	if DetectFormat(content, contentType, declared) == FormatXML {
		return parseXML(content)
	}

	var decoded any
	if err := json.Unmarshal(content, &decoded); err != nil {
		return parseXML(content)
	}
	return ParseJSON(decoded, declared)
}

// ParseJSON normalizes an already-decoded JSON payload.
func ParseJSON(decoded any, declared Type) ([]Article, error) {
	if declared == TypeWorldNews {
		return parseWorldNews(decoded)
	}
	return parseGenericJSON(decoded)
}

// parseXML handles RSS 2.0 and Atom documents through gofeed's universal
// parser, which also covers dc:creator, content:encoded and the Atom
// multi-link rel="alternate" preference.
func parseXML(content []byte) ([]Article, error) {
	parsed, err := gofeed.NewParser().ParseString(string(content))
	if err != nil {
		return nil, &ParseError{Format: "rss/atom", Err: err}
	}

	sourceName := parsed.Title
	if sourceName == "" {
		if parsed.FeedType == "atom" {
			sourceName = "Atom Feed"
		} else {
			sourceName = "RSS Feed"
		}
	}

	articles := make([]Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		description := StripHTML(item.Description)
		articles = append(articles, Article{
			Title:       orDefault(StripHTML(item.Title), fallbackTitle),
			Description: description,
			URL:         orDefault(item.Link, fallbackURL),
			PublishedAt: itemPublishedAt(item),
			Author:      itemAuthor(item),
			Source:      ArticleSource{Name: sourceName},
			Content:     orDefault(StripHTML(item.Content), description),
		})
	}
	return articles, nil
}

func itemPublishedAt(item *gofeed.Item) string {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	case item.Published != "":
		return item.Published
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC().Format(time.RFC3339)
	case item.Updated != "":
		return item.Updated
	default:
		return nowISO()
	}
}

func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return fallbackAuthor
}

// parseWorldNews handles the WorldNewsAPI shape: an object with a "news"
// array of items.
func parseWorldNews(decoded any) ([]Article, error) {
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, &ParseError{Format: "worldnews-api", Err: ErrUnrecognizedFormat}
	}
	items, ok := obj["news"].([]any)
	if !ok {
		return nil, &ParseError{Format: "worldnews-api", Err: ErrUnrecognizedFormat}
	}

	articles := make([]Article, 0, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		body := stringField(item, "text", "summary")
		articles = append(articles, Article{
			Title:       orDefault(StripHTML(stringField(item, "title")), fallbackTitle),
			Description: StripHTML(body),
			URL:         orDefault(stringField(item, "url"), fallbackURL),
			PublishedAt: orDefault(stringField(item, "publish_date"), nowISO()),
			Author:      worldNewsAuthor(item),
			Source:      ArticleSource{Name: orDefault(stringField(item, "source_country"), "World News")},
			Content:     StripHTML(body),
		})
	}
	return articles, nil
}

func worldNewsAuthor(item map[string]any) string {
	if authors, ok := item["authors"].([]any); ok {
		names := make([]string, 0, len(authors))
		for _, a := range authors {
			if name, ok := a.(string); ok && name != "" {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			return strings.Join(names, ", ")
		}
	}
	return orDefault(stringField(item, "author"), fallbackAuthor)
}

// parseGenericJSON handles the two generic shapes: a NewsAPI-style object
// with an "articles" array, or a bare array of item-like objects with
// flexible field names.
func parseGenericJSON(decoded any) ([]Article, error) {
	switch v := decoded.(type) {
	case map[string]any:
		items, ok := v["articles"].([]any)
		if !ok {
			return nil, &ParseError{Format: "generic-json", Err: ErrUnrecognizedFormat}
		}
		return newsAPIArticles(items), nil
	case []any:
		return bareArrayArticles(v), nil
	default:
		return nil, &ParseError{Format: "generic-json", Err: ErrUnrecognizedFormat}
	}
}

func newsAPIArticles(items []any) []Article {
	articles := make([]Article, 0, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		sourceName := "News API"
		if src, ok := item["source"].(map[string]any); ok {
			sourceName = orDefault(stringField(src, "name"), sourceName)
		}
		description := StripHTML(stringField(item, "description"))
		articles = append(articles, Article{
			Title:       orDefault(StripHTML(stringField(item, "title")), fallbackTitle),
			Description: description,
			URL:         orDefault(stringField(item, "url"), fallbackURL),
			PublishedAt: orDefault(stringField(item, "publishedAt"), nowISO()),
			Author:      orDefault(stringField(item, "author"), fallbackAuthor),
			Source:      ArticleSource{Name: sourceName},
			Content:     orDefault(StripHTML(stringField(item, "content")), description),
		})
	}
	return articles
}

func bareArrayArticles(items []any) []Article {
	articles := make([]Article, 0, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		description := StripHTML(stringField(item, "description", "summary"))
		articles = append(articles, Article{
			Title:       orDefault(StripHTML(stringField(item, "title", "headline")), fallbackTitle),
			Description: description,
			URL:         orDefault(stringField(item, "url", "link"), fallbackURL),
			PublishedAt: orDefault(stringField(item, "publishedAt", "date", "published"), nowISO()),
			Author:      orDefault(stringField(item, "author", "byline"), fallbackAuthor),
			Source:      ArticleSource{Name: orDefault(stringField(item, "source"), "News Feed")},
			Content:     orDefault(StripHTML(stringField(item, "content", "body")), description),
		})
	}
	return articles
}

// stringField returns the first non-empty string value among the given keys.
func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
