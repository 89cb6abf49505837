package feed

// ArticleSource names the outlet an article came from.
type ArticleSource struct {
	Name string `json:"name"`
}

// Article is the canonical normalized news item. Every supported upstream
// shape is converted into this form; instances are never mutated after
// construction.
type Article struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	PublishedAt string        `json:"publishedAt"`
	Author      string        `json:"author"`
	Source      ArticleSource `json:"source"`
	Content     string        `json:"content"`
}

const (
	fallbackTitle  = "No title"
	fallbackURL    = "#"
	fallbackAuthor = "Unknown"
)

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
