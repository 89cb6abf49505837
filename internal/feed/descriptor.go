// Package feed resolves per-country feed configuration and normalizes
// heterogeneous upstream news sources (RSS 2.0, Atom, WorldNewsAPI JSON,
// generic JSON) into a single Article shape.
package feed

// Type identifies the wire format a feed descriptor declares.
type Type string

const (
	TypeRSS         Type = "rss"
	TypeAtom        Type = "atom"
	TypeWorldNews   Type = "worldnews-api"
	TypeGenericJSON Type = "generic-json"
)

// Normalize maps an absent or unrecognized declared type to TypeGenericJSON.
func (t Type) Normalize() Type {
	switch t {
	case TypeRSS, TypeAtom, TypeWorldNews, TypeGenericJSON:
		return t
	default:
		return TypeGenericJSON
	}
}

// Descriptor defines a single feed: a display name, a URL template with
// {COUNTRY_CODE} and {API_KEY} placeholders, and the declared wire format.
type Descriptor struct {
	Name    string `json:"name"`
	FeedURL string `json:"feedUrl"`
	Type    Type   `json:"type"`
}

// Config is a resolved feed configuration: the default descriptor plus
// per-country overrides keyed by lowercase ISO-2 code.
type Config struct {
	Default   Descriptor            `json:"default"`
	Countries map[string]Descriptor `json:"countries"`
}
