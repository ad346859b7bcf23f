package search

import "strings"

// DefaultQuery is the fallback term used when every filter is blank, so the
// remote call is never issued with an empty query.
const DefaultQuery = "javascript"

// Filters holds the three user-editable search criteria.
type Filters struct {
	Title  string
	Author string
	Genre  string
}

// IsBlank reports whether no filter carries a usable value.
func (f Filters) IsBlank() bool {
	return strings.TrimSpace(f.Title) == "" &&
		strings.TrimSpace(f.Author) == "" &&
		strings.TrimSpace(f.Genre) == ""
}

// BuildQuery renders filters into the Google Books query grammar: one scoped
// clause per non-blank field, joined with "+", in title, author, genre order.
func BuildQuery(f Filters) string {
	var parts []string

	if title := strings.TrimSpace(f.Title); title != "" {
		parts = append(parts, "intitle:"+title)
	}
	if author := strings.TrimSpace(f.Author); author != "" {
		parts = append(parts, "inauthor:"+author)
	}
	if genre := strings.TrimSpace(f.Genre); genre != "" {
		parts = append(parts, "subject:"+genre)
	}

	if len(parts) == 0 {
		return DefaultQuery
	}
	return strings.Join(parts, "+")
}
