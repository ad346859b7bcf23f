package search

import (
	"net/url"
	"strconv"
)

// Query parameter names of the shareable search state.
const (
	paramTitle  = "title"
	paramAuthor = "author"
	paramGenre  = "genre"
	paramPage   = "currentPage"
)

// EncodeQuery serializes filters and the current page into query parameters.
// Blank fields and page 1 are omitted so the shared string stays minimal.
func EncodeQuery(f Filters, page int) url.Values {
	v := url.Values{}
	if f.Title != "" {
		v.Set(paramTitle, f.Title)
	}
	if f.Author != "" {
		v.Set(paramAuthor, f.Author)
	}
	if f.Genre != "" {
		v.Set(paramGenre, f.Genre)
	}
	if page > 1 {
		v.Set(paramPage, strconv.Itoa(page))
	}
	return v
}

// DecodeQuery seeds filters and a page from query parameters, as produced by
// EncodeQuery. Missing or malformed page values fall back to 1, so any shared
// string yields a usable state.
func DecodeQuery(v url.Values) (Filters, int) {
	f := Filters{
		Title:  v.Get(paramTitle),
		Author: v.Get(paramAuthor),
		Genre:  v.Get(paramGenre),
	}
	page, err := strconv.Atoi(v.Get(paramPage))
	if err != nil || page < 1 {
		page = 1
	}
	return f, page
}
