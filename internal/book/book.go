package book

import (
	"strings"

	"bookfinder/internal/googlebooks"

	"github.com/microcosm-cc/bluemonday"
)

// descriptionPolicy strips every tag from the API's HTML description
// fragment so the rest of the app only ever handles plain text.
var descriptionPolicy = bluemonday.StrictPolicy()

// Price is a list or retail price attached to a purchasable volume.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Book is the flat, immutable view of a volume used everywhere past the
// network boundary. Favoriting stores a deep copy, never a reference.
type Book struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Subtitle       string   `json:"subtitle,omitempty"`
	Authors        []string `json:"authors,omitempty"`
	Publisher      string   `json:"publisher,omitempty"`
	PublishedDate  string   `json:"published_date,omitempty"`
	Description    string   `json:"description,omitempty"`
	PageCount      int      `json:"page_count,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	Thumbnail      string   `json:"thumbnail,omitempty"`
	SmallThumbnail string   `json:"small_thumbnail,omitempty"`
	Language       string   `json:"language,omitempty"`
	AverageRating  float64  `json:"average_rating,omitempty"`
	RatingsCount   int      `json:"ratings_count,omitempty"`
	PreviewLink    string   `json:"preview_link,omitempty"`
	IsEbook        bool     `json:"is_ebook,omitempty"`
	BuyLink        string   `json:"buy_link,omitempty"`
	ListPrice      *Price   `json:"list_price,omitempty"`
}

// FromVolume normalizes the optional-field API payload into a Book.
func FromVolume(v googlebooks.Volume) Book {
	info := v.VolumeInfo

	b := Book{
		ID:            v.ID,
		Title:         info.Title,
		Subtitle:      info.Subtitle,
		Authors:       append([]string(nil), info.Authors...),
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   SanitizeDescription(info.Description),
		PageCount:     info.PageCount,
		Categories:    append([]string(nil), info.Categories...),
		Language:      info.Language,
		AverageRating: info.AverageRating,
		RatingsCount:  info.RatingsCount,
		PreviewLink:   info.PreviewLink,
	}

	if info.ImageLinks != nil {
		b.Thumbnail = info.ImageLinks.Thumbnail
		b.SmallThumbnail = info.ImageLinks.SmallThumbnail
	}

	if sale := v.SaleInfo; sale != nil {
		b.IsEbook = sale.IsEbook
		b.BuyLink = sale.BuyLink
		if sale.ListPrice != nil {
			b.ListPrice = &Price{Amount: sale.ListPrice.Amount, Currency: sale.ListPrice.CurrencyCode}
		}
	}

	return b
}

// SanitizeDescription reduces an HTML description fragment to trimmed
// plain text.
func SanitizeDescription(s string) string {
	return strings.TrimSpace(descriptionPolicy.Sanitize(s))
}

// Clone returns a copy sharing no mutable state with the receiver.
func (b Book) Clone() Book {
	c := b
	c.Authors = append([]string(nil), b.Authors...)
	c.Categories = append([]string(nil), b.Categories...)
	if b.ListPrice != nil {
		price := *b.ListPrice
		c.ListPrice = &price
	}
	return c
}

// AuthorLine joins authors for display, with a placeholder when unknown.
func (b Book) AuthorLine() string {
	if len(b.Authors) == 0 {
		return "Unknown"
	}
	return strings.Join(b.Authors, ", ")
}
