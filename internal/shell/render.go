package shell

import (
	"fmt"
	"strings"

	"bookfinder/internal/book"
	"bookfinder/internal/search"
)

// truncate shortens display text the way the original cards do, with a
// trailing ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// renderResults renders one result page as a numbered table.
func renderResults(st search.State) string {
	var b strings.Builder

	if st.Err != nil {
		fmt.Fprintf(&b, "! %s\n", st.Err)
		return b.String()
	}
	if st.Loading {
		b.WriteString("Searching...\n")
		return b.String()
	}
	if !st.HasSearched {
		b.WriteString("Set a filter (title/author/genre) and run 'search'.\n")
		return b.String()
	}
	if len(st.Books) == 0 {
		b.WriteString("No books found. Try adjusting your search criteria.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-3s %-40s %-28s %s\n", "#", "Title", "Authors", "Published")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for i, bk := range st.Books {
		fmt.Fprintf(&b, "%-3d %-40s %-28s %s\n",
			i+1, truncate(bk.Title, 40), truncate(bk.AuthorLine(), 28), bk.PublishedDate)
	}

	from, to := search.ShowingRange(st.CurrentPage, search.ItemsPerPage, st.TotalItems)
	fmt.Fprintf(&b, "\nShowing %d to %d of %d results\n", from, to, st.TotalItems)
	if line := renderPagination(st.CurrentPage, st.TotalPages()); line != "" {
		b.WriteString(line + "\n")
	}
	return b.String()
}

// renderPagination prints the page-number controls, the current page in
// brackets and gaps as "...".
func renderPagination(currentPage, totalPages int) string {
	if totalPages <= 1 {
		return ""
	}
	parts := make([]string, 0, 9)
	for _, btn := range search.Window(currentPage, totalPages) {
		switch {
		case btn.Ellipsis:
			parts = append(parts, "...")
		case btn.Page == currentPage:
			parts = append(parts, fmt.Sprintf("[%d]", btn.Page))
		default:
			parts = append(parts, fmt.Sprintf("%d", btn.Page))
		}
	}
	return "Pages: " + strings.Join(parts, " ")
}

// renderDetail renders the single-book view.
func renderDetail(bk book.Book, favorite bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", bk.Title)
	if bk.Subtitle != "" {
		fmt.Fprintf(&b, "%s\n", bk.Subtitle)
	}
	fmt.Fprintf(&b, "by %s\n", bk.AuthorLine())
	b.WriteString(strings.Repeat("-", 60) + "\n")

	if bk.Publisher != "" {
		fmt.Fprintf(&b, "Publisher:  %s\n", bk.Publisher)
	}
	if bk.PublishedDate != "" {
		fmt.Fprintf(&b, "Published:  %s\n", bk.PublishedDate)
	}
	if bk.PageCount > 0 {
		fmt.Fprintf(&b, "Pages:      %d\n", bk.PageCount)
	}
	if len(bk.Categories) > 0 {
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(bk.Categories, ", "))
	}
	if bk.Language != "" {
		fmt.Fprintf(&b, "Language:   %s\n", bk.Language)
	}
	if bk.RatingsCount > 0 {
		fmt.Fprintf(&b, "Rating:     %.1f (%d ratings)\n", bk.AverageRating, bk.RatingsCount)
	}
	if bk.ListPrice != nil {
		fmt.Fprintf(&b, "Price:      %.2f %s\n", bk.ListPrice.Amount, bk.ListPrice.Currency)
	}
	if bk.BuyLink != "" {
		fmt.Fprintf(&b, "Buy:        %s\n", bk.BuyLink)
	}
	if favorite {
		b.WriteString("In favorites.\n")
	}
	if bk.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", truncate(bk.Description, 600))
	}
	return b.String()
}

// renderFavorites renders the favorites page.
func renderFavorites(books []book.Book) string {
	if len(books) == 0 {
		return "No favorite books yet. Add one with 'fav <n>' from a result page.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "My Favorites (%d)\n", len(books))
	b.WriteString(strings.Repeat("-", 60) + "\n")
	for i, bk := range books {
		fmt.Fprintf(&b, "%-3d %-40s %s\n", i+1, truncate(bk.Title, 40), truncate(bk.AuthorLine(), 28))
	}
	return b.String()
}
