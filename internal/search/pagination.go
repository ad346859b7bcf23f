package search

// PageButton is one entry of the rendered pagination control: either a page
// number or an ellipsis marker standing in for a gap.
type PageButton struct {
	Page     int
	Ellipsis bool
}

// Window computes the page buttons for a pagination control: the first and
// last page are always shown, with a run of up to five consecutive pages
// centered on the current page and clamped to the valid range. An ellipsis
// marks any gap between the run and a boundary page. Pure and deterministic.
func Window(currentPage, totalPages int) []PageButton {
	if totalPages <= 0 {
		return nil
	}

	start := currentPage - 2
	if start > totalPages-4 {
		start = totalPages - 4
	}
	if start < 1 {
		start = 1
	}
	end := start + 4
	if end > totalPages {
		end = totalPages
	}

	var buttons []PageButton
	if start > 1 {
		buttons = append(buttons, PageButton{Page: 1})
		if start > 2 {
			buttons = append(buttons, PageButton{Ellipsis: true})
		}
	}
	for p := start; p <= end; p++ {
		buttons = append(buttons, PageButton{Page: p})
	}
	if end < totalPages {
		if end < totalPages-1 {
			buttons = append(buttons, PageButton{Ellipsis: true})
		}
		buttons = append(buttons, PageButton{Page: totalPages})
	}
	return buttons
}

// ShowingRange returns the 1-based "showing X to Y of N" bounds for a page.
func ShowingRange(currentPage, itemsPerPage, totalItems int) (from, to int) {
	if totalItems == 0 {
		return 0, 0
	}
	from = (currentPage-1)*itemsPerPage + 1
	to = currentPage * itemsPerPage
	if to > totalItems {
		to = totalItems
	}
	return from, to
}
