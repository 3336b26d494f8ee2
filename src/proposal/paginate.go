package proposal

// DefaultPageSize matches the listing UI's ten-cards-per-page layout.
const DefaultPageSize = 10

// DefaultMaxVisiblePages is the width of the pager's number strip.
const DefaultMaxVisiblePages = 5

// Page describes one window over a derived proposal list. CurrentPage is
// always clamped into [1, TotalPages], so a request for page 0 or a page
// past the end degrades instead of failing — including after the
// underlying list shrank between requests.
//
// StartIndex and EndIndex are the 1-based human-readable bounds used for
// "Showing X to Y of Z"; slice arithmetic must go through Bounds instead.
type Page struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	PageSize    int `json:"pageSize"`
	TotalItems  int `json:"totalItems"`
	StartIndex  int `json:"startIndex"`
	EndIndex    int `json:"endIndex"`
}

// Paginate computes the page window for a list of totalItems entries.
func Paginate(totalItems, pageSize, requestedPage int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	current := requestedPage
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	offset := (current - 1) * pageSize
	end := offset + pageSize
	if end > totalItems {
		end = totalItems
	}
	start := 0
	if totalItems > 0 {
		start = offset + 1
	}

	return Page{
		CurrentPage: current,
		TotalPages:  totalPages,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		StartIndex:  start,
		EndIndex:    end,
	}
}

// Bounds returns the 0-based half-open slice bounds for the page.
func (p Page) Bounds() (int, int) {
	start := (p.CurrentPage - 1) * p.PageSize
	if start > p.TotalItems {
		start = p.TotalItems
	}
	return start, p.EndIndex
}

// PageOf paginates a slice directly, returning the window description and
// the page's items.
func PageOf[T any](items []T, pageSize, requestedPage int) (Page, []T) {
	page := Paginate(len(items), pageSize, requestedPage)
	start, end := page.Bounds()
	return page, items[start:end]
}

// PageRef is one entry in the pager strip: either a concrete page number
// or a non-interactive ellipsis placeholder.
type PageRef struct {
	Number   int  `json:"number,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// VisiblePages builds the pager strip for the given position: all pages
// when they fit, otherwise a window of maxVisible numbers centered on the
// current page and clamped at the edges, with the first and last page
// (and ellipsis markers for any gaps) added around it.
func VisiblePages(currentPage, totalPages, maxVisible int) []PageRef {
	if maxVisible <= 0 {
		maxVisible = DefaultMaxVisiblePages
	}
	var pages []PageRef
	if totalPages <= maxVisible {
		for i := 1; i <= totalPages; i++ {
			pages = append(pages, PageRef{Number: i})
		}
		return pages
	}

	start := currentPage - maxVisible/2
	if start < 1 {
		start = 1
	}
	end := start + maxVisible - 1
	if end > totalPages {
		end = totalPages
	}
	if end-start+1 < maxVisible {
		start = end - maxVisible + 1
		if start < 1 {
			start = 1
		}
	}

	if start > 1 {
		pages = append(pages, PageRef{Number: 1})
		if start > 2 {
			pages = append(pages, PageRef{Ellipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		pages = append(pages, PageRef{Number: i})
	}
	if end < totalPages {
		if end < totalPages-1 {
			pages = append(pages, PageRef{Ellipsis: true})
		}
		pages = append(pages, PageRef{Number: totalPages})
	}
	return pages
}
