package listing

// window is how many pages are shown on each side of the current page.
const window = 2

// PageItem is one pagination control: a page number or an ellipsis.
type PageItem struct {
	Page     int
	Ellipsis bool
	Current  bool
}

// Pagination describes the paging state of one list view.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
	// From and To are the 1-based bounds of the visible rows; both 0 when empty.
	From  int
	To    int
	Items []PageItem
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// Paginate computes the pagination window for total rows. The page is
// clamped to [1, TotalPages], and the window always holds the first and last
// page plus the current page and two neighbours on each side, with an
// ellipsis wherever pages are skipped.
func Paginate(total int, page int, perPage int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}
	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = max(totalPages, 1)
	}
	p := Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
	if total == 0 {
		return p
	}
	p.From = (page-1)*perPage + 1
	p.To = p.From + perPage - 1
	if page == totalPages {
		p.To = total
	}

	// hi avoids computing page+window, which overflows near MaxInt.
	hi := totalPages - 1
	if page < hi-window {
		hi = page + window
	}
	pages := []int{1}
	for n := max(page-window, 2); n <= hi; n++ {
		pages = append(pages, n)
	}
	if totalPages > 1 {
		pages = append(pages, totalPages)
	}
	last := 0
	for _, n := range pages {
		if last != 0 && n > last+1 {
			p.Items = append(p.Items, PageItem{Ellipsis: true})
		}
		p.Items = append(p.Items, PageItem{Page: n, Current: n == page})
		last = n
	}
	return p
}
