// Package pagination implements fixed-size page-number pagination with
// clamping semantics: any out-of-range request, below the first page or
// past the end, resolves to the last page, so a stale link never produces
// an error.
package pagination

// PageSize is the fixed number of items per page shared by every feed listing.
const PageSize = 10

// Page describes one resolved page of a listing.
type Page struct {
	Number     int   `json:"number"`
	Size       int   `json:"size"`
	TotalPages int   `json:"total_pages"`
	TotalCount int64 `json:"total_count"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Offset returns the item offset of the page start.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Resolve clamps a requested page number against the total item count.
// An empty listing still has exactly one (empty) page.
func Resolve(number int, totalCount int64, size int) Page {
	if size <= 0 {
		size = PageSize
	}

	totalPages := int((totalCount + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}

	// Both directions of out-of-range resolve to the last page.
	if number < 1 || number > totalPages {
		number = totalPages
	}

	return Page{
		Number:     number,
		Size:       size,
		TotalPages: totalPages,
		TotalCount: totalCount,
		HasNext:    number < totalPages,
		HasPrev:    number > 1,
	}
}
