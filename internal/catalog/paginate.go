package catalog

import (
	"encoding/json"
	"fmt"

	"valentine-storefront/internal/domain"
)

// PageSize is the number of products per page.
const PageSize = 16

// Ellipsis stands for skipped page numbers in a strip.
const Ellipsis = "…"

type Page struct {
	Items      []domain.Product `json:"items"`
	Number     int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	TotalItems int              `json:"totalItems"`
	Strip      []PageItem       `json:"pageStrip"`
}

// PageItem is a page number, or an ellipsis when Number is zero.
type PageItem struct {
	Number int
}

func (p PageItem) IsEllipsis() bool { return p.Number == 0 }

func (p PageItem) MarshalJSON() ([]byte, error) {
	if p.IsEllipsis() {
		return json.Marshal(Ellipsis)
	}
	return json.Marshal(p.Number)
}

func (p *PageItem) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != Ellipsis {
			return fmt.Errorf("unexpected page item %q", s)
		}
		p.Number = 0
		return nil
	}
	return json.Unmarshal(b, &p.Number)
}

func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// Paginate returns the requested page, clamping it to the available range.
func Paginate(items []domain.Product, page int) Page {
	total := TotalPages(len(items))
	page = clampPage(page, total)

	start := (page - 1) * PageSize
	end := min(start+PageSize, len(items))
	var slice []domain.Product
	if start < end {
		slice = items[start:end]
	}
	return Page{
		Items:      append([]domain.Product{}, slice...),
		Number:     page,
		TotalPages: total,
		TotalItems: len(items),
		Strip:      PageStrip(page, total),
	}
}

func clampPage(page, total int) int {
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

// PageStrip lists the page links to show. Up to five pages are all shown;
// beyond that the strip keeps the first and last page and a window around
// current, with ellipses where the window does not reach an edge.
func PageStrip(current, totalPages int) []PageItem {
	if totalPages <= 0 {
		return []PageItem{}
	}
	current = clampPage(current, totalPages)

	pages := func(nums ...int) []PageItem {
		out := make([]PageItem, len(nums))
		for i, n := range nums {
			out[i] = PageItem{Number: n}
		}
		return out
	}
	const gap = 0
	last := totalPages

	switch {
	case totalPages <= 5:
		out := make([]PageItem, totalPages)
		for i := range out {
			out[i] = PageItem{Number: i + 1}
		}
		return out
	case current <= 3:
		return pages(1, 2, 3, 4, gap, last)
	case current >= last-2:
		return pages(1, gap, last-3, last-2, last-1, last)
	default:
		return pages(1, gap, current-1, current, current+1, gap, last)
	}
}
