// Package pagination turns ordered queries into bounded, clamped page windows.
package pagination

import "gorm.io/gorm"

// Page describes one window of a paginated listing.
type Page struct {
	Number     int   `json:"page"`
	Size       int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// Paginate fills dest with the window of query for the 1-indexed page number,
// clamped to the valid range: numbers below 1 resolve to the first page,
// numbers past the end resolve to the last page. The query must already carry
// its ordering and any association preloads. Pure read, no side effects.
func Paginate(query *gorm.DB, number, size int, dest interface{}) (Page, error) {
	if size < 1 {
		size = 1
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page{}, err
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}
	number = Clamp(number, totalPages)

	offset := (number - 1) * size
	if err := query.Offset(offset).Limit(size).Find(dest).Error; err != nil {
		return Page{}, err
	}

	return Page{
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// Clamp resolves a requested page number against the total page count.
func Clamp(number, totalPages int) int {
	if number < 1 {
		return 1
	}
	if number > totalPages {
		return totalPages
	}
	return number
}
