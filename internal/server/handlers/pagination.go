package handlers

// Paginate derives the 1-based current page and the total page count
// from an offset/limit window over total rows.
//
//	pages = ceil(total / limit)
//	page  = floor(skip / limit) + 1
//
// For total == 0 this yields page 1 and pages 0.
func Paginate(skip, limit, total int) (page, pages int) {
	pages = (total + limit - 1) / limit
	page = (skip / limit) + 1
	return page, pages
}
