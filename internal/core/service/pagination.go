package service

// clampPage normalizes a 1-based page number.
func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// defaultLimit substitutes def for missing or non-positive limits.
func defaultLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

// pageCount returns ceil(total/limit).
func pageCount(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
