package handlers

import "strconv"

const defaultPageLimit = 100

type listResponse[T any] struct {
	Limit   int   `json:"limit"`
	PageMax int64 `json:"page_max"`
	Total   int64 `json:"total"`
	List    []T   `json:"list"`
}

// parsePagination reads 1-based page and limit query values.
// page=0&limit=0 asks for everything.
func (a *App) parsePagination(pageStr string, limitStr string) (bool, int, int) {
	page, pageErr := strconv.Atoi(pageStr)
	limit, limitErr := strconv.Atoi(limitStr)

	if pageErr == nil && page == 0 && limitErr == nil && limit == 0 {
		return true, -1, -1
	}

	var parsedPage, parsedLimit int

	if pageErr != nil || page < 1 {
		parsedPage = 0
	} else {
		parsedPage = page - 1
	}

	if limitErr != nil || limit <= 0 {
		parsedLimit = defaultPageLimit
	} else {
		parsedLimit = limit
	}

	return false, parsedPage, parsedLimit
}

func (a *App) calcMaxPage(count int64, showAll bool, limit int) int64 {
	if showAll {
		return 1
	}
	pageMax := count / int64(limit)
	if (count % int64(limit)) != 0 {
		pageMax++
	}
	return pageMax
}

func offsetOf(showAll bool, page int, limit int) (int, int) {
	if showAll {
		return 0, -1
	}
	return page * limit, limit
}
