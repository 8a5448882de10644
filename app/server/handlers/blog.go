package handlers

import (
	"errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"membership-dashboard/app/server/models"
	"membership-dashboard/app/server/posts"
	"net/http"
)

func (a *App) BlogList(c echo.Context) error {
	showAll, page, limit := a.parsePagination(c.QueryParam("page"), c.QueryParam("limit"))
	offset, take := offsetOf(showAll, page, limit)

	list, count, err := a.posts.List(c.Request().Context(), posts.Filter{
		Query:         c.QueryParam("q"),
		Tag:           c.QueryParam("tag"),
		PublishedOnly: true,
		Offset:        offset,
		Limit:         take,
	})
	if err != nil {
		a.l.Error("failed to list published posts", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, &listResponse[models.Post]{
		Limit:   limit,
		PageMax: a.calcMaxPage(count, showAll, limit),
		Total:   count,
		List:    list,
	})
}

func (a *App) BlogGet(c echo.Context) error {
	post, err := a.posts.GetBySlug(c.Request().Context(), c.Param("slug"), true)
	if err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to get post", zap.String("slug", c.Param("slug")), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, post)
}
