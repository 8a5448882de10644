package handlers

import (
	"errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"membership-dashboard/app/server/middlewares"
	"membership-dashboard/app/server/models"
	"membership-dashboard/app/server/posts"
	"net/http"
	"strconv"
)

func (a *App) parsePostID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	return uint(id), err
}

// postWriteError maps store errors of create and update.
func (a *App) postWriteError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, posts.ErrNotFound):
		return a.er(c, http.StatusNotFound)
	case errors.Is(err, posts.ErrNoTitle):
		return a.erm(c, http.StatusBadRequest, "title required")
	case errors.Is(err, posts.ErrNoSlug):
		return a.erm(c, http.StatusBadRequest, "slug required")
	case errors.Is(err, posts.ErrSlugTaken):
		return a.erm(c, http.StatusConflict, "slug already in use")
	default:
		a.l.Error("failed to save post", zap.Error(err))
		return a.erm(c, http.StatusInternalServerError, "failed to save post")
	}
}

func (a *App) PostList(c echo.Context) error {
	showAll, page, limit := a.parsePagination(c.QueryParam("page"), c.QueryParam("limit"))
	offset, take := offsetOf(showAll, page, limit)

	list, count, err := a.posts.List(c.Request().Context(), posts.Filter{
		Query:  c.QueryParam("q"),
		Tag:    c.QueryParam("tag"),
		Offset: offset,
		Limit:  take,
	})
	if err != nil {
		a.l.Error("failed to list posts", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, &listResponse[models.Post]{
		Limit:   limit,
		PageMax: a.calcMaxPage(count, showAll, limit),
		Total:   count,
		List:    list,
	})
}

func (a *App) PostCreate(c echo.Context) error {
	author := middlewares.ProfileFrom(c)

	var fields posts.Fields
	if err := c.Bind(&fields); err != nil {
		a.l.Debug("failed to bind post", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	post, err := a.posts.Create(c.Request().Context(), author.ID, &fields)
	if err != nil {
		return a.postWriteError(c, err)
	}

	return c.JSON(http.StatusCreated, post)
}

func (a *App) PostUpdate(c echo.Context) error {
	id, err := a.parsePostID(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	var fields posts.Fields
	if err := c.Bind(&fields); err != nil {
		a.l.Debug("failed to bind post", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	post, err := a.posts.Update(c.Request().Context(), id, &fields)
	if err != nil {
		return a.postWriteError(c, err)
	}

	return c.JSON(http.StatusOK, post)
}

func (a *App) PostDelete(c echo.Context) error {
	id, err := a.parsePostID(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	if err := a.posts.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to delete post", zap.Uint("id", id), zap.Error(err))
		return a.erm(c, http.StatusInternalServerError, "failed to delete post")
	}

	return c.NoContent(http.StatusNoContent)
}
