package handlers

import (
	"github.com/labstack/echo/v4"
	"net/http"
)

type page struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Informational pages; their bodies are rendered by the frontend.
var pages = []page{
	{Slug: "sobre", Title: "Sobre"},
	{Slug: "termos", Title: "Termos de uso"},
	{Slug: "privacidade", Title: "Política de privacidade"},
	{Slug: "contato", Title: "Contato"},
}

func (a *App) PageList(c echo.Context) error {
	return c.JSON(http.StatusOK, pages)
}

func (a *App) PageGet(c echo.Context) error {
	slug := c.Param("slug")
	for _, p := range pages {
		if p.Slug == slug {
			return c.JSON(http.StatusOK, p)
		}
	}
	return a.er(c, http.StatusNotFound)
}

type formDescriptor struct {
	Form   string   `json:"form"`
	Action string   `json:"action"`
	Fields []string `json:"fields"`
}

// Form returns a handler describing the fields a form posts back to the same path.
func (a *App) Form(name string, fields ...string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, &formDescriptor{
			Form:   name,
			Action: c.Request().URL.Path,
			Fields: fields,
		})
	}
}
