package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecole-ece/vitrine/core/content"
)

// registerPageAPI exposes committed page content to the public website.
func registerPageAPI(g *echo.Group, site *content.Site) {
	g.GET("/pages/:key", func(ctx echo.Context) error {
		data, err := site.Page(ctx.Request().Context(), ctx.Param("key"))
		if err != nil {
			return err
		}
		return ctx.JSONBlob(http.StatusOK, data)
	})
}
