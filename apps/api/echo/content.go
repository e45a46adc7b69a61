package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ecole-ece/vitrine/core"
	"github.com/ecole-ece/vitrine/core/content"
)

const savedNotice = "Contenu mis à jour avec succès"

type contentApi struct {
	pages    *content.Collection
	logger   core.Logger
	validate *validator.Validate
}

func registerContentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	pages *content.Collection,
	logger core.Logger,
	validate *validator.Validate,
) {
	api := contentApi{
		pages:    pages,
		logger:   logger,
		validate: validate,
	}

	cg := g.Group("/content", jwt, adminMiddleware())
	cg.GET("", api.list)
	cg.POST("/refresh", api.refresh)

	// detail endpoints
	dg := cg.Group("/:key")
	dg.GET("", api.retrieve)
	dg.POST("/expand", api.expand)
	dg.POST("/collapse", api.collapse)
	dg.PATCH("/fields", api.edit)
	dg.GET("/changes", api.changes)
	dg.POST("/save", api.save)
}

// pageView is an editor as sent to the back office; Fields is only set while expanded.
type pageView struct {
	Key       string          `json:"key"`
	Title     string          `json:"title"`
	Label     string          `json:"label"`
	Expanded  bool            `json:"expanded"`
	Dirty     bool            `json:"dirty"`
	Saving    bool            `json:"saving"`
	UpdatedAt time.Time       `json:"updated_at"`
	Fields    []content.Field `json:"fields,omitempty"`
}

func newPageView(ed *content.Editor) pageView {
	s := ed.Summary()
	view := pageView{
		Key:       s.Key,
		Title:     s.Title,
		Label:     s.Label,
		Expanded:  s.Expanded,
		Dirty:     s.Dirty,
		Saving:    s.Saving,
		UpdatedAt: s.UpdatedAt,
	}
	if fields, err := ed.Fields(); err == nil {
		view.Fields = fields
	}
	return view
}

func (api *contentApi) editor(ctx echo.Context) (*content.Editor, error) {
	ed, err := api.pages.Editor(ctx.Param("key"))
	if err != nil {
		return nil, errors.Wrapf(err, "page %q", ctx.Param("key"))
	}
	return ed, nil
}

// Handlers

func (api *contentApi) list(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.pages.Summaries())
}

func (api *contentApi) refresh(ctx echo.Context) error {
	if err := api.pages.Refresh(ctx.Request().Context()); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.pages.Summaries())
}

func (api *contentApi) retrieve(ctx echo.Context) error {
	ed, err := api.editor(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newPageView(ed))
}

func (api *contentApi) expand(ctx echo.Context) error {
	ed, err := api.editor(ctx)
	if err != nil {
		return err
	}
	ed.Expand()
	return ctx.JSON(http.StatusOK, newPageView(ed))
}

func (api *contentApi) collapse(ctx echo.Context) error {
	ed, err := api.editor(ctx)
	if err != nil {
		return err
	}
	ed.Collapse()
	return ctx.JSON(http.StatusOK, newPageView(ed))
}

func (api *contentApi) edit(ctx echo.Context) error {
	ed, err := api.editor(ctx)
	if err != nil {
		return err
	}
	e, err := bindEdit(ctx, api.validate)
	if err != nil {
		return err
	}
	if err = e.apply(ed); err != nil {
		return errors.Wrapf(err, "editing %q", e.path.String())
	}
	return ctx.JSON(http.StatusOK, newPageView(ed))
}

func (api *contentApi) changes(ctx echo.Context) error {
	ed, err := api.editor(ctx)
	if err != nil {
		return err
	}
	changes, err := ed.Changes()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, changes)
}

func (api *contentApi) save(ctx echo.Context) error {
	ed, err := api.editor(ctx)
	if err != nil {
		return err
	}
	if err = ed.Save(ctx.Request().Context()); err != nil {
		return err
	}

	api.logger.Info("content saved", map[string]interface{}{"key": ed.Key()}, contextActor(ctx))
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": savedNotice,
		"page":    newPageView(ed),
	})
}
