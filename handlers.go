package citadel

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (a *App) handleEpisodeList(c echo.Context) error {
	publishedOnly := boolQuery(c, "published_only", true)
	episodes, err := a.Store.ListEpisodes(c.Request().Context(), publishedOnly)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"episodes": episodes})
}

func (a *App) handleEpisodeGet(c echo.Context) error {
	episode, err := a.Store.GetEpisodeBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Episode not found"})
		}
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"episode": episode})
}

func (a *App) handleProjectList(c echo.Context) error {
	kind := c.QueryParam("type")
	publishedOnly := boolQuery(c, "published_only", true)
	projects, err := a.Store.ListProjects(c.Request().Context(), kind, publishedOnly)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"projects": projects})
}

func (a *App) handleProjectGet(c echo.Context) error {
	project, err := a.Store.GetProjectBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Project not found"})
		}
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"project": project})
}

func (a *App) handleContentPage(c echo.Context) error {
	blocks, err := a.Store.ListContentBlocks(c.Request().Context(), c.Param("page"))
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"blocks": blocks})
}

func (a *App) handleVisitorIncrement(c echo.Context) error {
	count, err := a.Store.IncrementVisitors(c.Request().Context())
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}
