package citadel

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// mutationError maps repository failures to the JSON error contract:
// validation 400, missing row 404, duplicate slug 400, everything else
// a logged 500.
func mutationError(c echo.Context, err error, notFoundMsg, duplicateMsg string) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Msg})
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFoundMsg})
	case isUniqueViolation(err):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": duplicateMsg})
	default:
		return serverError(c, err)
	}
}

func (a *App) handleEpisodeCreate(c echo.Context) error {
	var in EpisodeInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	episode, err := a.Store.CreateEpisode(c.Request().Context(), in)
	if err != nil {
		return mutationError(c, err, "Episode not found", "Slug already exists")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Episode created successfully",
		"episode": episodeSummary(episode),
	})
}

func (a *App) handleEpisodeUpdate(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}
	var patch EpisodePatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	episode, err := a.Store.UpdateEpisode(c.Request().Context(), id, patch)
	if err != nil {
		return mutationError(c, err, "Episode not found", "Slug already exists")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Episode updated successfully",
		"episode": episodeSummary(episode),
	})
}

func (a *App) handleEpisodeDelete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}
	if err := a.Store.DeleteEpisode(c.Request().Context(), id); err != nil {
		return mutationError(c, err, "Episode not found", "")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Episode deleted successfully",
	})
}

func (a *App) handleEpisodeReorder(c echo.Context) error {
	var body struct {
		Episodes []OrderUpdate `json:"episodes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := a.Store.ReorderEpisodes(c.Request().Context(), body.Episodes); err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Episodes reordered successfully",
	})
}

func episodeSummary(e Episode) echo.Map {
	return echo.Map{"id": e.ID, "title": e.Title, "slug": e.Slug}
}

func (a *App) handleProjectCreate(c echo.Context) error {
	var in ProjectInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	project, err := a.Store.CreateProject(c.Request().Context(), in)
	if err != nil {
		return mutationError(c, err, "Project not found", "Slug already exists")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Project created successfully",
		"project": projectSummary(project),
	})
}

func (a *App) handleProjectUpdate(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}
	var patch ProjectPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	project, err := a.Store.UpdateProject(c.Request().Context(), id, patch)
	if err != nil {
		return mutationError(c, err, "Project not found", "Slug already exists")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Project updated successfully",
		"project": projectSummary(project),
	})
}

func (a *App) handleProjectDelete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}
	if err := a.Store.DeleteProject(c.Request().Context(), id); err != nil {
		return mutationError(c, err, "Project not found", "")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Project deleted successfully",
	})
}

func (a *App) handleProjectReorder(c echo.Context) error {
	var body struct {
		Projects []OrderUpdate `json:"projects"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := a.Store.ReorderProjects(c.Request().Context(), body.Projects); err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Projects reordered successfully",
	})
}

func projectSummary(p Project) echo.Map {
	return echo.Map{"id": p.ID, "company": p.Company, "slug": p.Slug}
}

func (a *App) handleContentUpsert(c echo.Context) error {
	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	block, err := a.Store.UpsertContentBlock(c.Request().Context(),
		c.Param("page"), c.Param("section"), body.Content)
	if err != nil {
		return mutationError(c, err, "Content block not found", "")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Content block saved successfully",
		"block":   block,
	})
}
