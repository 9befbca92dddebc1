// Package citadel is the content-administration backend for a personal
// website. It stores podcast episodes, project and internship entries,
// uploaded images, freeform content blocks, and a visitor counter in
// SQLite, serves them as a public JSON API, and exposes mutation routes
// guarded by a shared admin token.
package citadel

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// App wires together the store, asset manager, middleware, and routes.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store
	Assets *Assets

	tokenLimiter *tokenLimiter
}

// New opens the store and builds a fully routed App ready to start.
func New(cfg Config) (*App, error) {
	store, err := NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("citadel: init store: %w", err)
	}

	a := &App{
		Config:       cfg,
		Echo:         echo.New(),
		Store:        store,
		Assets:       NewAssets(store, cfg.UploadsDir),
		tokenLimiter: newTokenLimiter(10, time.Minute),
	}
	a.Echo.HideBanner = true

	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

// Start runs the HTTP server until it is shut down.
func (a *App) Start() error {
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Public routes
	e.GET("/api/health", a.handleHealth)
	e.GET("/api/podcast/episodes", a.handleEpisodeList)
	e.GET("/api/podcast/episodes/:slug", a.handleEpisodeGet)
	e.GET("/api/projects", a.handleProjectList)
	e.GET("/api/projects/:slug", a.handleProjectGet)
	e.GET("/api/content/:page", a.handleContentPage)
	e.POST("/api/visitors/increment", a.handleVisitorIncrement)
	e.GET("/uploads/:filename", a.handleUploadServe)

	// The image list is an admin read, as in the original service.
	e.GET("/api/images", a.handleImageList, a.requireAdmin)

	// Admin routes
	admin := e.Group("/api/admin", a.requireAdmin)
	admin.POST("/podcast/episodes", a.handleEpisodeCreate)
	admin.PUT("/podcast/episodes/:id", a.handleEpisodeUpdate)
	admin.DELETE("/podcast/episodes/:id", a.handleEpisodeDelete)
	admin.POST("/podcast/reorder", a.handleEpisodeReorder)
	admin.POST("/projects", a.handleProjectCreate)
	admin.PUT("/projects/:id", a.handleProjectUpdate)
	admin.DELETE("/projects/:id", a.handleProjectDelete)
	admin.POST("/projects/reorder", a.handleProjectReorder)
	admin.POST("/images/upload", a.handleImageUpload, middleware.BodyLimit("11M"))
	admin.DELETE("/images/:id", a.handleImageDelete)
	admin.PUT("/content/:page/:section", a.handleContentUpsert)
	admin.GET("/analytics/overview", a.handleAnalyticsOverview)
	admin.GET("/analytics/visitors", a.handleAnalyticsVisitors)
}
