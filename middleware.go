package citadel

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: a.corsOrigins(),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, headerAdminToken},
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/uploads/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
}

func (a *App) corsOrigins() []string {
	if len(a.Config.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return a.Config.CORSOrigins
}

const headerAdminToken = "X-Admin-Token"

// requireAdmin guards mutation routes with the shared admin secret.
// The token arrives via X-Admin-Token or Authorization: Bearer; the
// Bearer value wins when both are present. A server with no configured
// secret fails closed with 500, an operator fault rather than a
// caller's bad token (401).
func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if a.Config.AdminToken == "" {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Admin endpoint not configured"})
		}

		if !a.tokenLimiter.Check(c.RealIP()) {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Too many attempts"})
		}

		provided := c.Request().Header.Get(headerAdminToken)
		if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
			provided = strings.TrimPrefix(auth, "Bearer ")
		}

		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(a.Config.AdminToken)) != 1 {
			a.tokenLimiter.Record(c.RealIP())
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
		}
		return next(c)
	}
}

// httpErrorHandler keeps every failure a structured JSON body, including
// errors echo raises itself (404 on unknown routes, body limit, etc.).
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
	}
	_ = c.JSON(code, echo.Map{"error": message})
}
