package citadel

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// boolQuery parses a query parameter as a boolean, falling back to def
// when absent or unparsable.
func boolQuery(c echo.Context, name string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(c.QueryParam(name)))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// paramID parses the :id route parameter.
func paramID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// serverError logs the failure and answers a generic JSON 500. Raw
// store errors never reach the caller.
func serverError(c echo.Context, err error) error {
	c.Logger().Errorf("server error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
}
