package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxAccount extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: the subject must be
// non-empty (presence proves the middleware ran).
func ctxAccount(c echo.Context) (accountID, role string, err error) {
	accountID, _ = c.Get("sub").(string)
	if accountID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	role, _ = c.Get("role").(string)
	return accountID, role, nil
}
