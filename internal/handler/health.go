package handler // contains HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports that the service is up. Load balancers and the
// client's splash screen poll it.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "ok",
		"message": "Ganpati Mandal API is running",
	})
}

// ClientConfig hands the browser the keys it needs at boot. Only
// values safe to expose publicly belong here.
func ClientConfig(mapProviderKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"map_provider_key": mapProviderKey,
		})
	}
}
