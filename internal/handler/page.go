package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// accountPage is the minimal shell served to signed-in browsers; the
// page itself loads its data from the JSON API.
const accountPage = `<!doctype html><html><head><title>My Account · Ganpati Mandal</title></head>` +
	`<body><div id="app" data-api="/v1/me"></div><script src="/static/app.js"></script></body></html>`

// AccountPage handles GET /account, a browser-facing route behind the
// route guard.
func AccountPage(c echo.Context) error {
	return c.HTML(http.StatusOK, accountPage)
}
