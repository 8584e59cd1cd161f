package mypenweb

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mypen/mypenweb/tracking"
)

// handleTrack forwards a browser-side conversion event to the configured ad
// platforms. It always answers 200: a tracking failure must never surface as
// a user-visible error, and the dispatcher logs its own problems.
func (a *App) handleTrack(c echo.Context) error {
	var ev tracking.Event
	if err := c.Bind(&ev); err != nil {
		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}
	ev.ClientIP = c.RealIP()
	ev.ClientUA = c.Request().UserAgent()

	a.Tracker.Track(c.Request().Context(), ev)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
