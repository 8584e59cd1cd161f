package mypenweb

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleAdminLogin authenticates against the single configured admin account
// and issues the session cookie. Failed attempts are rate limited per IP.
func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many login attempts, try again later"})
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(a.Config.AdminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.Config.AdminPassword)) == 1
	if !emailOK || !passOK {
		a.loginLimiter.Record(ip)
		a.Log.Warn().Str("ip", ip).Msg("failed admin login")
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	if err := setAdminSession(c, req.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (a *App) handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// handleAdminPosts lists every post, drafts included, for the admin panel.
func (a *App) handleAdminPosts(c echo.Context) error {
	if !IsAdmin(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		a.Log.Error().Err(err).Msg("admin post listing failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	out := make([]map[string]interface{}, 0, len(posts))
	for _, p := range posts {
		out = append(out, map[string]interface{}{
			"id":             p.ID,
			"title":          p.Title,
			"title_ka":       p.TitleKA,
			"slug":           p.Slug,
			"author":         p.Author,
			"published":      p.Published,
			"featured_image": p.FeaturedImage,
			"published_at":   p.PublishedAt,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"posts": out})
}

// handleAdminDeletePost removes one post by the id query parameter.
func (a *App) handleAdminDeletePost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	id, err := strconv.ParseInt(c.QueryParam("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "id query parameter required"})
	}
	if err := a.Store.DeletePost(id); err != nil {
		a.Log.Error().Err(err).Int64("id", id).Msg("post delete failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
