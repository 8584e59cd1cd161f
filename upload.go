package mypenweb

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// uploadTimeout bounds one upload request end to end, including the remote
// fetch in URL mode and all derivative encoding.
const uploadTimeout = 60 * time.Second

// handleImageUpload rehosts a single image outside the blog ingestion flow.
// Three input modes: raw image bytes, a multipart "image" field, or a JSON
// body naming a remote URL to fetch. The optional x-original-url header
// supplies the name hint (and the originalUrl echoed back) for the byte modes.
func (a *App) handleImageUpload(c echo.Context) error {
	if !a.checkWebhookSecret(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), uploadTimeout)
	defer cancel()

	originalURL := c.Request().Header.Get("x-original-url")
	contentType := c.Request().Header.Get(echo.HeaderContentType)

	var data []byte
	switch {
	case strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "application/octet-stream"):
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, 20<<20))
		if err != nil || len(body) == 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "empty or unreadable image body"})
		}
		data = body

	case strings.HasPrefix(contentType, "multipart/form-data"):
		fh, err := c.FormFile("image")
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing multipart field 'image'"})
		}
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable multipart file"})
		}
		defer f.Close()
		data, err = io.ReadAll(io.LimitReader(f, 20<<20))
		if err != nil || len(data) == 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "empty or unreadable image body"})
		}
		if originalURL == "" {
			originalURL = fh.Filename
		}

	default:
		var body struct {
			ImageURL string `json:"imageUrl"`
		}
		if err := c.Bind(&body); err != nil || body.ImageURL == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "expected image bytes, multipart upload, or JSON imageUrl"})
		}
		if !isAbsoluteURL(body.ImageURL) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "imageUrl must be an absolute URL"})
		}
		hosted, err := a.Rehoster.HostRemote(ctx, body.ImageURL)
		if err != nil {
			a.Log.Error().Err(err).Str("url", body.ImageURL).Msg("upload fetch failed")
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "could not fetch or process image"})
		}
		return c.JSON(http.StatusOK, uploadResponse(a.Config.URL, body.ImageURL, hosted))
	}

	hosted, err := a.Rehoster.Process(data, uploadNameHint(originalURL))
	if err != nil {
		a.Log.Error().Err(err).Msg("upload processing failed")
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "could not process image"})
	}
	return c.JSON(http.StatusOK, uploadResponse(a.Config.URL, originalURL, hosted))
}

func uploadResponse(siteURL, originalURL, hosted string) map[string]interface{} {
	return map[string]interface{}{
		"success":     true,
		"originalUrl": originalURL,
		"hostedUrl":   hosted,
		"fullUrl":     strings.TrimRight(siteURL, "/") + hosted,
	}
}

// uploadNameHint reduces an original URL (or filename) to its last path
// segment so the stored name stays short.
func uploadNameHint(originalURL string) string {
	if originalURL == "" {
		return "upload"
	}
	s := originalURL
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return "upload"
	}
	return s
}
