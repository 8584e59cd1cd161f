package mypenweb

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mypen/mypenweb/rehost"
	"github.com/mypen/mypenweb/views"
)

const webhookSecretHeader = "x-n8n-webhook-secret"

// blogWebhookPayload is the body posted by the n8n content automation.
// English fields are canonical; Georgian fields fall back to them when empty.
type blogWebhookPayload struct {
	Title         string  `json:"title"`
	TitleKA       string  `json:"title_ka"`
	Slug          string  `json:"slug"`
	Content       string  `json:"content"`
	ContentKA     string  `json:"content_ka"`
	Excerpt       string  `json:"excerpt"`
	ExcerptKA     string  `json:"excerpt_ka"`
	Author        string  `json:"author"`
	FeaturedImage *string `json:"featured_image"`
	Published     *bool   `json:"published"`
}

// FieldError describes one invalid payload field in a 400 response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (p *blogWebhookPayload) validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(p.Content) == "" {
		errs = append(errs, FieldError{Field: "content", Message: "content is required"})
	}
	if p.FeaturedImage != nil && *p.FeaturedImage != "" && !isAbsoluteURL(*p.FeaturedImage) {
		errs = append(errs, FieldError{Field: "featured_image", Message: "featured_image must be a valid absolute URL"})
	}
	return errs
}

func (a *App) checkWebhookSecret(c echo.Context) bool {
	got := c.Request().Header.Get(webhookSecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(a.Config.WebhookSecret)) == 1
}

// handleBlogWebhook accepts a blog post from the automation pipeline,
// rehosts every external image it references, and persists it.
func (a *App) handleBlogWebhook(c echo.Context) error {
	if !a.checkWebhookSecret(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var payload blogWebhookPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "Validation Error",
			"details": []FieldError{{Field: "body", Message: "invalid JSON body"}},
		})
	}
	if errs := payload.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "Validation Error",
			"details": errs,
		})
	}

	slug, err := a.allocateSlug(payload.Slug, payload.Title)
	if err != nil {
		a.Log.Error().Err(err).Msg("slug allocation failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	post := views.BlogPost{
		Title:     payload.Title,
		TitleKA:   fallback(payload.TitleKA, payload.Title),
		Slug:      slug,
		Content:   payload.Content,
		ContentKA: fallback(payload.ContentKA, payload.Content),
		Excerpt:   payload.Excerpt,
		ExcerptKA: fallback(payload.ExcerptKA, payload.Excerpt),
		Author:    fallback(payload.Author, "Mypen Team"),
		Published: payload.Published == nil || *payload.Published,
	}

	// One pass over both language variants so each external URL is fetched
	// at most once per request, even when it appears in both.
	ctx := c.Request().Context()
	mapping := a.Rehoster.Rehost(ctx, post.Content, post.ContentKA)
	post.Content = rehost.RewriteHTML(post.Content, mapping)
	post.ContentKA = rehost.RewriteHTML(post.ContentKA, mapping)
	post.FeaturedImage = a.resolveFeaturedImage(ctx, payload.FeaturedImage, mapping, post.ContentKA, post.Content)

	id, err := a.Store.InsertPost(post)
	if IsSlugConflict(err) {
		// The slug is taken: a concurrent insert won it after our existence
		// check, or the allocator exhausted its numbered variants. Retry once
		// with a timestamp suffix, which cannot collide with another
		// title-derived slug.
		post.Slug = fmt.Sprintf("%s-%d", slug, time.Now().UnixMilli())
		id, err = a.Store.InsertPost(post)
		if IsSlugConflict(err) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Slug conflict - please try again"})
		}
	}
	if err != nil {
		a.Log.Error().Err(err).Str("slug", post.Slug).Msg("post insert failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	a.Cache.Invalidate()
	a.Log.Info().Int64("id", id).Str("slug", post.Slug).Msg("post ingested")

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Blog post created successfully",
		"post": map[string]interface{}{
			"id":   id,
			"slug": post.Slug,
		},
	})
}

// allocateSlug derives a slug. The explicit slug (or the slugified title) is
// tried first, then numbered variants -2, -3, ... When the loop exhausts its
// attempts the last candidate is returned as-is; if it is taken, the insert's
// uniqueness retry settles it with a timestamp suffix.
func (a *App) allocateSlug(explicit, title string) (string, error) {
	base := explicit
	if base == "" {
		base = Slugify(title)
	}
	candidate := base
	for attempt := 1; attempt < 100; attempt++ {
		exists, err := a.Store.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt+1)
	}
	return candidate, nil
}

// resolveFeaturedImage decides the stored featured_image value. An explicit
// external URL is rehosted (reusing this request's mapping when it already
// covers it); a site-relative path is kept as-is; when absent, the first
// image of the content stands in.
func (a *App) resolveFeaturedImage(ctx context.Context, explicit *string, mapping map[string]string, docs ...string) string {
	candidate := ""
	if explicit != nil && *explicit != "" {
		candidate = *explicit
	} else {
		for _, doc := range docs {
			if src := rehost.FirstImageSrc(doc); src != "" {
				candidate = src
				break
			}
		}
	}
	if candidate == "" {
		return ""
	}
	if !a.Rehoster.IsExternal(candidate) {
		if strings.HasPrefix(candidate, "/") {
			return candidate
		}
		return ""
	}
	if hosted, ok := mapping[candidate]; ok {
		return hosted
	}
	hosted, err := a.Rehoster.HostRemote(ctx, candidate)
	if err != nil {
		a.Log.Warn().Err(err).Str("url", candidate).Msg("featured image rehost failed")
		return ""
	}
	return hosted
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
