package mypenweb

import (
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/mypen/mypenweb/views"
)

const langCookie = "lang"

// pageLang resolves the active language: an explicit ?lang= switch wins and
// sticks via cookie, otherwise the cookie decides, otherwise English.
func (a *App) pageLang(c echo.Context) views.Lang {
	if v := c.QueryParam("lang"); v != "" {
		lang := views.ParseLang(v)
		c.SetCookie(&http.Cookie{
			Name:     langCookie,
			Value:    string(lang),
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			SameSite: http.SameSiteLaxMode,
			Secure:   a.Config.CookieSecure,
		})
		return lang
	}
	if cookie, err := c.Cookie(langCookie); err == nil {
		return views.ParseLang(cookie.Value)
	}
	return views.LangEN
}

func render(c echo.Context, component templ.Component) error {
	return renderStatus(c, http.StatusOK, component)
}

func renderStatus(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

func (a *App) handleHome(c echo.Context) error {
	lang := a.pageLang(c)
	posts, err := a.Cache.ListPosts(3)
	if err != nil {
		a.Log.Error().Err(err).Msg("home post listing failed")
		posts = nil
	}
	faqs, err := a.Store.ListFAQs("")
	if err != nil {
		a.Log.Error().Err(err).Msg("home faq listing failed")
		faqs = nil
	}
	if len(faqs) > 5 {
		faqs = faqs[:5]
	}
	return render(c, views.Home(a.site, lang, posts, faqs))
}

func (a *App) handleBlogIndex(c echo.Context) error {
	lang := a.pageLang(c)
	posts, err := a.Cache.ListPosts(0)
	if err != nil {
		return err
	}
	return render(c, views.BlogIndex(a.site, lang, posts))
}

func (a *App) handlePost(c echo.Context) error {
	lang := a.pageLang(c)
	post, err := a.Cache.GetPost(c.Param("slug"))
	if err == ErrNotFound {
		return renderStatus(c, http.StatusNotFound, views.NotFound(a.site, lang))
	}
	if err != nil {
		return err
	}
	return render(c, views.Post(a.site, lang, post))
}

func (a *App) handleFAQ(c echo.Context) error {
	lang := a.pageLang(c)
	active := c.QueryParam("category")
	faqs, err := a.Store.ListFAQs(active)
	if err != nil {
		return err
	}
	categories, err := a.Store.FAQCategories()
	if err != nil {
		return err
	}
	return render(c, views.FAQPage(a.site, lang, faqs, categories, active))
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + a.Config.URL + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.Config.PublicDir + "/favicon.svg")
}

// httpErrorHandler renders branded 404/500 pages for HTML routes; API routes
// keep echo's default JSON error shape.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if len(c.Request().URL.Path) >= 5 && c.Request().URL.Path[:5] == "/api/" {
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}

	code := http.StatusInternalServerError
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
	}
	lang := a.pageLang(c)
	switch code {
	case http.StatusNotFound:
		_ = renderStatus(c, code, views.NotFound(a.site, lang))
	default:
		a.Log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
		_ = renderStatus(c, code, views.ServerError(a.site, lang))
	}
}
