package mypenweb

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mypen/mypenweb/views"
)

func get(app *App, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	req.Header.Set("Accept-Encoding", "identity")
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func seedPost(t *testing.T, app *App, slug string) {
	t.Helper()
	if _, err := app.Store.InsertPost(views.BlogPost{
		Title: "English Title " + slug, TitleKA: "ქართული " + slug, Slug: slug,
		Content: "<p>English body</p>", ContentKA: "<p>ქართული ტექსტი</p>",
		Excerpt: "summary", ExcerptKA: "შეჯამება",
		Author: "Mypen Team", Published: true,
	}); err != nil {
		t.Fatalf("seed post: %v", err)
	}
	app.Cache.Invalidate()
}

func TestHomePage(t *testing.T) {
	app := newTestApp(t)
	seedPost(t, app, "first-post")

	rec := get(app, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "English Title first-post") {
		t.Error("home page missing recent post")
	}
	if !strings.Contains(body, `lang="en"`) {
		t.Error("home page should default to English")
	}
}

func TestLanguageSwitchSticksViaCookie(t *testing.T) {
	app := newTestApp(t)
	seedPost(t, app, "lang-post")

	rec := get(app, "/?lang=ka")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `lang="ka"`) {
		t.Error("?lang=ka should render Georgian")
	}
	var langCk *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == langCookie {
			langCk = ck
		}
	}
	if langCk == nil || langCk.Value != "ka" {
		t.Fatalf("lang cookie = %v, want ka", langCk)
	}

	// Subsequent plain request keeps Georgian via the cookie.
	rec = get(app, "/blog/", langCk)
	if !strings.Contains(rec.Body.String(), `lang="ka"`) {
		t.Error("lang cookie should keep Georgian active")
	}
	if !strings.Contains(rec.Body.String(), "ქართული lang-post") {
		t.Error("blog index should show Georgian titles")
	}
}

func TestPostPage(t *testing.T) {
	app := newTestApp(t)
	seedPost(t, app, "readable-post")

	rec := get(app, "/blog/readable-post/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<p>English body</p>") {
		t.Error("post page should render stored HTML verbatim")
	}

	rec = get(app, "/blog/no-such-post/")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing post: status = %d, want 404", rec.Code)
	}
}

func TestFAQPage(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.Store.InsertFAQ(views.FAQ{
		Question: "What is Mypen?", QuestionKA: "რა არის Mypen?",
		Answer: "An AI writing assistant.", AnswerKA: "AI ასისტენტი.",
		Category: "General", CategoryKA: "ზოგადი", Published: true,
	}); err != nil {
		t.Fatalf("seed faq: %v", err)
	}

	rec := get(app, "/faq/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "What is Mypen?") {
		t.Error("faq page missing question")
	}

	rec = get(app, "/faq/?category=General")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "What is Mypen?") {
		t.Error("category filter should still show matching entries")
	}
}

func TestSitemapAndFeed(t *testing.T) {
	app := newTestApp(t)
	seedPost(t, app, "indexed-post")

	rec := get(app, "/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("sitemap status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "https://mypen.ge/blog/indexed-post/") {
		t.Error("sitemap missing post URL")
	}
	if !strings.Contains(body, "https://mypen.ge/faq/") {
		t.Error("sitemap missing faq URL")
	}

	rec = get(app, "/feed.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("feed status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "English Title indexed-post") {
		t.Error("feed missing post title")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "rss+xml") {
		t.Errorf("feed content type = %q", ct)
	}
}

func TestRobots(t *testing.T) {
	app := newTestApp(t)

	rec := get(app, "/robots.txt")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Disallow: /api/") {
		t.Error("robots.txt should disallow /api/")
	}
	if !strings.Contains(body, "Sitemap: https://mypen.ge/sitemap.xml") {
		t.Error("robots.txt should point at the sitemap")
	}
}

func TestTrackAlwaysSucceeds(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/track", strings.NewReader(`{"event_name":"Lead"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	// Even a garbage body must not surface an error to the page.
	req = httptest.NewRequest(http.MethodPost, "/api/track", strings.NewReader(`{{{`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("garbage body: status = %d, want 200", rec.Code)
	}
}
