// Package mypenweb is the Mypen marketing site: bilingual landing, blog, and
// FAQ pages backed by SQLite, a JSON admin API, server-side conversion
// tracking, and an ingestion webhook that accepts blog posts from an n8n
// automation and rehosts their embedded images.
package mypenweb

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mypen/mypenweb/rehost"
	"github.com/mypen/mypenweb/tracking"
	"github.com/mypen/mypenweb/views"
)

// App is the central application. It wires together the store, cache,
// rehoster, tracker, middleware, and page rendering.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Cache    *PostCache
	Rehoster *rehost.Rehoster
	Tracker  *tracking.Dispatcher
	Log      zerolog.Logger

	site         views.Site
	loginLimiter *LoginLimiter
}

// New creates an App with the given configuration.
func New(cfg SiteConfig) *App {
	cfg.setDefaults()
	return &App{
		Config: cfg,
		Echo:   echo.New(),
		Log:    NewLogger(cfg.LogLevel, cfg.DevLog),
	}
}

// NewLogger builds the application logger: pretty console output for
// development, JSON for production.
func NewLogger(level string, dev bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if dev {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(lvl).With().Timestamp().Str("service", "mypenweb").Logger()
}

// Start initializes the database, cache, rehoster, tracker, middleware, and
// routes, then starts the server.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// init wires everything except the listener; split out so tests can exercise
// the full handler stack without binding a port.
func (a *App) init() error {
	if err := a.Config.validate(); err != nil {
		return err
	}

	scripts, err := LoadScriptsConfig(a.Config.ScriptsPath)
	if err != nil {
		return err
	}
	a.site = views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		Scripts:     enabledScripts(scripts.Scripts),
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return err
	}
	a.Store = store
	a.Cache = NewPostCache(store, a.Config.PostCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.Rehoster == nil {
		a.Rehoster = rehost.New(rehost.Config{
			SiteHost:     siteHost(a.Config.URL),
			ContentDir:   filepath.Join(a.Config.PublicDir, "images", "blog", "content"),
			OptimizedDir: filepath.Join(a.Config.PublicDir, "images", "blog", "optimized"),
			PublicPath:   "/images/blog/optimized",
			Logger:       a.Log,
		})
	}
	if a.Tracker == nil {
		a.Tracker = tracking.NewDispatcher(scripts.Facebook, scripts.TikTok, a.Log)
	}

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Static assets: landing page media, CSS, and the rehosted image tree.
	e.Static("/public", a.Config.PublicDir)
	e.Static("/images", filepath.Join(a.Config.PublicDir, "images"))
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public pages
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/blog/", a.handleBlogIndex)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/faq/", a.handleFAQ)

	// Ingestion webhooks (shared-secret auth, no session)
	e.POST("/api/webhooks/blog", a.handleBlogWebhook)
	e.POST("/api/webhooks/blog/upload-image", a.handleImageUpload)

	// Admin JSON API (cookie session)
	e.POST("/api/admin/login", a.handleAdminLogin)
	e.DELETE("/api/admin/login", a.handleAdminLogout)
	e.GET("/api/admin/posts", a.handleAdminPosts)
	e.DELETE("/api/admin/posts", a.handleAdminDeletePost)

	// Conversion tracking
	e.POST("/api/track", a.handleTrack)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func enabledScripts(scripts []views.ScriptTag) []views.ScriptTag {
	var out []views.ScriptTag
	for _, s := range scripts {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// siteHost extracts the bare host from the canonical URL; the rehoster uses
// it to recognize our own images.
func siteHost(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return siteURL
	}
	return u.Host
}
