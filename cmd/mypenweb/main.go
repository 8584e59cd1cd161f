package main

import (
	"log"
	"time"

	"github.com/mypen/mypenweb"
)

func main() {
	cfg := mypenweb.SiteConfig{
		Name:        mypenweb.EnvOr("SITE_NAME", "Mypen"),
		URL:         mypenweb.EnvOr("SITE_URL", "https://mypen.ge"),
		Description: mypenweb.EnvOr("SITE_DESCRIPTION", "Mypen - AI writing assistant for Georgian and English"),
		Author:      mypenweb.EnvOr("SITE_AUTHOR", "Mypen"),

		Addr:         mypenweb.EnvOr("ADDR", ":3000"),
		DatabasePath: mypenweb.EnvOr("DATABASE_PATH", "data/site.db"),
		PublicDir:    mypenweb.EnvOr("PUBLIC_DIR", "public"),

		WebhookSecret: mypenweb.MustEnv("N8N_WEBHOOK_SECRET"),
		AdminEmail:    mypenweb.MustEnv("ADMIN_EMAIL"),
		AdminPassword: mypenweb.MustEnv("ADMIN_PASSWORD"),
		SessionSecret: mypenweb.MustEnv("ADMIN_SESSION_SECRET"),
		CookieSecure:  mypenweb.EnvOr("COOKIE_SECURE", "true") == "true",

		ScriptsPath: mypenweb.EnvOr("SCRIPTS_CONFIG", "scripts.toml"),

		LogLevel: mypenweb.EnvOr("LOG_LEVEL", "info"),
		DevLog:   mypenweb.EnvOr("DEV_LOG", "") == "true",
	}
	if ttl := mypenweb.EnvOr("POST_CACHE_TTL", ""); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			log.Fatalf("invalid POST_CACHE_TTL %q: %v", ttl, err)
		}
		cfg.PostCacheTTL = d
	}

	app := mypenweb.New(cfg)
	defer app.Close()
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
