package views

import (
	"strings"
	"time"
)

// Site holds site-wide settings populated once at startup.
// Every handler passes this to templates so nothing is hardcoded.
type Site struct {
	Name        string // SITE_NAME (default "Mypen")
	URL         string // SITE_URL  (default "https://mypen.ge")
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR

	Scripts []ScriptTag // third-party scripts injected into <head>
}

// ScriptTag is one third-party script (GTM, GA4, pixel snippets) loaded
// from the scripts config file. Either Src or Content is set.
type ScriptTag struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Enabled bool   `toml:"enabled"`
	Src     string `toml:"src"`
	Content string `toml:"content"`
	Async   bool   `toml:"async"`
	Defer   bool   `toml:"defer"`
}

// Lang selects which language fields a page renders.
type Lang string

const (
	LangEN Lang = "en"
	LangKA Lang = "ka"
)

// ParseLang maps a query/cookie value to a supported language, defaulting to English.
func ParseLang(v string) Lang {
	if strings.ToLower(v) == string(LangKA) {
		return LangKA
	}
	return LangEN
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	Image       string // og:image, optional
	OGType      string // "website" or "article"
}

// BlogPost is the bilingual content type stored in SQLite and rendered by templates.
// The *KA fields hold Georgian text; fallbacks to English are applied at write
// time, so stored rows always carry both languages.
type BlogPost struct {
	ID            int64
	Title         string
	TitleKA       string
	Slug          string
	Content       string
	ContentKA     string
	Excerpt       string
	ExcerptKA     string
	Author        string
	Published     bool
	FeaturedImage string // site-relative path or absolute URL; empty when none
	PublishedAt   time.Time
	UpdatedAt     time.Time
}

// Link returns the canonical site-relative path of the post.
func (p BlogPost) Link() string {
	return "/blog/" + p.Slug + "/"
}

// LocalTitle returns the title for lang.
func (p BlogPost) LocalTitle(lang Lang) string {
	if lang == LangKA && p.TitleKA != "" {
		return p.TitleKA
	}
	return p.Title
}

// LocalContent returns the body HTML for lang.
func (p BlogPost) LocalContent(lang Lang) string {
	if lang == LangKA && p.ContentKA != "" {
		return p.ContentKA
	}
	return p.Content
}

// LocalExcerpt returns the excerpt for lang.
func (p BlogPost) LocalExcerpt(lang Lang) string {
	if lang == LangKA && p.ExcerptKA != "" {
		return p.ExcerptKA
	}
	return p.Excerpt
}

// FAQ is one bilingual question/answer entry.
type FAQ struct {
	ID         int64
	Question   string
	QuestionKA string
	Answer     string
	AnswerKA   string
	Category   string
	CategoryKA string
	SortOrder  int
	Published  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LocalQuestion returns the question for lang.
func (f FAQ) LocalQuestion(lang Lang) string {
	if lang == LangKA && f.QuestionKA != "" {
		return f.QuestionKA
	}
	return f.Question
}

// LocalAnswer returns the answer HTML for lang.
func (f FAQ) LocalAnswer(lang Lang) string {
	if lang == LangKA && f.AnswerKA != "" {
		return f.AnswerKA
	}
	return f.Answer
}

// LocalCategory returns the category label for lang.
func (f FAQ) LocalCategory(lang Lang) string {
	if lang == LangKA && f.CategoryKA != "" {
		return f.CategoryKA
	}
	return f.Category
}
