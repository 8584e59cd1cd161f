package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// formatDate renders a timestamp for display, per language.
func formatDate(t time.Time, lang Lang) string {
	if t.IsZero() {
		return ""
	}
	if lang == LangKA {
		return t.Format("02.01.2006")
	}
	return t.Format("January 2, 2006")
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using site values.
func WebsiteJsonLD(site Site) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      buildURL(site.URL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Organization",
			"name":  site.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(site Site, post BlogPost, lang Lang) string {
	postURL := buildURL(site.URL, "blog", post.Slug)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.LocalTitle(lang),
		"description":   post.LocalExcerpt(lang),
		"datePublished": post.PublishedAt.Format(time.RFC3339),
		"url":           postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author,
		}
	}
	if post.FeaturedImage != "" {
		img := post.FeaturedImage
		if strings.HasPrefix(img, "/") {
			img = strings.TrimSuffix(site.URL, "/") + img
		}
		data["image"] = img
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// FAQJsonLD produces a Schema.org FAQPage JSON-LD block.
func FAQJsonLD(faqs []FAQ, lang Lang) string {
	entries := make([]map[string]interface{}, 0, len(faqs))
	for _, f := range faqs {
		entries = append(entries, map[string]interface{}{
			"@type": "Question",
			"name":  f.LocalQuestion(lang),
			"acceptedAnswer": map[string]string{
				"@type": "Answer",
				"text":  f.LocalAnswer(lang),
			},
		})
	}
	data := map[string]interface{}{
		"@context":   "https://schema.org",
		"@type":      "FAQPage",
		"mainEntity": entries,
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
