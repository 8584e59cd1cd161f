package views

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

var testSite = Site{
	Name:        "Mypen",
	URL:         "https://mypen.ge",
	Description: "AI writing assistant",
	Author:      "Mypen",
}

func TestParseLang(t *testing.T) {
	tests := []struct {
		in   string
		want Lang
	}{
		{"ka", LangKA},
		{"en", LangEN},
		{"KA", LangKA},
		{"fr", LangEN},
		{"", LangEN},
	}
	for _, tt := range tests {
		if got := ParseLang(tt.in); got != tt.want {
			t.Errorf("ParseLang(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLocalFieldsFallBackToEnglish(t *testing.T) {
	p := BlogPost{Title: "English", Content: "<p>en</p>"}
	if got := p.LocalTitle(LangKA); got != "English" {
		t.Errorf("LocalTitle(ka) = %q, want English fallback", got)
	}
	p.TitleKA = "ქართული"
	if got := p.LocalTitle(LangKA); got != "ქართული" {
		t.Errorf("LocalTitle(ka) = %q, want Georgian", got)
	}
	if got := p.LocalTitle(LangEN); got != "English" {
		t.Errorf("LocalTitle(en) = %q, want English", got)
	}
}

func TestHomeRendersHeroAndScripts(t *testing.T) {
	site := testSite
	site.Scripts = []ScriptTag{
		{ID: "ga", Enabled: true, Src: "https://example.com/ga.js", Async: true},
		{ID: "off", Enabled: false, Src: "https://example.com/off.js"},
	}

	out, err := Render(Home(site, LangEN, nil, nil))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, `<html lang="en">`) {
		t.Error("missing lang attribute")
	}
	if !strings.Contains(out, "Write better with Mypen") {
		t.Error("missing hero heading")
	}
	if !strings.Contains(out, `<script src="https://example.com/ga.js" async></script>`) {
		t.Error("enabled script tag not emitted")
	}
	if strings.Contains(out, "off.js") {
		t.Error("disabled script tag should not be emitted")
	}
}

func TestPostEscapesTitleButNotContent(t *testing.T) {
	post := BlogPost{
		Title:       "Title <with> brackets",
		Slug:        "t",
		Content:     "<p>body <strong>html</strong></p>",
		PublishedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	out, err := Render(Post(testSite, LangEN, post))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, "Title &lt;with&gt; brackets") {
		t.Error("title should be HTML-escaped")
	}
	if !strings.Contains(out, "<p>body <strong>html</strong></p>") {
		t.Error("stored content should be rendered verbatim")
	}
}

func TestFAQJsonLD(t *testing.T) {
	faqs := []FAQ{
		{Question: "Q1?", QuestionKA: "კ1?", Answer: "<p>A1</p>", AnswerKA: "<p>პ1</p>"},
	}
	raw := FAQJsonLD(faqs, LangKA)

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("JSON-LD is not valid JSON: %v\n%s", err, raw)
	}
	if doc["@type"] != "FAQPage" {
		t.Errorf("@type = %v, want FAQPage", doc["@type"])
	}
	entities := doc["mainEntity"].([]interface{})
	q := entities[0].(map[string]interface{})
	if q["name"] != "კ1?" {
		t.Errorf("question name = %v, want Georgian variant", q["name"])
	}
}

func TestBlogPostLink(t *testing.T) {
	p := BlogPost{Slug: "my-post"}
	if got := p.Link(); got != "/blog/my-post/" {
		t.Errorf("Link() = %q, want /blog/my-post/", got)
	}
}
