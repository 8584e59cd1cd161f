package views

import (
	"bytes"
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// page wraps body in the shared document chrome: head with meta/OpenGraph
// tags, third-party scripts from the site config, nav, and footer.
func page(site Site, lang Lang, meta PageMeta, jsonLD string, body func(buf *bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString("<!DOCTYPE html><html lang=\"")
		buf.WriteString(string(lang))
		buf.WriteString("\"><head><meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		buf.WriteString("<title>")
		buf.WriteString(html.EscapeString(meta.Title))
		buf.WriteString("</title>")
		if meta.Description != "" {
			writeMetaTag(&buf, "description", meta.Description)
		}
		writeOGTag(&buf, "og:title", meta.Title)
		if meta.Description != "" {
			writeOGTag(&buf, "og:description", meta.Description)
		}
		if meta.URL != "" {
			writeOGTag(&buf, "og:url", meta.URL)
			buf.WriteString("<link rel=\"canonical\" href=\"")
			buf.WriteString(html.EscapeString(meta.URL))
			buf.WriteString("\">")
		}
		if meta.Image != "" {
			writeOGTag(&buf, "og:image", meta.Image)
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		writeOGTag(&buf, "og:type", ogType)
		writeOGTag(&buf, "og:site_name", site.Name)
		buf.WriteString("<link rel=\"icon\" href=\"/favicon.svg\" type=\"image/svg+xml\">")
		buf.WriteString("<link rel=\"stylesheet\" href=\"/public/css/site.css\">")
		buf.WriteString("<link rel=\"alternate\" type=\"application/rss+xml\" href=\"/feed.xml\">")
		if jsonLD != "" {
			buf.WriteString("<script type=\"application/ld+json\">")
			buf.WriteString(jsonLD)
			buf.WriteString("</script>")
		}
		writeScripts(&buf, site.Scripts)
		buf.WriteString("</head><body>")
		writeNav(&buf, site, lang)
		buf.WriteString("<main>")
		body(&buf)
		buf.WriteString("</main>")
		writeFooter(&buf, site, lang)
		buf.WriteString("</body></html>")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeMetaTag(buf *bytes.Buffer, name, content string) {
	buf.WriteString("<meta name=\"")
	buf.WriteString(name)
	buf.WriteString("\" content=\"")
	buf.WriteString(html.EscapeString(content))
	buf.WriteString("\">")
}

func writeOGTag(buf *bytes.Buffer, property, content string) {
	buf.WriteString("<meta property=\"")
	buf.WriteString(property)
	buf.WriteString("\" content=\"")
	buf.WriteString(html.EscapeString(content))
	buf.WriteString("\">")
}

// writeScripts emits the enabled third-party script tags. Content is trusted
// configuration, not user input, and is written verbatim.
func writeScripts(buf *bytes.Buffer, scripts []ScriptTag) {
	for _, s := range scripts {
		if !s.Enabled {
			continue
		}
		if s.Src != "" {
			buf.WriteString("<script src=\"")
			buf.WriteString(html.EscapeString(s.Src))
			buf.WriteString("\"")
			if s.Async {
				buf.WriteString(" async")
			}
			if s.Defer {
				buf.WriteString(" defer")
			}
			buf.WriteString("></script>")
		}
		if s.Content != "" {
			buf.WriteString("<script>")
			buf.WriteString(strings.TrimSpace(s.Content))
			buf.WriteString("</script>")
		}
	}
}

func writeNav(buf *bytes.Buffer, site Site, lang Lang) {
	type navItem struct {
		href, en, ka string
	}
	items := []navItem{
		{"/", "Home", "მთავარი"},
		{"/blog/", "Blog", "ბლოგი"},
		{"/faq/", "FAQ", "კითხვები"},
	}
	buf.WriteString("<header class=\"site-header\"><nav><a class=\"brand\" href=\"/\">")
	buf.WriteString(html.EscapeString(site.Name))
	buf.WriteString("</a><ul>")
	for _, it := range items {
		label := it.en
		if lang == LangKA {
			label = it.ka
		}
		buf.WriteString("<li><a href=\"")
		buf.WriteString(it.href)
		buf.WriteString("\">")
		buf.WriteString(html.EscapeString(label))
		buf.WriteString("</a></li>")
	}
	buf.WriteString("</ul><div class=\"lang-switch\"><a href=\"?lang=en\"")
	if lang == LangEN {
		buf.WriteString(" class=\"active\"")
	}
	buf.WriteString(">EN</a> <a href=\"?lang=ka\"")
	if lang == LangKA {
		buf.WriteString(" class=\"active\"")
	}
	buf.WriteString(">ქა</a></div></nav></header>")
}

func writeFooter(buf *bytes.Buffer, site Site, lang Lang) {
	buf.WriteString("<footer class=\"site-footer\"><p>")
	buf.WriteString(html.EscapeString(site.Name))
	if lang == LangKA {
		buf.WriteString(" — AI წერის ასისტენტი")
	} else {
		buf.WriteString(" — your AI writing assistant")
	}
	buf.WriteString("</p><div class=\"store-badges\">")
	buf.WriteString("<a href=\"https://apps.apple.com/app/mypen\" rel=\"noopener\"><img src=\"/public/badges/app-store.svg\" alt=\"App Store\"></a>")
	buf.WriteString("<a href=\"https://play.google.com/store/apps/details?id=ge.mypen\" rel=\"noopener\"><img src=\"/public/badges/google-play.svg\" alt=\"Google Play\"></a>")
	buf.WriteString("</div></footer>")
}
