package views

import (
	"bytes"
	"context"
	"html"

	"github.com/a-h/templ"
)

// Home renders the landing page: hero, latest posts, and top FAQs.
func Home(site Site, lang Lang, posts []BlogPost, faqs []FAQ) templ.Component {
	meta := PageMeta{
		Title:       site.Name,
		Description: site.Description,
		URL:         buildURL(site.URL),
		OGType:      "website",
	}
	return page(site, lang, meta, WebsiteJsonLD(site), func(buf *bytes.Buffer) {
		buf.WriteString("<section class=\"hero\"><h1>")
		if lang == LangKA {
			buf.WriteString("წერე უკეთესად Mypen-თან ერთად")
		} else {
			buf.WriteString("Write better with Mypen")
		}
		buf.WriteString("</h1><p>")
		buf.WriteString(html.EscapeString(site.Description))
		buf.WriteString("</p><a class=\"cta\" href=\"https://app.mypen.ge/\">")
		if lang == LangKA {
			buf.WriteString("სცადე უფასოდ")
		} else {
			buf.WriteString("Try it free")
		}
		buf.WriteString("</a></section>")

		if len(posts) > 0 {
			buf.WriteString("<section class=\"latest-posts\"><h2>")
			if lang == LangKA {
				buf.WriteString("ბლოგი")
			} else {
				buf.WriteString("From the blog")
			}
			buf.WriteString("</h2>")
			writePostCards(buf, posts, lang)
			buf.WriteString("</section>")
		}

		if len(faqs) > 0 {
			buf.WriteString("<section class=\"faq-preview\"><h2>FAQ</h2>")
			writeFAQList(buf, faqs, lang)
			buf.WriteString("</section>")
		}
	})
}

// BlogIndex renders the blog listing page.
func BlogIndex(site Site, lang Lang, posts []BlogPost) templ.Component {
	title := "Blog — " + site.Name
	if lang == LangKA {
		title = "ბლოგი — " + site.Name
	}
	meta := PageMeta{
		Title:       title,
		Description: site.Description,
		URL:         buildURL(site.URL, "blog"),
		OGType:      "website",
	}
	return page(site, lang, meta, "", func(buf *bytes.Buffer) {
		buf.WriteString("<section class=\"blog-index\"><h1>")
		if lang == LangKA {
			buf.WriteString("ბლოგი")
		} else {
			buf.WriteString("Blog")
		}
		buf.WriteString("</h1>")
		if len(posts) == 0 {
			buf.WriteString("<p class=\"empty\">")
			if lang == LangKA {
				buf.WriteString("პოსტები ჯერ არ არის.")
			} else {
				buf.WriteString("No posts yet.")
			}
			buf.WriteString("</p>")
		} else {
			writePostCards(buf, posts, lang)
		}
		buf.WriteString("</section>")
	})
}

// Post renders a single blog post page. Post content is stored HTML and is
// written verbatim.
func Post(site Site, lang Lang, post BlogPost) templ.Component {
	meta := PageMeta{
		Title:       post.LocalTitle(lang) + " — " + site.Name,
		Description: post.LocalExcerpt(lang),
		URL:         buildURL(site.URL, "blog", post.Slug),
		OGType:      "article",
	}
	if post.FeaturedImage != "" {
		img := post.FeaturedImage
		if img[0] == '/' {
			img = site.URL + img
		}
		meta.Image = img
	}
	return page(site, lang, meta, BlogPostingJsonLD(site, post, lang), func(buf *bytes.Buffer) {
		buf.WriteString("<article class=\"post\"><header><h1>")
		buf.WriteString(html.EscapeString(post.LocalTitle(lang)))
		buf.WriteString("</h1><p class=\"post-meta\">")
		buf.WriteString(html.EscapeString(post.Author))
		buf.WriteString(" · <time datetime=\"")
		buf.WriteString(post.PublishedAt.Format("2006-01-02"))
		buf.WriteString("\">")
		buf.WriteString(formatDate(post.PublishedAt, lang))
		buf.WriteString("</time></p>")
		if post.FeaturedImage != "" {
			buf.WriteString("<img class=\"featured\" src=\"")
			buf.WriteString(html.EscapeString(post.FeaturedImage))
			buf.WriteString("\" alt=\"\">")
		}
		buf.WriteString("</header><div class=\"post-body\">")
		buf.WriteString(post.LocalContent(lang))
		buf.WriteString("</div></article>")
	})
}

// FAQPage renders the FAQ page with a category filter.
func FAQPage(site Site, lang Lang, faqs []FAQ, categories []string, active string) templ.Component {
	title := "FAQ — " + site.Name
	meta := PageMeta{
		Title:       title,
		Description: site.Description,
		URL:         buildURL(site.URL, "faq"),
		OGType:      "website",
	}
	return page(site, lang, meta, FAQJsonLD(faqs, lang), func(buf *bytes.Buffer) {
		buf.WriteString("<section class=\"faq\"><h1>")
		if lang == LangKA {
			buf.WriteString("ხშირად დასმული კითხვები")
		} else {
			buf.WriteString("Frequently Asked Questions")
		}
		buf.WriteString("</h1>")
		if len(categories) > 1 {
			buf.WriteString("<nav class=\"faq-categories\"><a href=\"/faq/\"")
			if active == "" {
				buf.WriteString(" class=\"active\"")
			}
			buf.WriteString(">All</a>")
			for _, cat := range categories {
				buf.WriteString("<a href=\"/faq/?category=")
				buf.WriteString(html.EscapeString(cat))
				buf.WriteString("\"")
				if cat == active {
					buf.WriteString(" class=\"active\"")
				}
				buf.WriteString(">")
				buf.WriteString(html.EscapeString(cat))
				buf.WriteString("</a>")
			}
			buf.WriteString("</nav>")
		}
		writeFAQList(buf, faqs, lang)
		buf.WriteString("</section>")
	})
}

// NotFound renders the 404 page.
func NotFound(site Site, lang Lang) templ.Component {
	meta := PageMeta{Title: "404 — " + site.Name, OGType: "website"}
	return page(site, lang, meta, "", func(buf *bytes.Buffer) {
		buf.WriteString("<section class=\"error-page\"><h1>404</h1><p>")
		if lang == LangKA {
			buf.WriteString("გვერდი ვერ მოიძებნა.")
		} else {
			buf.WriteString("Page not found.")
		}
		buf.WriteString("</p><a href=\"/\">&larr; ")
		buf.WriteString(html.EscapeString(site.Name))
		buf.WriteString("</a></section>")
	})
}

// ServerError renders the 500 page.
func ServerError(site Site, lang Lang) templ.Component {
	meta := PageMeta{Title: "Error — " + site.Name, OGType: "website"}
	return page(site, lang, meta, "", func(buf *bytes.Buffer) {
		buf.WriteString("<section class=\"error-page\"><h1>500</h1><p>")
		if lang == LangKA {
			buf.WriteString("რაღაც შეცდომა მოხდა. სცადეთ მოგვიანებით.")
		} else {
			buf.WriteString("Something went wrong. Please try again later.")
		}
		buf.WriteString("</p></section>")
	})
}

func writePostCards(buf *bytes.Buffer, posts []BlogPost, lang Lang) {
	buf.WriteString("<div class=\"post-cards\">")
	for _, p := range posts {
		buf.WriteString("<article class=\"card\"><a href=\"")
		buf.WriteString(p.Link())
		buf.WriteString("\">")
		if p.FeaturedImage != "" {
			buf.WriteString("<img src=\"")
			buf.WriteString(html.EscapeString(p.FeaturedImage))
			buf.WriteString("\" alt=\"\" loading=\"lazy\">")
		}
		buf.WriteString("<h3>")
		buf.WriteString(html.EscapeString(p.LocalTitle(lang)))
		buf.WriteString("</h3>")
		if ex := p.LocalExcerpt(lang); ex != "" {
			buf.WriteString("<p>")
			buf.WriteString(html.EscapeString(ex))
			buf.WriteString("</p>")
		}
		buf.WriteString("<time datetime=\"")
		buf.WriteString(p.PublishedAt.Format("2006-01-02"))
		buf.WriteString("\">")
		buf.WriteString(formatDate(p.PublishedAt, lang))
		buf.WriteString("</time></a></article>")
	}
	buf.WriteString("</div>")
}

// writeFAQList emits details/summary entries. Answers are stored HTML.
func writeFAQList(buf *bytes.Buffer, faqs []FAQ, lang Lang) {
	buf.WriteString("<div class=\"faq-list\">")
	for _, f := range faqs {
		buf.WriteString("<details><summary>")
		buf.WriteString(html.EscapeString(f.LocalQuestion(lang)))
		buf.WriteString("</summary><div class=\"faq-answer\">")
		buf.WriteString(f.LocalAnswer(lang))
		buf.WriteString("</div></details>")
	}
	buf.WriteString("</div>")
}

// Render is a test helper that materializes a component to a string.
func Render(c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
