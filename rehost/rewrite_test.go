package rehost

import (
	"reflect"
	"strings"
	"testing"
)

func TestRewriteHTML(t *testing.T) {
	mapping := map[string]string{
		"https://cdn.example.com/a.png": "/images/blog/optimized/1-a.webp",
		"https://cdn.example.com/b.jpg": "/images/blog/optimized/2-b.webp",
	}

	doc := `<p>text</p>` +
		`<img src="https://cdn.example.com/a.png" alt="a">` +
		`<IMG SRC='https://cdn.example.com/b.jpg'>` +
		`<a href="https://cdn.example.com/a.png">link</a>`

	got := RewriteHTML(doc, mapping)

	if strings.Contains(got, "cdn.example.com") {
		t.Errorf("original URLs survived rewrite: %s", got)
	}
	if !strings.Contains(got, `<img src="/images/blog/optimized/1-a.webp" alt="a">`) {
		t.Errorf("img tag not rewritten: %s", got)
	}
	if !strings.Contains(got, `SRC='/images/blog/optimized/2-b.webp'`) {
		t.Errorf("uppercase/single-quote img tag not rewritten: %s", got)
	}
	if !strings.Contains(got, `href="/images/blog/optimized/1-a.webp"`) {
		t.Errorf("non-img occurrence not rewritten: %s", got)
	}
}

func TestRewriteHTMLEmptyMapping(t *testing.T) {
	doc := `<img src="https://cdn.example.com/a.png">`
	if got := RewriteHTML(doc, nil); got != doc {
		t.Errorf("empty mapping changed the document: %s", got)
	}
}

func TestRewriteHTMLUnmappedURLKept(t *testing.T) {
	doc := `<img src="https://cdn.example.com/kept.png"><img src="https://cdn.example.com/a.png">`
	got := RewriteHTML(doc, map[string]string{
		"https://cdn.example.com/a.png": "/images/blog/optimized/1-a.webp",
	})
	if !strings.Contains(got, "https://cdn.example.com/kept.png") {
		t.Error("unmapped URL should be left untouched")
	}
}

func TestImageSrcs(t *testing.T) {
	doc := `<img src="/one.png"><p>x</p><img src='https://h/two.jpg' alt=""><img src="/one.png">`
	want := []string{"/one.png", "https://h/two.jpg", "/one.png"}
	if got := ImageSrcs(doc); !reflect.DeepEqual(got, want) {
		t.Errorf("ImageSrcs = %v, want %v", got, want)
	}
	if got := ImageSrcs("<p>no images</p>"); got != nil {
		t.Errorf("ImageSrcs on plain text = %v, want nil", got)
	}
}

func TestFirstImageSrc(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{`<img src="https://h/a.png"><img src="/b.png">`, "https://h/a.png"},
		{`<img src="/local.png">`, "/local.png"},
		{`<img src="data:image/png;base64,x">`, ""},
		{`<p>nothing</p>`, ""},
	}
	for _, tt := range tests {
		if got := FirstImageSrc(tt.doc); got != tt.want {
			t.Errorf("FirstImageSrc(%q) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}
