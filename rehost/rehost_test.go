package rehost

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func newTestRehoster(t *testing.T, siteHost string) *Rehoster {
	t.Helper()
	dir := t.TempDir()
	r := New(Config{
		SiteHost:     siteHost,
		ContentDir:   filepath.Join(dir, "content"),
		OptimizedDir: filepath.Join(dir, "optimized"),
		PublicPath:   "/images/blog/optimized",
		Logger:       zerolog.Nop(),
	})
	// Pin the timestamp so output names are predictable.
	r.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return r
}

func TestRehostFetchesEachURLOnce(t *testing.T) {
	var hits int64
	pngData := testPNG(t, 10, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngData)
	}))
	defer srv.Close()

	r := newTestRehoster(t, "mypen.ge")
	imgURL := srv.URL + "/photo.png"
	docEN := `<p>intro</p><img src="` + imgURL + `" alt=""><img src="` + imgURL + `">`
	docKA := `<p>შესავალი</p><img src="` + imgURL + `">`

	mapping := r.Rehost(context.Background(), docEN, docKA)

	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}
	hosted, ok := mapping[imgURL]
	if !ok {
		t.Fatalf("mapping missing %q: %v", imgURL, mapping)
	}
	if !strings.HasPrefix(hosted, "/images/blog/optimized/") || !strings.HasSuffix(hosted, ".webp") {
		t.Errorf("hosted path = %q, want /images/blog/optimized/*.webp", hosted)
	}
}

func TestRehostPartialFailure(t *testing.T) {
	pngData := testPNG(t, 10, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.Contains(req.URL.Path, "missing") {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngData)
	}))
	defer srv.Close()

	r := newTestRehoster(t, "mypen.ge")
	good := srv.URL + "/good.png"
	bad := srv.URL + "/missing.png"
	doc := `<img src="` + good + `"><img src="` + bad + `">`

	mapping := r.Rehost(context.Background(), doc)

	if _, ok := mapping[good]; !ok {
		t.Error("good URL absent from mapping")
	}
	if _, ok := mapping[bad]; ok {
		t.Error("failed URL present in mapping")
	}
}

func TestRehostRejectsNonImageContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not an image</html>"))
	}))
	defer srv.Close()

	r := newTestRehoster(t, "mypen.ge")
	if _, err := r.HostRemote(context.Background(), srv.URL+"/page"); err == nil {
		t.Error("HostRemote accepted text/html content")
	}
}

func TestIsExternal(t *testing.T) {
	r := newTestRehoster(t, "mypen.ge")
	tests := []struct {
		url  string
		want bool
	}{
		{"https://cdn.example.com/a.png", true},
		{"http://cdn.example.com/a.png", true},
		{"https://mypen.ge/images/a.png", false},
		{"/images/blog/a.png", false},
		{"data:image/png;base64,xxx", false},
	}
	for _, tt := range tests {
		if got := r.IsExternal(tt.url); got != tt.want {
			t.Errorf("IsExternal(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestProcessWritesDerivativeSet(t *testing.T) {
	r := newTestRehoster(t, "mypen.ge")
	data := testPNG(t, 1600, 900)

	hosted, err := r.Process(data, "hero image@2x.png")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if hosted != "/images/blog/optimized/1700000000000-hero-image-2x.webp" {
		t.Errorf("hosted = %q", hosted)
	}

	base := "1700000000000-hero-image-2x"
	for _, name := range []string{
		base + ".webp",
		base + "-thumb.webp",
		base + "-medium.webp",
		base + "-large.webp",
		base + ".jpg",
	} {
		if _, err := os.Stat(filepath.Join(r.cfg.OptimizedDir, name)); err != nil {
			t.Errorf("derivative %s missing: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(r.cfg.ContentDir, base+".png")); err != nil {
		t.Errorf("archived original missing: %v", err)
	}
}

func TestProcessRejectsUndecodableData(t *testing.T) {
	r := newTestRehoster(t, "mypen.ge")
	if _, err := r.Process([]byte("definitely not an image"), "bogus.png"); err == nil {
		t.Error("Process accepted undecodable bytes")
	}
}

func TestBaseName(t *testing.T) {
	r := newTestRehoster(t, "mypen.ge")
	tests := []struct {
		hint     string
		wantBase string
		wantExt  string
	}{
		{"photo.png", "1700000000000-photo", "png"},
		{"photo.png?w=500&q=80", "1700000000000-photo", "png"},
		{"weird name!.JPEG", "1700000000000-weird-name-", "jpeg"},
		{"noext", "1700000000000-noext", "jpg"},
		{"", "1700000000000-image", "jpg"},
	}
	for _, tt := range tests {
		base, ext := r.baseName(tt.hint)
		if base != tt.wantBase || ext != tt.wantExt {
			t.Errorf("baseName(%q) = (%q, %q), want (%q, %q)", tt.hint, base, ext, tt.wantBase, tt.wantExt)
		}
	}
}

func TestFitInside(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3000, 2000))

	medium := fitInside(src, 800, 0)
	if b := medium.Bounds(); b.Dx() != 800 {
		t.Errorf("medium width = %d, want 800", b.Dx())
	}

	thumb := fitInside(src, 400, 225)
	if b := thumb.Bounds(); b.Dx() > 400 || b.Dy() > 225 {
		t.Errorf("thumb bounds = %v, want within 400x225", b)
	}

	small := image.NewRGBA(image.Rect(0, 0, 300, 200))
	if got := fitInside(small, 800, 0); got != small {
		t.Error("fitInside upscaled a small image")
	}
	if got := fitInside(small, 0, 0); got != small {
		t.Error("fitInside with zero bounds should return the source")
	}
}
