// Package rehost downloads external images referenced from post HTML,
// stores the originals, produces optimized WebP/JPEG derivatives, and
// rewrites the HTML to point at the hosted copies.
package rehost

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; MypenBot/1.0)"
	maxImageBytes    = 20 << 20 // refuse to buffer anything larger
)

// Config describes where rehosted files live and which host counts as our own.
type Config struct {
	// SiteHost is the site's own domain; URLs containing it are never rehosted.
	SiteHost string
	// ContentDir receives the untouched original bytes, for audit/backup.
	ContentDir string
	// OptimizedDir receives the WebP/JPEG derivative set.
	OptimizedDir string
	// PublicPath is the site-relative prefix under which OptimizedDir is served,
	// e.g. "/images/blog/optimized".
	PublicPath string

	UserAgent string
	Client    *http.Client
	Logger    zerolog.Logger
}

// Rehoster fetches and transcodes external images one URL at a time.
type Rehoster struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger

	// now is swapped in tests to pin filenames.
	now func() time.Time
}

// New returns a Rehoster for cfg. Zero-value fields get working defaults.
func New(cfg Config) *Rehoster {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Rehoster{cfg: cfg, client: client, log: cfg.Logger, now: time.Now}
}

// Rehost collects the set of distinct external image URLs across docs,
// downloads and transcodes each exactly once, and returns a mapping from
// original URL to the hosted full-size WebP path. URLs whose fetch or decode
// failed are absent from the mapping; callers leave those references as-is.
// Rehost never returns an error: every per-image failure is logged and
// absorbed so one bad image cannot abort the request.
func (r *Rehoster) Rehost(ctx context.Context, docs ...string) map[string]string {
	seen := make(map[string]struct{})
	var urls []string
	for _, doc := range docs {
		for _, u := range ImageSrcs(doc) {
			if !r.IsExternal(u) {
				continue
			}
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			urls = append(urls, u)
		}
	}
	mapping := make(map[string]string, len(urls))
	for _, u := range urls {
		hosted, err := r.HostRemote(ctx, u)
		if err != nil {
			r.log.Error().Err(err).Str("url", u).Msg("rehost image failed")
			continue
		}
		r.log.Info().Str("url", u).Str("hosted", hosted).Msg("rehosted image")
		mapping[u] = hosted
	}
	return mapping
}

// IsExternal reports whether imageURL is a rehosting candidate: an absolute
// http(s) URL not on the site's own domain.
func (r *Rehoster) IsExternal(imageURL string) bool {
	if !strings.HasPrefix(imageURL, "http") {
		return false
	}
	return r.cfg.SiteHost == "" || !strings.Contains(imageURL, r.cfg.SiteHost)
}

// HostRemote fetches imageURL and runs it through Process, returning the
// hosted full-size WebP path.
func (r *Rehoster) HostRemote(ctx context.Context, imageURL string) (string, error) {
	data, err := r.fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}
	return r.Process(data, urlBasename(imageURL))
}

// fetch downloads imageURL and rejects non-2xx responses and non-image
// content types. There are no retries; a failed fetch is final for this request.
func (r *Rehoster) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download: unexpected status %s", resp.Status)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("not an image: content-type %q", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	return data, nil
}

// Process stores the raw bytes in the content dir, writes the derivative
// encodings to the optimized dir, and returns the hosted full-size WebP path.
// A failure to archive the original or to write any single derivative is
// logged and absorbed; only a failed decode makes the whole image fail.
func (r *Rehoster) Process(data []byte, nameHint string) (string, error) {
	base, ext := r.baseName(nameHint)

	// Keep the original bytes for audit/backup. Non-fatal.
	if err := os.MkdirAll(r.cfg.ContentDir, 0o755); err == nil {
		original := filepath.Join(r.cfg.ContentDir, base+"."+ext)
		if err := os.WriteFile(original, data, 0o644); err != nil {
			r.log.Warn().Err(err).Str("path", original).Msg("archive original failed")
		}
	} else {
		r.log.Warn().Err(err).Str("dir", r.cfg.ContentDir).Msg("create content dir failed")
	}

	if err := os.MkdirAll(r.cfg.OptimizedDir, 0o755); err != nil {
		return "", fmt.Errorf("create optimized dir: %w", err)
	}
	if err := r.writeDerivatives(data, base); err != nil {
		return "", err
	}
	return path.Join(r.cfg.PublicPath, base+".webp"), nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// baseName derives the deterministic file base from the current time and a
// sanitized form of nameHint, plus the extension (defaulting to jpg).
func (r *Rehoster) baseName(nameHint string) (base, ext string) {
	name := nameHint
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		name = "image"
	}
	clean := unsafeNameChars.ReplaceAllString(name, "-")

	ext = "jpg"
	stem := clean
	if i := strings.LastIndexByte(clean, '.'); i >= 0 {
		if e := strings.ToLower(clean[i+1:]); e != "" {
			ext = e
		}
		stem = clean[:i]
	}
	if stem == "" {
		stem = "image"
	}
	return fmt.Sprintf("%d-%s", r.now().UnixMilli(), stem), ext
}

// urlBasename extracts the final path segment of a URL for use as a name hint.
func urlBasename(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "image"
	}
	return path.Base(u.Path)
}
