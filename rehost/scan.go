package rehost

import "regexp"

// imgSrcPattern matches a minimal <img ... src="..."> shape, case-insensitive,
// with either quote style. This is deliberately a narrow text scan, not an
// HTML parser: malformed markup and nested quotes are out of contract.
var imgSrcPattern = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["'][^>]*>`)

// ImageSrcs returns every <img> src value in doc, in document order,
// duplicates included. Callers dedupe as needed.
func ImageSrcs(doc string) []string {
	matches := imgSrcPattern.FindAllStringSubmatch(doc, -1)
	if len(matches) == 0 {
		return nil
	}
	srcs := make([]string, 0, len(matches))
	for _, m := range matches {
		srcs = append(srcs, m[1])
	}
	return srcs
}

// FirstImageSrc returns the first <img> src in doc that is an absolute URL or
// a site-relative path, or "" when none qualifies. Used to pick a fallback
// featured image.
func FirstImageSrc(doc string) string {
	m := imgSrcPattern.FindStringSubmatch(doc)
	if m == nil {
		return ""
	}
	src := m[1]
	if len(src) > 0 && (src[0] == '/' || (len(src) >= 4 && src[:4] == "http")) {
		return src
	}
	return ""
}
