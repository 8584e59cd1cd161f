package rehost

import (
	"regexp"
	"sort"
	"strings"
)

// RewriteHTML replaces every occurrence of each mapped original URL with its
// hosted path. Each URL is first rewritten inside <img src> attributes (both
// quote styles, any attribute-name casing), then any verbatim occurrence left
// anywhere in the document is replaced as a safety net for URLs used outside
// img tags (inline styles, anchors). An empty mapping returns doc unchanged.
func RewriteHTML(doc string, mapping map[string]string) string {
	if len(mapping) == 0 {
		return doc
	}
	// Iterate in stable order. Correctness does not depend on it, but
	// deterministic output keeps logs and tests sane.
	urls := make([]string, 0, len(mapping))
	for u := range mapping {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	for _, original := range urls {
		hosted := mapping[original]
		escaped := regexp.QuoteMeta(original)
		imgPattern := regexp.MustCompile(`(?i)(<img[^>]+src=["'])` + escaped + `(["'][^>]*>)`)
		doc = imgPattern.ReplaceAllStringFunc(doc, func(tag string) string {
			m := imgPattern.FindStringSubmatch(tag)
			return m[1] + hosted + m[2]
		})
		doc = strings.ReplaceAll(doc, original, hosted)
	}
	return doc
}
