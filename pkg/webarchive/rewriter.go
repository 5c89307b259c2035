package webarchive

import (
	"html"
	"net/url"
	"strings"
)

// candidates builds the textual forms of §4.4 in priority order, given u's
// containing document's URL main. pathAndQuery is appended only when u and
// main share a host, matching candidate 5's "shares the main-document host"
// condition.
func candidates(u *url.URL, main *url.URL) []string {
	query := ""
	if u.RawQuery != "" {
		query = "?" + html.EscapeString(u.RawQuery)
	}

	absolute := u.Scheme + "://" + u.Host + u.Path + query
	schemeRelative := strings.TrimPrefix(absolute, u.Scheme+":")
	hostRelative := strings.TrimPrefix(absolute, main.Scheme+"://"+main.Host)
	siblingRelative := strings.TrimPrefix(absolute, main.Scheme+"://"+main.Host+main.Path)

	out := []string{absolute, schemeRelative, hostRelative, siblingRelative}

	if u.Host == main.Host {
		raw := u.Path
		if u.RawQuery != "" {
			raw += "?" + u.RawQuery
		}
		out = append(out, raw)
	}

	return out
}

// RewriteResourceURL implements §4.4: it tries each textual form of u, in
// order, and replaces every occurrence of the first one that actually
// appears in doc with replacement. found is false if none matched — the
// caller logs this as "could not find", not as an error.
func RewriteResourceURL(doc string, u *url.URL, main *url.URL, replacement string) (rewritten string, found bool) {
	for _, candidate := range candidates(u, main) {
		if candidate == "" {
			continue
		}
		if strings.Contains(doc, candidate) {
			return strings.ReplaceAll(doc, candidate, replacement), true
		}
	}
	return doc, false
}

// rewriteSubframeURL is RewriteResourceURL restricted to candidates (1)-(4):
// a sub-frame's own document is the thing shared between two archives, not
// a "same host as main" query string, so candidate 5 does not apply.
func rewriteSubframeURL(doc string, u *url.URL, main *url.URL, replacement string) (rewritten string, found bool) {
	all := candidates(u, main)
	for _, candidate := range all[:4] {
		if candidate == "" {
			continue
		}
		if strings.Contains(doc, candidate) {
			return strings.ReplaceAll(doc, candidate, replacement), true
		}
	}
	return doc, false
}
