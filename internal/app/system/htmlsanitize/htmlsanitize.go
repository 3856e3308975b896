// Package htmlsanitize cleans user-visible text before it is stored.
package htmlsanitize

import (
	"html"
	"net/url"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce sync.Once
	strict     *bluemonday.Policy
)

func strictPolicy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// PlainText strips every tag from s and returns trimmed plain text.
// Entities are decoded so the stored value is what the user should read;
// renderers must escape it.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy().Sanitize(s)))
}

// Link returns link if it is an in-app path ("/jobs/1") or an absolute
// http(s) URL, and "" otherwise. Paths starting with "//" or "/\" resolve
// to another host and are rejected.
func Link(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if strings.HasPrefix(link, "/") {
		if strings.HasPrefix(link, "//") || strings.HasPrefix(link, "/\\") {
			return ""
		}
		return link
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return ""
	}
	return u.String()
}
