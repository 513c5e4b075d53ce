package lumen

import (
	"net/url"
	"strings"
)

// contactPrefixes turns a bare handle into a link for platforms that have a
// well-known profile URL. rss and anything unknown is used as given.
var contactPrefixes = map[string]string{
	"email":      "mailto:",
	"twitter":    "https://www.twitter.com/",
	"github":     "https://github.com/",
	"vkontakte":  "https://vk.com/",
	"linkedin":   "https://www.linkedin.com/in/",
	"instagram":  "https://www.instagram.com/",
	"line":       "line://ti/p/",
	"gitlab":     "https://www.gitlab.com/",
	"weibo":      "https://www.weibo.com/",
	"codepen":    "https://www.codepen.io/",
	"youtube":    "https://www.youtube.com/channel/",
	"soundcloud": "https://soundcloud.com/",
}

// linkSchemes are the schemes a contact value may already carry.
var linkSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"line":   true,
}

// ContactHref resolves a contact value to a link. Values that already carry
// an http, https, mailto or line scheme are returned unchanged, so both
// "kjmesc" and "https://twitter.com/kjmesc" work for twitter. Any other scheme
// yields "".
func ContactHref(platform, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if sc := scheme(value); sc != "" {
		if linkSchemes[sc] {
			return value
		}
		return ""
	}
	prefix, ok := contactPrefixes[strings.ToLower(platform)]
	if !ok {
		return value
	}
	return prefix + strings.TrimPrefix(value, "@")
}

// scheme returns the lowercased scheme of an absolute URL, or "".
func scheme(v string) string {
	u, err := url.Parse(v)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

func hasScheme(v string) bool {
	return scheme(v) != ""
}

// isWebURL reports whether v is an absolute http or https URL.
func isWebURL(v string) bool {
	sc := scheme(v)
	return sc == "http" || sc == "https"
}
