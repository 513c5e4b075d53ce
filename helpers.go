package lumen

import (
	"encoding/json"
	"strings"
)

// PhotoURL returns the absolute URL of the author photo, or "" when unset.
func PhotoURL(s Site) string {
	p := strings.TrimSpace(s.Author.Photo)
	switch {
	case p == "":
		return ""
	case isWebURL(p):
		return p
	case hasScheme(p):
		return ""
	default:
		return s.PageURL(p)
	}
}

// JSONLD returns a schema.org graph describing the site and its author.
func JSONLD(s Site) string {
	website := map[string]any{
		"@type": "WebSite",
		"@id":   s.PageURL("/") + "#website",
		"name":  s.Title,
		"url":   s.PageURL("/"),
	}
	if s.Subtitle != "" {
		website["description"] = s.Subtitle
	}
	if s.Copyright != "" {
		website["copyrightNotice"] = s.Copyright
	}
	graph := []any{website}

	if s.Author.Name != "" {
		person := map[string]any{
			"@type": "Person",
			"@id":   s.PageURL("/") + "#author",
			"name":  s.Author.Name,
		}
		if s.Author.Bio != "" {
			person["description"] = s.Author.Bio
		}
		if img := PhotoURL(s); img != "" {
			person["image"] = img
		}
		var sameAs []string
		for _, c := range s.Author.Contacts.Entries() {
			if c.Href == "" {
				continue
			}
			switch c.Platform {
			case "email":
				person["email"] = strings.TrimPrefix(c.Href, "mailto:")
			case "rss":
			default:
				sameAs = append(sameAs, c.Href)
			}
		}
		if len(sameAs) > 0 {
			person["sameAs"] = sameAs
		}
		website["author"] = map[string]string{"@id": person["@id"].(string)}
		graph = append(graph, person)
	}

	b, err := json.Marshal(map[string]any{
		"@context": "https://schema.org",
		"@graph":   graph,
	})
	if err != nil {
		return "{}"
	}
	return string(b)
}
