package lumen

import (
	"encoding/xml"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// menuSitemap lists every internal menu path once, in menu order.
func menuSitemap(s Site) sitemapURLSet {
	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	seen := make(map[string]struct{})
	for _, m := range s.Menu {
		if hasScheme(m.Path) {
			continue
		}
		loc := s.PageURL(m.Path)
		if _, dup := seen[loc]; dup {
			continue
		}
		seen[loc] = struct{}{}
		set.URLs = append(set.URLs, sitemapURL{Loc: loc})
	}
	return set
}

func (a *App) handleSitemap(c echo.Context) error {
	return renderXML(c, "application/xml; charset=utf-8", menuSitemap(a.Holder.Get()))
}
