package lumen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/lumen/samples"
)

func TestPhotoURL(t *testing.T) {
	s := Site{URL: "https://example.com", PathPrefix: "/blog"}
	assert.Empty(t, PhotoURL(s))

	s.Author.Photo = "/me.jpg"
	assert.Equal(t, "https://example.com/blog/me.jpg", PhotoURL(s))

	s.Author.Photo = "https://cdn.example.com/me.jpg"
	assert.Equal(t, "https://cdn.example.com/me.jpg", PhotoURL(s))

	s.Author.Photo = "javascript:alert(1)"
	assert.Empty(t, PhotoURL(s))
}

func TestJSONLD(t *testing.T) {
	s := loadSample(t, samples.Kevin)

	var doc struct {
		Context string           `json:"@context"`
		Graph   []map[string]any `json:"@graph"`
	}
	require.NoError(t, json.Unmarshal([]byte(JSONLD(s)), &doc))
	assert.Equal(t, "https://schema.org", doc.Context)
	require.Len(t, doc.Graph, 2)

	website, person := doc.Graph[0], doc.Graph[1]
	assert.Equal(t, "WebSite", website["@type"])
	assert.Equal(t, "Kevin Martínez", website["name"])
	assert.Equal(t, "https://kevinccbsg.netlify.com/", website["url"])
	assert.Equal(t, map[string]any{"@id": "https://kevinccbsg.netlify.com/#author"}, website["author"])

	assert.Equal(t, "Person", person["@type"])
	assert.Equal(t, "kevinccbsg@gmail.com", person["email"])
	assert.Equal(t, "https://kevinccbsg.netlify.com/kevin_martinez.jpg", person["image"])
	assert.Equal(t, []any{
		"https://www.twitter.com/kjmesc",
		"https://github.com/kevinccbsg",
		"https://www.linkedin.com/in/kevinjmartinez",
		"https://www.instagram.com/kevin_jme",
	}, person["sameAs"])
}

func TestJSONLDWithoutAuthor(t *testing.T) {
	s := validSite()
	var doc struct {
		Graph []map[string]any `json:"@graph"`
	}
	require.NoError(t, json.Unmarshal([]byte(JSONLD(s)), &doc))
	require.Len(t, doc.Graph, 1)
	assert.NotContains(t, doc.Graph[0], "author")
	assert.NotContains(t, doc.Graph[0], "description")
}

func TestJSONLDSkipsUnsafeContacts(t *testing.T) {
	s := validSite()
	s.Author.Name = "Jane"
	s.Author.Contacts = Contacts{Twitter: "javascript:alert(1)", GitHub: "jane"}

	out := JSONLD(s)
	assert.NotContains(t, out, "javascript")
	assert.Contains(t, out, "https://github.com/jane")
}

func TestMenuSitemap(t *testing.T) {
	s := validSite()
	s.PathPrefix = "/blog"
	s.Menu = append(s.Menu,
		MenuItem{Label: "Again", Path: "/"},
		MenuItem{Label: "GitHub", Path: "https://github.com/jane"},
	)
	set := menuSitemap(s)
	assert.Equal(t, "http://www.sitemaps.org/schemas/sitemap/0.9", set.XMLNS)
	assert.Equal(t, []sitemapURL{
		{Loc: "https://example.com/blog/"},
		{Loc: "https://example.com/blog/pages/about"},
	}, set.URLs)
}
