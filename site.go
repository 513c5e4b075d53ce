package lumen

import (
	"path"
	"strings"
)

// Site is the blog's configuration record: metadata, author, and navigation.
// A Site is built once at load time and treated as a value afterwards; every
// accessor that shares it hands out a Clone.
type Site struct {
	URL               string     `json:"url" yaml:"url" validate:"required,http_url"`
	PathPrefix        string     `json:"pathPrefix" yaml:"pathPrefix" validate:"required,startswith=/"`
	Title             string     `json:"title" yaml:"title" validate:"required"`
	Subtitle          string     `json:"subtitle" yaml:"subtitle"`
	Copyright         string     `json:"copyright" yaml:"copyright"`
	DisqusShortname   string     `json:"disqusShortname" yaml:"disqusShortname"`
	PostsPerPage      int        `json:"postsPerPage" yaml:"postsPerPage" validate:"gte=1"`
	GoogleAnalyticsID string     `json:"googleAnalyticsId" yaml:"googleAnalyticsId"`
	UseKatex          bool       `json:"useKatex" yaml:"useKatex"`
	Menu              []MenuItem `json:"menu" yaml:"menu" validate:"dive"`
	Author            Author     `json:"author" yaml:"author"`
}

// MenuItem is one navigation entry.
type MenuItem struct {
	Label string `json:"label" yaml:"label" validate:"required"`
	Path  string `json:"path" yaml:"path" validate:"required"`
}

// Author describes the person the blog belongs to.
type Author struct {
	Name     string   `json:"name" yaml:"name"`
	Photo    string   `json:"photo" yaml:"photo"`
	Bio      string   `json:"bio" yaml:"bio"`
	Contacts Contacts `json:"contacts" yaml:"contacts"`
}

// Contacts maps each supported platform to a handle or URL. An empty value
// means the platform is not provided.
type Contacts struct {
	Email      string `json:"email" yaml:"email"`
	Twitter    string `json:"twitter" yaml:"twitter"`
	GitHub     string `json:"github" yaml:"github"`
	RSS        string `json:"rss" yaml:"rss"`
	VKontakte  string `json:"vkontakte" yaml:"vkontakte"`
	LinkedIn   string `json:"linkedin" yaml:"linkedin"`
	Instagram  string `json:"instagram" yaml:"instagram"`
	Line       string `json:"line" yaml:"line"`
	GitLab     string `json:"gitlab" yaml:"gitlab"`
	Weibo      string `json:"weibo" yaml:"weibo"`
	CodePen    string `json:"codepen" yaml:"codepen"`
	YouTube    string `json:"youtube" yaml:"youtube"`
	SoundCloud string `json:"soundcloud" yaml:"soundcloud"`
}

// Platforms lists the supported contact platforms in display order.
var Platforms = []string{
	"email", "twitter", "github", "rss", "vkontakte", "linkedin", "instagram",
	"line", "gitlab", "weibo", "codepen", "youtube", "soundcloud",
}

// Contact is a provided platform/value pair.
type Contact struct {
	Platform string `json:"platform"`
	Value    string `json:"value"`
	Href     string `json:"href"`
}

func (c *Contacts) fields() []*string {
	return []*string{
		&c.Email, &c.Twitter, &c.GitHub, &c.RSS, &c.VKontakte, &c.LinkedIn, &c.Instagram,
		&c.Line, &c.GitLab, &c.Weibo, &c.CodePen, &c.YouTube, &c.SoundCloud,
	}
}

// Get returns the value stored for platform. ok is false for platforms that
// are not supported.
func (c Contacts) Get(platform string) (value string, ok bool) {
	p := c.field(platform)
	if p == nil {
		return "", false
	}
	return *p, true
}

func (c *Contacts) field(platform string) *string {
	platform = strings.ToLower(strings.TrimSpace(platform))
	for i, f := range c.fields() {
		if Platforms[i] == platform {
			return f
		}
	}
	return nil
}

// Entries returns the provided contacts in display order with resolved links.
func (c Contacts) Entries() []Contact {
	var out []Contact
	for i, f := range c.fields() {
		v := strings.TrimSpace(*f)
		if v == "" {
			continue
		}
		out = append(out, Contact{
			Platform: Platforms[i],
			Value:    v,
			Href:     ContactHref(Platforms[i], v),
		})
	}
	return out
}

// Clone returns a deep copy of s.
func (s Site) Clone() Site {
	if s.Menu != nil {
		menu := make([]MenuItem, len(s.Menu))
		copy(menu, s.Menu)
		s.Menu = menu
	}
	return s
}

// MenuLabels returns the menu labels in display order.
func (s Site) MenuLabels() []string {
	labels := make([]string, 0, len(s.Menu))
	for _, m := range s.Menu {
		labels = append(labels, m.Label)
	}
	return labels
}

// PageURL returns the absolute URL of a site path, honoring PathPrefix.
func (s Site) PageURL(p string) string {
	joined := path.Join("/", s.PathPrefix, p)
	if strings.HasSuffix(p, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	return strings.TrimSuffix(s.URL, "/") + joined
}
