package lumen

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eringen/lumen/photo"
	"github.com/eringen/lumen/views"
)

// defaultPhotoWidth matches the size the theme shows the author avatar at, doubled for HiDPI.
const defaultPhotoWidth = 150

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/", a.handleInspector)
	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.metrics.registry, promhttp.HandlerOpts{})))
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/author/photo/", a.handleAuthorPhoto)

	api := e.Group("/api")
	api.GET("/config", a.handleConfig(FormatJSON))
	api.GET("/config.json", a.handleConfig(FormatJSON))
	api.GET("/config.yaml", a.handleConfig(FormatYAML))
	api.GET("/menu", a.handleMenu)
	api.GET("/author", a.handleAuthor)
	api.GET("/contacts", a.handleContacts)
	api.GET("/jsonld", a.handleJSONLD)

	if a.Config.AdminEnabled() {
		e.GET("/admin/", a.handleAdmin)
		e.POST("/admin/login/", a.handleAdminLogin)
		e.POST("/admin/logout/", handleAdminLogout)
		e.POST("/admin/reload/", a.handleAdminReload)
		e.GET("/admin/snapshots/", a.handleSnapshotList)
		e.GET("/admin/snapshots/:id/", a.handleSnapshot)
	}
}

func (a *App) handleConfig(format Format) echo.HandlerFunc {
	return func(c echo.Context) error {
		return RenderSite(c, a.Holder.Get(), format)
	}
}

func (a *App) handleMenu(c echo.Context) error {
	s := a.Holder.Get()
	if s.Menu == nil {
		s.Menu = []MenuItem{}
	}
	return c.JSON(http.StatusOK, s.Menu)
}

func (a *App) handleAuthor(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Holder.Get().Author)
}

func (a *App) handleContacts(c echo.Context) error {
	entries := a.Holder.Get().Author.Contacts.Entries()
	if entries == nil {
		entries = []Contact{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (a *App) handleJSONLD(c echo.Context) error {
	return c.Blob(http.StatusOK, "application/ld+json", []byte(JSONLD(a.Holder.Get())))
}

func (a *App) handleHealth(c echo.Context) error {
	sum, err := Checksum(a.Holder.Get())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "checksum": sum})
}

func (a *App) handleAuthorPhoto(c echo.Context) error {
	s := a.Holder.Get()
	p := strings.TrimSpace(s.Author.Photo)
	if p == "" {
		return echo.ErrNotFound
	}
	if hasScheme(p) {
		if !isWebURL(p) {
			return echo.ErrNotFound
		}
		return c.Redirect(http.StatusFound, p)
	}

	width := defaultPhotoWidth
	if w := c.QueryParam("w"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil || n < 1 || n > photo.MaxWidth {
			return echo.NewHTTPError(http.StatusBadRequest, "w must be between 1 and "+strconv.Itoa(photo.MaxWidth))
		}
		width = n
	}

	data, _, err := a.Photos.Get(p, width)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, photo.ErrOutsideRoot) {
			return echo.ErrNotFound
		}
		return err
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}

func (a *App) handleInspector(c echo.Context) error {
	s := a.Holder.Get()
	sum, err := Checksum(s)
	if err != nil {
		return err
	}
	return Render(c, views.Inspector(a.inspectorPage(s, sum)))
}

func (a *App) inspectorPage(s Site, checksum string) views.Page {
	p := views.Page{
		Title:    s.Title,
		Subtitle: s.Subtitle,
		URL:      s.URL,
		Checksum: checksum,
		Admin:    a.Config.AdminEnabled(),
		Author: views.Author{
			Name: s.Author.Name,
			Bio:  s.Author.Bio,
		},
		Settings: []views.Setting{
			{Key: "url", Value: s.URL},
			{Key: "pathPrefix", Value: s.PathPrefix},
			{Key: "postsPerPage", Value: strconv.Itoa(s.PostsPerPage)},
			{Key: "copyright", Value: s.Copyright},
			{Key: "disqusShortname", Value: s.DisqusShortname},
			{Key: "googleAnalyticsId", Value: s.GoogleAnalyticsID},
			{Key: "useKatex", Value: strconv.FormatBool(s.UseKatex)},
		},
	}
	switch img := s.Author.Photo; {
	case img == "":
	case isWebURL(img):
		p.Author.PhotoURL = img
	case !hasScheme(img):
		p.Author.PhotoURL = "/author/photo/"
	}
	for _, m := range s.Menu {
		p.Menu = append(p.Menu, views.Link{Label: m.Label, Href: s.PageURL(m.Path)})
	}
	for _, ct := range s.Author.Contacts.Entries() {
		p.Contacts = append(p.Contacts, views.Link{Label: ct.Platform, Href: ct.Href})
	}
	return p
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("server error")
		_ = RenderStatus(c, code, views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
