package lumen

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/lumen/samples"
)

const testPassword = "hunter2"

func newTestApp(t *testing.T, admin bool) *App {
	t.Helper()
	dir := t.TempDir()

	data, err := samples.Read(samples.Kevin)
	require.NoError(t, err)
	cfgPath := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(cfgPath, data, 0o644))

	static := filepath.Join(dir, "static")
	require.NoError(t, os.MkdirAll(static, 0o755))
	img := image.NewRGBA(image.Rect(0, 0, 300, 300))
	for x := 0; x < 300; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(static, "kevin_martinez.jpg"), buf.Bytes(), 0o644))

	cfg := ServerConfig{
		ConfigPath:   cfgPath,
		DatabasePath: filepath.Join(dir, "data", "lumen.db"),
		StaticDir:    static,
	}
	if admin {
		cfg.AdminPassword = testPassword
		cfg.SessionSecret = "test-session-secret-0123456789abcdef"
	}
	a := New(cfg)
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(func() { a.Close() })
	return a
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func get(a *App, target string) *httptest.ResponseRecorder {
	return serve(a, httptest.NewRequest(http.MethodGet, target, nil))
}

func TestInitRequiresConfigPath(t *testing.T) {
	err := New(ServerConfig{}).Init(context.Background())
	assert.Error(t, err)
}

func TestInitRequiresSessionSecretForAdmin(t *testing.T) {
	err := New(ServerConfig{ConfigPath: "site.yaml", AdminPassword: "x"}).Init(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SessionSecret")
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	p := writeTemp(t, "site.yaml", "url: https://example.com\ntitle: T\npostsPerPage: 0\n")
	a := New(ServerConfig{ConfigPath: p, DatabasePath: filepath.Join(t.TempDir(), "x.db")})
	t.Cleanup(func() { a.Close() })
	assert.ErrorIs(t, a.Init(context.Background()), ErrInvalidConfig)
}

func TestInitStoresStartupSnapshot(t *testing.T) {
	a := newTestApp(t, false)
	snap, err := a.Store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceStartup, snap.Source)
	assert.Equal(t, "kjmesc", snap.Site.Author.Contacts.Twitter)
}

func TestAPIConfig(t *testing.T) {
	a := newTestApp(t, false)

	rec := get(a, "/api/config")
	require.Equal(t, http.StatusOK, rec.Code)

	var s Site
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, "Kevin Martínez", s.Title)
	assert.Equal(t, "kjmesc", s.Author.Contacts.Twitter)
}

func TestAPIConfigYAML(t *testing.T) {
	a := newTestApp(t, false)

	rec := get(a, "/api/config.yaml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/yaml")

	s, err := Parse(rec.Body.Bytes(), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, a.Holder.Get(), s)
}

func TestAPIMenuAuthorContacts(t *testing.T) {
	a := newTestApp(t, false)

	var menu []MenuItem
	rec := get(a, "/api/menu")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &menu))
	assert.Equal(t, []MenuItem{{Label: "Articles", Path: "/"}, {Label: "About me", Path: "/pages/about"}}, menu)

	var author Author
	rec = get(a, "/api/author")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &author))
	assert.Equal(t, "Kevin Martínez", author.Name)

	var contacts []Contact
	rec = get(a, "/api/contacts")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contacts))
	require.Len(t, contacts, 5)
	assert.Equal(t, Contact{Platform: "twitter", Value: "kjmesc", Href: "https://www.twitter.com/kjmesc"}, contacts[1])
}

func TestAPICORS(t *testing.T) {
	a := newTestApp(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	req.Header.Set(echo.HeaderOrigin, "https://kevinccbsg.netlify.com")
	rec := serve(a, req)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestJSONLDEndpoint(t *testing.T) {
	a := newTestApp(t, false)
	rec := get(a, "/api/jsonld")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/ld+json", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Body.String(), `"@context":"https://schema.org"`)
}

func TestSitemapEndpoint(t *testing.T) {
	a := newTestApp(t, false)
	rec := get(a, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, "<loc>https://kevinccbsg.netlify.com/</loc>")
	assert.Contains(t, body, "<loc>https://kevinccbsg.netlify.com/pages/about</loc>")
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func TestHealthz(t *testing.T) {
	a := newTestApp(t, false)
	rec := get(a, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	want, err := Checksum(a.Holder.Get())
	require.NoError(t, err)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, want, body["checksum"])
}

func TestMetricsEndpoint(t *testing.T) {
	a := newTestApp(t, false)
	get(a, "/api/menu")

	rec := get(a, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `lumen_config_reloads_total{result="success"} 1`)
	assert.Contains(t, body, "lumen_config_menu_items 2")
	assert.Contains(t, body, `lumen_http_requests_total{method="GET",route="/api/menu",status="200"} 1`)
	assert.NotContains(t, body, `lumen_config_reloads_total{result="failure"}`)
}

func TestMetricsCountWatchFailures(t *testing.T) {
	a := newTestApp(t, false)
	a.Holder.debounce = 20 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Holder.Watch(ctx))

	require.NoError(t, os.WriteFile(a.Config.ConfigPath, []byte("url: https://example.com\ntitle: T\npostsPerPage: 0\n"), 0o644))

	assert.Eventually(t, func() bool {
		return strings.Contains(get(a, "/metrics").Body.String(), `lumen_config_reloads_total{result="failure"}`)
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, "Kevin Martínez", a.Holder.Get().Title)
}

func TestInspectorPage(t *testing.T) {
	a := newTestApp(t, false)
	rec := get(a, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Kevin Martínez</h1>")
	assert.Contains(t, body, `href="https://kevinccbsg.netlify.com/pages/about"`)
	assert.Contains(t, body, `href="https://www.twitter.com/kjmesc"`)
	assert.Contains(t, body, `src="/author/photo/"`)
	assert.NotContains(t, body, `href="/admin/"`)
}

func TestAuthorPhoto(t *testing.T) {
	a := newTestApp(t, false)

	rec := get(a, "/author/photo/?w=60")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
	cfg, format, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 60, cfg.Width)

	assert.Equal(t, http.StatusBadRequest, get(a, "/author/photo/?w=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(a, "/author/photo/?w=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(a, "/author/photo/?w=5000").Code)
}

func TestAuthorPhotoMissingFile(t *testing.T) {
	a := newTestApp(t, false)
	require.NoError(t, os.Remove(filepath.Join(a.Config.StaticDir, "kevin_martinez.jpg")))
	assert.Equal(t, http.StatusNotFound, get(a, "/author/photo/").Code)
}

func TestNotFoundPage(t *testing.T) {
	a := newTestApp(t, false)

	rec := get(a, "/nothing/here/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>404</h1>")

	rec = get(a, "/api/nothing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

func TestAdminRoutesAbsentWithoutPassword(t *testing.T) {
	a := newTestApp(t, false)
	assert.Equal(t, http.StatusNotFound, get(a, "/admin/").Code)
}

func TestReloadSnapshotsChange(t *testing.T) {
	a := newTestApp(t, false)
	ctx := context.Background()

	s := a.Holder.Get()
	s.Title = "Reloaded"
	require.NoError(t, WriteFile(a.Config.ConfigPath, s))

	got, err := a.Reload(ctx, SourceWatch)
	require.NoError(t, err)
	assert.Equal(t, "Reloaded", got.Title)

	assert.Eventually(t, func() bool {
		snap, err := a.Store.Latest(ctx)
		return err == nil && snap.Source == SourceWatch && snap.Site.Title == "Reloaded"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReloadFailureCounted(t *testing.T) {
	a := newTestApp(t, false)
	require.NoError(t, os.WriteFile(a.Config.ConfigPath, []byte("url: nope\n"), 0o644))

	_, err := a.Reload(context.Background(), SourceAdmin)
	require.Error(t, err)
	assert.Contains(t, get(a, "/metrics").Body.String(), `lumen_config_reloads_total{result="failure"} 1`)
}

// adminClient carries cookies between requests the way a browser would.
type adminClient struct {
	t       *testing.T
	app     *App
	cookies map[string]*http.Cookie
	csrf    string
}

func newAdminClient(t *testing.T, a *App) *adminClient {
	c := &adminClient{t: t, app: a, cookies: map[string]*http.Cookie{}}
	rec := c.do(httptest.NewRequest(http.MethodGet, "/admin/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, c.csrf, "csrf cookie")
	return c
}

func (c *adminClient) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := serve(c.app, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
		if ck.Name == "_csrf" {
			c.csrf = ck.Value
		}
	}
	return rec
}

func (c *adminClient) post(target string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", c.csrf)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return c.do(req)
}

func TestAdminLoginFlow(t *testing.T) {
	a := newTestApp(t, true)
	c := newAdminClient(t, a)

	rec := c.post("/admin/login/", url.Values{"password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong password.")

	rec = c.do(httptest.NewRequest(http.MethodGet, "/admin/snapshots/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.post("/admin/login/", url.Values{"password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/", rec.Header().Get(echo.HeaderLocation))

	rec = c.do(httptest.NewRequest(http.MethodGet, "/admin/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Reload now")
	assert.Contains(t, rec.Body.String(), "startup")

	rec = c.do(httptest.NewRequest(http.MethodGet, "/admin/snapshots/?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var snaps []Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snaps))
	require.Len(t, snaps, 1)

	rec = c.do(httptest.NewRequest(http.MethodGet, "/admin/snapshots/"+snaps[0].ID+"/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = c.do(httptest.NewRequest(http.MethodGet, "/admin/snapshots/nope/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.post("/admin/logout/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = c.do(httptest.NewRequest(http.MethodGet, "/admin/snapshots/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminReload(t *testing.T) {
	a := newTestApp(t, true)
	c := newAdminClient(t, a)
	require.Equal(t, http.StatusSeeOther, c.post("/admin/login/", url.Values{"password": {testPassword}}).Code)

	s := a.Holder.Get()
	s.Subtitle = "Edited on disk"
	require.NoError(t, WriteFile(a.Config.ConfigPath, s))

	rec := c.post("/admin/reload/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/?msg=reloaded", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Edited on disk", a.Holder.Get().Subtitle)

	// one snapshot per reload, labelled with the trigger
	assert.Eventually(t, func() bool {
		snap, err := a.Store.Latest(context.Background())
		return err == nil && snap.Site.Subtitle == "Edited on disk"
	}, 2*time.Second, 10*time.Millisecond)
	snaps, err := a.Store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, SourceAdmin, snaps[0].Source)
	assert.Equal(t, SourceStartup, snaps[1].Source)

	require.NoError(t, os.WriteFile(a.Config.ConfigPath, []byte("url: nope\n"), 0o644))
	rec = c.post("/admin/reload/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "Reload+failed")
	assert.Equal(t, "Edited on disk", a.Holder.Get().Subtitle)
}

func TestAdminRejectsMissingCSRF(t *testing.T) {
	a := newTestApp(t, true)
	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader("password="+testPassword))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	assert.Equal(t, http.StatusForbidden, serve(a, req).Code)
}

func TestAdminLoginRateLimited(t *testing.T) {
	a := newTestApp(t, true)
	c := newAdminClient(t, a)
	for i := 0; i < 5; i++ {
		c.post("/admin/login/", url.Values{"password": {"wrong"}})
	}
	rec := c.post("/admin/login/", url.Values{"password": {testPassword}})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestWithCustomRoutes(t *testing.T) {
	p := writeTemp(t, "site.yaml", "url: https://example.com\ntitle: Custom\n")
	a := New(ServerConfig{ConfigPath: p, DatabasePath: filepath.Join(t.TempDir(), "x.db")},
		WithCustomRoutes(func(a *App) {
			a.Echo.GET("/api/title", func(c echo.Context) error {
				return c.String(http.StatusOK, a.Holder.Get().Title)
			})
		}))
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(func() { a.Close() })

	rec := get(a, "/api/title")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Custom", rec.Body.String())
}
