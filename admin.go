package lumen

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/lumen/views"
)

const dashboardSnapshots = 20

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		a.loginLimiter.Reset(ip)
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Logger.Warn().Str("event", "admin.login_failed").Str("ip", ip).Msg("failed admin login")
	return RenderStatus(c, http.StatusUnauthorized, views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminReload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if _, err := a.Reload(c.Request().Context(), SourceAdmin); err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape("Reload failed: "+err.Error()))
	}
	return c.Redirect(http.StatusSeeOther, "/admin/?msg=reloaded")
}

func (a *App) handleSnapshotList(c echo.Context) error {
	if !IsAdmin(c) {
		return echo.ErrUnauthorized
	}
	limit := dashboardSnapshots
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}
	snaps, err := a.Store.List(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if snaps == nil {
		snaps = []Snapshot{}
	}
	return c.JSON(http.StatusOK, snaps)
}

func (a *App) handleSnapshot(c echo.Context) error {
	if !IsAdmin(c) {
		return echo.ErrUnauthorized
	}
	snap, err := a.Store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	snaps, err := a.Store.List(c.Request().Context(), dashboardSnapshots)
	if err != nil {
		return err
	}
	rows := make([]views.SnapshotRow, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, views.SnapshotRow{
			ID:        s.ID,
			CreatedAt: s.CreatedAt.Format("2006-01-02 15:04:05"),
			Source:    s.Source,
			Checksum:  s.Checksum,
		})
	}
	return Render(c, views.AdminDashboard(a.Holder.Path(), rows, msg, CsrfToken(c)))
}
