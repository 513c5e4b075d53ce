// Package views renders the config inspector and admin pages as templ
// components.
package views

import "github.com/a-h/templ"

// Inspector shows the current site configuration.
func Inspector(p Page) templ.Component {
	return component(func(w *writer) {
		layout(w, joinNonEmpty(" · ", p.Title, "configuration"), func() {
			w.raw("<h1>")
			w.text(p.Title)
			w.raw("</h1><p class=\"sub\">")
			w.text(p.Subtitle)
			w.raw("</p>")

			w.raw("<nav>")
			for _, m := range p.Menu {
				w.raw("<a")
				w.url("href", m.Href)
				w.raw(">")
				w.text(m.Label)
				w.raw("</a>")
			}
			w.raw("</nav>")

			w.raw("<h2>Author</h2><div class=\"author\">")
			if p.Author.PhotoURL != "" {
				w.raw("<img")
				w.url("src", p.Author.PhotoURL)
				w.attr("alt", p.Author.Name)
				w.raw(">")
			}
			w.raw("<div><strong>")
			w.text(p.Author.Name)
			w.raw("</strong><p>")
			w.text(p.Author.Bio)
			w.raw("</p></div></div>")

			if len(p.Contacts) > 0 {
				w.raw("<h2>Contacts</h2><ul>")
				for _, c := range p.Contacts {
					w.raw("<li>")
					w.text(c.Label)
					if c.Href == "" {
						w.raw(": <em>unsupported link</em></li>")
						continue
					}
					w.raw(": <a rel=\"me\"")
					w.url("href", c.Href)
					w.raw(">")
					w.text(c.Href)
					w.raw("</a></li>")
				}
				w.raw("</ul>")
			}

			w.raw("<h2>Settings</h2><table>")
			for _, s := range p.Settings {
				w.raw("<tr><th>")
				w.text(s.Key)
				w.raw("</th><td><code>")
				w.text(s.Value)
				w.raw("</code></td></tr>")
			}
			w.raw("</table><p class=\"sub\">checksum <code>")
			w.text(Short(p.Checksum))
			w.raw("</code> · <a href=\"/api/config\">json</a> · <a href=\"/api/config.yaml\">yaml</a>")
			if p.Admin {
				w.raw(" · <a href=\"/admin/\">admin</a>")
			}
			w.raw("</p>")
		})
	})
}

// AdminLogin is the password form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return component(func(w *writer) {
		layout(w, "Admin login", func() {
			w.raw("<h1>Admin</h1>")
			if showError {
				w.raw("<p class=\"err\">Wrong password.</p>")
			}
			w.raw("<form method=\"post\" action=\"/admin/login/\">")
			w.raw("<input type=\"hidden\" name=\"_csrf\"")
			w.attr("value", csrfToken)
			w.raw("><input type=\"password\" name=\"password\" autofocus> <button>Log in</button></form>")
		})
	})
}

// AdminDashboard lists snapshots and offers a reload.
func AdminDashboard(path string, rows []SnapshotRow, message, csrfToken string) templ.Component {
	return component(func(w *writer) {
		layout(w, "Admin", func() {
			w.raw("<h1>Admin</h1><p class=\"sub\">config file <code>")
			w.text(path)
			w.raw("</code></p>")
			if message != "" {
				w.raw("<p>")
				w.text(message)
				w.raw("</p>")
			}
			w.raw("<form method=\"post\" action=\"/admin/reload/\"><input type=\"hidden\" name=\"_csrf\"")
			w.attr("value", csrfToken)
			w.raw("><button>Reload now</button></form>")
			w.raw("<form method=\"post\" action=\"/admin/logout/\"><input type=\"hidden\" name=\"_csrf\"")
			w.attr("value", csrfToken)
			w.raw("><button>Log out</button></form>")

			w.raw("<h2>Snapshots</h2><table><tr><th>id</th><th>created</th><th>source</th><th>checksum</th></tr>")
			for _, r := range rows {
				w.raw("<tr><td><a")
				w.url("href", "/admin/snapshots/"+r.ID+"/")
				w.raw(">")
				w.text(Short(r.ID))
				w.raw("</a></td><td>")
				w.text(r.CreatedAt)
				w.raw("</td><td>")
				w.text(r.Source)
				w.raw("</td><td><code>")
				w.text(Short(r.Checksum))
				w.raw("</code></td></tr>")
			}
			w.raw("</table>")
		})
	})
}

// NotFound is the 404 page.
func NotFound() templ.Component {
	return component(func(w *writer) {
		layout(w, "Not found", func() {
			w.raw("<h1>404</h1><p>Nothing here. <a href=\"/\">Back to the configuration</a>.</p>")
		})
	})
}

// ServerError is the 5xx page.
func ServerError() templ.Component {
	return component(func(w *writer) {
		layout(w, "Server error", func() {
			w.raw("<h1>Something broke</h1><p>The error has been logged.</p>")
		})
	})
}
