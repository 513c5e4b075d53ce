package views

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// writer accumulates the first write error so components can emit markup
// without checking every call.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) attr(name, value string) {
	w.raw(" " + name + "=\"")
	w.text(value)
	w.raw("\"")
}

// url writes a URL attribute. Unsafe schemes are replaced by templ's
// failed-sanitization URL; line:// profile links are kept.
func (w *writer) url(name, value string) {
	if strings.HasPrefix(strings.ToLower(value), "line://") {
		w.attr(name, value)
		return
	}
	w.attr(name, string(templ.URL(value)))
}

func component(fn func(w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		fn(w)
		return w.err
	})
}

func layout(w *writer, title string, body func()) {
	w.raw("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">")
	w.raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
	w.raw("<title>")
	w.text(title)
	w.raw("</title><style>")
	w.raw(stylesheet)
	w.raw("</style></head><body><main>")
	body()
	w.raw("</main></body></html>")
}

// Short trims a checksum or id for display.
func Short(s string) string {
	if len(s) <= 12 {
		return s
	}
	return s[:12]
}

const stylesheet = `body{font-family:system-ui,sans-serif;max-width:52rem;margin:2rem auto;padding:0 1rem;color:#222}
h1{margin-bottom:.2rem}.sub{color:#666;margin-top:0}
table{border-collapse:collapse;width:100%}td,th{border-bottom:1px solid #ddd;padding:.35rem;text-align:left;vertical-align:top}
nav a{margin-right:1rem}.author{display:flex;gap:1rem;align-items:center}.author img{width:75px;height:75px;border-radius:50%}
.err{color:#b00}code{font-size:.9em}`

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
