// Package scaffold provides the embedded starter files written by
// `lumen new`.
package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	URL        string
	Title      string
	AuthorName string
	Copyright  string
}

var funcs = template.FuncMap{"quote": strconv.Quote}

// outputName strips the .tmpl suffix and maps dotenv to .env.example.
func outputName(rel string) string {
	rel = strings.TrimSuffix(rel, ".tmpl")
	if path.Base(rel) == "dotenv" {
		rel = path.Join(path.Dir(rel), ".env.example")
	}
	return rel
}

type rendered struct {
	path    string
	content []byte
}

// Write renders every template into dir and returns the created paths.
// Existing files are never overwritten: if any target exists nothing is
// written.
func Write(dir string, data Data) ([]string, error) {
	var files []rendered
	var dirs []string
	err := fs.WalkDir(Templates, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		outPath := filepath.Join(dir, filepath.FromSlash(outputName(rel)))
		if d.IsDir() {
			dirs = append(dirs, outPath)
			return nil
		}

		content, err := Templates.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		tmpl, err := template.New(path.Base(p)).Funcs(funcs).Option("missingkey=error").Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", p, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("execute template %s: %w", p, err)
		}
		if _, err := os.Lstat(outPath); err == nil {
			return fmt.Errorf("create %s: %w", outPath, fs.ErrExist)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		files = append(files, rendered{path: outPath, content: buf.Bytes()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, err
		}
	}
	var created []string
	for _, r := range files {
		if err := writeNew(r.path, r.content); err != nil {
			return created, err
		}
		created = append(created, r.path)
	}
	return created, nil
}

func writeNew(name string, content []byte) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

// TitleFromName converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func TitleFromName(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		parts[i] = string(unicode.ToUpper(r)) + p[size:]
	}
	return strings.Join(parts, " ")
}
