package lumen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Format is a config serialization format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Default values applied before a file is decoded, so absent keys keep them
// and explicit values (including invalid ones) override them.
const (
	DefaultPathPrefix   = "/"
	DefaultPostsPerPage = 4
)

func defaults() Site {
	return Site{
		PathPrefix:   DefaultPathPrefix,
		PostsPerPage: DefaultPostsPerPage,
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ParseFormat accepts "yaml", "yml" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Parse decodes and validates a Site. Decoding is strict: unknown keys and
// trailing documents are rejected.
func Parse(data []byte, format Format) (Site, error) {
	s, err := decode(data, format)
	if err != nil {
		return Site{}, err
	}
	if err := Validate(s); err != nil {
		return Site{}, err
	}
	return s, nil
}

func decode(data []byte, format Format) (Site, error) {
	s := defaults()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			if errors.Is(err, io.EOF) {
				return Site{}, fmt.Errorf("decode yaml: empty document")
			}
			return Site{}, fmt.Errorf("decode yaml: %w", err)
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return Site{}, fmt.Errorf("decode yaml: multiple documents or trailing content")
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return Site{}, fmt.Errorf("decode json: %w", err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return Site{}, fmt.Errorf("decode json: trailing content")
		}
	default:
		return Site{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	// An empty menu has one form, so Parse(Marshal(s)) == s.
	if len(s.Menu) == 0 {
		s.Menu = nil
	}
	return s, nil
}

// LoadFile reads, decodes and validates the config file at path.
func LoadFile(path string) (Site, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Site{}, err
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Site{}, fmt.Errorf("read config: %w", err)
	}
	s, err := Parse(data, format)
	if err != nil {
		return Site{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Marshal encodes s. Parse(Marshal(s)) yields s again.
func Marshal(s Site, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(b, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteFile validates s and atomically writes it to path in the format
// implied by the extension.
func WriteFile(path string, s Site) error {
	if err := Validate(s); err != nil {
		return err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(s, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Environment overrides read by Loader.
const (
	EnvURL               = "LUMEN_URL"
	EnvPathPrefix        = "LUMEN_PATH_PREFIX"
	EnvTitle             = "LUMEN_TITLE"
	EnvSubtitle          = "LUMEN_SUBTITLE"
	EnvCopyright         = "LUMEN_COPYRIGHT"
	EnvDisqusShortname   = "LUMEN_DISQUS_SHORTNAME"
	EnvPostsPerPage      = "LUMEN_POSTS_PER_PAGE"
	EnvGoogleAnalyticsID = "LUMEN_GOOGLE_ANALYTICS_ID"
	EnvUseKatex          = "LUMEN_USE_KATEX"
	EnvAuthorName        = "LUMEN_AUTHOR_NAME"
)

// Loader loads a Site with precedence environment > file > defaults.
type Loader struct {
	Path string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// NewLoader returns a Loader for the config file at path.
func NewLoader(path string) *Loader {
	return &Loader{Path: path, LookupEnv: os.LookupEnv}
}

// Load reads the file, applies environment overrides, and validates the result.
func (l *Loader) Load() (Site, error) {
	format, err := FormatFromPath(l.Path)
	if err != nil {
		return Site{}, err
	}
	data, err := os.ReadFile(filepath.Clean(l.Path))
	if err != nil {
		return Site{}, fmt.Errorf("read config: %w", err)
	}
	s, err := decode(data, format)
	if err != nil {
		return Site{}, fmt.Errorf("%s: %w", l.Path, err)
	}
	if err := l.applyEnv(&s); err != nil {
		return Site{}, err
	}
	if err := Validate(s); err != nil {
		return Site{}, fmt.Errorf("%s: %w", l.Path, err)
	}
	return s, nil
}

func (l *Loader) lookup(key string) (string, bool) {
	if l.LookupEnv == nil {
		return os.LookupEnv(key)
	}
	return l.LookupEnv(key)
}

func (l *Loader) applyEnv(s *Site) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvURL, &s.URL},
		{EnvPathPrefix, &s.PathPrefix},
		{EnvTitle, &s.Title},
		{EnvSubtitle, &s.Subtitle},
		{EnvCopyright, &s.Copyright},
		{EnvDisqusShortname, &s.DisqusShortname},
		{EnvGoogleAnalyticsID, &s.GoogleAnalyticsID},
		{EnvAuthorName, &s.Author.Name},
	}
	for _, e := range strs {
		if v, ok := l.lookup(e.key); ok {
			*e.dst = v
		}
	}
	if v, ok := l.lookup(EnvPostsPerPage); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPostsPerPage, err)
		}
		s.PostsPerPage = n
	}
	if v, ok := l.lookup(EnvUseKatex); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvUseKatex, err)
		}
		s.UseKatex = b
	}
	return nil
}
