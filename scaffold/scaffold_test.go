package scaffold

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/lumen"
)

func TestWriteProducesValidConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-blog")
	created, err := Write(dir, Data{
		URL:        "https://my-blog.example.com",
		Title:      "My Blog: notes",
		AuthorName: `Jane "JD" Doe`,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, ".env.example"),
		filepath.Join(dir, "site.yaml"),
	}, created)

	s, err := lumen.LoadFile(filepath.Join(dir, "site.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "My Blog: notes", s.Title)
	assert.Equal(t, `Jane "JD" Doe`, s.Author.Name)
	assert.Equal(t, []string{"Articles", "About me"}, s.MenuLabels())
	assert.Equal(t, 4, s.PostsPerPage)

	env, err := os.ReadFile(filepath.Join(dir, ".env.example"))
	require.NoError(t, err)
	assert.Contains(t, string(env), "LUMEN_CONFIG=site.yaml")
}

func TestWriteRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yaml"), []byte("keep me"), 0o644))

	created, err := Write(dir, Data{URL: "https://example.com", Title: "T"})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrExist)
	assert.Empty(t, created)

	b, err := os.ReadFile(filepath.Join(dir, "site.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(b))

	_, err = os.Stat(filepath.Join(dir, ".env.example"))
	assert.ErrorIs(t, err, fs.ErrNotExist, "nothing is written when any target exists")
}

func TestTitleFromName(t *testing.T) {
	assert.Equal(t, "My Blog", TitleFromName("my-blog"))
	assert.Equal(t, "Myblog", TitleFromName("myblog"))
	assert.Equal(t, "A B", TitleFromName("a__b"))
	assert.Empty(t, TitleFromName(""))
	assert.Equal(t, "Élan Vital", TitleFromName("élan-vital"))
	assert.Equal(t, "Ärzte", TitleFromName("ärzte"))
}
