package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/elucidator/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	// #nosec G304 -- test fixture path.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCopyStatic_CopiesRecursively(t *testing.T) {
	tmp := t.TempDir()
	content := filepath.Join(tmp, "content")
	out := filepath.Join(tmp, "public")
	writeFile(t, filepath.Join(content, "images", "logo.png"), "png")
	writeFile(t, filepath.Join(content, "images", "icons", "a.svg"), "svg")

	stats, err := NewCopier(nil, nil).CopyStatic(content, out, []string{"images"})
	require.NoError(t, err)
	require.Equal(t, Stats{Copied: 2}, stats)
	require.Equal(t, "png", readFile(t, filepath.Join(out, "images", "logo.png")))
	require.Equal(t, "svg", readFile(t, filepath.Join(out, "images", "icons", "a.svg")))
}

func TestCopyStatic_MissingDirectoryFailsBeforeCopying(t *testing.T) {
	tmp := t.TempDir()
	content := filepath.Join(tmp, "content")
	out := filepath.Join(tmp, "public")
	writeFile(t, filepath.Join(content, "images", "logo.png"), "png")

	_, err := NewCopier(nil, nil).CopyStatic(content, out, []string{"images", "missing"})
	require.Error(t, err)
	require.True(t, derrors.IsCategory(err, derrors.CategoryAsset))
	require.Contains(t, err.Error(), filepath.Join(content, "missing"))

	_, statErr := os.Stat(filepath.Join(out, "images"))
	require.True(t, os.IsNotExist(statErr))
}

func TestCopyStatic_FileInsteadOfDirectory(t *testing.T) {
	tmp := t.TempDir()
	content := filepath.Join(tmp, "content")
	writeFile(t, filepath.Join(content, "images"), "not a dir")

	_, err := NewCopier(nil, nil).CopyStatic(content, filepath.Join(tmp, "out"), []string{"images"})
	require.True(t, derrors.IsCategory(err, derrors.CategoryAsset))
}

func TestCopyTree_UpdateOnly(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	dst := filepath.Join(tmp, "dst")
	writeFile(t, filepath.Join(src, "a.txt"), "one")

	c := NewCopier(nil, nil)
	stats, err := c.CopyTree(src, dst, OriginStatic)
	require.NoError(t, err)
	require.Equal(t, Stats{Copied: 1}, stats)

	srcInfo, err := os.Stat(filepath.Join(src, "a.txt"))
	require.NoError(t, err)
	dstInfo, err := os.Stat(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	require.True(t, srcInfo.ModTime().Equal(dstInfo.ModTime()))

	// Unchanged source: nothing copied.
	stats, err = c.CopyTree(src, dst, OriginStatic)
	require.NoError(t, err)
	require.Equal(t, Stats{Skipped: 1}, stats)

	// Destination newer than source: kept.
	writeFile(t, filepath.Join(dst, "a.txt"), "local edit")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dst, "a.txt"), future, future))
	stats, err = c.CopyTree(src, dst, OriginStatic)
	require.NoError(t, err)
	require.Equal(t, Stats{Skipped: 1}, stats)
	require.Equal(t, "local edit", readFile(t, filepath.Join(dst, "a.txt")))

	// Source newer than destination: copied again.
	writeFile(t, filepath.Join(src, "a.txt"), "two")
	later := future.Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(src, "a.txt"), later, later))
	stats, err = c.CopyTree(src, dst, OriginStatic)
	require.NoError(t, err)
	require.Equal(t, Stats{Copied: 1}, stats)
	require.Equal(t, "two", readFile(t, filepath.Join(dst, "a.txt")))
}

func TestCopyTheme_SkipsTopLevelTemplates(t *testing.T) {
	tmp := t.TempDir()
	theme := filepath.Join(tmp, "theme")
	out := filepath.Join(tmp, "public")
	writeFile(t, filepath.Join(theme, "index.html"), "{{content}}")
	writeFile(t, filepath.Join(theme, "base.HTML"), "{{content}}")
	writeFile(t, filepath.Join(theme, "style.css"), "body{}")
	writeFile(t, filepath.Join(theme, "favicon.ico"), "ico")
	writeFile(t, filepath.Join(theme, "js", "site.js"), "js")
	writeFile(t, filepath.Join(theme, "partials", "nav.html"), "<nav>")

	stats, err := NewCopier(nil, nil).CopyTheme(theme, out)
	require.NoError(t, err)
	require.Equal(t, Stats{Copied: 4}, stats)

	require.Equal(t, "body{}", readFile(t, filepath.Join(out, "style.css")))
	require.Equal(t, "ico", readFile(t, filepath.Join(out, "favicon.ico")))
	require.Equal(t, "js", readFile(t, filepath.Join(out, "js", "site.js")))
	// HTML inside subdirectories is an asset, not a template.
	require.Equal(t, "<nav>", readFile(t, filepath.Join(out, "partials", "nav.html")))

	for _, name := range []string{"index.html", "base.HTML"} {
		_, err := os.Stat(filepath.Join(out, name))
		require.True(t, os.IsNotExist(err), name)
	}
}

func TestCopyTheme_MissingThemeDir(t *testing.T) {
	tmp := t.TempDir()
	_, err := NewCopier(nil, nil).CopyTheme(filepath.Join(tmp, "nope"), filepath.Join(tmp, "out"))
	require.True(t, derrors.IsCategory(err, derrors.CategoryAsset))
}

func TestIsTemplate(t *testing.T) {
	cases := map[string]bool{
		"index.html":      true,
		"base.HTML":       true,
		"page.tmpl.html":  true,
		"style.css":       false,
		"html":            false,
		"archive.html.gz": false,
		"README":          false,
	}
	for name, want := range cases {
		require.Equal(t, want, IsTemplate(name), name)
	}
}
