// Package assets copies static directories and theme assets into the output tree.
package assets

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	derrors "git.home.luguber.info/inful/elucidator/internal/errors"
	"git.home.luguber.info/inful/elucidator/internal/logfields"
	"git.home.luguber.info/inful/elucidator/internal/metrics"
)

// Origins reported to the metrics recorder.
const (
	OriginStatic = "static"
	OriginTheme  = "theme"
)

// Stats counts the outcome of a copy.
type Stats struct {
	Copied  int
	Skipped int
}

func (s *Stats) add(o Stats) {
	s.Copied += o.Copied
	s.Skipped += o.Skipped
}

// Copier performs update-only copies: a file is only written when its
// destination is missing or older than the source.
type Copier struct {
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewCopier creates a Copier. A nil logger or recorder uses the defaults.
func NewCopier(logger *slog.Logger, recorder metrics.Recorder) *Copier {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Copier{logger: logger, recorder: recorder}
}

// CopyStatic copies each <contentDir>/<name> to <outputDir>/<name>.
// Every declared directory is checked before anything is copied.
func (c *Copier) CopyStatic(contentDir, outputDir string, names []string) (Stats, error) {
	for _, name := range names {
		src := filepath.Join(contentDir, name)
		info, err := os.Stat(src)
		if err != nil {
			return Stats{}, derrors.AssetMissing(src, err)
		}
		if !info.IsDir() {
			return Stats{}, derrors.AssetMissing(src, fmt.Errorf("not a directory"))
		}
	}

	var total Stats
	for _, name := range names {
		src := filepath.Join(contentDir, name)
		stats, err := c.CopyTree(src, filepath.Join(outputDir, name), OriginStatic)
		total.add(stats)
		if err != nil {
			return total, err
		}
		c.logger.Debug("Copied static directory", logfields.Path(src), logfields.Count(stats.Copied))
	}
	return total, nil
}

// CopyTheme copies every subdirectory of themeDir and every top-level
// non-HTML file into outputDir. Top-level HTML files are templates.
func (c *Copier) CopyTheme(themeDir, outputDir string) (Stats, error) {
	entries, err := os.ReadDir(themeDir)
	if err != nil {
		return Stats{}, derrors.AssetMissing(themeDir, err)
	}

	var total Stats
	for _, entry := range entries {
		src := filepath.Join(themeDir, entry.Name())
		dst := filepath.Join(outputDir, entry.Name())

		if entry.IsDir() {
			stats, err := c.CopyTree(src, dst, OriginTheme)
			total.add(stats)
			if err != nil {
				return total, err
			}
			continue
		}
		if IsTemplate(entry.Name()) {
			continue
		}

		copied, err := c.copyFileIfNewer(src, dst)
		if err != nil {
			return total, err
		}
		total.add(c.count(copied, OriginTheme))
	}
	return total, nil
}

// IsTemplate reports whether a theme file name is an HTML template, judged
// by the text after its last period.
func IsTemplate(name string) bool {
	i := strings.LastIndex(name, ".")
	return i >= 0 && strings.EqualFold(name[i+1:], "html")
}

// CopyTree recursively copies src into dst with update-only semantics.
func (c *Copier) CopyTree(src, dst, origin string) (Stats, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return Stats{}, derrors.AssetMissing(src, err)
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return Stats{}, derrors.FileSystemError("create directory", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return Stats{}, derrors.AssetCopyFailed(src, err)
	}

	var total Stats
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			stats, err := c.CopyTree(srcPath, dstPath, origin)
			total.add(stats)
			if err != nil {
				return total, err
			}
			continue
		}

		copied, err := c.copyFileIfNewer(srcPath, dstPath)
		if err != nil {
			return total, err
		}
		total.add(c.count(copied, origin))
	}
	return total, nil
}

func (c *Copier) count(copied bool, origin string) Stats {
	if copied {
		c.recorder.IncAssetCopied(origin)
		return Stats{Copied: 1}
	}
	c.recorder.IncAssetSkipped(origin)
	return Stats{Skipped: 1}
}

// copyFileIfNewer copies src to dst unless dst is at least as new as src.
// The copy keeps the source mode and modification time.
func (c *Copier) copyFileIfNewer(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, derrors.AssetCopyFailed(src, err)
	}
	if dstInfo, err := os.Stat(dst); err == nil && !dstInfo.ModTime().Before(srcInfo.ModTime()) {
		return false, nil
	}

	if err := copyFile(src, dst, srcInfo); err != nil {
		return false, derrors.AssetCopyFailed(src, err)
	}
	c.logger.Debug("Copied asset", logfields.Source(src), logfields.Output(dst))
	return true, nil
}

func copyFile(src, dst string, srcInfo os.FileInfo) error {
	// #nosec G304 -- src comes from a walk of the configured asset directories.
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	// #nosec G304 -- dst is derived from the output directory.
	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())
}
