// Package config loads the site configuration from <root>/config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/elucidator/internal/errors"
)

// FileName is the configuration file expected at the site root.
const FileName = "config.yaml"

// Reserved configuration keys. They are never passed to templates.
const (
	KeyOutputDir  = "output_dir"
	KeyStaticDirs = "static_dirs"
	KeyThemeDir   = "theme_dir"
)

// ContentDirName is the content tree below the site root.
const ContentDirName = "content"

// DefaultThemeDir is used when theme_dir is not configured.
const DefaultThemeDir = "theme"

// Site is the loaded site configuration.
type Site struct {
	// Root is the site root directory.
	Root string
	// OutputDir always ends with a path separator.
	OutputDir  string
	StaticDirs []string
	// ThemeDir always ends with a path separator.
	ThemeDir string
	// Metadata holds every non-reserved key; it is handed to every template.
	Metadata map[string]any
}

// Load reads <root>/config.yaml. A .env file next to it is loaded first so
// the configuration can reference environment variables.
func Load(root string) (*Site, error) {
	if err := loadEnvFile(root); err != nil {
		return nil, err
	}

	path := filepath.Join(root, FileName)
	// #nosec G304 -- path is the site configuration chosen by the user.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, derrors.ConfigNotFound(path, err)
		}
		return nil, derrors.ConfigInvalid(path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &raw); err != nil {
		return nil, derrors.ConfigInvalid(path, err)
	}
	if raw == nil {
		return nil, derrors.ConfigRequired(path, KeyOutputDir)
	}

	site := &Site{Root: root}

	outputDir, err := popString(raw, path, KeyOutputDir, true)
	if err != nil {
		return nil, err
	}
	site.OutputDir = ensureTrailingSeparator(outputDir)

	site.StaticDirs, err = popStringList(raw, path, KeyStaticDirs)
	if err != nil {
		return nil, err
	}

	themeDir, err := popString(raw, path, KeyThemeDir, false)
	if err != nil {
		return nil, err
	}
	if themeDir == "" {
		themeDir = DefaultThemeDir
	}
	site.ThemeDir = ensureTrailingSeparator(themeDir)

	site.Metadata = raw
	return site, nil
}

// ContentPath returns the content tree directory.
func (s *Site) ContentPath() string {
	return filepath.Join(s.Root, ContentDirName)
}

// OutputPath returns the output directory resolved against the root.
func (s *Site) OutputPath() string {
	return s.resolve(s.OutputDir)
}

// ThemePath returns the theme directory resolved against the root.
func (s *Site) ThemePath() string {
	return s.resolve(s.ThemeDir)
}

func (s *Site) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(s.Root, dir)
}

func popString(raw map[string]any, path, key string, required bool) (string, error) {
	v, ok := raw[key]
	delete(raw, key)
	if !ok || v == nil {
		if required {
			return "", derrors.ConfigRequired(path, key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", derrors.ConfigWrongType(path, key, "a string")
	}
	if required && strings.TrimSpace(s) == "" {
		return "", derrors.ConfigRequired(path, key)
	}
	return s, nil
}

func popStringList(raw map[string]any, path, key string) ([]string, error) {
	v, ok := raw[key]
	delete(raw, key)
	if !ok {
		return nil, derrors.ConfigRequired(path, key)
	}
	if v == nil {
		return []string{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, derrors.ConfigWrongType(path, key, "a list of strings")
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok || s == "" {
			return nil, derrors.ConfigWrongType(path, fmt.Sprintf("%s[%d]", key, i), "a non-empty string")
		}
		out = append(out, s)
	}
	return out, nil
}

func ensureTrailingSeparator(dir string) string {
	if strings.HasSuffix(dir, "/") || strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}
