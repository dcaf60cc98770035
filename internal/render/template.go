package render

import (
	"os"
	"path/filepath"

	"github.com/alexkappa/mustache"

	derrors "git.home.luguber.info/inful/elucidator/internal/errors"
)

// Template file names inside the theme directory.
const (
	IndexTemplateFile = "index.html"
	BaseTemplateFile  = "base.html"
)

// Theme holds the parsed page templates.
type Theme struct {
	// Index renders the top-level index page.
	Index *mustache.Template
	// Base renders every other page.
	Base *mustache.Template
}

// LoadTheme parses index.html and base.html from themeDir.
func LoadTheme(themeDir string) (*Theme, error) {
	index, err := LoadTemplate(filepath.Join(themeDir, IndexTemplateFile))
	if err != nil {
		return nil, err
	}
	base, err := LoadTemplate(filepath.Join(themeDir, BaseTemplateFile))
	if err != nil {
		return nil, err
	}
	return &Theme{Index: index, Base: base}, nil
}

// LoadTemplate reads and parses a mustache template.
func LoadTemplate(path string) (*mustache.Template, error) {
	// #nosec G304 -- path points into the configured theme directory.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, derrors.TemplateInvalid(path, err)
	}
	return ParseTemplate(path, string(data))
}

// ParseTemplate parses template text; name identifies it in errors.
func ParseTemplate(name, text string) (*mustache.Template, error) {
	tmpl := mustache.New()
	if err := tmpl.ParseString(text); err != nil {
		return nil, derrors.TemplateInvalid(name, err)
	}
	return tmpl, nil
}
