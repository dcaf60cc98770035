package site

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	derrors "git.home.luguber.info/inful/elucidator/internal/errors"
)

// TemplateKind selects the theme template a page is rendered with.
type TemplateKind string

const (
	TemplateIndex TemplateKind = "index"
	TemplateBase  TemplateKind = "base"
)

const (
	markdownExt = "md"
	htmlExt     = "html"
	indexPage   = "index.md"
)

// Page is one content file scheduled for rendering.
type Page struct {
	Source   string
	Output   string
	Template TemplateKind
}

// SelectTemplate picks the template for a page given its path relative to
// the content directory. Only the top-level index.md uses the index template.
func SelectTemplate(rel string) TemplateKind {
	if filepath.ToSlash(filepath.Clean(rel)) == indexPage {
		return TemplateIndex
	}
	return TemplateBase
}

// Extension returns the text after the last period of a file name and
// whether the name has one at all.
func Extension(name string) (string, bool) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", false
	}
	return name[i+1:], true
}

// Walk lists every Markdown file under contentDir in lexical order and maps
// it to its output path under outputDir. Files without a period in their
// name and files with any other extension are skipped. A missing content
// directory yields no pages.
func Walk(contentDir, outputDir string) ([]Page, error) {
	var pages []Page
	err := filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == contentDir && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return derrors.FileSystemError("walk content", path, err)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext, ok := Extension(d.Name())
		if !ok || ext != markdownExt {
			return nil
		}

		rel, err := filepath.Rel(contentDir, path)
		if err != nil {
			return derrors.InternalError("resolve content path", err)
		}
		out := strings.TrimSuffix(rel, markdownExt) + htmlExt
		pages = append(pages, Page{
			Source:   path,
			Output:   filepath.Join(outputDir, out),
			Template: SelectTemplate(rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}
