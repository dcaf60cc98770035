// Package render turns a content file into an HTML page: it merges
// front-matter with global metadata, converts the Markdown body and renders
// the result through a mustache template.
package render

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alexkappa/mustache"
	"github.com/natefinch/atomic"

	derrors "git.home.luguber.info/inful/elucidator/internal/errors"
	"git.home.luguber.info/inful/elucidator/internal/frontmatter"
	"git.home.luguber.info/inful/elucidator/internal/logfields"
	"git.home.luguber.info/inful/elucidator/internal/markdown"
)

const (
	outputDirMode  = 0o755
	outputFileMode = 0o644
)

// Renderer renders single pages.
type Renderer struct {
	converter *markdown.Converter
	logger    *slog.Logger
}

// NewRenderer creates a Renderer. A nil converter uses markdown.DefaultOptions.
func NewRenderer(converter *markdown.Converter, logger *slog.Logger) *Renderer {
	if converter == nil {
		converter = markdown.NewConverter(markdown.DefaultOptions())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{converter: converter, logger: logger}
}

// Render produces the HTML for the content file at inputPath without
// touching the output tree.
func (r *Renderer) Render(global map[string]any, inputPath string, tmpl *mustache.Template) ([]byte, error) {
	doc, err := frontmatter.SplitFile(inputPath)
	if err != nil {
		return nil, err
	}

	fields, err := frontmatter.ParseYAML(doc.FrontMatter)
	if err != nil {
		return nil, derrors.MalformedPage(inputPath, err)
	}

	body, err := r.converter.Convert(doc.Body)
	if err != nil {
		return nil, derrors.RenderFailed(inputPath, err)
	}

	ctx := BuildContext(fields, global, string(body))
	if _, ok := ctx[TitleKey]; !ok {
		ctx[TitleKey] = TitleFromPath(inputPath)
	}

	var buf bytes.Buffer
	if err := tmpl.Render(&buf, PlainText(ctx)); err != nil {
		return nil, derrors.RenderFailed(inputPath, err)
	}
	return buf.Bytes(), nil
}

// RenderPage renders inputPath and writes the page to outputPath, creating
// parent directories as needed. An existing output file is replaced; on any
// failure nothing is written.
func (r *Renderer) RenderPage(global map[string]any, inputPath, outputPath string, tmpl *mustache.Template) error {
	r.logger.Info("Creating page", logfields.Output(outputPath), logfields.Source(inputPath))

	page, err := r.Render(global, inputPath, tmpl)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), outputDirMode); err != nil {
		return derrors.FileSystemError("create output directory", filepath.Dir(outputPath), err)
	}
	if err := atomic.WriteFile(outputPath, bytes.NewReader(page)); err != nil {
		return derrors.FileSystemError("write page", outputPath, err)
	}
	if err := os.Chmod(outputPath, outputFileMode); err != nil {
		return derrors.FileSystemError("set page permissions", outputPath, err)
	}
	return nil
}
