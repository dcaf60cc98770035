// Package markdown converts page bodies from Markdown to HTML.
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// CodeBlockClass is the class of the div wrapping every fenced code block.
const CodeBlockClass = "code_highlight"

// Options configures a Converter.
type Options struct {
	// TOCMarker is the paragraph text replaced by the table of contents.
	TOCMarker string
	// TOCTitle is shown above the table of contents. Empty omits it.
	TOCTitle string
	// HighlightStyle names the chroma style used for fenced code blocks.
	HighlightStyle string
}

// DefaultOptions returns the options used for site generation.
func DefaultOptions() Options {
	return Options{
		TOCMarker:      "[TOC]",
		TOCTitle:       "Table of Content",
		HighlightStyle: "monokai",
	}
}

// Converter renders Markdown with footnotes, tables, fenced code
// highlighting, smart typography, heading IDs and hard line breaks.
type Converter struct {
	md   goldmark.Markdown
	opts Options
}

// NewConverter builds a Converter. Zero-valued fields fall back to DefaultOptions.
func NewConverter(opts Options) *Converter {
	def := DefaultOptions()
	if opts.TOCMarker == "" {
		opts.TOCMarker = def.TOCMarker
	}
	if opts.HighlightStyle == "" {
		opts.HighlightStyle = def.HighlightStyle
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Footnote,
			extension.Table,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle(opts.HighlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
					chromahtml.WithLineNumbers(false),
				),
				highlighting.WithWrapperRenderer(wrapCodeBlock),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithUnsafe(),
		),
	)
	return &Converter{md: md, opts: opts}
}

// Convert renders body (front-matter already removed) to HTML.
func (c *Converter) Convert(body []byte) ([]byte, error) {
	root := c.md.Parser().Parse(text.NewReader(body))

	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, body, root); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	out := buf.Bytes()
	marker := []byte("<p>" + c.opts.TOCMarker + "</p>")
	if !bytes.Contains(out, marker) {
		return out, nil
	}

	toc, err := RenderTOC(CollectHeadings(root, body), c.opts.TOCTitle)
	if err != nil {
		return nil, fmt.Errorf("render table of contents: %w", err)
	}
	return bytes.ReplaceAll(out, marker, toc), nil
}

// wrapCodeBlock surrounds code blocks with a div.code_highlight. Chroma
// writes its own pre element for highlighted blocks; the others get a plain
// pre/code pair.
func wrapCodeBlock(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	if entering {
		_, _ = w.WriteString(`<div class="` + CodeBlockClass + `">`)
		if ctx.Highlighted() {
			return
		}
		_, _ = w.WriteString("<pre><code")
		if lang, ok := ctx.Language(); ok {
			_, _ = w.WriteString(` class="language-`)
			_, _ = w.Write(util.EscapeHTML(lang))
			_, _ = w.WriteString(`"`)
		}
		_, _ = w.WriteString(">")
		return
	}
	if !ctx.Highlighted() {
		_, _ = w.WriteString("</code></pre>")
	}
	_, _ = w.WriteString("</div>\n")
}
