package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/elucidator/internal/errors"
)

// Delimiter is the prefix that marks a front-matter delimiter line.
const Delimiter = "---"

// Document holds the sections of a content file. Each field is a
// sub-slice of the original input; delimiter lines keep their terminators.
type Document struct {
	// Leading is everything before the opening delimiter. It is not rendered.
	Leading     []byte
	Open        []byte
	FrontMatter []byte
	Close       []byte
	Body        []byte
}

// ErrMissingOpeningDelimiter indicates the content contains no delimiter line.
var ErrMissingOpeningDelimiter = errors.New("front-matter delimiter not found")

// ErrMissingClosingDelimiter indicates the content contains an opening
// delimiter line but no closing one.
var ErrMissingClosingDelimiter = errors.New("front-matter start delimiter found but closing delimiter is missing")

// Split separates the front-matter block from the Markdown body.
//
// Any line beginning with "---" is a delimiter. Content before the first
// delimiter is ignored, lines between the first and second delimiter are the
// front-matter, and everything after the second delimiter is the body.
func Split(content []byte) (Document, error) {
	var doc Document

	openStart, openEnd, ok := nextDelimiter(content, 0)
	if !ok {
		return doc, ErrMissingOpeningDelimiter
	}
	closeStart, closeEnd, ok := nextDelimiter(content, openEnd)
	if !ok {
		return doc, ErrMissingClosingDelimiter
	}

	doc.Leading = content[:openStart]
	doc.Open = content[openStart:openEnd]
	doc.FrontMatter = content[openEnd:closeStart]
	doc.Close = content[closeStart:closeEnd]
	doc.Body = content[closeEnd:]
	return doc, nil
}

// SplitFile reads path and splits it. Delimiter failures are reported as
// malformed page errors naming the file.
func SplitFile(path string) (Document, error) {
	// #nosec G304 -- path comes from the content tree walk.
	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, derrors.FileSystemError("read page", path, err)
	}
	doc, err := Split(content)
	if err != nil {
		return Document{}, derrors.MalformedPage(path, err)
	}
	return doc, nil
}

// Join reassembles the delimited part of a document. Leading content is
// not part of the result, so Join(Split(x)) equals x without its leading text.
func Join(doc Document) []byte {
	out := make([]byte, 0, len(doc.Open)+len(doc.FrontMatter)+len(doc.Close)+len(doc.Body))
	out = append(out, doc.Open...)
	out = append(out, doc.FrontMatter...)
	out = append(out, doc.Close...)
	out = append(out, doc.Body...)
	return out
}

// ParseYAML parses raw YAML front-matter (without delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, fmt.Errorf("parse front-matter: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// nextDelimiter finds the first delimiter line starting at or after from.
// It returns the line bounds including the line terminator.
func nextDelimiter(content []byte, from int) (start, end int, ok bool) {
	for start = from; start < len(content); start = end {
		end = len(content)
		if i := bytes.IndexByte(content[start:], '\n'); i >= 0 {
			end = start + i + 1
		}
		if bytes.HasPrefix(content[start:end], []byte(Delimiter)) {
			return start, end, true
		}
	}
	return 0, 0, false
}
