package render

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ContentKey is the reserved render context key holding the page HTML.
const ContentKey = "content"

// TitleKey is the conventional page title key.
const TitleKey = "title"

// BuildContext merges page front-matter with global metadata. On a key
// collision the global value wins; the content key always holds the page
// HTML. Neither input map is modified.
func BuildContext(frontMatter, global map[string]any, content string) map[string]any {
	ctx := make(map[string]any, len(frontMatter)+len(global)+1)
	for k, v := range frontMatter {
		ctx[k] = v
	}
	for k, v := range global {
		ctx[k] = v
	}
	ctx[ContentKey] = content
	return ctx
}

// TitleFromPath derives a readable title from a content file name,
// e.g. "getting-started.md" becomes "Getting Started".
func TitleFromPath(path string) string {
	name := filepath.Base(path)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(name)
}

// PlainText returns a copy of ctx in which every value the template engine
// could resolve as a callable or method set is replaced by plain text.
// Strings, numbers, booleans, maps and lists pass through; maps and lists
// are processed recursively.
func PlainText(ctx map[string]any) map[string]any {
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t
	case map[string]any:
		return PlainText(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = plainValue(val)
		}
		return m
	case []any:
		list := make([]any, len(t))
		for i, val := range t {
			list[i] = plainValue(val)
		}
		return list
	case time.Time:
		return formatTime(t)
	case fmt.Stringer:
		return t.String()
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// formatTime renders front-matter timestamps the way they are usually
// written: a bare date stays a date, anything else keeps its clock and a
// zone offset only when it is not UTC.
func formatTime(t time.Time) string {
	if t.Location() == time.UTC && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	layout := time.DateTime
	if t.Nanosecond() != 0 {
		layout += ".000000"
	}
	if t.Location() != time.UTC {
		layout += "-07:00"
	}
	return t.Format(layout)
}
