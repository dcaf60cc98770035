package markdown

import (
	"bytes"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	"golang.org/x/net/html"
)

// Heading is a document heading with its generated anchor ID.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// CollectHeadings returns the headings of a parsed document in order.
func CollectHeadings(root gmast.Node, source []byte) []Heading {
	headings := make([]Heading, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}

		heading := Heading{Level: h.Level, Text: inlineText(h, source)}
		if v, ok := h.AttributeString("id"); ok {
			if id, ok := v.([]byte); ok {
				heading.ID = string(id)
			}
		}
		headings = append(headings, heading)
		return gmast.WalkSkipChildren, nil
	})
	return headings
}

// inlineText flattens the text content of an inline container.
func inlineText(n gmast.Node, source []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			// Typographer substitutions are stored as HTML entities.
			b.WriteString(html.UnescapeString(string(t.Value)))
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// RenderTOC renders headings as nested lists inside a div.toc element.
func RenderTOC(headings []Heading, title string) ([]byte, error) {
	div := element("div", "class", "toc")
	if title != "" {
		span := element("span", "class", "toctitle")
		span.AppendChild(&html.Node{Type: html.TextNode, Data: title})
		div.AppendChild(span)
	}

	if len(headings) > 0 {
		type level struct {
			depth int
			list  *html.Node
		}

		root := element("ul")
		div.AppendChild(root)
		stack := []level{{depth: headings[0].Level, list: root}}

		for _, h := range headings {
			for len(stack) > 1 && h.Level < stack[len(stack)-1].depth {
				stack = stack[:len(stack)-1]
			}
			if top := stack[len(stack)-1]; h.Level > top.depth {
				parent := top.list.LastChild
				if parent == nil {
					parent = element("li")
					top.list.AppendChild(parent)
				}
				nested := element("ul")
				parent.AppendChild(nested)
				stack = append(stack, level{depth: h.Level, list: nested})
			}

			a := element("a", "href", "#"+h.ID)
			a.AppendChild(&html.Node{Type: html.TextNode, Data: h.Text})
			li := element("li")
			li.AppendChild(a)
			stack[len(stack)-1].list.AppendChild(li)
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, div); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}
