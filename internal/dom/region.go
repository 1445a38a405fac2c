package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Region: именованная область страницы, в которую пишет ровно один компонент.
// Все мутации выполняются из UI-цикла, поэтому блокировок здесь нет.
type Region struct {
	node *html.Node
}

func NewRegion(n *html.Node) *Region {
	return &Region{node: n}
}

func (r *Region) ID() string {
	id, _ := Attr(r.node, "id")
	return id
}

// Clear удаляет всё содержимое области.
func (r *Region) Clear() {
	for c := r.node.FirstChild; c != nil; {
		next := c.NextSibling
		r.node.RemoveChild(c)
		c = next
	}
}

// Replace полностью заменяет содержимое: старое всегда удаляется до вставки нового.
func (r *Region) Replace(nodes ...*html.Node) {
	r.Clear()
	for _, n := range nodes {
		r.node.AppendChild(n)
	}
}

func (r *Region) SetText(s string) {
	r.Replace(Text(s))
}

func (r *Region) Text() string {
	return TextContent(r.node)
}

func (r *Region) Children() []*html.Node {
	var out []*html.Node
	for c := r.node.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// SetStyle меняет одно inline-свойство, остальные сохраняются.
func (r *Region) SetStyle(prop, value string) {
	style, _ := Attr(r.node, "style")
	decls := parseStyle(style)

	replaced := false
	for i := range decls {
		if decls[i][0] == prop {
			decls[i][1] = value
			replaced = true
		}
	}
	if !replaced {
		decls = append(decls, [2]string{prop, value})
	}

	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d[0]+": "+d[1])
	}
	SetAttr(r.node, "style", strings.Join(parts, "; "))
}

func (r *Region) Style(prop string) string {
	style, _ := Attr(r.node, "style")
	for _, d := range parseStyle(style) {
		if d[0] == prop {
			return d[1]
		}
	}
	return ""
}

// RenderInner пишет innerHTML области.
func (r *Region) RenderInner(w io.Writer) error {
	for c := r.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// InnerHTML: удобная обертка над RenderInner для тестов и логов.
func (r *Region) InnerHTML() string {
	var buf bytes.Buffer
	_ = r.RenderInner(&buf)
	return buf.String()
}

func parseStyle(style string) [][2]string {
	var out [][2]string
	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.TrimSpace(prop)
		if prop == "" {
			continue
		}
		out = append(out, [2]string{prop, strings.TrimSpace(value)})
	}
	return out
}
