package render

import (
	"bytes"
	"context"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// nativeBackend renders in-process. It is the slowest option and handles only
// the structural subset of HTML that report-style output uses.
type nativeBackend struct {
	opts Options
}

func newNativeBackend(opts Options) Backend {
	return &nativeBackend{opts: opts}
}

func (b *nativeBackend) Name() string { return "native" }

func (b *nativeBackend) Convert(ctx context.Context, markup []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &RenderError{Backend: b.Name(), Cause: err}
	}
	doc, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return "", &RenderError{Backend: b.Name(), Cause: err}
	}
	w := &textWriter{width: b.opts.width()}
	w.walk(doc)
	w.flush()
	return Normalize(w.out.String()), nil
}

// textWriter accumulates block-level output with a pending inline line.
type textWriter struct {
	width  int
	out    strings.Builder
	inline strings.Builder
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Head, atom.Script, atom.Style, atom.Title, atom.Noscript:
			return
		case atom.Br:
			w.lineBreak()
			return
		case atom.Hr:
			w.flush()
			w.out.WriteString(strings.Repeat("-", w.width))
			w.out.WriteByte('\n')
			return
		case atom.Pre:
			w.flush()
			w.out.WriteString(strings.TrimRight(textContent(n), "\n"))
			w.out.WriteByte('\n')
			return
		case atom.Table:
			w.flush()
			if t := renderTable(n); t != "" {
				w.out.WriteString(t)
				w.out.WriteByte('\n')
			}
			return
		case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			w.flush()
			w.children(n)
			w.flush()
			w.blankLine()
			return
		case atom.Li:
			w.flush()
			w.inline.WriteString("* ")
			w.children(n)
			w.flush()
			return
		case atom.Div, atom.Tr, atom.Ul, atom.Ol, atom.Dl, atom.Dt, atom.Dd, atom.Blockquote, atom.Caption:
			w.flush()
			w.children(n)
			w.flush()
			return
		}
	}
	w.children(n)
}

func (w *textWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// text appends inline text, collapsing whitespace runs into single spaces.
func (w *textWriter) text(s string) {
	if s == "" {
		return
	}
	fields := strings.Fields(s)
	lead := isSpace(s[0])
	trail := isSpace(s[len(s)-1])
	if len(fields) == 0 {
		if w.inline.Len() > 0 {
			w.inline.WriteByte(' ')
		}
		return
	}
	if lead && w.inline.Len() > 0 {
		w.inline.WriteByte(' ')
	}
	w.inline.WriteString(strings.Join(fields, " "))
	if trail {
		w.inline.WriteByte(' ')
	}
}

func (w *textWriter) lineBreak() {
	line := strings.TrimSpace(w.inline.String())
	w.inline.Reset()
	w.out.WriteString(strings.Join(wrapWords(line, w.width), "\n"))
	w.out.WriteByte('\n')
}

// flush ends the pending inline line, if any.
func (w *textWriter) flush() {
	if strings.TrimSpace(w.inline.String()) == "" {
		w.inline.Reset()
		return
	}
	w.lineBreak()
}

func (w *textWriter) blankLine() {
	s := w.out.String()
	if s == "" || strings.HasSuffix(s, "\n\n") {
		return
	}
	w.out.WriteByte('\n')
}

func renderTable(n *html.Node) string {
	var rows [][]string
	var right []bool
	header := false
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				var row []string
				allTH := true
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type != html.ElementNode || (cell.DataAtom != atom.Td && cell.DataAtom != atom.Th) {
						continue
					}
					if cell.DataAtom != atom.Th {
						allTH = false
					}
					col := len(row)
					for len(right) <= col {
						right = append(right, false)
					}
					if strings.EqualFold(attr(cell, "align"), "right") {
						right[col] = true
					}
					row = append(row, cellText(cell))
				}
				if len(row) == 0 {
					continue
				}
				if len(rows) == 0 && allTH {
					header = true
				}
				rows = append(rows, row)
			case atom.Table:
				// nested tables are flattened into their parent cell text
			default:
				visit(c)
			}
		}
	}
	visit(n)
	if len(rows) == 0 {
		return ""
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(_, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if col < len(right) && right[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	if header {
		t = t.Headers(rows[0]...)
		rows = rows[1:]
	}
	t = t.Rows(rows...)
	return t.String()
}

func cellText(n *html.Node) string {
	w := &textWriter{width: 1 << 16}
	w.children(n)
	w.flush()
	return strings.TrimSpace(w.out.String())
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Br {
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// wrapWords breaks s on spaces so no line exceeds width display cells,
// except where a single word is wider than width.
func wrapWords(s string, width int) []string {
	if s == "" || runewidth.StringWidth(s) <= width {
		return []string{s}
	}
	var lines []string
	var cur strings.Builder
	curW := 0
	for _, word := range strings.Fields(s) {
		ww := runewidth.StringWidth(word)
		if curW > 0 && curW+1+ww > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curW = 0
		}
		if curW > 0 {
			cur.WriteByte(' ')
			curW++
		}
		cur.WriteString(word)
		curW += ww
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}
