package enrich

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// MaxSnippet caps the HTML sent to the explanation service.
	MaxSnippet   = 2048
	maxAttrValue = 200
)

// CondenseSnippet shortens an element's HTML for prompting: data: URIs and
// long attribute values are elided and the result is capped at MaxSnippet
// bytes. Input that does not parse is only truncated.
func CondenseSnippet(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return truncate(s)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		elide(n)
		if err := html.Render(&buf, n); err != nil {
			return truncate(s)
		}
	}
	return truncate(buf.String())
}

func elide(n *html.Node) {
	for i, a := range n.Attr {
		switch {
		case strings.HasPrefix(strings.TrimSpace(a.Val), "data:"):
			n.Attr[i].Val = "data:…"
		case len(a.Val) > maxAttrValue:
			n.Attr[i].Val = a.Val[:maxAttrValue] + "…"
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		elide(c)
	}
}

func truncate(s string) string {
	if len(s) <= MaxSnippet {
		return s
	}
	cut := MaxSnippet
	// Back off to a UTF-8 boundary.
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "…"
}
