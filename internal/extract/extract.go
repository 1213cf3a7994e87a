package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Document is the plain-text view of a page.
type Document struct {
	Title string
	Text  string
}

// FromHTML extracts readable text from HTML, preferring <main> or <article>,
// falling back to <body>. Headings, paragraphs, list items and pre/code
// blocks keep their line structure; navigation, footers, forms and
// consent banners are skipped.
func FromHTML(input []byte) Document {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return Document{}
	}

	title := ""
	if head := findFirst(node, "head"); head != nil {
		title = strings.TrimSpace(textOf(findFirst(head, "title")))
	}
	var content *html.Node
	for _, tag := range []string{"main", "article", "body"} {
		if content = findFirst(node, tag); content != nil {
			break
		}
	}
	var b strings.Builder
	if content != nil {
		collectText(&b, content, false)
	}
	return Document{Title: title, Text: normalizeWhitespace(b.String())}
}

func textOf(n *html.Node) string {
	if n == nil || n.FirstChild == nil {
		return ""
	}
	return n.FirstChild.Data
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "nav": true, "footer": true,
	"aside": true, "iframe": true, "form": true, "button": true, "svg": true,
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		if isBoilerplate(n) {
			return
		}
		name := strings.ToLower(n.Data)
		if skipped[name] {
			return
		}
		switch name {
		case "pre", "code":
			inPre = true
		case "br", "hr", "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol", "tr":
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.NewReplacer("\t", " ", "\r", " ").Replace(data)
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n\n")
		case "li", "pre", "code", "tr":
			b.WriteString("\n")
		}
	}
}

// isBoilerplate matches cookie/consent banners and ARIA navigation landmarks.
func isBoilerplate(n *html.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		val := strings.ToLower(attr.Val)
		switch {
		case key == "role":
			if val == "navigation" || val == "banner" || val == "contentinfo" {
				return true
			}
		case key == "id" || key == "class" || key == "aria-label" || strings.HasPrefix(key, "data-"):
			if containsAny(val, "cookie", "consent", "gdpr") {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// normalizeWhitespace collapses runs of spaces and keeps at most one blank line.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		collapsed := strings.Join(strings.Fields(line), " ")
		if collapsed == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		out = append(out, collapsed)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
