package extract

import (
	"bytes"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	readability "github.com/go-shiori/go-readability"
)

// Page holds every textual rendering produced for one fetched document.
// Renderings that failed are left empty.
type Page struct {
	URL         string
	Title       string
	RawMarkdown string // whole document converted to markdown
	FitMarkdown string // main-content distillation converted to markdown
	Text        string // plain text from FromHTML
}

// Content returns the first non-blank rendering in the order raw markdown,
// fitted markdown, plain text.
func (p Page) Content() string {
	for _, s := range []string{p.RawMarkdown, p.FitMarkdown, p.Text} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// Convert renders an HTML body into a Page. Individual renderings that fail
// are skipped rather than failing the page.
func Convert(body []byte, pageURL string) Page {
	doc := FromHTML(body)
	p := Page{URL: pageURL, Title: doc.Title, Text: doc.Text}
	if md, err := RawMarkdown(string(body)); err == nil {
		p.RawMarkdown = md
	}
	if md, title, err := FitMarkdown(body, pageURL); err == nil {
		p.FitMarkdown = md
		if p.Title == "" {
			p.Title = title
		}
	}
	return p
}

// RawMarkdown converts the full HTML document to markdown.
func RawMarkdown(doc string) (string, error) {
	md, err := htmltomarkdown.ConvertString(doc)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}

// FitMarkdown runs readability over the document and converts the extracted
// article body to markdown. It also returns the article title.
func FitMarkdown(body []byte, pageURL string) (string, string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return "", "", err
	}
	md, err := htmltomarkdown.ConvertString(article.Content)
	if err != nil {
		md = article.TextContent
	}
	return strings.TrimSpace(md), strings.TrimSpace(article.Title), nil
}
