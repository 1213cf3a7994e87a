package extract

import (
	"strings"
	"testing"
)

func TestPageContent_Preference(t *testing.T) {
	tests := []struct {
		name string
		page Page
		want string
	}{
		{"raw wins over fit", Page{RawMarkdown: "raw", FitMarkdown: "fit", Text: "text"}, "raw"},
		{"fit when raw empty", Page{RawMarkdown: "  ", FitMarkdown: "fit", Text: "text"}, "fit"},
		{"text as last resort", Page{Text: "text"}, "text"},
		{"nothing", Page{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.Content(); got != tt.want {
				t.Fatalf("Content() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvert_ProducesRawMarkdown(t *testing.T) {
	body := []byte(`<!doctype html><html><head><title>Convert Me</title></head>
	<body><main><h1>Main Heading</h1><p>The boiling point of water is 100 degrees.</p></main></body></html>`)

	p := Convert(body, "https://example.com/page")
	if p.Title != "Convert Me" {
		t.Fatalf("unexpected title: %q", p.Title)
	}
	if !strings.Contains(p.RawMarkdown, "Main Heading") {
		t.Fatalf("expected heading in raw markdown, got %q", p.RawMarkdown)
	}
	if !strings.Contains(p.Text, "boiling point") {
		t.Fatalf("expected plain text rendering, got %q", p.Text)
	}
	if p.Content() != p.RawMarkdown {
		t.Fatalf("expected raw markdown to be preferred")
	}
}
