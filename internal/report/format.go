package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/KaramelBytes/hypocheck/internal/utils"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat accepts text, markdown (md), html and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported format: %s (use text|markdown|html|json)", s)
}

// Write renders v in format f.
func Write(w io.Writer, f Format, v any) error {
	switch f {
	case FormatText, "":
		return Text(w, v)
	case FormatMarkdown:
		return Markdown(w, v)
	case FormatHTML:
		return HTML(w, v)
	case FormatJSON:
		return JSON(w, v)
	}
	return fmt.Errorf("unsupported format: %s", f)
}

// JSON writes v as indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// HTML renders the Markdown form of v as an HTML fragment.
func HTML(w io.Writer, v any) error {
	md, err := renderMarkdown(v)
	if err != nil {
		return err
	}
	_, err = w.Write(MarkdownToHTML(md))
	return err
}

// MarkdownToHTML converts Markdown with tables to an HTML fragment.
func MarkdownToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, r)
}
