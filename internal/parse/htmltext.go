package parse

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// fieldHTMLText extracts the text of the first element matching the
// selector while keeping its structure readable: <br> and <p> become line
// breaks, ordered list items get "1. " prefixes, unordered ones "• ".
// Returns "" when the selector matches nothing.
func fieldHTMLText(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}

	var b strings.Builder
	for _, n := range sel.Nodes {
		flattenChildren(n, &b)
	}
	return tidyFlattened(b.String())
}

func flattenChildren(n *html.Node, b *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flattenNode(c, b)
	}
}

func flattenNode(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type != html.ElementNode {
		return
	}

	switch n.Data {
	case "br":
		b.WriteString("\n")
	case "p":
		b.WriteString("\n")
		flattenChildren(n, b)
		b.WriteString("\n")
	case "ol", "ul":
		b.WriteString("\n")
		idx := 1
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.Data != "li" {
				continue
			}
			b.WriteString("\n")
			if n.Data == "ol" {
				b.WriteString(strconv.Itoa(idx) + ". ")
			} else {
				b.WriteString("• ")
			}
			idx++
			flattenChildren(c, b)
		}
		b.WriteString("\n")
	default:
		flattenChildren(n, b)
	}
}

// tidyFlattened normalizes flattened text: spaces collapse within lines,
// lines are trimmed, and runs of blank lines shrink to one.
func tidyFlattened(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
