package cleaning

import (
	"strings"

	"golang.org/x/net/html"
)

// skipTags hold no feedback text
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true, "head": true,
}

// StripHTML returns the readable text of feedback submitted through rich-text
// forms. Text without markup is returned unchanged.
func StripHTML(text string) string {
	if !strings.ContainsRune(text, '<') {
		return text
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return text
	}

	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}

		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}

		// block elements separate words
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
				sb.WriteString(" ")
			}
		}
	}

	extract(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}
