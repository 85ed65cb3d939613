package upstream

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/reliefboard/internal/model"
)

// ExtractAnchors collects the <a href> links of an HTML fragment in document
// order. Relative links are resolved against base; fragment-only, mailto and
// javascript links are skipped.
func ExtractAnchors(fragment, base string) ([]model.Link, error) {
	if strings.TrimSpace(fragment) == "" {
		return []model.Link{}, nil
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	var links []model.Link
	var walk func(*html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := ""
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					href = strings.TrimSpace(attr.Val)
				}
			}
			if resolved := resolveURL(baseURL, href); resolved != "" {
				title := strings.Join(strings.Fields(textContent(n)), " ")
				if title == "" {
					title = resolved
				}
				links = append(links, model.Link{Title: title, URL: resolved})
			}
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return cleanLinks(links), nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func resolveURL(base *url.URL, href string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "javascript:") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
