// Package scrape extracts a product name and price from an HTML page.
//
// The name is the text of the first element carrying itemprop="name"
// (schema.org microdata); the price is the text of the first element with the
// class "price".
package scrape

import (
	"strings"

	"golang.org/x/net/html"
)

// Product is what a page yields. Missing markup leaves a field empty.
type Product struct {
	Name  string
	Price string
}

// Parse reads doc and returns the scraped fields. It never fails: markup
// that cannot be found gives empty strings.
func Parse(doc string) Product {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return Product{}
	}

	var p Product
	if n := find(root, hasAttr("itemprop", "name")); n != nil {
		p.Name = strings.TrimSpace(textContent(n))
	}
	if n := find(root, hasClass("price")); n != nil {
		p.Price = strings.TrimSpace(textContent(n))
	}
	return p
}

type matcher func(*html.Node) bool

func hasAttr(key, val string) matcher {
	return func(n *html.Node) bool {
		for _, a := range n.Attr {
			if a.Namespace == "" && a.Key == key && a.Val == val {
				return true
			}
		}
		return false
	}
}

func hasClass(class string) matcher {
	return func(n *html.Node) bool {
		for _, a := range n.Attr {
			if a.Namespace != "" || a.Key != "class" {
				continue
			}
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
		return false
	}
}

// find returns the first element in document order that matches.
func find(n *html.Node, match matcher) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

// textContent concatenates every text node below n, like the DOM property
// of the same name.
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
