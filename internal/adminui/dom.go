package adminui

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ReplaceEach substitutes every node matched by sel with the node transform
// returns for it. A nil replacement leaves the node in place. Returns the
// number of nodes replaced.
func ReplaceEach(doc *html.Node, sel cascadia.Selector, transform func(*html.Node) *html.Node) int {
	replaced := 0
	for _, n := range sel.MatchAll(doc) {
		parent := n.Parent
		if parent == nil {
			continue
		}
		repl := transform(n)
		if repl == nil {
			continue
		}
		parent.InsertBefore(repl, n)
		parent.RemoveChild(n)
		replaced++
	}
	return replaced
}

// EachMatch calls fn for every node matched by sel and returns the match count
func EachMatch(doc *html.Node, sel cascadia.Selector, fn func(*html.Node)) int {
	matches := sel.MatchAll(doc)
	for _, n := range matches {
		fn(n)
	}
	return len(matches)
}

// TextContent concatenates the text of n and all its descendants
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key && a.Namespace == "" {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
