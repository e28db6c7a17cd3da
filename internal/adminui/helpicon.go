package adminui

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// HelpTextSelector matches the admin form help paragraphs
	HelpTextSelector = "div p.help"
	// DefaultHelpIconSrc is the admin question-mark icon
	DefaultHelpIconSrc = "/static/admin/img/icon-unknown.gif"
)

var helpTextSel = cascadia.MustCompile(HelpTextSelector)

// HelpIcon builds the tooltip image that stands in for a help paragraph
func HelpIcon(src, text string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "img",
		DataAtom: atom.Img,
		Attr: []html.Attribute{
			{Key: "src", Val: src},
			{Key: "class", Val: "help help-tooltip"},
			{Key: "width", Val: "10"},
			{Key: "height", Val: "10"},
			{Key: "alt", Val: text},
			{Key: "title", Val: text},
		},
	}
}

// ReplaceHelpText swaps every help paragraph in doc for a tooltip icon whose
// alt and title carry the paragraph text. Returns the number replaced.
func ReplaceHelpText(doc *html.Node, iconSrc string) int {
	if iconSrc == "" {
		iconSrc = DefaultHelpIconSrc
	}
	return ReplaceEach(doc, helpTextSel, func(n *html.Node) *html.Node {
		return HelpIcon(iconSrc, TextContent(n))
	})
}
