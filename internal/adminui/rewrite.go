package adminui

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriterConfig controls how admin pages are rewritten
type RewriterConfig struct {
	HelpIconSrc  string
	TagSourceURL string
	// Scripts are appended to <body> so the page can activate the bound behaviours
	Scripts []string
}

// RewriteResult reports what a rewrite changed
type RewriteResult struct {
	HelpIcons int
	TagInputs int
	Scripts   int
}

// Changed reports whether the document was modified
func (r RewriteResult) Changed() bool {
	return r.HelpIcons > 0 || r.TagInputs > 0
}

// Rewriter applies the admin page enhancements to HTML documents
type Rewriter struct {
	cfg RewriterConfig
}

func NewRewriter(cfg RewriterConfig) *Rewriter {
	if cfg.HelpIconSrc == "" {
		cfg.HelpIconSrc = DefaultHelpIconSrc
	}
	return &Rewriter{cfg: cfg}
}

// Rewrite parses r, replaces help text, binds the tag input and renders the result
func (rw *Rewriter) Rewrite(r io.Reader) ([]byte, RewriteResult, error) {
	var res RewriteResult

	doc, err := html.Parse(r)
	if err != nil {
		return nil, res, fmt.Errorf("parse html: %w", err)
	}

	res.HelpIcons = ReplaceHelpText(doc, rw.cfg.HelpIconSrc)

	if rw.cfg.TagSourceURL != "" {
		n, err := BindTagInput(doc, rw.cfg.TagSourceURL)
		if err != nil {
			return nil, res, err
		}
		res.TagInputs = n
	}

	if res.TagInputs > 0 {
		res.Scripts = appendScripts(doc, rw.cfg.Scripts)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, res, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), res, nil
}

func appendScripts(doc *html.Node, srcs []string) int {
	if len(srcs) == 0 {
		return 0
	}
	body := findElement(doc, atom.Body)
	if body == nil {
		return 0
	}
	for _, src := range srcs {
		body.AppendChild(&html.Node{
			Type:     html.ElementNode,
			Data:     "script",
			DataAtom: atom.Script,
			Attr:     []html.Attribute{{Key: "src", Val: src}},
		})
	}
	return len(srcs)
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
