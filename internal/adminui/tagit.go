package adminui

import (
	"encoding/json"
	"fmt"

	"github.com/andybalholm/cascadia"
	"github.com/crowdsourcing/surveyadmin/internal/fieldnames"
	"github.com/crowdsourcing/surveyadmin/internal/surveys/domain"
	"golang.org/x/net/html"
)

const (
	// FieldnamesSelector matches the survey field-names input on the admin form
	FieldnamesSelector = "div.field-fieldnames input"
	TagitBehavior      = "tagit"
)

var fieldnamesSel = cascadia.MustCompile(FieldnamesSelector)

// TagitConfig is the tag-entry widget configuration
type TagitConfig struct {
	ShowAutocompleteOnFocus bool   `json:"showAutocompleteOnFocus"`
	AllowSpaces             bool   `json:"allowSpaces"`
	TagSource               string `json:"tagSource"`
}

// DefaultTagitConfig points the widget at the suggestion endpoint
func DefaultTagitConfig(sourceURL string) TagitConfig {
	return TagitConfig{
		ShowAutocompleteOnFocus: true,
		AllowSpaces:             true,
		TagSource:               sourceURL,
	}
}

// Binding attaches a client behaviour with its configuration to matching elements
type Binding struct {
	Selector cascadia.Selector
	Behavior string
	Config   any
}

// Attach marks every element matched by b.Selector with data-behavior and a
// data-<behavior> JSON attribute holding b.Config.
func Attach(doc *html.Node, b Binding) (int, error) {
	cfg, err := json.Marshal(b.Config)
	if err != nil {
		return 0, fmt.Errorf("encode %s config: %w", b.Behavior, err)
	}
	n := EachMatch(doc, b.Selector, func(el *html.Node) {
		setAttr(el, "data-behavior", b.Behavior)
		setAttr(el, "data-"+b.Behavior, string(cfg))
	})
	return n, nil
}

// BindTagInput attaches the tag-entry behaviour to the field-names input
func BindTagInput(doc *html.Node, sourceURL string) (int, error) {
	return Attach(doc, Binding{
		Selector: fieldnamesSel,
		Behavior: TagitBehavior,
		Config:   DefaultTagitConfig(sourceURL),
	})
}

// TagRequest is the widget's opaque request; Term is carried but not used
type TagRequest struct {
	Term string
}

// TagResponse receives the suggestions for a request
type TagResponse func([]domain.Suggestion)

// TagSource returns the widget callback. It always responds with the full
// current store contents; filtering is left to the widget.
func TagSource(store *fieldnames.Store) func(TagRequest, TagResponse) {
	return func(_ TagRequest, respond TagResponse) {
		respond(store.Get())
	}
}
