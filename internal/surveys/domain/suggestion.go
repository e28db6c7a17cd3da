package domain

// Suggestion is one autocomplete entry derived from a survey question
type Suggestion struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// NewSuggestion builds the entry for question q of survey s
func NewSuggestion(s Survey, q Question) Suggestion {
	return Suggestion{
		Value: s.Slug + "." + q.Fieldname,
		Label: s.Title + " - " + q.Question,
	}
}

// BuildSuggestions flattens every survey's questions into suggestion entries,
// keeping survey order then question order. Duplicate values are kept.
func BuildSuggestions(surveys []Survey) []Suggestion {
	n := 0
	for _, s := range surveys {
		n += len(s.Questions)
	}

	out := make([]Suggestion, 0, n)
	for _, s := range surveys {
		for _, q := range s.Questions {
			out = append(out, NewSuggestion(s, q))
		}
	}
	return out
}
