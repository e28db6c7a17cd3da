package domain

import (
	"strings"
	"time"
)

// Survey is a named collection of questions identified by a slug
type Survey struct {
	ID          int64      `json:"-"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ResourceURI string     `json:"resource_uri,omitempty"`
	StartsAt    time.Time  `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	IsPublished bool       `json:"is_published"`
	Questions   []Question `json:"questions"`
}

// Question is one field within a survey. Fieldname is unique per survey.
type Question struct {
	ID         int64    `json:"-"`
	Fieldname  string   `json:"fieldname"`
	Question   string   `json:"question"`
	Required   bool     `json:"required"`
	OptionType string   `json:"option_type,omitempty"`
	Options    []string `json:"options"`
	Order      *int     `json:"order,omitempty"`
}

// SurveyList is the payload of the survey list endpoint
type SurveyList struct {
	Meta    ListMeta `json:"meta"`
	Objects []Survey `json:"objects"`
}

// ListMeta mirrors the paging block of the survey list endpoint
type ListMeta struct {
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
	TotalCount int     `json:"total_count"`
	Next       *string `json:"next"`
	Previous   *string `json:"previous"`
}

// ParseOptions splits the stored options text into its non-blank trimmed lines
func ParseOptions(raw string) []string {
	out := make([]string, 0)
	for _, line := range strings.Split(raw, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}
