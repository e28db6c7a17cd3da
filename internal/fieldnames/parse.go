package fieldnames

import (
	"errors"

	"github.com/crowdsourcing/surveyadmin/internal/surveys/domain"
	"github.com/tidwall/gjson"
)

var (
	errMalformedJSON = errors.New("malformed JSON")
	errNoObjects     = errors.New("payload has no objects list")
)

// ParseSurveyList reads the survey list payload, keeping only the fields the
// suggestion list needs.
func ParseSurveyList(body []byte) ([]domain.Survey, error) {
	if !gjson.ValidBytes(body) {
		return nil, errMalformedJSON
	}

	objects := gjson.GetBytes(body, "objects")
	if !objects.IsArray() {
		return nil, errNoObjects
	}

	surveys := make([]domain.Survey, 0, len(objects.Array()))
	objects.ForEach(func(_, item gjson.Result) bool {
		s := domain.Survey{
			Slug:  item.Get("slug").String(),
			Title: item.Get("title").String(),
		}
		item.Get("questions").ForEach(func(_, q gjson.Result) bool {
			s.Questions = append(s.Questions, domain.Question{
				Fieldname: q.Get("fieldname").String(),
				Question:  q.Get("question").String(),
			})
			return true
		})
		surveys = append(surveys, s)
		return true
	})
	return surveys, nil
}
