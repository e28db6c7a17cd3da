package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/crowdsourcing/surveyadmin/internal/surveys/domain"
)

const surveyColumns = `
select s.id, s.slug, s.title, s.description, s.starts_at, s.ends_at, s.is_published,
       q.id, q.fieldname, q.question, q.required, q."order", q.option_type, q.options
`

const surveyOrder = `
order by s.starts_at desc, s.id, q."order" asc nulls last, q.id
`

// SurveyRepository reads surveys and their questions from PostgreSQL
type SurveyRepository struct {
	db *sql.DB
}

// NewSurveyRepository creates a new SurveyRepository
func NewSurveyRepository(db *sql.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

// ListSurveys returns surveys newest first with their questions in display
// order. A limit of 0 returns every survey.
func (r *SurveyRepository) ListSurveys(ctx context.Context, limit, offset int) ([]domain.Survey, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}

	q := surveyColumns + `
from (
    select * from surveys
    order by starts_at desc, id
    limit $1 offset $2
) s
left join questions q on q.survey_id = s.id
` + surveyOrder

	rows, err := r.db.QueryContext(ctx, q, lim, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	defer rows.Close()

	return scanSurveys(rows)
}

// CountSurveys returns the number of surveys
func (r *SurveyRepository) CountSurveys(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `select count(*) from surveys`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count surveys: %w", err)
	}
	return n, nil
}

// GetSurveyBySlug returns one survey with its questions
func (r *SurveyRepository) GetSurveyBySlug(ctx context.Context, slug string) (*domain.Survey, error) {
	q := surveyColumns + `
from surveys s
left join questions q on q.survey_id = s.id
where s.slug = $1
` + surveyOrder

	rows, err := r.db.QueryContext(ctx, q, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	defer rows.Close()

	surveys, err := scanSurveys(rows)
	if err != nil {
		return nil, err
	}
	if len(surveys) == 0 {
		return nil, domain.ErrSurveyNotFound
	}
	return &surveys[0], nil
}

func scanSurveys(rows *sql.Rows) ([]domain.Survey, error) {
	out := make([]domain.Survey, 0, 16)
	index := make(map[int64]int)

	for rows.Next() {
		var (
			s        domain.Survey
			endsAt   sql.NullTime
			qID      sql.NullInt64
			field    sql.NullString
			text     sql.NullString
			required sql.NullBool
			order    sql.NullInt64
			optType  sql.NullString
			options  sql.NullString
		)
		if err := rows.Scan(
			&s.ID, &s.Slug, &s.Title, &s.Description, &s.StartsAt, &endsAt, &s.IsPublished,
			&qID, &field, &text, &required, &order, &optType, &options,
		); err != nil {
			return nil, fmt.Errorf("failed to scan survey row: %w", err)
		}

		pos, seen := index[s.ID]
		if !seen {
			if endsAt.Valid {
				t := endsAt.Time
				s.EndsAt = &t
			}
			s.StartsAt = s.StartsAt.In(time.UTC)
			s.Questions = []domain.Question{}
			out = append(out, s)
			pos = len(out) - 1
			index[s.ID] = pos
		}

		if !qID.Valid {
			continue
		}
		q := domain.Question{
			ID:         qID.Int64,
			Fieldname:  field.String,
			Question:   text.String,
			Required:   required.Bool,
			OptionType: optType.String,
			Options:    domain.ParseOptions(options.String),
		}
		if order.Valid {
			o := int(order.Int64)
			q.Order = &o
		}
		out[pos].Questions = append(out[pos].Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate survey rows: %w", err)
	}
	return out, nil
}
