package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crowdsourcing/surveyadmin/internal/surveys/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var surveyRowColumns = []string{
	"id", "slug", "title", "description", "starts_at", "ends_at", "is_published",
	"id", "fieldname", "question", "required", "order", "option_type", "options",
}

func setupSurveyRepo(t *testing.T) (*SurveyRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewSurveyRepository(db), mock, db
}

func TestSurveyRepository_ListSurveys(t *testing.T) {
	repo, mock, db := setupSurveyRepo(t)
	defer db.Close()
	ctx := context.Background()

	starts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	ends := starts.Add(72 * time.Hour)

	t.Run("groups questions under their survey", func(t *testing.T) {
		rows := sqlmock.NewRows(surveyRowColumns).
			AddRow(2, "satisfaction", "Satisfaction Survey", "", starts, ends, true,
				10, "rating", "How satisfied are you?", true, 1, "select", "1\n2\n\n3\n").
			AddRow(2, "satisfaction", "Satisfaction Survey", "", starts, ends, true,
				11, "comments", "Anything else?", false, nil, "text", "").
			AddRow(1, "empty", "Empty", "no questions", starts.Add(-time.Hour), nil, false,
				nil, nil, nil, nil, nil, nil, nil)

		mock.ExpectQuery(`left join questions q on q.survey_id = s.id`).
			WithArgs(nil, 0).
			WillReturnRows(rows)

		surveys, err := repo.ListSurveys(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, surveys, 2)

		s := surveys[0]
		assert.Equal(t, "satisfaction", s.Slug)
		require.NotNil(t, s.EndsAt)
		assert.True(t, ends.Equal(*s.EndsAt))
		require.Len(t, s.Questions, 2)
		assert.Equal(t, "rating", s.Questions[0].Fieldname)
		assert.Equal(t, []string{"1", "2", "3"}, s.Questions[0].Options)
		require.NotNil(t, s.Questions[0].Order)
		assert.Equal(t, 1, *s.Questions[0].Order)
		assert.Nil(t, s.Questions[1].Order)
		assert.Equal(t, []string{}, s.Questions[1].Options)

		assert.Equal(t, "empty", surveys[1].Slug)
		assert.Nil(t, surveys[1].EndsAt)
		assert.NotNil(t, surveys[1].Questions)
		assert.Empty(t, surveys[1].Questions)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("passes limit and offset", func(t *testing.T) {
		mock.ExpectQuery(`limit \$1 offset \$2`).
			WithArgs(20, 40).
			WillReturnRows(sqlmock.NewRows(surveyRowColumns))

		surveys, err := repo.ListSurveys(ctx, 20, 40)
		require.NoError(t, err)
		assert.Empty(t, surveys)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps query errors", func(t *testing.T) {
		mock.ExpectQuery(`from surveys`).WillReturnError(sql.ErrConnDone)

		_, err := repo.ListSurveys(ctx, 0, 0)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSurveyRepository_GetSurveyBySlug(t *testing.T) {
	repo, mock, db := setupSurveyRepo(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("returns survey", func(t *testing.T) {
		rows := sqlmock.NewRows(surveyRowColumns).
			AddRow(5, "s1", "T1", "", time.Now(), nil, true,
				7, "f1", "Q1?", false, 1, "char", "")
		mock.ExpectQuery(`where s.slug = \$1`).WithArgs("s1").WillReturnRows(rows)

		s, err := repo.GetSurveyBySlug(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "T1", s.Title)
		require.Len(t, s.Questions, 1)
		assert.Equal(t, "Q1?", s.Questions[0].Question)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown slug", func(t *testing.T) {
		mock.ExpectQuery(`where s.slug = \$1`).WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(surveyRowColumns))

		_, err := repo.GetSurveyBySlug(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrSurveyNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSurveyRepository_CountSurveys(t *testing.T) {
	repo, mock, db := setupSurveyRepo(t)
	defer db.Close()

	mock.ExpectQuery(`select count\(\*\) from surveys`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := repo.CountSurveys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
