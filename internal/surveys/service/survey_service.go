package service

import (
	"context"
	"fmt"

	"github.com/crowdsourcing/surveyadmin/internal/logging"
	"github.com/crowdsourcing/surveyadmin/internal/surveys/domain"
)

// SurveyReader is the storage the service reads from
type SurveyReader interface {
	ListSurveys(ctx context.Context, limit, offset int) ([]domain.Survey, error)
	CountSurveys(ctx context.Context) (int, error)
	GetSurveyBySlug(ctx context.Context, slug string) (*domain.Survey, error)
}

// SnapshotStore caches the full survey list
type SnapshotStore interface {
	Get(ctx context.Context) ([]domain.Survey, bool, error)
	Set(ctx context.Context, surveys []domain.Survey) error
	Invalidate(ctx context.Context) error
}

// SurveyService serves surveys for the API, reading through the snapshot cache
type SurveyService struct {
	repo  SurveyReader
	cache SnapshotStore
}

// NewSurveyService creates a new SurveyService. cache may be nil.
func NewSurveyService(repo SurveyReader, cache SnapshotStore) *SurveyService {
	return &SurveyService{repo: repo, cache: cache}
}

// ListAll returns every survey, from the cache when it holds a snapshot
func (s *SurveyService) ListAll(ctx context.Context) ([]domain.Survey, error) {
	logger := logging.NewLogger(ctx)

	if s.cache != nil {
		surveys, ok, err := s.cache.Get(ctx)
		if err != nil {
			logger.LogWarnf("list_surveys", "snapshot read failed: %v", err)
		} else if ok {
			return surveys, nil
		}
	}

	return s.load(ctx)
}

// List returns one page of surveys and the total count. Without a snapshot
// cache the page is read straight from storage.
func (s *SurveyService) List(ctx context.Context, limit, offset int) ([]domain.Survey, int, error) {
	if offset < 0 {
		offset = 0
	}
	if s.cache == nil {
		return s.listPage(ctx, limit, offset)
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)

	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (s *SurveyService) listPage(ctx context.Context, limit, offset int) ([]domain.Survey, int, error) {
	total, err := s.repo.CountSurveys(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count surveys: %w", err)
	}
	page, err := s.repo.ListSurveys(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list surveys: %w", err)
	}
	return sanitize(ctx, page), total, nil
}

// Get returns the survey with the given slug
func (s *SurveyService) Get(ctx context.Context, slug string) (*domain.Survey, error) {
	survey, err := s.repo.GetSurveyBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	clean := sanitize(ctx, []domain.Survey{*survey})
	return &clean[0], nil
}

// Refresh reloads the survey list from storage and rewrites the snapshot
func (s *SurveyService) Refresh(ctx context.Context) error {
	logger := logging.NewLogger(ctx)

	surveys, err := s.load(ctx)
	if err != nil {
		// drop the old snapshot so readers go back to storage
		if s.cache != nil {
			if ierr := s.cache.Invalidate(ctx); ierr != nil {
				logger.LogWarnf("refresh_surveys", "snapshot invalidate failed: %v", ierr)
			}
		}
		return err
	}
	logger.LogInfof("refresh_surveys", "snapshot refreshed with %d surveys", len(surveys))
	return nil
}

func (s *SurveyService) load(ctx context.Context) ([]domain.Survey, error) {
	surveys, err := s.repo.ListSurveys(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	surveys = sanitize(ctx, surveys)

	if s.cache != nil {
		if err := s.cache.Set(ctx, surveys); err != nil {
			logging.NewLogger(ctx).LogWarnf("list_surveys", "snapshot write failed: %v", err)
		}
	}
	return surveys, nil
}

// sanitize drops questions whose field name could not be used as a suggestion value
func sanitize(ctx context.Context, surveys []domain.Survey) []domain.Survey {
	out := make([]domain.Survey, len(surveys))
	for i, sv := range surveys {
		kept := make([]domain.Question, 0, len(sv.Questions))
		for _, q := range sv.Questions {
			if err := domain.ValidateFieldname(q.Fieldname); err != nil {
				logging.NewLogger(ctx).LogWarnf("sanitize_survey", "survey=%s skipped: %v", sv.Slug, err)
				continue
			}
			kept = append(kept, q)
		}
		sv.Questions = kept
		out[i] = sv
	}
	return out
}
