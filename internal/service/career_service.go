package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"careercompass/internal/ai"
	apperrors "careercompass/internal/errors"
	"careercompass/internal/model"
	"careercompass/internal/repository"
)

const (
	roadmapCacheKeyPrefix = "roadmap:"
	roadmapCacheTTL       = 24 * time.Hour
)

// RoadmapSource tells where a served roadmap was read from.
type RoadmapSource string

const (
	SourceStore RoadmapSource = "store"
	SourceCache RoadmapSource = "cache"
)

// RoadmapView is a roadmap together with its origin.
type RoadmapView struct {
	Roadmap *model.Roadmap
	Source  RoadmapSource
}

// RoadmapCache is the subset of the redis wrapper used for roadmaps.
type RoadmapCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Logger receives non-fatal problems. echo.Logger satisfies it.
type Logger interface {
	Warnf(format string, args ...interface{})
}

// CareerService runs consultations and owns the roadmap lifecycle.
type CareerService interface {
	Consult(ctx context.Context, userID uuid.UUID, profile model.CareerProfile) ([]model.DomainSuggestion, error)
	GenerateRoadmap(ctx context.Context, userID uuid.UUID, domain, currentSkills string) (*model.Roadmap, error)
	GetRoadmap(ctx context.Context, userID uuid.UUID) (*RoadmapView, error)
	SetMonthCompleted(ctx context.Context, userID uuid.UUID, month int, completed bool, revision *int) (*model.Roadmap, error)
}

type careerService struct {
	completer ai.Completer
	model     string
	users     repository.UserRepository
	roadmaps  repository.RoadmapRepository
	cache     RoadmapCache
	log       Logger
}

// NewCareerService creates a new career service. cache and log may be nil.
func NewCareerService(completer ai.Completer, model string, users repository.UserRepository, roadmaps repository.RoadmapRepository, cache RoadmapCache, log Logger) CareerService {
	if model == "" {
		model = ai.DefaultModel
	}
	if log == nil {
		log = nopLogger{}
	}
	return &careerService{
		completer: completer,
		model:     model,
		users:     users,
		roadmaps:  roadmaps,
		cache:     cache,
		log:       log,
	}
}

// Consult asks for five career domains matching the profile. A successful
// consultation also completes the user's profile; that write is best-effort.
func (s *careerService) Consult(ctx context.Context, userID uuid.UUID, profile model.CareerProfile) ([]model.DomainSuggestion, error) {
	prompt, err := ai.ConsultationPrompt(profile)
	if err != nil {
		return nil, &apperrors.ServerError{Op: "build consultation prompt", Err: err}
	}

	raw, err := s.completer.Complete(ctx, s.model, prompt)
	if err != nil {
		return nil, err
	}

	suggestions, err := ai.ParseSuggestions(raw)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateProfile(ctx, userID, splitSkills(profile.TopSkills)); err != nil {
		s.log.Warnf("complete profile for user %s: %v", userID, err)
	}

	return suggestions, nil
}

// GenerateRoadmap builds a six-month roadmap for domain and stores it as the
// user's only roadmap, replacing any previous one.
func (s *careerService) GenerateRoadmap(ctx context.Context, userID uuid.UUID, domain, currentSkills string) (*model.Roadmap, error) {
	prompt, err := ai.RoadmapPrompt(domain, currentSkills)
	if err != nil {
		return nil, &apperrors.ServerError{Op: "build roadmap prompt", Err: err}
	}

	raw, err := s.completer.Complete(ctx, s.model, prompt)
	if err != nil {
		return nil, err
	}

	roadmap, err := ai.ParseRoadmap(raw)
	if err != nil {
		return nil, err
	}

	saved, err := s.roadmaps.Save(ctx, userID, roadmap)
	if err != nil {
		return nil, &apperrors.ServerError{Op: "persist roadmap", Err: err}
	}

	s.remember(ctx, userID, saved)
	return saved, nil
}

// GetRoadmap reads the cached copy first, then the store. The store answer
// always wins; the cached copy is served only while the store is failing.
func (s *careerService) GetRoadmap(ctx context.Context, userID uuid.UUID) (*RoadmapView, error) {
	var cached model.Roadmap
	hit := s.cache != nil && s.cache.GetJSON(ctx, roadmapCacheKey(userID), &cached)

	stored, err := s.roadmaps.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		s.remember(ctx, userID, stored)
		return &RoadmapView{Roadmap: stored, Source: SourceStore}, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.forget(ctx, userID)
		return nil, apperrors.ErrRoadmapNotFound
	case hit:
		s.log.Warnf("roadmap store unavailable for user %s, serving cached copy: %v", userID, err)
		return &RoadmapView{Roadmap: &cached, Source: SourceCache}, nil
	default:
		return nil, &apperrors.ServerError{Op: "load roadmap", Err: err}
	}
}

// SetMonthCompleted flips one month's completion flag. A non-nil revision
// must match the stored one, so a toggle never lands on a plan that was
// regenerated after the client loaded it.
func (s *careerService) SetMonthCompleted(ctx context.Context, userID uuid.UUID, month int, completed bool, revision *int) (*model.Roadmap, error) {
	if month < 1 || month > model.RoadmapMonths {
		return nil, apperrors.NewValidationError("month must be between 1 and %d", model.RoadmapMonths)
	}

	updated, err := s.roadmaps.UpdateLocked(ctx, userID, func(r *model.Roadmap) error {
		if revision != nil && *revision != r.Revision {
			return apperrors.ErrRoadmapConflict
		}
		entry, ok := r.Month(month)
		if !ok {
			return apperrors.NewValidationError("roadmap has no month %d", month)
		}
		entry.IsCompleted = completed
		return nil
	})
	if err != nil {
		var validationErr *apperrors.ValidationError
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperrors.ErrRoadmapNotFound
		case errors.Is(err, apperrors.ErrRoadmapConflict), errors.As(err, &validationErr):
			return nil, err
		default:
			return nil, &apperrors.ServerError{Op: "update roadmap month", Err: err}
		}
	}

	s.remember(ctx, userID, updated)
	return updated, nil
}

func (s *careerService) remember(ctx context.Context, userID uuid.UUID, roadmap *model.Roadmap) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, roadmapCacheKey(userID), roadmap, roadmapCacheTTL); err != nil {
		s.log.Warnf("cache roadmap for user %s: %v", userID, err)
	}
}

func (s *careerService) forget(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, roadmapCacheKey(userID))
}

func roadmapCacheKey(userID uuid.UUID) string {
	return roadmapCacheKeyPrefix + userID.String()
}

// splitSkills turns the free-text skills answer into a list.
func splitSkills(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	skills := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			skills = append(skills, f)
		}
	}
	return skills
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...interface{}) {}
