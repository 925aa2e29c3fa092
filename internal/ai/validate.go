package ai

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "careercompass/internal/errors"
	"careercompass/internal/model"
)

// SuggestionCount is the number of domains a consultation must return.
const SuggestionCount = 5

var shapeValidator = validator.New()

type suggestionSet struct {
	Items []model.DomainSuggestion `validate:"len=5,dive"`
}

// roadmapDraft is the object the roadmap prompt asks for.
type roadmapDraft struct {
	TargetDomain  string       `json:"targetDomain" validate:"required"`
	MissingSkills []string     `json:"missingSkills" validate:"len=5,dive,required"`
	Roadmap       []monthDraft `json:"roadmap" validate:"len=6,dive"`
}

type monthDraft struct {
	Month  int    `json:"month" validate:"min=1,max=6"`
	Goal   string `json:"goal" validate:"required"`
	Action string `json:"action" validate:"required"`
}

// ParseSuggestions extracts and validates the five domain suggestions of a
// consultation completion.
func ParseSuggestions(raw string) ([]model.DomainSuggestion, error) {
	payload, err := Extract(raw)
	if err != nil {
		return nil, err
	}

	var set suggestionSet
	if err := json.Unmarshal(payload, &set.Items); err != nil {
		return nil, apperrors.NewFormatError(apperrors.FormatShape, raw, fmt.Errorf("expected an array of suggestions: %w", err))
	}
	if err := shapeValidator.Struct(set); err != nil {
		return nil, apperrors.NewFormatError(apperrors.FormatShape, raw, err)
	}
	return set.Items, nil
}

// ParseRoadmap extracts and validates a roadmap completion. Months must run
// 1..6 in order, which also rules out duplicates.
func ParseRoadmap(raw string) (*model.Roadmap, error) {
	payload, err := Extract(raw)
	if err != nil {
		return nil, err
	}

	var draft roadmapDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, apperrors.NewFormatError(apperrors.FormatShape, raw, fmt.Errorf("expected a roadmap object: %w", err))
	}
	if err := shapeValidator.Struct(draft); err != nil {
		return nil, apperrors.NewFormatError(apperrors.FormatShape, raw, err)
	}

	plan := make([]model.MonthPlan, 0, len(draft.Roadmap))
	for i, m := range draft.Roadmap {
		if m.Month != i+1 {
			return nil, apperrors.NewFormatError(apperrors.FormatShape, raw,
				fmt.Errorf("month %d at position %d, months must run 1..%d without repeats", m.Month, i+1, model.RoadmapMonths))
		}
		// a new plan starts with nothing done, whatever the model claims
		plan = append(plan, model.MonthPlan{
			Month:  m.Month,
			Goal:   m.Goal,
			Action: m.Action,
		})
	}

	return &model.Roadmap{
		TargetDomain:  draft.TargetDomain,
		MissingSkills: draft.MissingSkills,
		MonthlyPlan:   plan,
	}, nil
}
