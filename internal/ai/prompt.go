package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"careercompass/internal/model"
)

//go:embed prompts/consultation.tmpl
var consultationPromptRaw string

//go:embed prompts/roadmap.tmpl
var roadmapPromptRaw string

var promptFuncs = template.FuncMap{
	"json": func(v interface{}) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

// Parsed once at package init; reused on every request.
var (
	consultationTemplate = template.Must(template.New("consultation").Parse(consultationPromptRaw))
	roadmapTemplate      = template.Must(template.New("roadmap").Funcs(promptFuncs).Parse(roadmapPromptRaw))
)

// ConsultationPrompt renders the instruction asking for five career domains
// as a bare JSON array. The output depends only on the profile.
func ConsultationPrompt(profile model.CareerProfile) (string, error) {
	data := struct {
		model.CareerProfile
		Count int
	}{
		CareerProfile: normalizeProfile(profile),
		Count:         SuggestionCount,
	}

	var b strings.Builder
	if err := consultationTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render consultation prompt: %w", err)
	}
	return b.String(), nil
}

// RoadmapPrompt renders the instruction asking for the missing skills and the
// six-month plan for a target domain as a bare JSON object.
func RoadmapPrompt(domain, currentSkills string) (string, error) {
	data := struct {
		Domain     string
		Skills     string
		SkillCount int
		Months     int
	}{
		Domain:     strings.TrimSpace(domain),
		Skills:     orUnknown(currentSkills),
		SkillCount: model.MissingSkillCount,
		Months:     model.RoadmapMonths,
	}

	var b strings.Builder
	if err := roadmapTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render roadmap prompt: %w", err)
	}
	return b.String(), nil
}

func normalizeProfile(p model.CareerProfile) model.CareerProfile {
	return model.CareerProfile{
		AcademicStatus: orUnknown(p.AcademicStatus),
		Backlogs:       orUnknown(p.Backlogs),
		TopSkills:      orUnknown(p.TopSkills),
		ProjectType:    strings.TrimSpace(p.ProjectType),
		DreamCompany:   orUnknown(p.DreamCompany),
		Priority:       strings.TrimSpace(p.Priority),
	}
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "not specified"
	}
	return s
}
