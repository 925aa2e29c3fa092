package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"careercompass/internal/auth"
	"careercompass/internal/model"
	"careercompass/internal/service"
)

// RoadmapSourceHeader names where a served roadmap came from.
const RoadmapSourceHeader = "X-Roadmap-Source"

// AIHandler handles consultation and roadmap endpoints.
type AIHandler struct {
	careerService service.CareerService
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(careerService service.CareerService) *AIHandler {
	return &AIHandler{careerService: careerService}
}

// ProfileRequest is the questionnaire filled in before a consultation.
type ProfileRequest struct {
	AcademicStatus string `json:"academicStatus" validate:"required"`
	Backlogs       string `json:"backlogs" validate:"required"`
	TopSkills      string `json:"topSkills" validate:"required"`
	ProjectType    string `json:"projectType"`
	DreamCompany   string `json:"dreamCompany" validate:"required"`
	Priority       string `json:"priority"`
}

// ConsultRequest wraps the profile.
type ConsultRequest struct {
	Profile ProfileRequest `json:"profile"`
}

// RoadmapRequest asks for a roadmap towards a domain.
type RoadmapRequest struct {
	Domain        string `json:"domain" validate:"required"`
	CurrentSkills string `json:"currentSkills"`
}

// MonthToggleRequest sets one month's completion flag. Revision, when sent,
// must match the roadmap the client is looking at.
type MonthToggleRequest struct {
	Month       int   `param:"month" json:"-"`
	IsCompleted *bool `json:"isCompleted" validate:"required"`
	Revision    *int  `json:"revision,omitempty"`
}

// DeepConsult godoc
// @Summary Career domain consultation
// @Description Suggests exactly five career domains with a corrective analysis each.
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ConsultRequest true "Career profile"
// @Success 200 {array} model.DomainSuggestion
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /ai/deep-consult [post]
func (h *AIHandler) DeepConsult(c echo.Context) error {
	var req ConsultRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	suggestions, err := h.careerService.Consult(c.Request().Context(), userID, model.CareerProfile{
		AcademicStatus: req.Profile.AcademicStatus,
		Backlogs:       req.Profile.Backlogs,
		TopSkills:      req.Profile.TopSkills,
		ProjectType:    req.Profile.ProjectType,
		DreamCompany:   req.Profile.DreamCompany,
		Priority:       req.Profile.Priority,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, suggestions)
}

// GenerateRoadmap godoc
// @Summary Generate roadmap
// @Description Generates a six-month roadmap and replaces the caller's stored roadmap with it.
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RoadmapRequest true "Target domain"
// @Success 200 {object} model.Roadmap
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /ai/generate-roadmap [post]
func (h *AIHandler) GenerateRoadmap(c echo.Context) error {
	var req RoadmapRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	roadmap, err := h.careerService.GenerateRoadmap(c.Request().Context(), userID, req.Domain, req.CurrentSkills)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, roadmap)
}

// GetRoadmap godoc
// @Summary Current roadmap
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Roadmap
// @Header 200 {string} X-Roadmap-Source "store or cache"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /ai/roadmap [get]
func (h *AIHandler) GetRoadmap(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	view, err := h.careerService.GetRoadmap(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	c.Response().Header().Set(RoadmapSourceHeader, string(view.Source))
	return c.JSON(http.StatusOK, view.Roadmap)
}

// ToggleMonth godoc
// @Summary Mark a roadmap month
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param month path int true "Month number (1-6)"
// @Param request body MonthToggleRequest true "Completion flag"
// @Success 200 {object} model.Roadmap
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /ai/roadmap/months/{month} [patch]
func (h *AIHandler) ToggleMonth(c echo.Context) error {
	var req MonthToggleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	roadmap, err := h.careerService.SetMonthCompleted(c.Request().Context(), userID, req.Month, *req.IsCompleted, req.Revision)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, roadmap)
}
