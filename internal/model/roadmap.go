package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// RoadmapMonths is the length of every monthly plan.
	RoadmapMonths = 6
	// MissingSkillCount is the number of skill gaps reported per roadmap.
	MissingSkillCount = 5
)

// Roadmap is the six-month plan owned by exactly one user.
type Roadmap struct {
	ID            uuid.UUID                      `json:"-" gorm:"type:char(36);primaryKey"`
	UserID        uuid.UUID                      `json:"-" gorm:"type:char(36);uniqueIndex;not null"`
	TargetDomain  string                         `json:"targetDomain" gorm:"size:255;not null"`
	MissingSkills datatypes.JSONSlice[string]    `json:"missingSkills" gorm:"not null"`
	MonthlyPlan   datatypes.JSONSlice[MonthPlan] `json:"roadmap" gorm:"not null"`
	// Revision increments on every wholesale overwrite.
	Revision  int       `json:"revision" gorm:"not null"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MonthPlan is a single month of a roadmap.
type MonthPlan struct {
	Month       int    `json:"month"`
	Goal        string `json:"goal"`
	Action      string `json:"action"`
	IsCompleted bool   `json:"isCompleted"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Roadmap) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Month returns the plan entry for the given month number.
func (r *Roadmap) Month(month int) (*MonthPlan, bool) {
	for i := range r.MonthlyPlan {
		if r.MonthlyPlan[i].Month == month {
			return &r.MonthlyPlan[i], true
		}
	}
	return nil, false
}
