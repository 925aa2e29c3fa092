package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"careercompass/internal/model"
)

// RoadmapRepository persists the single roadmap each user owns. It never
// writes the users table.
type RoadmapRepository interface {
	Save(ctx context.Context, userID uuid.UUID, roadmap *model.Roadmap) (*model.Roadmap, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Roadmap, error)
	UpdateLocked(ctx context.Context, userID uuid.UUID, fn func(roadmap *model.Roadmap) error) (*model.Roadmap, error)
}

type roadmapRepository struct {
	db *gorm.DB
}

// NewRoadmapRepository creates a new roadmap repository.
func NewRoadmapRepository(db *gorm.DB) RoadmapRepository {
	return &roadmapRepository{db: db}
}

// Save replaces the user's roadmap wholesale with a single upsert and returns
// the stored row. Each overwrite bumps the revision.
func (r *roadmapRepository) Save(ctx context.Context, userID uuid.UUID, roadmap *model.Roadmap) (*model.Roadmap, error) {
	row := &model.Roadmap{
		UserID:        userID,
		TargetDomain:  roadmap.TargetDomain,
		MissingSkills: roadmap.MissingSkills,
		MonthlyPlan:   roadmap.MonthlyPlan,
		Revision:      1,
	}

	var saved model.Roadmap
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: append(
				clause.AssignmentColumns([]string{"target_domain", "missing_skills", "monthly_plan", "updated_at"}),
				clause.Assignment{Column: clause.Column{Name: "revision"}, Value: gorm.Expr("revision + 1")},
			),
		}
		if err := tx.Clauses(upsert).Create(row).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).First(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *roadmapRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&roadmap).Error; err != nil {
		return nil, err
	}
	return &roadmap, nil
}

// UpdateLocked loads the roadmap under a row lock, lets fn mutate the monthly
// plan and writes it back in the same transaction. An error from fn aborts
// the write. The revision is left untouched.
func (r *roadmapRepository) UpdateLocked(ctx context.Context, userID uuid.UUID, fn func(roadmap *model.Roadmap) error) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&roadmap).Error; err != nil {
			return err
		}
		if err := fn(&roadmap); err != nil {
			return err
		}
		return tx.Model(&roadmap).Updates(map[string]interface{}{
			"monthly_plan": roadmap.MonthlyPlan,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &roadmap, nil
}
