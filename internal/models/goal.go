package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Goal levels: 0 = Strategic Objective, 1 = Goal, 2 = Sub-goal.
const (
	LevelObjective = 0
	LevelGoal      = 1
	LevelSubGoal   = 2
)

type Goal struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	DistrictID uuid.UUID  `json:"districtId" gorm:"type:uuid;index;not null;uniqueIndex:idx_district_goal_number"`
	ParentID   *uuid.UUID `json:"parentId" gorm:"type:uuid;index"`
	// Dotted path like "1", "1.1", "1.8.2". Stored as text; ordering logic
	// parses it at read time.
	GoalNumber     string    `json:"goalNumber" gorm:"not null;uniqueIndex:idx_district_goal_number"`
	Title          string    `json:"title" gorm:"not null"`
	Description    *string   `json:"description"`
	Level          int       `json:"level" gorm:"not null;default:0"`
	OrderPosition  int       `json:"orderPosition" gorm:"default:0"`
	IndicatorText  *string   `json:"indicatorText"`
	IndicatorColor *string   `json:"indicatorColor"`
	ImageURL       *string   `json:"imageUrl"`
	HeaderColor    *string   `json:"headerColor"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Children       []Goal    `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Metrics        []Metric  `json:"metrics,omitempty" gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Goal DTOs
type GoalData struct {
	Title          string  `json:"title" validate:"required"`
	Description    *string `json:"description"`
	OrderPosition  *int    `json:"orderPosition"`
	IndicatorText  *string `json:"indicatorText"`
	IndicatorColor *string `json:"indicatorColor"`
	ImageURL       *string `json:"imageUrl"`
	HeaderColor    *string `json:"headerColor"`
}

type CreateGoalRequest struct {
	ParentID *uuid.UUID `json:"parentId"`
	GoalData GoalData   `json:"goalData"`
}

type GoalUpdate struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	OrderPosition  *int    `json:"orderPosition"`
	IndicatorText  *string `json:"indicatorText"`
	IndicatorColor *string `json:"indicatorColor"`
	ImageURL       *string `json:"imageUrl"`
	HeaderColor    *string `json:"headerColor"`
}

type UpdateGoalRequest struct {
	GoalID  uuid.UUID  `json:"goalId"`
	Updates GoalUpdate `json:"updates"`
}
