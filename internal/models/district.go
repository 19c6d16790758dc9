package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type District struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name           string    `json:"name" gorm:"not null"`
	Slug           string    `json:"slug" gorm:"uniqueIndex;not null"`
	PrimaryColor   string    `json:"primaryColor" gorm:"default:'#1e3a5f'"`
	SecondaryColor *string   `json:"secondaryColor"`
	LogoURL        *string   `json:"logoUrl"`
	AdminEmail     string    `json:"adminEmail"`
	IsPublic       bool      `json:"isPublic"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Goals          []Goal    `json:"goals,omitempty" gorm:"foreignKey:DistrictID;constraint:OnDelete:CASCADE"`
}

func (d *District) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// District DTOs
type CreateDistrictRequest struct {
	Name           string  `json:"name" validate:"required"`
	Slug           string  `json:"slug" validate:"required"`
	PrimaryColor   *string `json:"primaryColor"`
	SecondaryColor *string `json:"secondaryColor"`
	LogoURL        *string `json:"logoUrl"`
	AdminEmail     string  `json:"adminEmail"`
	IsPublic       *bool   `json:"isPublic"`
}

type UpdateDistrictRequest struct {
	Name           *string `json:"name"`
	PrimaryColor   *string `json:"primaryColor"`
	SecondaryColor *string `json:"secondaryColor"`
	LogoURL        *string `json:"logoUrl"`
	AdminEmail     *string `json:"adminEmail"`
	IsPublic       *bool   `json:"isPublic"`
}

type DistrictSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	ObjectiveCount int       `json:"objectiveCount"`
	GoalCount      int       `json:"goalCount"`
	SubGoalCount   int       `json:"subGoalCount"`
	MetricCount    int       `json:"metricCount"`
}
