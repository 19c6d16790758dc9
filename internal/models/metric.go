package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Metric types match the values the dashboard front-ends render.
const (
	MetricTypePercent   = "percent"
	MetricTypeNumber    = "number"
	MetricTypeRating    = "rating"
	MetricTypeCurrency  = "currency"
	MetricTypeStatus    = "status"
	MetricTypeNarrative = "narrative"
	MetricTypeLink      = "link"
	MetricTypeSurvey    = "survey"
)

// DataPoint is one entry of a metric's historical series.
type DataPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
}

type Metric struct {
	ID                    uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	GoalID                uuid.UUID   `json:"goalId" gorm:"type:uuid;index;not null"`
	Name                  string      `json:"name" gorm:"not null"`
	Description           *string     `json:"description"`
	MetricType            string      `json:"metricType" gorm:"not null;default:'number'"`
	CurrentValue          *float64    `json:"currentValue"`
	TargetValue           *float64    `json:"targetValue"`
	Unit                  string      `json:"unit"`
	IsPrimary             bool        `json:"isPrimary" gorm:"default:false"`
	DisplayOrder          int         `json:"displayOrder" gorm:"default:0"`
	IsHigherBetter        *bool       `json:"isHigherBetter"`
	RiskThresholdCritical *float64    `json:"riskThresholdCritical"`
	RiskThresholdOffTrack *float64    `json:"riskThresholdOffTrack"`
	DataPoints            []DataPoint `json:"dataPoints,omitempty" gorm:"serializer:json"`
	// Opaque chart configuration; stored and returned untouched.
	VisualizationConfig map[string]interface{} `json:"visualizationConfig,omitempty" gorm:"serializer:json"`
	CreatedAt           time.Time              `json:"createdAt"`
	UpdatedAt           time.Time              `json:"updatedAt"`
}

func (m *Metric) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Metric DTOs
type MetricData struct {
	Name                  string                 `json:"name" validate:"required"`
	Description           *string                `json:"description"`
	MetricType            *string                `json:"metricType"`
	CurrentValue          *float64               `json:"currentValue"`
	TargetValue           *float64               `json:"targetValue"`
	Unit                  *string                `json:"unit"`
	IsPrimary             *bool                  `json:"isPrimary"`
	DisplayOrder          *int                   `json:"displayOrder"`
	IsHigherBetter        *bool                  `json:"isHigherBetter"`
	RiskThresholdCritical *float64               `json:"riskThresholdCritical"`
	RiskThresholdOffTrack *float64               `json:"riskThresholdOffTrack"`
	DataPoints            []DataPoint            `json:"dataPoints"`
	VisualizationConfig   map[string]interface{} `json:"visualizationConfig"`
}

type CreateMetricRequest struct {
	GoalID     uuid.UUID  `json:"goalId"`
	MetricData MetricData `json:"metricData"`
}

type MetricUpdate struct {
	Name                  *string                `json:"name"`
	Description           *string                `json:"description"`
	MetricType            *string                `json:"metricType"`
	CurrentValue          *float64               `json:"currentValue"`
	TargetValue           *float64               `json:"targetValue"`
	Unit                  *string                `json:"unit"`
	IsPrimary             *bool                  `json:"isPrimary"`
	DisplayOrder          *int                   `json:"displayOrder"`
	IsHigherBetter        *bool                  `json:"isHigherBetter"`
	RiskThresholdCritical *float64               `json:"riskThresholdCritical"`
	RiskThresholdOffTrack *float64               `json:"riskThresholdOffTrack"`
	DataPoints            []DataPoint            `json:"dataPoints"`
	VisualizationConfig   map[string]interface{} `json:"visualizationConfig"`
}

type UpdateMetricRequest struct {
	MetricID uuid.UUID    `json:"metricId"`
	Updates  MetricUpdate `json:"updates"`
}

type MetricOrderUpdate struct {
	ID           uuid.UUID `json:"id"`
	DisplayOrder int       `json:"display_order"`
}

type ReorderMetricsRequest struct {
	Updates []MetricOrderUpdate `json:"updates"`
}

type BatchMetricsRequest struct {
	GoalID  uuid.UUID    `json:"goalId"`
	Metrics []MetricData `json:"metrics"`
}
