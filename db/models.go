// Package db provides the SQLite storage behind the run history of canthus-deploy.
package db

import (
	"time"

	"github.com/google/uuid"
)

type BaseModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RunModel struct {
	BaseModel
	Environment string    `gorm:"not null;index;check:environment <> ''"`
	DryRun      bool      `gorm:"not null"`
	SkipTests   bool      `gorm:"not null"`
	Status      string    `gorm:"not null;check:status <> ''"` // started, completed, failed
	CommitHash  *string   `gorm:"type:varchar(40)"`
	LogFile     string    `gorm:"not null"` // empty when the deployment log could not be written
	Error       string    `gorm:"type:text"`
	StartedAt   time.Time `gorm:"not null;index"`
	FinishedAt  time.Time

	Phases []PhaseModel `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

func (RunModel) TableName() string {
	return "runs"
}

type PhaseModel struct {
	BaseModel
	RunID      uuid.UUID `gorm:"type:char(36);not null;index"`
	Position   int       `gorm:"not null"` // order of execution within the run
	Key        string    `gorm:"column:phase_key;not null;check:phase_key <> ''"`
	Name       string    `gorm:"not null"`
	Status     string    `gorm:"not null;check:status <> ''"`
	Message    string    `gorm:"type:text"`
	StartedAt  time.Time
	DurationMs int64
}

func (PhaseModel) TableName() string {
	return "phases"
}
