// Package repository provides the data access layer for deployment runs.
package repository

import (
	"time"

	"github.com/canthus/deploy/db"
	"github.com/canthus/deploy/domain"
	"github.com/google/uuid"
)

type RunMapper struct{}

func (m *RunMapper) ToDomain(r *db.RunModel) *domain.Run {
	status, err := domain.ParseRunStatus(r.Status)
	if err != nil {
		status = domain.RunStatusUnknown
	}

	phases := make([]domain.PhaseResult, len(r.Phases))
	for _, p := range r.Phases {
		if p.Position >= 0 && p.Position < len(phases) {
			phases[p.Position] = m.phaseToDomain(&p)
		}
	}

	return &domain.Run{
		ID:          r.ID,
		Environment: domain.Environment(r.Environment),
		DryRun:      r.DryRun,
		SkipTests:   r.SkipTests,
		Status:      status,
		CommitHash:  r.CommitHash,
		LogFile:     r.LogFile,
		Error:       r.Error,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Phases:      phases,
	}
}

func (m *RunMapper) ToModel(r *domain.Run) *db.RunModel {
	phases := make([]db.PhaseModel, len(r.Phases))
	for i, p := range r.Phases {
		phases[i] = db.PhaseModel{
			BaseModel:  db.BaseModel{ID: uuid.New()},
			RunID:      r.ID,
			Position:   i,
			Key:        p.Key,
			Name:       p.Name,
			Status:     p.Status.String(),
			Message:    p.Message,
			StartedAt:  p.StartedAt,
			DurationMs: p.Duration.Milliseconds(),
		}
	}

	return &db.RunModel{
		BaseModel:   db.BaseModel{ID: r.ID},
		Environment: r.Environment.String(),
		DryRun:      r.DryRun,
		SkipTests:   r.SkipTests,
		Status:      r.Status.String(),
		CommitHash:  r.CommitHash,
		LogFile:     r.LogFile,
		Error:       r.Error,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Phases:      phases,
	}
}

func (m *RunMapper) phaseToDomain(p *db.PhaseModel) domain.PhaseResult {
	status, err := domain.ParsePhaseStatus(p.Status)
	if err != nil {
		status = domain.PhaseStatusUnknown
	}

	return domain.PhaseResult{
		Key:       p.Key,
		Name:      p.Name,
		Status:    status,
		Message:   p.Message,
		StartedAt: p.StartedAt,
		Duration:  time.Duration(p.DurationMs) * time.Millisecond,
	}
}
