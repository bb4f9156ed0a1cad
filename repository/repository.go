package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/canthus/deploy/db"
	"github.com/canthus/deploy/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrRunNotFound is returned when no run matches the requested ID
var ErrRunNotFound = errors.New("run not found")

// ErrInvalidRunID is returned when an ID prefix cannot be part of a run ID
var ErrInvalidRunID = errors.New("invalid run ID")

var runIDPrefixPattern = regexp.MustCompile(`^[0-9a-f-]+$`)

type RunRepository interface {
	Create(run *domain.Run) error
	FindByID(id uuid.UUID) (*domain.Run, error)
	FindByIDPrefix(prefix string) (*domain.Run, error)
	List(limit int) ([]*domain.Run, error)
}

type runRepository struct {
	db     *gorm.DB
	mapper *RunMapper
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{
		db:     db,
		mapper: &RunMapper{},
	}
}

// Create stores a finished run together with its phases
func (r *runRepository) Create(run *domain.Run) error {
	m := r.mapper.ToModel(run)
	if err := r.db.Create(m).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "create_run",
			"run_id", run.ID,
			"error", err)
		return err
	}
	return nil
}

func (r *runRepository) FindByID(id uuid.UUID) (*domain.Run, error) {
	var m db.RunModel
	if err := r.withPhases().First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "find_run",
			"run_id", id,
			"error", err)
		return nil, err
	}
	return r.mapper.ToDomain(&m), nil
}

// FindByIDPrefix resolves an abbreviated run ID as shown in listings
func (r *runRepository) FindByIDPrefix(prefix string) (*domain.Run, error) {
	if id, err := uuid.Parse(prefix); err == nil {
		return r.FindByID(id)
	}

	prefix = strings.ToLower(prefix)
	if !runIDPrefixPattern.MatchString(prefix) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRunID, prefix)
	}

	var models []db.RunModel
	if err := r.withPhases().Where("id LIKE ?", prefix+"%").Limit(2).Find(&models).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "find_run_by_prefix",
			"prefix", prefix,
			"error", err)
		return nil, err
	}

	switch len(models) {
	case 0:
		return nil, ErrRunNotFound
	case 1:
		return r.mapper.ToDomain(&models[0]), nil
	default:
		return nil, fmt.Errorf("run ID prefix %q is ambiguous", prefix)
	}
}

// List returns the most recent runs first. A limit of zero or less returns all runs.
func (r *runRepository) List(limit int) ([]*domain.Run, error) {
	query := r.withPhases().Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []db.RunModel
	if err := query.Find(&models).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "list_runs",
			"error", err)
		return nil, err
	}

	runs := make([]*domain.Run, len(models))
	for i, m := range models {
		runs[i] = r.mapper.ToDomain(&m)
	}
	return runs, nil
}

func (r *runRepository) withPhases() *gorm.DB {
	return r.db.Preload("Phases", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	})
}
