package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/welldanyogia/webrana-mailsender/internal/models"
)

// DispatchFilter narrows List results. Zero values match everything.
type DispatchFilter struct {
	Kind    string
	Outcome string
}

// DispatchRepository defines the interface for journal access
type DispatchRepository interface {
	Create(ctx context.Context, d *models.Dispatch) error
	GetByDispatchID(ctx context.Context, dispatchID string) (*models.Dispatch, error)
	List(ctx context.Context, filter DispatchFilter, limit, offset int) ([]models.Dispatch, int64, error)
	Count(ctx context.Context, filter DispatchFilter) (int64, error)
}

type dispatchRepository struct {
	db *gorm.DB
}

// NewDispatchRepository creates a new DispatchRepository instance
func NewDispatchRepository(db *gorm.DB) DispatchRepository {
	return &dispatchRepository{db: db}
}

// Create journals one send attempt
func (r *dispatchRepository) Create(ctx context.Context, d *models.Dispatch) error {
	if d.DispatchID == "" || d.Kind == "" || d.Outcome == "" {
		return ErrInvalidInput
	}
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create dispatch: %w", err)
	}
	return nil
}

// GetByDispatchID retrieves an attempt by its uuid
func (r *dispatchRepository) GetByDispatchID(ctx context.Context, dispatchID string) (*models.Dispatch, error) {
	var d models.Dispatch
	err := r.db.WithContext(ctx).Where("dispatch_id = ?", dispatchID).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dispatch: %w", err)
	}
	return &d, nil
}

func (r *dispatchRepository) scoped(ctx context.Context, filter DispatchFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Dispatch{})
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.Outcome != "" {
		q = q.Where("outcome = ?", filter.Outcome)
	}
	return q
}

// List returns attempts newest first, with the total matching the filter
func (r *dispatchRepository) List(ctx context.Context, filter DispatchFilter, limit, offset int) ([]models.Dispatch, int64, error) {
	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	var out []models.Dispatch
	err = r.scoped(ctx, filter).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list dispatches: %w", err)
	}
	return out, total, nil
}

// Count returns the number of attempts matching the filter
func (r *dispatchRepository) Count(ctx context.Context, filter DispatchFilter) (int64, error) {
	var total int64
	if err := r.scoped(ctx, filter).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count dispatches: %w", err)
	}
	return total, nil
}
