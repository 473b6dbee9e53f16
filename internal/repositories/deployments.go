package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/rohits-web03/sitedrop/internal/models"
	"gorm.io/gorm"
)

// DeploymentRepository is the postgres-backed record store.
type DeploymentRepository struct {
	db *gorm.DB
}

func NewDeploymentRepository(db *gorm.DB) *DeploymentRepository {
	return &DeploymentRepository{db: db}
}

// Save inserts a new record. A slug collision is reported as
// models.ErrDuplicateSlug; existing rows are never overwritten.
func (r *DeploymentRepository) Save(ctx context.Context, d *models.Deployment) error {
	err := r.db.WithContext(ctx).Create(d).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", models.ErrDuplicateSlug, d.Slug)
	}
	return err
}

func (r *DeploymentRepository) ListByOwner(ctx context.Context, ownerID int64, status models.DeploymentStatus) ([]models.Deployment, error) {
	var out []models.Deployment
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, status).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *DeploymentRepository) ListAll(ctx context.Context) ([]models.Deployment, error) {
	var out []models.Deployment
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

// FindBySlug returns gorm.ErrRecordNotFound when the slug is unknown.
func (r *DeploymentRepository) FindBySlug(ctx context.Context, slug string) (*models.Deployment, error) {
	var d models.Deployment
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// SetStatus reports false when no record has the slug. Setting the status a
// record already has still counts as found.
func (r *DeploymentRepository) SetStatus(ctx context.Context, slug string, status models.DeploymentStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Deployment{}).
		Where("slug = ?", slug).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *DeploymentRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Deployment{}).
		Where("status = ?", models.StatusActive).
		Count(&n).Error
	return n, err
}

func (r *DeploymentRepository) IsReady(ctx context.Context) bool {
	sqlDB, err := r.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

func (r *DeploymentRepository) Name() string {
	return "DeploymentRepository[postgres]"
}
