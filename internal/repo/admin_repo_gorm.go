package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"catalog-admin/internal/domain"
)

type AdminRepo struct{ db *gorm.DB }

func NewAdminRepo(db *gorm.DB) *AdminRepo { return &AdminRepo{db: db} }

func (r *AdminRepo) Create(ctx context.Context, a *domain.Admin) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AdminRepo) FindByID(ctx context.Context, id string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepo) FindByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.WithContext(ctx).First(&a, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

var _ domain.AdminRepository = (*AdminRepo)(nil)
