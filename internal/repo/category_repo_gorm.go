package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"catalog-admin/internal/domain"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) scoped(ctx context.Context, f domain.CategoryFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Category{})
	if f.Status != nil {
		q = q.Where("category_is_display = ?", *f.Status)
	}
	if f.Search != "" {
		q = q.Where("category_name LIKE ?", "%"+f.Search+"%")
	}
	if f.Type != "" {
		q = q.Where("categorry_type = ?", f.Type)
	}
	return q
}

func (r *CategoryRepo) List(ctx context.Context, f domain.CategoryFilter, offset, limit int) ([]domain.Category, int64, error) {
	var total int64
	if err := r.scoped(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	items := make([]domain.Category, 0, limit)
	if err := r.scoped(ctx, f).Order("category_id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindByID 不存在时返回 (nil, nil)
func (r *CategoryRepo) FindByID(ctx context.Context, id uint) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).First(&c, "category_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&domain.Category{}).Where("category_name = ?", name)
	if excludeID != 0 {
		q = q.Where("category_id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CategoryRepo) ImageInUse(ctx context.Context, image string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&domain.Category{}).Where("category_img = ?", image)
	if excludeID != 0 {
		q = q.Where("category_id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Update 覆盖可编辑列；用 map 以便写入零值（category_is_display = 0）
func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).
		Model(&domain.Category{}).
		Where("category_id = ?", c.ID).
		Updates(map[string]any{
			"category_name":       c.Name,
			"categorry_type":      c.Type,
			"category_img":        c.Image,
			"category_is_display": c.IsDisplay,
		}).Error
}

func (r *CategoryRepo) SetDisplay(ctx context.Context, id uint, display int) error {
	return r.db.WithContext(ctx).
		Model(&domain.Category{}).
		Where("category_id = ?", id).
		Update("category_is_display", display).Error
}

func (r *CategoryRepo) ListVisible(ctx context.Context, limit int) ([]domain.Category, error) {
	items := make([]domain.Category, 0, limit)
	err := r.db.WithContext(ctx).
		Where("category_is_display = ?", domain.Visible).
		Order("category_id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

var _ domain.CategoryRepository = (*CategoryRepo)(nil)
