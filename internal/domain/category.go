package domain

import (
	"context"
	"time"
)

// 显示状态
const (
	Hidden  = 0
	Visible = 1
)

// Category 商品分类。列名沿用旧库（categorry_type 的拼写保持不变以兼容现有表结构）
type Category struct {
	ID        uint      `gorm:"column:category_id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:category_name;size:255;not null;uniqueIndex" json:"name"`
	Type      string    `gorm:"column:categorry_type;size:100;not null" json:"type"`
	Image     *string   `gorm:"column:category_img;size:255" json:"image"`
	AddedAt   time.Time `gorm:"column:category_added_date" json:"addedAt"`
	IsDisplay int       `gorm:"column:category_is_display;not null" json:"isDisplay"`
}

func (Category) TableName() string { return "categories" }

func (c Category) Visible() bool { return c.IsDisplay == Visible }

// ImageName 空指针时返回 ""
func (c Category) ImageName() string {
	if c.Image == nil {
		return ""
	}
	return *c.Image
}

// CategoryFilter 列表筛选，nil / 空串表示不限
type CategoryFilter struct {
	Status *int
	Search string
	Type   string
}

type CategoryRepository interface {
	List(ctx context.Context, f CategoryFilter, offset, limit int) ([]Category, int64, error)
	FindByID(ctx context.Context, id uint) (*Category, error)
	NameTaken(ctx context.Context, name string, excludeID uint) (bool, error)
	ImageInUse(ctx context.Context, image string, excludeID uint) (bool, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	SetDisplay(ctx context.Context, id uint, display int) error
	ListVisible(ctx context.Context, limit int) ([]Category, error)
}
