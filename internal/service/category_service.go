package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"catalog-admin/internal/domain"
	"catalog-admin/internal/storage"
)

const (
	PerPage          = 15
	DefaultMenuLimit = 12

	MsgCreated  = "Thêm danh mục thành công!"
	MsgUpdated  = "Cập nhật danh mục thành công!"
	MsgHidden   = "Đã ẩn danh mục!"
	MsgRestored = "Đã khôi phục danh mục!"
)

// ListQuery 列表页查询参数（原样字符串，解析在 List 里做）
type ListQuery struct {
	Status string `form:"status"`
	Search string `form:"search"`
	Type   string `form:"type"`
	Page   string `form:"page"`
}

type Page struct {
	Items    []domain.Category `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PerPage  int               `json:"perPage"`
	LastPage int               `json:"lastPage"`
}

func (p *Page) HasPrev() bool { return p.Page > 1 }
func (p *Page) HasNext() bool { return p.Page < p.LastPage }

type CategoryService struct {
	repo     domain.CategoryRepository
	store    storage.Store
	log      *zap.Logger
	validate *validator.Validate

	MenuLimit int
	Now       func() time.Time
}

func NewCategoryService(repo domain.CategoryRepository, store storage.Store, l *zap.Logger) *CategoryService {
	return &CategoryService{
		repo:      repo,
		store:     store,
		log:       l,
		validate:  newValidator(),
		MenuLimit: DefaultMenuLimit,
		Now:       time.Now,
	}
}

func (s *CategoryService) Store() storage.Store { return s.store }

func parsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParseFilter 只认 status=0/1，其它值视为不筛选
func ParseFilter(q ListQuery) domain.CategoryFilter {
	f := domain.CategoryFilter{
		Search: strings.TrimSpace(q.Search),
		Type:   strings.TrimSpace(q.Type),
	}
	switch strings.TrimSpace(q.Status) {
	case "0":
		v := domain.Hidden
		f.Status = &v
	case "1":
		v := domain.Visible
		f.Status = &v
	}
	return f
}

func (s *CategoryService) List(ctx context.Context, q ListQuery) (*Page, error) {
	page := parsePage(q.Page)
	items, total, err := s.repo.List(ctx, ParseFilter(q), (page-1)*PerPage, PerPage)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	last := int((total + PerPage - 1) / PerPage)
	if last < 1 {
		last = 1
	}
	return &Page{Items: items, Total: total, Page: page, PerPage: PerPage, LastPage: last}, nil
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*domain.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category %d: %w", id, err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// check 文本字段 + 名称唯一 + 图片；excludeID 为 0 表示新建
func (s *CategoryService) check(ctx context.Context, in CategoryInput, excludeID uint, img *Upload, imgRequired bool) error {
	verr := &ValidationError{}
	if err := validateInput(s.validate, in, verr); err != nil {
		return err
	}
	if !verr.Has(FieldName) {
		taken, err := s.repo.NameTaken(ctx, in.Name, excludeID)
		if err != nil {
			return fmt.Errorf("check category name: %w", err)
		}
		if taken {
			verr.Add(FieldName, message(FieldName, "unique"))
		}
	}
	switch {
	case img == nil || img.Filename == "":
		if imgRequired {
			verr.Add(FieldImage, message(FieldImage, "required"))
		}
	default:
		if err := validateImage(img, verr); err != nil {
			return err
		}
	}
	if verr.empty() {
		return nil
	}
	return verr
}

func displayFlag(present bool) int {
	if present {
		return domain.Visible
	}
	return domain.Hidden
}

// saveImage 返回写入前文件是否已存在，用于失败时决定要不要清理
func (s *CategoryService) saveImage(ctx context.Context, img *Upload) (bool, error) {
	existed, err := s.store.Exists(ctx, img.Filename)
	if err != nil {
		return false, fmt.Errorf("stat image %s: %w", img.Filename, err)
	}
	f, err := img.Open()
	if err != nil {
		return existed, fmt.Errorf("open upload %s: %w", img.Filename, err)
	}
	defer f.Close()
	if err := s.store.Save(ctx, img.Filename, f); err != nil {
		return existed, fmt.Errorf("save image: %w", err)
	}
	return existed, nil
}

func (s *CategoryService) discard(ctx context.Context, name string) {
	if err := s.store.Delete(ctx, name); err != nil {
		s.log.Warn("discard orphan image failed", zap.String("image", name), zap.Error(err))
	}
}

func dupNameError() *ValidationError {
	verr := &ValidationError{}
	verr.Add(FieldName, message(FieldName, "unique"))
	return verr
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput, img *Upload) (*domain.Category, error) {
	in = in.normalized()
	if err := s.check(ctx, in, 0, img, true); err != nil {
		return nil, err
	}

	existed, err := s.saveImage(ctx, img)
	if err != nil {
		return nil, err
	}

	name := img.Filename
	c := &domain.Category{
		Name:      in.Name,
		Type:      in.Type,
		Image:     &name,
		AddedAt:   s.Now(),
		IsDisplay: displayFlag(in.Display),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if !existed {
			s.discard(ctx, name)
		}
		if isDupKey(err) {
			return nil, dupNameError()
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	categoryMutations.WithLabelValues("create").Inc()
	s.log.Info("category created", zap.Uint("id", c.ID), zap.String("name", c.Name), zap.String("image", name))
	return c, nil
}

// Update img 为 nil 时保留原图。新图先落盘、再更新行、最后删除旧图
func (s *CategoryService) Update(ctx context.Context, id uint, in CategoryInput, img *Upload) (*domain.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in = in.normalized()
	if err := s.check(ctx, in, id, img, false); err != nil {
		return nil, err
	}

	oldImage := c.ImageName()
	replaced := img != nil && img.Filename != ""
	existed := true
	if replaced {
		if existed, err = s.saveImage(ctx, img); err != nil {
			return nil, err
		}
		name := img.Filename
		c.Image = &name
	}

	c.Name = in.Name
	c.Type = in.Type
	c.IsDisplay = displayFlag(in.Display)
	if err := s.repo.Update(ctx, c); err != nil {
		if replaced && !existed {
			s.discard(ctx, img.Filename)
		}
		if isDupKey(err) {
			return nil, dupNameError()
		}
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}

	if replaced && oldImage != "" && oldImage != img.Filename {
		s.removeStale(ctx, oldImage, c.ID)
	}

	categoryMutations.WithLabelValues("update").Inc()
	s.log.Info("category updated", zap.Uint("id", c.ID), zap.String("image", c.ImageName()))
	return c, nil
}

// removeStale 旧图仍被其它分类引用时保留
func (s *CategoryService) removeStale(ctx context.Context, name string, id uint) {
	inUse, err := s.repo.ImageInUse(ctx, name, id)
	if err != nil {
		s.log.Warn("check stale image failed", zap.String("image", name), zap.Error(err))
		return
	}
	if inUse {
		s.log.Info("stale image still referenced, kept", zap.String("image", name))
		return
	}
	if err := s.store.Delete(ctx, name); err != nil {
		s.log.Warn("delete stale image failed", zap.String("image", name), zap.Error(err))
	}
}

func (s *CategoryService) setDisplay(ctx context.Context, id uint, display int, action string) (*domain.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetDisplay(ctx, id, display); err != nil {
		return nil, fmt.Errorf("%s category %d: %w", action, id, err)
	}
	c.IsDisplay = display
	categoryMutations.WithLabelValues(action).Inc()
	s.log.Info("category "+action, zap.Uint("id", id))
	return c, nil
}

func (s *CategoryService) Hide(ctx context.Context, id uint) (*domain.Category, error) {
	return s.setDisplay(ctx, id, domain.Hidden, "hide")
}

func (s *CategoryService) Restore(ctx context.Context, id uint) (*domain.Category, error) {
	return s.setDisplay(ctx, id, domain.Visible, "restore")
}

// Menu 头部导航用的可见分类
func (s *CategoryService) Menu(ctx context.Context) ([]domain.Category, error) {
	limit := s.MenuLimit
	if limit <= 0 {
		limit = DefaultMenuLimit
	}
	return s.repo.ListVisible(ctx, limit)
}
