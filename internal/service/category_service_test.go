package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-admin/internal/domain"
)

func (f *fixture) fileExists(t *testing.T, name string) bool {
	t.Helper()
	ok, err := f.store.Exists(context.Background(), name)
	require.NoError(t, err)
	return ok
}

func (f *fixture) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&domain.Category{}).Count(&n).Error)
	return n
}

func (f *fixture) seed(t *testing.T, c domain.Category) *domain.Category {
	t.Helper()
	if c.AddedAt.IsZero() {
		c.AddedAt = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	}
	require.NoError(t, f.repo.Create(context.Background(), &c))
	return &c
}

func strPtr(s string) *string { return &s }

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr.Fields
}

func TestCreateWithoutDisplayFlagIsHidden(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	f.svc.Now = func() time.Time { return now }

	c, err := f.svc.Create(context.Background(),
		CategoryInput{Name: "Áo thun", Type: "shirt"},
		upload("shirt.png", pngBytes(120*1024)),
	)
	require.NoError(t, err)

	got, err := f.repo.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Áo thun", got.Name)
	assert.Equal(t, "shirt", got.Type)
	assert.Equal(t, "shirt.png", got.ImageName())
	assert.Equal(t, domain.Hidden, got.IsDisplay)
	assert.True(t, got.AddedAt.Equal(now))
	assert.True(t, f.fileExists(t, "shirt.png"))
}

func TestCreateWithDisplayFlagIsVisible(t *testing.T) {
	f := newFixture(t)
	c, err := f.svc.Create(context.Background(),
		CategoryInput{Name: "Quần jean", Type: "pants", Display: true},
		upload("jean.png", pngBytes(1024)),
	)
	require.NoError(t, err)
	assert.Equal(t, domain.Visible, c.IsDisplay)
}

func TestCreateDuplicateNameWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.seed(t, domain.Category{Name: "Áo thun", Type: "shirt", Image: strPtr("old.png"), IsDisplay: 1})

	_, err := f.svc.Create(context.Background(),
		CategoryInput{Name: "  Áo thun ", Type: "shirt"},
		upload("dup.png", pngBytes(2048)),
	)
	fields := validationFields(t, err)
	assert.Equal(t, "Tên danh mục đã tồn tại", fields[FieldName])
	assert.Len(t, fields, 1)
	assert.EqualValues(t, 1, f.count(t))
	assert.False(t, f.fileExists(t, "dup.png"))
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    CategoryInput
		img   *Upload
		field string
		want  string
	}{
		{
			name:  "name required",
			in:    CategoryInput{Name: "   ", Type: "shirt"},
			img:   upload("a.png", pngBytes(100)),
			field: FieldName,
			want:  "Tên danh mục không được để trống",
		},
		{
			name:  "name too long",
			in:    CategoryInput{Name: strings.Repeat("á", 256), Type: "shirt"},
			img:   upload("a.png", pngBytes(100)),
			field: FieldName,
			want:  "Tên danh mục không được vượt quá 255 ký tự",
		},
		{
			name:  "type required",
			in:    CategoryInput{Name: "Giày", Type: ""},
			img:   upload("a.png", pngBytes(100)),
			field: FieldType,
			want:  "Loại danh mục không được để trống",
		},
		{
			name:  "type too long",
			in:    CategoryInput{Name: "Giày", Type: strings.Repeat("x", 101)},
			img:   upload("a.png", pngBytes(100)),
			field: FieldType,
			want:  "Loại danh mục không được vượt quá 100 ký tự",
		},
		{
			name:  "image required",
			in:    CategoryInput{Name: "Giày", Type: "shoes"},
			img:   nil,
			field: FieldImage,
			want:  "Ảnh danh mục không được để trống",
		},
		{
			name:  "not an image",
			in:    CategoryInput{Name: "Giày", Type: "shoes"},
			img:   upload("a.png", []byte("hello, this is plain text")),
			field: FieldImage,
			want:  "File phải là ảnh",
		},
		{
			name:  "image type not accepted",
			in:    CategoryInput{Name: "Giày", Type: "shoes"},
			img:   upload("a.tiff", imageBytes(tiffMagic, 256)),
			field: FieldImage,
			want:  "Ảnh phải có định dạng: jpeg, png, jpg, gif, webp",
		},
		{
			name:  "image too large",
			in:    CategoryInput{Name: "Giày", Type: "shoes"},
			img:   upload("big.png", pngBytes(MaxImageBytes+1)),
			field: FieldImage,
			want:  "Ảnh không được vượt quá 2048 KB",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Create(context.Background(), tt.in, tt.img)
			fields := validationFields(t, err)
			assert.Equal(t, tt.want, fields[tt.field])
			assert.Len(t, fields, 1)
			assert.EqualValues(t, 0, f.count(t))
			entries, _ := os.ReadDir(f.store.Dir)
			assert.Empty(t, entries)
		})
	}
}

func TestCreateReportsEveryInvalidField(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), CategoryInput{}, nil)
	fields := validationFields(t, err)
	assert.Equal(t, map[string]string{
		FieldName:  "Tên danh mục không được để trống",
		FieldType:  "Loại danh mục không được để trống",
		FieldImage: "Ảnh danh mục không được để trống",
	}, fields)
}

func TestCreateAcceptsEveryImageEncoding(t *testing.T) {
	webp := []byte("RIFF\x00\x00\x00\x00WEBPVP8 ")
	for name, b := range map[string][]byte{
		"a.jpg":  imageBytes([]byte("\xFF\xD8\xFF\xE0"), 512),
		"a.png":  pngBytes(512),
		"a.gif":  imageBytes([]byte("GIF89a"), 512),
		"a.webp": imageBytes(webp, 512),
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Create(context.Background(), CategoryInput{Name: name, Type: "t"}, upload(name, b))
			require.NoError(t, err)
			assert.True(t, f.fileExists(t, name))
		})
	}
}

type failingCreateRepo struct {
	domain.CategoryRepository
	err error
}

func (r failingCreateRepo) Create(context.Context, *domain.Category) error { return r.err }
func (r failingCreateRepo) Update(context.Context, *domain.Category) error { return r.err }

func TestCreateRemovesOrphanWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("insert failed")
	svc := NewCategoryService(failingCreateRepo{CategoryRepository: f.repo, err: boom}, f.store, f.svc.log)

	_, err := svc.Create(context.Background(), CategoryInput{Name: "Mũ", Type: "hat"}, upload("hat.png", pngBytes(64)))
	assert.ErrorIs(t, err, boom)
	assert.False(t, f.fileExists(t, "hat.png"))
}

func TestCreateKeepsPreexistingFileWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save(context.Background(), "hat.png", strings.NewReader("someone else's")))
	svc := NewCategoryService(failingCreateRepo{CategoryRepository: f.repo, err: errors.New("insert failed")}, f.store, f.svc.log)

	_, err := svc.Create(context.Background(), CategoryInput{Name: "Mũ", Type: "hat"}, upload("hat.png", pngBytes(64)))
	assert.Error(t, err)
	assert.True(t, f.fileExists(t, "hat.png"))
}

func TestCreateMapsUniqueViolationToValidationError(t *testing.T) {
	f := newFixture(t)
	dup := fmt.Errorf("UNIQUE constraint failed: categories.category_name")
	svc := NewCategoryService(failingCreateRepo{CategoryRepository: f.repo, err: dup}, f.store, f.svc.log)

	_, err := svc.Create(context.Background(), CategoryInput{Name: "Mũ", Type: "hat"}, upload("hat.png", pngBytes(64)))
	assert.Equal(t, "Tên danh mục đã tồn tại", validationFields(t, err)[FieldName])
}

func TestGetNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateWithoutImageKeepsReference(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save(context.Background(), "a.png", strings.NewReader("a")))
	c := f.seed(t, domain.Category{Name: "Áo", Type: "shirt", Image: strPtr("a.png"), IsDisplay: 1})

	got, err := f.svc.Update(context.Background(), c.ID, CategoryInput{Name: "Áo sơ mi", Type: "shirt", Display: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, "a.png", got.ImageName())

	stored, err := f.repo.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Áo sơ mi", stored.Name)
	assert.Equal(t, "a.png", stored.ImageName())
	assert.True(t, f.fileExists(t, "a.png"))
}

func TestUpdateMissingDisplayKeyHides(t *testing.T) {
	f := newFixture(t)
	c := f.seed(t, domain.Category{Name: "Áo", Type: "shirt", Image: strPtr("a.png"), IsDisplay: 1})

	_, err := f.svc.Update(context.Background(), c.ID, CategoryInput{Name: "Áo", Type: "shirt"}, nil)
	require.NoError(t, err)

	stored, err := f.repo.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Hidden, stored.IsDisplay)
}

func TestUpdateReplacesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, "a.png", strings.NewReader("a")))
	f.seed(t, domain.Category{ID: 5, Name: "Váy", Type: "dress", Image: strPtr("a.png"), IsDisplay: 1})

	_, err := f.svc.Update(ctx, 5, CategoryInput{Name: "Váy", Type: "dress", Display: true}, upload("b.png", pngBytes(300)))
	require.NoError(t, err)

	assert.False(t, f.fileExists(t, "a.png"))
	assert.True(t, f.fileExists(t, "b.png"))
	stored, err := f.repo.FindByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "b.png", stored.ImageName())
}

func TestUpdateSameFilenameKeepsNewContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, "a.png", strings.NewReader("old content")))
	c := f.seed(t, domain.Category{Name: "Váy", Type: "dress", Image: strPtr("a.png"), IsDisplay: 1})

	fresh := pngBytes(500)
	fresh[400] = 0x7f
	_, err := f.svc.Update(ctx, c.ID, CategoryInput{Name: "Váy", Type: "dress"}, upload("a.png", fresh))
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(f.store.Dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, fresh, b)
}

func TestUpdateKeepsImageSharedWithAnotherCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, "shared.png", strings.NewReader("x")))
	c := f.seed(t, domain.Category{Name: "A", Type: "t", Image: strPtr("shared.png"), IsDisplay: 1})
	f.seed(t, domain.Category{Name: "B", Type: "t", Image: strPtr("shared.png"), IsDisplay: 1})

	_, err := f.svc.Update(ctx, c.ID, CategoryInput{Name: "A", Type: "t"}, upload("own.png", pngBytes(64)))
	require.NoError(t, err)
	assert.True(t, f.fileExists(t, "shared.png"))
	assert.True(t, f.fileExists(t, "own.png"))
}

func TestUpdateNameUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seed(t, domain.Category{Name: "A", Type: "t", IsDisplay: 1})
	f.seed(t, domain.Category{Name: "B", Type: "t", IsDisplay: 1})

	_, err := f.svc.Update(ctx, a.ID, CategoryInput{Name: "A", Type: "t2"}, nil)
	require.NoError(t, err, "own name must not collide")

	_, err = f.svc.Update(ctx, a.ID, CategoryInput{Name: "B", Type: "t"}, upload("n.png", pngBytes(64)))
	assert.Equal(t, "Tên danh mục đã tồn tại", validationFields(t, err)[FieldName])
	assert.False(t, f.fileExists(t, "n.png"))
}

func TestUpdateInvalidImage(t *testing.T) {
	f := newFixture(t)
	c := f.seed(t, domain.Category{Name: "A", Type: "t", Image: strPtr("a.png"), IsDisplay: 1})

	_, err := f.svc.Update(context.Background(), c.ID, CategoryInput{Name: "A", Type: "t"}, upload("doc.txt", []byte("plain text")))
	assert.Equal(t, "File phải là ảnh", validationFields(t, err)[FieldImage])
}

func TestUpdateNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Update(context.Background(), 9, CategoryInput{Name: "A", Type: "t"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRemovesNewFileWhenRowUpdateFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, "a.png", strings.NewReader("a")))
	c := f.seed(t, domain.Category{Name: "A", Type: "t", Image: strPtr("a.png"), IsDisplay: 1})
	svc := NewCategoryService(failingCreateRepo{CategoryRepository: f.repo, err: errors.New("update failed")}, f.store, f.svc.log)

	_, err := svc.Update(ctx, c.ID, CategoryInput{Name: "A", Type: "t"}, upload("b.png", pngBytes(64)))
	assert.Error(t, err)
	assert.True(t, f.fileExists(t, "a.png"))
	assert.False(t, f.fileExists(t, "b.png"))
}

func TestHideThenRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orig := f.seed(t, domain.Category{Name: "Túi", Type: "bag", Image: strPtr("bag.png"), IsDisplay: 1})

	c, err := f.svc.Hide(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Hidden, c.IsDisplay)

	_, err = f.svc.Hide(ctx, orig.ID)
	require.NoError(t, err, "hide is idempotent")

	_, err = f.svc.Restore(ctx, orig.ID)
	require.NoError(t, err)
	_, err = f.svc.Restore(ctx, orig.ID)
	require.NoError(t, err, "restore is idempotent")

	got, err := f.repo.FindByID(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Visible, got.IsDisplay)
	assert.Equal(t, orig.Name, got.Name)
	assert.Equal(t, orig.Type, got.Type)
	assert.Equal(t, orig.ImageName(), got.ImageName())
	assert.True(t, orig.AddedAt.Equal(got.AddedAt))
}

func TestHideRestoreNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Hide(context.Background(), 77)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Restore(context.Background(), 77)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, domain.Category{Name: "Áo thun nam", Type: "shirt", IsDisplay: 1})
	f.seed(t, domain.Category{Name: "Áo thun nữ", Type: "shirt", IsDisplay: 0})
	f.seed(t, domain.Category{Name: "Quần short", Type: "pants", IsDisplay: 1})
	f.seed(t, domain.Category{Name: "Giày", Type: "shoes", IsDisplay: 0})

	names := func(p *Page) []string {
		out := make([]string, 0, len(p.Items))
		for _, c := range p.Items {
			out = append(out, c.Name)
		}
		return out
	}

	p, err := f.svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, p.Total)
	assert.Equal(t, []string{"Giày", "Quần short", "Áo thun nữ", "Áo thun nam"}, names(p))

	p, err = f.svc.List(ctx, ListQuery{Status: "0"})
	require.NoError(t, err)
	for _, c := range p.Items {
		assert.Equal(t, domain.Hidden, c.IsDisplay)
	}
	assert.Equal(t, []string{"Giày", "Áo thun nữ"}, names(p))

	p, err = f.svc.List(ctx, ListQuery{Status: "1", Search: "thun"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Áo thun nam"}, names(p))

	p, err = f.svc.List(ctx, ListQuery{Type: "shirt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Áo thun nữ", "Áo thun nam"}, names(p))

	p, err = f.svc.List(ctx, ListQuery{Status: "abc"})
	require.NoError(t, err)
	assert.EqualValues(t, 4, p.Total)
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 1; i <= 20; i++ {
		f.seed(t, domain.Category{Name: fmt.Sprintf("C%02d", i), Type: "t", IsDisplay: 1})
	}

	p, err := f.svc.List(ctx, ListQuery{Page: "2"})
	require.NoError(t, err)
	assert.Len(t, p.Items, 5)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 2, p.LastPage)
	assert.EqualValues(t, 20, p.Total)
	assert.Equal(t, "C05", p.Items[0].Name)
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())

	for _, raw := range []string{"", "abc", "-3", "0"} {
		p, err = f.svc.List(ctx, ListQuery{Page: raw})
		require.NoError(t, err)
		assert.Equal(t, 1, p.Page, raw)
		assert.Len(t, p.Items, PerPage)
		assert.Equal(t, "C20", p.Items[0].Name)
	}
}

func TestMenu(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 16; i++ {
		display := domain.Visible
		if i%4 == 0 {
			display = domain.Hidden
		}
		f.seed(t, domain.Category{Name: fmt.Sprintf("M%02d", i), Type: "t", IsDisplay: display})
	}

	menu, err := f.svc.Menu(context.Background())
	require.NoError(t, err)
	require.Len(t, menu, 12)
	for i, c := range menu {
		assert.Equal(t, domain.Visible, c.IsDisplay)
		if i > 0 {
			assert.Greater(t, c.ID, menu[i-1].ID)
		}
	}
	assert.Equal(t, "M01", menu[0].Name)
}
