package service

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"catalog-admin/internal/core/database"
	"catalog-admin/internal/repo"
	"catalog-admin/internal/storage"
)

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	tiffMagic = []byte("II*\x00")
)

func imageBytes(magic []byte, size int) []byte {
	b := make([]byte, size)
	copy(b, magic)
	return b
}

func pngBytes(size int) []byte { return imageBytes(pngMagic, size) }

func upload(name string, b []byte) *Upload {
	return &Upload{
		Filename: name,
		Size:     int64(len(b)),
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(b)), nil },
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          "file:" + name + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db    *gorm.DB
	repo  *repo.CategoryRepo
	store *storage.LocalStore
	svc   *CategoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	r := repo.NewCategoryRepo(db)
	st := storage.NewLocalStore(t.TempDir(), "/imgs/categories")
	return &fixture{db: db, repo: r, store: st, svc: NewCategoryService(r, st, zap.NewNop())}
}
