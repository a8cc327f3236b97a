// Package storage 保存分类图片。文件名直接使用上传时的原始文件名作为 key。
package storage

import (
	"context"
	"io"
)

type Store interface {
	// Save 写入 name，已存在则覆盖
	Save(ctx context.Context, name string, r io.Reader) error
	// Delete 不存在时不报错
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	// URL 模板里使用的公开地址
	URL(name string) string
}

func joinURL(base, name string) string {
	if base == "" {
		return name
	}
	if base[len(base)-1] == '/' {
		return base + name
	}
	return base + "/" + name
}
