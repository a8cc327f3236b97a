package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

const (
	FieldName  = "category_name"
	FieldType  = "category_type"
	FieldImage = "category_img"

	// MaxImageBytes 2048 KB
	MaxImageBytes = 2048 * 1024
)

var messages = map[string]string{
	FieldName + ".required":  "Tên danh mục không được để trống",
	FieldName + ".max":       "Tên danh mục không được vượt quá 255 ký tự",
	FieldName + ".unique":    "Tên danh mục đã tồn tại",
	FieldType + ".required":  "Loại danh mục không được để trống",
	FieldType + ".max":       "Loại danh mục không được vượt quá 100 ký tự",
	FieldImage + ".required": "Ảnh danh mục không được để trống",
	FieldImage + ".image":    "File phải là ảnh",
	FieldImage + ".mimes":    "Ảnh phải có định dạng: jpeg, png, jpg, gif, webp",
	FieldImage + ".max":      "Ảnh không được vượt quá 2048 KB",
}

func message(field, rule string) string {
	if m, ok := messages[field+"."+rule]; ok {
		return m
	}
	return fmt.Sprintf("%s không hợp lệ", field)
}

var acceptedImages = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// CategoryInput 表单里的文本字段；Display 表示请求里是否带了 category_is_display
type CategoryInput struct {
	Name    string `form:"category_name" json:"category_name" validate:"required,max=255"`
	Type    string `form:"category_type" json:"category_type" validate:"required,max=100"`
	Display bool   `form:"-" json:"-"`
}

func (in CategoryInput) normalized() CategoryInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	return in
}

// Upload 上传文件的最小描述，与 multipart 解耦方便测试
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

func UploadFromHeader(fh *multipart.FileHeader) *Upload {
	if fh == nil {
		return nil
	}
	return &Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open:     func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func validateInput(v *validator.Validate, in CategoryInput, verr *ValidationError) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	for _, fe := range ves {
		verr.Add(fe.Field(), message(fe.Field(), fe.Tag()))
	}
	return nil
}

// validateImage 按内容识别类型，不看扩展名
func validateImage(u *Upload, verr *ValidationError) error {
	f, err := u.Open()
	if err != nil {
		return fmt.Errorf("open upload %s: %w", u.Filename, err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return fmt.Errorf("detect %s: %w", u.Filename, err)
	}
	switch {
	case !strings.HasPrefix(mt.String(), "image/"):
		verr.Add(FieldImage, message(FieldImage, "image"))
	case !mimetype.EqualsAny(mt.String(), acceptedImages...):
		verr.Add(FieldImage, message(FieldImage, "mimes"))
	case u.Size > MaxImageBytes:
		verr.Add(FieldImage, message(FieldImage, "max"))
	}
	return nil
}
