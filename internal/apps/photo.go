package apps

import (
	"context"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/Bdsolutionconsulting/linkhood/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// Photo is an image attached to a multipart request.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	header      *multipart.FileHeader
}

// FormPhoto returns the file in field, or nil when the request is not
// multipart or carries no such file.
func FormPhoto(c *fiber.Ctx, field string) (*Photo, error) {
	if !IsMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("read multipart form: %w", err)
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	return NewPhoto(files[0]), nil
}

// NewPhoto wraps a parsed multipart file header.
func NewPhoto(fh *multipart.FileHeader) *Photo {
	return &Photo{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		header:      fh,
	}
}

// SavePhoto checks p against the upload rules and stores it under
// bucket/key, returning the public URL.
func SavePhoto(ctx context.Context, store storage.Store, bucket, key string, p *Photo, max int64) (string, error) {
	if err := storage.CheckUpload(p.ContentType, p.Size, max); err != nil {
		return "", err
	}
	f, err := p.header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return store.Upload(ctx, bucket, key, f, p.Size, p.ContentType)
}

// IsMultipart reports whether the request body is a multipart form.
func IsMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// FormFloat reads a numeric form field. Missing or malformed values are nil.
func FormFloat(c *fiber.Ctx, key string) *float64 {
	v := strings.TrimSpace(c.FormValue(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}
