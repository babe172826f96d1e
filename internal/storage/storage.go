// Package storage keeps uploaded photos in public buckets and hands back
// the URLs clients render.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"
)

const (
	BucketReportPhotos    = "report-photos"
	BucketEventPhotos     = "event-photos"
	BucketPostPhotos      = "post-photos"
	BucketProfilePictures = "profile-pictures"
)

var Buckets = []string{BucketReportPhotos, BucketEventPhotos, BucketPostPhotos, BucketProfilePictures}

var (
	ErrUnsupportedType = errors.New("only JPEG, PNG and WebP images are accepted")
	ErrTooLarge        = errors.New("file is too large")
	ErrUnknownBucket   = errors.New("unknown bucket")
	ErrNotFound        = errors.New("object not found")
)

// Store is the subset of object storage the app needs. Upload overwrites
// an existing key.
type Store interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, bucket string, keys ...string) error
	PublicURL(bucket, key string) string
}

var extensions = map[string]string{
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Extension maps an accepted image content type to a file extension.
func Extension(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := extensions[ct]
	if !ok {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

// CheckUpload rejects unsupported types and files above max bytes.
func CheckUpload(contentType string, size, max int64) error {
	if _, err := Extension(contentType); err != nil {
		return err
	}
	if max > 0 && size > max {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, size, max)
	}
	return nil
}

func knownBucket(bucket string) bool {
	for _, b := range Buckets {
		if b == bucket {
			return true
		}
	}
	return false
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ContentKey names report and event photos: a sortable unique id followed
// by a cleaned copy of the original file name.
func ContentKey(filename string) string {
	base := unsafeName.ReplaceAllString(path.Base(filename), "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "photo"
	}
	return xid.New().String() + "-" + base
}

// PostPhotoKey is "<userID>/<unix ms>.<ext>".
func PostPhotoKey(userID string, ext string, now time.Time) string {
	return userID + "/" + strconv.FormatInt(now.UnixMilli(), 10) + "." + ext
}

// ProfilePictureKey is stable per user so uploads replace the old picture.
func ProfilePictureKey(userID string) string {
	return userID + ".jpeg"
}

// CacheBusted appends a timestamp so clients refetch a replaced object.
func CacheBusted(rawURL string, now time.Time) string {
	return rawURL + "?t=" + strconv.FormatInt(now.UnixMilli(), 10)
}

// KeyFromURL recovers the object key from a public URL for bucket.
func KeyFromURL(rawURL, bucket string) (string, bool) {
	if rawURL == "" {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	marker := "/" + bucket + "/"
	i := strings.LastIndex(u.Path, marker)
	if i < 0 {
		return "", false
	}
	key := u.Path[i+len(marker):]
	if key == "" {
		return "", false
	}
	return key, true
}

func publicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}
