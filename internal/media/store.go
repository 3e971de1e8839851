// Package media imports remote product images into object storage and
// records them as attachments.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	ErrNotImage = errors.New("not an image")
	ErrTooLarge = errors.New("image exceeds size limit")
	ErrDisabled = errors.New("image import is not configured")
)

// Attachment is a stored media file.
type Attachment struct {
	ProductID int64
	// File is the object path relative to the public upload base URL,
	// e.g. "2026/10/0b6c….jpg".
	File     string
	URL      string
	MimeType string
	Size     int64
}

// Fetcher opens a remote resource for reading.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (io.ReadCloser, error)
}

// Uploader is the subset of *manager.Uploader used here.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Recorder persists attachment records.
type Recorder interface {
	CreateAttachment(ctx context.Context, a Attachment) (int64, error)
}

// Options configures an ImageStore.
type Options struct {
	Bucket string
	// Prefix is prepended to every object key, without a trailing slash.
	Prefix string
	// MaxBytes limits the size of a fetched image. Zero means 10 MiB.
	MaxBytes int64
	Logger   *slog.Logger
}

// ImageStore fetches images, uploads them to S3 and records attachments.
// It implements importer.ImageFetcher.
type ImageStore struct {
	fetcher  Fetcher
	uploader Uploader
	recorder Recorder
	opts     Options
	now      func() time.Time
}

// NewImageStore creates an ImageStore.
func NewImageStore(f Fetcher, u Uploader, r Recorder, opts Options) *ImageStore {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 << 20
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Prefix = strings.Trim(opts.Prefix, "/")
	return &ImageStore{fetcher: f, uploader: u, recorder: r, opts: opts, now: time.Now}
}

// FetchImage downloads ref, checks that it is an image, stores it and
// returns the new attachment id.
func (s *ImageStore) FetchImage(ctx context.Context, ref string, productID int64) (int64, error) {
	body, err := s.fetcher.Fetch(ctx, ref)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, s.opts.MaxBytes+1))
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", ref, err)
	}
	if int64(len(data)) > s.opts.MaxBytes {
		return 0, fmt.Errorf("%s: %w", ref, ErrTooLarge)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return 0, fmt.Errorf("%s is %s: %w", ref, mimeType, ErrNotImage)
	}

	file := s.objectPath(ref, mimeType)
	key := file
	if s.opts.Prefix != "" {
		key = s.opts.Prefix + "/" + file
	}

	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return 0, fmt.Errorf("upload %s: %w", key, err)
	}

	id, err := s.recorder.CreateAttachment(ctx, Attachment{
		ProductID: productID,
		File:      file,
		URL:       out.Location,
		MimeType:  mimeType,
		Size:      int64(len(data)),
	})
	if err != nil {
		return 0, fmt.Errorf("record attachment %s: %w", key, err)
	}

	s.opts.Logger.Info("image imported",
		"source", ref,
		"key", key,
		"attachment_id", id,
		"bytes", len(data),
	)
	return id, nil
}

// objectPath returns yyyy/mm/<uuid><ext>.
func (s *ImageStore) objectPath(ref, mimeType string) string {
	now := s.now().UTC()
	return fmt.Sprintf("%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), extension(ref, mimeType))
}

var imageExtensions = map[string]string{
	"image/jpeg":   ".jpg",
	"image/png":    ".png",
	"image/gif":    ".gif",
	"image/webp":   ".webp",
	"image/bmp":    ".bmp",
	"image/x-icon": ".ico",
}

func extension(ref, mimeType string) string {
	if ext, ok := imageExtensions[mimeType]; ok {
		return ext
	}
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return strings.ToLower(path.Ext(ref))
}

// Disabled stands in for an ImageStore when no bucket is configured.
// Local media references still resolve; remote ones fail the row.
type Disabled struct{}

func (Disabled) FetchImage(context.Context, string, int64) (int64, error) {
	return 0, ErrDisabled
}
