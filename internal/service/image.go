package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxImageSize is the upload ceiling: 10 MiB.
const MaxImageSize = 10 << 20

// ErrInvalidImage is returned for uploads outside the accepted type set or
// over the size limit. Nothing is written to storage in that case.
var ErrInvalidImage = errors.New("only image files up to 10MB are allowed")

var allowedImageExts = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ValidateImage checks extension, declared content type and size before any
// byte is persisted.
func ValidateImage(fh *multipart.FileHeader) error {
	if fh.Size > MaxImageSize {
		return ErrInvalidImage
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	want, ok := allowedImageExts[ext]
	if !ok {
		return ErrInvalidImage
	}

	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != want {
		return ErrInvalidImage
	}
	return nil
}

// ImageStore persists uploaded recipe images and returns the URL recorded on
// the recipe row.
type ImageStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
	Remove(ctx context.Context, imageURL string) error
}

// LocalImageStore writes uploads to a server-local directory served under
// /uploads/.
type LocalImageStore struct {
	dir    string
	logger *zap.Logger
}

// NewLocalImageStore creates the upload directory if needed.
func NewLocalImageStore(dir string, logger *zap.Logger) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalImageStore{dir: dir, logger: logger}, nil
}

// Dir returns the directory uploads are written to.
func (s *LocalImageStore) Dir() string {
	return s.dir
}

func (s *LocalImageStore) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if err := ValidateImage(fh); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = src.Close() }()

	name := uuid.New().String() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return "/uploads/" + name, nil
}

// Remove deletes a previously stored file. Only paths under /uploads/ are
// touched; anything else (external URLs, S3 objects) is left alone.
func (s *LocalImageStore) Remove(ctx context.Context, imageURL string) error {
	name, ok := strings.CutPrefix(imageURL, "/uploads/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// S3ImageStore uploads images to an S3 bucket and records the public URL.
type S3ImageStore struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

func NewS3ImageStore(client *s3.Client, bucket string, logger *zap.Logger) *S3ImageStore {
	return &S3ImageStore{client: client, bucket: bucket, logger: logger}
}

func (s *S3ImageStore) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if err := ValidateImage(fh); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = src.Close() }()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	key := fmt.Sprintf("recipe-images/%s%s", uuid.New().String(), ext)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(allowedImageExts[ext]),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
	s.logger.Info("uploaded recipe image to S3", zap.String("url", publicURL))
	return publicURL, nil
}

// Remove is a no-op for S3: object expiry is owned by bucket lifecycle rules.
func (s *S3ImageStore) Remove(ctx context.Context, imageURL string) error {
	return nil
}
