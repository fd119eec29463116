package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/kochbuch/backend/config"
)

var (
	// ErrUnsupportedImageType is returned for uploads that are not JPEG,
	// PNG or WebP.
	ErrUnsupportedImageType = errors.New("only JPEG, PNG, and WebP images are allowed")

	// ErrImageStorageUnavailable is returned when no object storage is
	// configured.
	ErrImageStorageUnavailable = errors.New("image storage is not configured")

	// ErrNoImage is returned when a recipe has no image to remove.
	ErrNoImage = errors.New("no image found for this recipe")
)

// allowedImageTypes maps accepted content types to the stored file extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ImageService stores recipe images in S3 under random keys.
type ImageService struct {
	s3Config *config.S3Config
}

// NewImageService creates a new ImageService instance.
func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// Upload validates and stores one image, returning the generated filename
// under which it can be referenced.
func (s *ImageService) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", ErrUnsupportedImageType
	}

	filename := fmt.Sprintf("%s.%s", uuid.New().String(), ext)

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(filename),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	log.Printf("[ImageService] uploaded image %s", filename)
	return filename, nil
}

// Delete removes a stored image.
func (s *ImageService) Delete(ctx context.Context, filename string) error {
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(filename),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", filename, err)
	}
	return nil
}

// URL returns the public URL for a stored image.
func (s *ImageService) URL(filename string) string {
	return s.s3Config.ObjectURL(filename)
}
