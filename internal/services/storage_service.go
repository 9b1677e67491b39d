// internal/services/storage_service.go
package services

import (
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lokapasar/lokapasar-backend/internal/config"
)

// Upload error codes surfaced to clients.
const (
	UploadErrFileTooLarge    = "FILE_TOO_LARGE"
	UploadErrTooManyFiles    = "TOO_MANY_FILES"
	UploadErrUnexpectedField = "UNEXPECTED_FIELD"
	UploadErrInvalidFileType = "INVALID_FILE_TYPE"
)

type UploadError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *UploadError) Error() string {
	return e.Message
}

type UploadOptions struct {
	Folder   string
	MaxSize  int64
	MaxFiles int
}

type StorageService struct {
	s3Client *s3.S3
	cfg      *config.Config
}

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		// Local disk storage when S3 is not configured
		return &StorageService{cfg: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		cfg:      cfg,
	}, nil
}

// ProductUploadOptions limits product image uploads.
func (s *StorageService) ProductUploadOptions() UploadOptions {
	return UploadOptions{
		Folder:   "products",
		MaxSize:  s.cfg.Upload.MaxFileSize,
		MaxFiles: s.cfg.Upload.MaxFilesPerRequest,
	}
}

// ProfileUploadOptions limits profile picture uploads.
func (s *StorageService) ProfileUploadOptions() UploadOptions {
	return UploadOptions{
		Folder:   "profiles",
		MaxSize:  s.cfg.Upload.MaxProfilePicSize,
		MaxFiles: 1,
	}
}

// ValidateFiles checks count, per-file size, extension and MIME family before
// anything is written.
func ValidateFiles(files []*multipart.FileHeader, opts UploadOptions) *UploadError {
	if len(files) > opts.MaxFiles {
		return &UploadError{
			Code:    UploadErrTooManyFiles,
			Message: fmt.Sprintf("at most %d files allowed per upload", opts.MaxFiles),
		}
	}

	for _, header := range files {
		if err := ValidateFile(header, opts); err != nil {
			return err
		}
	}

	return nil
}

func ValidateFile(header *multipart.FileHeader, opts UploadOptions) *UploadError {
	if header.Size > opts.MaxSize {
		return &UploadError{
			Code:    UploadErrFileTooLarge,
			Message: fmt.Sprintf("file %s exceeds the %d byte limit", header.Filename, opts.MaxSize),
		}
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		return &UploadError{
			Code:    UploadErrInvalidFileType,
			Message: fmt.Sprintf("file extension %s is not allowed", ext),
		}
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return &UploadError{
			Code:    UploadErrInvalidFileType,
			Message: fmt.Sprintf("content type %s is not an image", contentType),
		}
	}

	return nil
}

// SaveFile stores one validated file and returns the relative key recorded on
// the owning document, e.g. "uploads/products/20240115_ab12cd34.jpg".
func (s *StorageService) SaveFile(header *multipart.FileHeader, opts UploadOptions) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	key := path.Join("uploads", opts.Folder, s.generateFileName(header.Filename))

	if s.s3Client != nil {
		contentType := header.Header.Get("Content-Type")
		_, err = s.s3Client.PutObject(&s3.PutObjectInput{
			Bucket:        aws.String(s.cfg.AWS.S3Bucket),
			Key:           aws.String(key),
			Body:          file,
			ContentType:   aws.String(contentType),
			ContentLength: aws.Int64(header.Size),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload to S3: %w", err)
		}
		return key, nil
	}

	dst := filepath.Join(s.cfg.Upload.Dir, opts.Folder, path.Base(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := out.ReadFrom(file); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return key, nil
}

// DeleteFile removes a stored file. Failures are logged by callers and never
// abort the parent operation.
func (s *StorageService) DeleteFile(key string) error {
	if s.s3Client != nil {
		_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.AWS.S3Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("failed to delete file from S3: %w", err)
		}
		return nil
	}

	local := filepath.Join(s.cfg.Upload.Dir, strings.TrimPrefix(key, "uploads/"))
	if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// DeleteFiles removes a batch of stored files best-effort.
func (s *StorageService) DeleteFiles(keys []string) {
	for _, key := range keys {
		if err := s.DeleteFile(key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Failed to delete stored file")
		}
	}
}

// URL derives the absolute display URL for a relative key. Absolute URLs are
// never persisted.
func (s *StorageService) URL(key string) string {
	return BuildImageURL(s.cfg.BaseURL, key)
}

func (s *StorageService) URLs(keys []string) []string {
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		urls = append(urls, s.URL(key))
	}
	return urls
}

func BuildImageURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(key, "/")
}

func (s *StorageService) generateFileName(originalName string) string {
	id := uuid.New()
	ext := strings.ToLower(filepath.Ext(originalName))
	timestamp := time.Now().Format("20060102")
	return fmt.Sprintf("%s_%s%s", timestamp, id.String()[:8], ext)
}
