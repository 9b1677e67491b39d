// internal/services/storage_service_test.go
package services

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageHeader(filename, contentType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: filename,
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
}

func testUploadOptions() UploadOptions {
	return UploadOptions{
		Folder:   "products",
		MaxSize:  10 << 20,
		MaxFiles: 5,
	}
}

func TestValidateFileAccepted(t *testing.T) {
	err := ValidateFile(imageHeader("photo.jpg", "image/jpeg", 1024), testUploadOptions())
	assert.Nil(t, err)
}

func TestValidateFileTooLarge(t *testing.T) {
	err := ValidateFile(imageHeader("photo.jpg", "image/jpeg", (10<<20)+1), testUploadOptions())
	require.NotNil(t, err)
	assert.Equal(t, UploadErrFileTooLarge, err.Code)
}

func TestValidateFileBadExtension(t *testing.T) {
	err := ValidateFile(imageHeader("malware.exe", "image/jpeg", 1024), testUploadOptions())
	require.NotNil(t, err)
	assert.Equal(t, UploadErrInvalidFileType, err.Code)
}

func TestValidateFileBadContentType(t *testing.T) {
	err := ValidateFile(imageHeader("photo.jpg", "application/pdf", 1024), testUploadOptions())
	require.NotNil(t, err)
	assert.Equal(t, UploadErrInvalidFileType, err.Code)
}

func TestValidateFileExtensionCaseInsensitive(t *testing.T) {
	err := ValidateFile(imageHeader("PHOTO.JPG", "image/jpeg", 1024), testUploadOptions())
	assert.Nil(t, err)
}

func TestValidateFilesTooMany(t *testing.T) {
	files := make([]*multipart.FileHeader, 6)
	for i := range files {
		files[i] = imageHeader("photo.png", "image/png", 512)
	}

	err := ValidateFiles(files, testUploadOptions())
	require.NotNil(t, err)
	assert.Equal(t, UploadErrTooManyFiles, err.Code)
}

func TestValidateFilesReportsFirstBadFile(t *testing.T) {
	files := []*multipart.FileHeader{
		imageHeader("ok.png", "image/png", 512),
		imageHeader("notes.txt", "text/plain", 512),
	}

	err := ValidateFiles(files, testUploadOptions())
	require.NotNil(t, err)
	assert.Equal(t, UploadErrInvalidFileType, err.Code)
}

func TestBuildImageURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		key     string
		want    string
	}{
		{"plain join", "http://localhost:8080", "uploads/products/a.jpg", "http://localhost:8080/uploads/products/a.jpg"},
		{"trailing slash on base", "http://localhost:8080/", "uploads/products/a.jpg", "http://localhost:8080/uploads/products/a.jpg"},
		{"leading slash on key", "http://localhost:8080", "/uploads/products/a.jpg", "http://localhost:8080/uploads/products/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildImageURL(tt.baseURL, tt.key))
		})
	}
}
