package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/LooWze/LooWzeIA/internal/metrics"
	"github.com/LooWze/LooWzeIA/internal/models"
)

// ErrEmptyImage is returned when an upload carries no bytes.
var ErrEmptyImage = errors.New("empty image data")

const (
	defaultImageExtension = ".bin"
	maxExtensionLength    = 5
)

// ImageUpload is one face as received from the caller.
type ImageUpload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ImageStore persists both faces of a scan and returns their storage keys.
type ImageStore interface {
	StoreScan(ctx context.Context, userID uint, front, back ImageUpload) (models.ScanImages, error)
}

// ImageStorageService handles storing scanned card images on disk. When db is
// set, every stored face is also recorded as an UploadedImage row.
type ImageStorageService struct {
	storageDir string
	db         *gorm.DB
}

// NewImageStorageService creates the storage directory if needed. db may be nil.
func NewImageStorageService(storageDir string, db *gorm.DB) (*ImageStorageService, error) {
	if storageDir == "" {
		storageDir = "./data/uploads"
	}
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create uploads directory: %w", err)
	}
	return &ImageStorageService{storageDir: storageDir, db: db}, nil
}

// StorageKey derives the content-addressed key for data. The caller's filename
// only contributes a sanitized extension.
func StorageKey(data []byte, filename string) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + sanitizeExtension(filename)
}

func sanitizeExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	ext = strings.TrimPrefix(ext, ".")

	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" || len(clean) > maxExtensionLength {
		return defaultImageExtension
	}
	if clean == "jpeg" {
		clean = "jpg"
	}
	return "." + clean
}

// SaveImage writes data under its content-addressed key and returns the key.
// Saving the same bytes twice leaves the existing file in place.
func (s *ImageStorageService) SaveImage(data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}

	key := StorageKey(data, filename)
	path := s.Path(key)
	if _, err := os.Stat(path); err == nil {
		return key, nil
	}

	tmp, err := os.CreateTemp(s.storageDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return key, nil
}

// StoreScan writes both faces and then records their metadata in one
// transaction, so a failed scan never leaves a lone UploadedImage row. A file
// written before the failure stays on disk under its content key, where the
// next upload of the same bytes reuses it.
func (s *ImageStorageService) StoreScan(ctx context.Context, userID uint, front, back ImageUpload) (models.ScanImages, error) {
	frontKey, err := s.SaveImage(front.Data, front.Filename)
	if err != nil {
		return models.ScanImages{}, fmt.Errorf("store front image: %w", err)
	}
	backKey, err := s.SaveImage(back.Data, back.Filename)
	if err != nil {
		return models.ScanImages{}, fmt.Errorf("store back image: %w", err)
	}

	if s.db != nil {
		records := []models.UploadedImage{
			uploadRecord(userID, models.FaceFront, frontKey, front),
			uploadRecord(userID, models.FaceBack, backKey, back),
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(&records).Error
		})
		if err != nil {
			return models.ScanImages{}, fmt.Errorf("failed to record upload: %w", err)
		}
	}

	metrics.UploadedBytesTotal.WithLabelValues(string(models.FaceFront)).Add(float64(len(front.Data)))
	metrics.UploadedBytesTotal.WithLabelValues(string(models.FaceBack)).Add(float64(len(back.Data)))
	return models.ScanImages{Front: frontKey, Back: backKey}, nil
}

func uploadRecord(userID uint, face models.Face, key string, img ImageUpload) models.UploadedImage {
	return models.UploadedImage{
		UserID:           userID,
		Face:             face,
		StorageKey:       key,
		OriginalFilename: img.Filename,
		ContentType:      img.ContentType,
		Size:             int64(len(img.Data)),
	}
}

// Path returns the on-disk location of a storage key.
func (s *ImageStorageService) Path(key string) string {
	return filepath.Join(s.storageDir, key)
}

// GetStorageDir returns the storage directory path
func (s *ImageStorageService) GetStorageDir() string {
	return s.storageDir
}
