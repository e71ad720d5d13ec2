package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LooWze/LooWzeIA/internal/models"
)

func TestSanitizeExtension(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"front.jpg", ".jpg"},
		{"FRONT.JPEG", ".jpg"},
		{"scan.png", ".png"},
		{"../../etc/passwd", ".bin"},
		{"card.p/ng", ".bin"},
		{"weird.ph$p", ".php"},
		{"noextension", ".bin"},
		{"archive.verylongext", ".bin"},
		{"", ".bin"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := sanitizeExtension(tt.filename); got != tt.expected {
				t.Errorf("sanitizeExtension(%q) = %q, want %q", tt.filename, got, tt.expected)
			}
		})
	}
}

func TestStorageKeyIsContentAddressed(t *testing.T) {
	a := StorageKey([]byte("same bytes"), "one.jpg")
	b := StorageKey([]byte("same bytes"), "two.jpg")
	c := StorageKey([]byte("other bytes"), "one.jpg")

	if a != b {
		t.Errorf("Expected filename to not affect key, got %s and %s", a, b)
	}
	if a == c {
		t.Error("Expected different content to produce different keys")
	}
	if !strings.HasSuffix(a, ".jpg") || len(a) != 64+len(".jpg") {
		t.Errorf("Expected sha256 hex plus extension, got %s", a)
	}
}

func TestImageStorageService_SaveImage(t *testing.T) {
	svc, err := NewImageStorageService(filepath.Join(t.TempDir(), "uploads"), nil)
	if err != nil {
		t.Fatalf("NewImageStorageService failed: %v", err)
	}

	data := []byte("fake jpeg bytes")
	key, err := svc.SaveImage(data, "recto.jpg")
	if err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	stored, err := os.ReadFile(svc.Path(key))
	if err != nil {
		t.Fatalf("read stored image: %v", err)
	}
	if string(stored) != string(data) {
		t.Error("Expected stored bytes to match upload")
	}

	again, err := svc.SaveImage(data, "renamed.jpg")
	if err != nil {
		t.Fatalf("second SaveImage failed: %v", err)
	}
	if again != key {
		t.Errorf("Expected same key for same content, got %s and %s", key, again)
	}

	entries, _ := os.ReadDir(svc.GetStorageDir())
	if len(entries) != 1 {
		t.Errorf("Expected a single stored file, got %d", len(entries))
	}

	if _, err := svc.SaveImage(nil, "empty.jpg"); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
}

func TestImageStorageService_StoreScan(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewImageStorageService(t.TempDir(), db)
	if err != nil {
		t.Fatalf("NewImageStorageService failed: %v", err)
	}

	front := ImageUpload{Data: []byte("front face"), Filename: "recto.jpg", ContentType: "image/jpeg"}
	back := ImageUpload{Data: []byte("back face"), Filename: "verso.png", ContentType: "image/png"}
	images, err := svc.StoreScan(context.Background(), 7, front, back)
	if err != nil {
		t.Fatalf("StoreScan failed: %v", err)
	}
	if images.Front != StorageKey(front.Data, front.Filename) || images.Back != StorageKey(back.Data, back.Filename) {
		t.Errorf("Unexpected keys: %+v", images)
	}

	var record models.UploadedImage
	if err := db.Where("storage_key = ?", images.Back).First(&record).Error; err != nil {
		t.Fatalf("Expected upload record, got %v", err)
	}
	if record.UserID != 7 || record.Face != models.FaceBack {
		t.Errorf("Unexpected record owner/face: %+v", record)
	}
	if record.OriginalFilename != "verso.png" || record.ContentType != "image/png" || record.Size != 9 {
		t.Errorf("Unexpected record metadata: %+v", record)
	}

	var count int64
	db.Model(&models.UploadedImage{}).Count(&count)
	if count != 2 {
		t.Errorf("Expected 2 upload records, got %d", count)
	}
}

func TestImageStorageService_StoreScanBackFailureRecordsNothing(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewImageStorageService(t.TempDir(), db)
	if err != nil {
		t.Fatalf("NewImageStorageService failed: %v", err)
	}

	front := ImageUpload{Data: []byte("front face"), Filename: "recto.jpg"}
	_, err = svc.StoreScan(context.Background(), 7, front, ImageUpload{Filename: "verso.jpg"})
	if !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("Expected ErrEmptyImage for the back face, got %v", err)
	}

	var count int64
	db.Model(&models.UploadedImage{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no upload records after a failed scan, got %d", count)
	}

	// The front file stays under its content key and is reused on retry.
	images, err := svc.StoreScan(context.Background(), 7, front, ImageUpload{Data: []byte("back face"), Filename: "verso.jpg"})
	if err != nil {
		t.Fatalf("retry StoreScan failed: %v", err)
	}
	entries, _ := os.ReadDir(svc.GetStorageDir())
	if len(entries) != 2 {
		t.Errorf("Expected front and back files only, got %d entries", len(entries))
	}
	db.Model(&models.UploadedImage{}).Where("storage_key = ?", images.Front).Count(&count)
	if count != 1 {
		t.Errorf("Expected one front record after retry, got %d", count)
	}
}

func TestImageStorageService_StoreScanUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewImageStorageService(dir, nil)
	if err != nil {
		t.Fatalf("NewImageStorageService failed: %v", err)
	}
	os.RemoveAll(dir)

	img := ImageUpload{Data: []byte("x")}
	if _, err := svc.StoreScan(context.Background(), 1, img, img); err == nil {
		t.Error("Expected error when storage directory is gone")
	}
}
