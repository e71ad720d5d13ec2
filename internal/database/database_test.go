package database

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LooWze/LooWzeIA/internal/models"
)

func TestInitializeInMemory(t *testing.T) {
	db, err := Initialize("file::memory:", false, nil)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	for _, table := range []any{&models.User{}, &models.OwnedCard{}, &models.UploadedImage{}} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table for %T to exist", table)
		}
	}
}

func TestInitializeLogsThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	db, err := Initialize("file::memory:", true, log)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	db.Create(&models.User{Email: "ash@example.com", PasswordHash: "x"})

	sawSQL := false
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Expected every log line to be JSON, got %q", line)
		}
		if strings.Contains(line, "owned_cards") {
			sawSQL = true
			if entry["component"] != "gorm" {
				t.Errorf("Expected SQL lines tagged with component gorm, got %v", entry)
			}
		}
	}
	if !sawSQL {
		t.Errorf("Expected verbose mode to log SQL, got %s", buf.String())
	}
}

func TestMigrateFinishField(t *testing.T) {
	db, err := Initialize("file::memory:", false, nil)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	user := models.User{Email: "ash@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	cards := []models.OwnedCard{
		{UserID: user.ID, Name: "Pikachu", Finish: "holo"},
		{UserID: user.ID, Name: "Raichu", Finish: "reverse holo"},
		{UserID: user.ID, Name: "Evoli", Finish: "Normal"},
		{UserID: user.ID, Name: "Mew", Finish: "Shadowless"},
	}
	if err := db.Create(&cards).Error; err != nil {
		t.Fatalf("create cards: %v", err)
	}
	if err := db.Exec(`UPDATE owned_cards SET finish = '' WHERE name = 'Evoli'`).Error; err != nil {
		t.Fatalf("blank finish: %v", err)
	}

	if err := RunMigrations(db, nil); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	expected := map[string]models.Finish{
		"Pikachu": models.FinishHolofoil,
		"Raichu":  models.FinishReverseHolo,
		"Evoli":   models.FinishNormal,
		"Mew":     "Shadowless",
	}
	var got []models.OwnedCard
	db.Find(&got)
	for _, c := range got {
		if c.Finish != expected[c.Name] {
			t.Errorf("%s: expected finish %q, got %q", c.Name, expected[c.Name], c.Finish)
		}
	}
}

func TestCleanupDuplicateUsers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	db, err := Initialize(path, false, nil)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// Simulate a legacy table without the unique index.
	if err := db.Migrator().DropTable(&models.User{}); err != nil {
		t.Fatalf("drop users: %v", err)
	}
	if err := db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, email TEXT NOT NULL, password_hash TEXT NOT NULL, created_at DATETIME)`).Error; err != nil {
		t.Fatalf("create legacy users: %v", err)
	}
	db.Exec(`INSERT INTO users (email, password_hash) VALUES ('Misty@Example.com ', 'a'), ('misty@example.com', 'b'), ('brock@example.com', 'c')`)

	sqlDB, _ := db.DB()
	sqlDB.Close()

	db, err = Initialize(path, false, nil)
	if err != nil {
		t.Fatalf("re-Initialize failed: %v", err)
	}

	var users []models.User
	db.Order("id").Find(&users)
	if len(users) != 2 {
		t.Fatalf("Expected 2 users after cleanup, got %d", len(users))
	}
	if users[0].Email != "misty@example.com" || users[0].PasswordHash != "a" {
		t.Errorf("Expected oldest misty account kept and normalized, got %+v", users[0])
	}
}
