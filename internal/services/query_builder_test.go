package services

import (
	"errors"
	"testing"

	"github.com/LooWze/LooWzeIA/internal/models"
)

func TestBuildCatalogQuery(t *testing.T) {
	tests := []struct {
		name     string
		ids      models.IdentifierSet
		expected string
		wantErr  error
	}{
		{"Name and number", models.IdentifierSet{Name: "Pikachu", Number: "58/102"}, "name:Pikachu number:58/102", nil},
		{"Number only", models.IdentifierSet{Number: "4/102"}, "number:4/102", nil},
		{"Name only", models.IdentifierSet{Name: "Dracaufeu"}, "name:Dracaufeu", nil},
		{"Nothing", models.IdentifierSet{}, "", ErrNoQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := BuildCatalogQuery(tt.ids)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if query != tt.expected {
				t.Errorf("Expected query %q, got %q", tt.expected, query)
			}
		})
	}
}

func TestPipelineOnSampleText(t *testing.T) {
	query, err := BuildCatalogQuery(ExtractIdentifiers("Pikachu Basic 60 HP 58/102 Thunder Shock"))
	if err != nil {
		t.Fatalf("BuildCatalogQuery failed: %v", err)
	}
	if query != "name:Pikachu number:58/102" {
		t.Errorf("Expected 'name:Pikachu number:58/102', got %q", query)
	}
}
