package models

// StatusPendingConfirmation is the only status a DetectionResult ever carries.
// The caller either confirms one of the suggestions or falls back to manual entry.
const StatusPendingConfirmation = "pending_confirmation"

// LanguageUnknown is reported when the front face produced no text.
const LanguageUnknown = "unknown"

// MaxSuggestions caps the number of catalog candidates returned per scan.
const MaxSuggestions = 5

// CandidateCard is one catalog record offered as a possible match.
// Optional fields are nil when the catalog record omits them. A price the
// catalog reports as null keeps its key with a nil value.
type CandidateCard struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Set    *string             `json:"set"`
	Number *string             `json:"number"`
	Rarity *string             `json:"rarity"`
	Image  *string             `json:"image"`
	Prices map[string]*float64 `json:"prices"`
}

// IdentifierSet holds the identifiers extracted from one face.
// An empty string means the identifier was not found.
type IdentifierSet struct {
	Name   string `json:"name,omitempty"`
	Number string `json:"number,omitempty"`
}

func (s IdentifierSet) HasName() bool   { return s.Name != "" }
func (s IdentifierSet) HasNumber() bool { return s.Number != "" }

// Outcome tags how a pipeline stage ended.
type Outcome string

const (
	OutcomeExtracted       Outcome = "extracted"
	OutcomeNotFound        Outcome = "not_found"
	OutcomeUpstreamFailure Outcome = "upstream_failure"
	OutcomeSkipped         Outcome = "skipped"
)

// StageResult records the outcome of a single stage. Detail carries the
// upstream error message for failures.
type StageResult struct {
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
}

// Diagnostics keeps "nothing found" and "service unreachable" apart even though
// both degrade the user-visible result the same way.
type Diagnostics struct {
	OCR      StageResult `json:"ocr"`
	Language StageResult `json:"language"`
	Name     StageResult `json:"name"`
	Number   StageResult `json:"number"`
	Query    StageResult `json:"query"`
	Catalog  StageResult `json:"catalog"`
}

// ScanImages holds the storage keys for both uploaded faces.
type ScanImages struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// DetectionResult is the response of a card scan.
type DetectionResult struct {
	RawText     string          `json:"raw_text"`
	Language    string          `json:"language"`
	PokemonName *string         `json:"pokemon_name"`
	CardNumber  *string         `json:"card_number"`
	Query       string          `json:"query,omitempty"`
	Suggestions []CandidateCard `json:"suggestions"`
	Status      string          `json:"status"`
	Images      ScanImages      `json:"images"`
	Diagnostics Diagnostics     `json:"diagnostics"`
}
