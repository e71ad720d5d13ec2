package models

import (
	"strings"
)

// Finish is the physical printing variant of an owned card.
type Finish string

const (
	FinishNormal      Finish = "Normal"
	FinishHolofoil    Finish = "Holofoil"
	FinishReverseHolo Finish = "Reverse Holofoil"
	Finish1stEdition  Finish = "1st Edition"
)

// AllFinishes returns the known finish values.
func AllFinishes() []Finish {
	return []Finish{
		FinishNormal,
		FinishHolofoil,
		FinishReverseHolo,
		Finish1stEdition,
	}
}

// IsFoilVariant returns true for holographic finishes.
// 1st Edition is a print run, not a foil treatment.
func (f Finish) IsFoilVariant() bool {
	return f == FinishHolofoil || f == FinishReverseHolo
}

// NormalizeFinish maps free-form finish input to a Finish.
// Empty input is Normal; unrecognized values are kept as typed (trimmed) so
// users can record finishes this list doesn't know about.
func NormalizeFinish(finish string) Finish {
	trimmed := strings.TrimSpace(finish)
	switch strings.ToLower(trimmed) {
	case "", "normal", "regular", "non-holo", "nonholo":
		return FinishNormal
	case "holo", "holofoil", "foil", "holo rare":
		return FinishHolofoil
	case "reverse", "reverse holo", "reverse holofoil", "reverseholofoil", "reverse foil":
		return FinishReverseHolo
	case "1st edition", "first edition", "1st", "1st ed":
		return Finish1stEdition
	default:
		return Finish(trimmed)
	}
}
