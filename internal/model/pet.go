package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pet owns a care calendar. All events and reminders are scoped to one pet.
type Pet struct {
	ID            string `gorm:"primaryKey"`
	Name          string
	PetType       string `gorm:"default:dog"`
	CustomPetType string
	Birthday      *time.Time
	Breed         string
	Weight        *float64
	Gender        string
	Features      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Pet) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// DisplayPetType resolves the "other" type to its custom label when present.
func (p *Pet) DisplayPetType() string {
	if p.PetType == "other" && p.CustomPetType != "" {
		return p.CustomPetType
	}
	return p.PetType
}
