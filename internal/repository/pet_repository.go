package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"petcal/internal/model"
)

// PetRepository handles CRUD for pets.
type PetRepository struct {
	db *gorm.DB
}

func NewPetRepository(db *gorm.DB) *PetRepository {
	return &PetRepository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *PetRepository) WithTx(tx *gorm.DB) *PetRepository {
	return &PetRepository{db: tx}
}

func (r *PetRepository) Create(ctx context.Context, pet *model.Pet) error {
	if err := r.db.WithContext(ctx).Create(pet).Error; err != nil {
		return fmt.Errorf("create pet: %w", err)
	}
	return nil
}

func (r *PetRepository) FindByID(ctx context.Context, id string) (*model.Pet, error) {
	var pet model.Pet
	if err := r.db.WithContext(ctx).First(&pet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

func (r *PetRepository) ListAll(ctx context.Context) ([]model.Pet, error) {
	var pets []model.Pet
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&pets).Error; err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	return pets, nil
}

func (r *PetRepository) Save(ctx context.Context, pet *model.Pet) error {
	if err := r.db.WithContext(ctx).Save(pet).Error; err != nil {
		return fmt.Errorf("save pet: %w", err)
	}
	return nil
}

// Delete removes the pet together with its events and reminders.
func (r *PetRepository) Delete(ctx context.Context, petID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pet_id = ?", petID).Delete(&model.ReminderSettings{}).Error; err != nil {
			return fmt.Errorf("delete pet reminders: %w", err)
		}
		if err := tx.Where("pet_id = ?", petID).Delete(&model.Event{}).Error; err != nil {
			return fmt.Errorf("delete pet events: %w", err)
		}
		if err := tx.Delete(&model.Pet{}, "id = ?", petID).Error; err != nil {
			return fmt.Errorf("delete pet: %w", err)
		}
		return nil
	})
}
