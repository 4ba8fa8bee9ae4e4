package repository

import (
	"errors"
	"fmt"
	"log"

	"github.com/anasmostafa23/Safety-Hub/models"

	"gorm.io/gorm"
)

// TemplateRepository stores admitted checklist definitions. Rows are
// append-only; only the is_active flag ever changes after admission.
type TemplateRepository interface {
	Insert(record *models.TemplateRecord) error
	GetByID(id string) (*models.TemplateRecord, error)
	GetActive() (*models.TemplateRecord, error)
	List() ([]models.TemplateRecord, error)
	SetActive(id string) error
	ExistsByName(name string) (bool, error)
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a GORM-backed template repository.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Insert(record *models.TemplateRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		log.Printf("ERROR: [TemplateRepository] Failed to insert template '%s': %v", record.Name, err)
		return fmt.Errorf("failed to insert template '%s': %w", record.Name, err)
	}
	log.Printf("INFO: [TemplateRepository] Admitted template '%s' (ID %s).", record.Name, record.ID)
	return nil
}

func (r *templateRepository) GetByID(id string) (*models.TemplateRecord, error) {
	var record models.TemplateRecord
	err := r.db.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template '%s': %w", id, err)
	}
	return &record, nil
}

func (r *templateRepository) GetActive() (*models.TemplateRecord, error) {
	var record models.TemplateRecord
	err := r.db.First(&record, "is_active = ?", true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active template: %w", err)
	}
	return &record, nil
}

func (r *templateRepository) List() ([]models.TemplateRecord, error) {
	var records []models.TemplateRecord
	if err := r.db.Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return records, nil
}

// SetActive activates one template and deactivates all others in a single
// transaction (last-write-wins).
func (r *templateRepository) SetActive(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var record models.TemplateRecord
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.TemplateRecord{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.TemplateRecord{}).Where("id = ?", id).
			Update("is_active", true).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("template '%s' not found", id)
	}
	if err != nil {
		log.Printf("ERROR: [TemplateRepository] Failed to activate template '%s': %v", id, err)
		return fmt.Errorf("failed to activate template '%s': %w", id, err)
	}
	log.Printf("INFO: [TemplateRepository] Template '%s' is now active.", id)
	return nil
}

func (r *templateRepository) ExistsByName(name string) (bool, error) {
	var n int64
	if err := r.db.Model(&models.TemplateRecord{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check template name '%s': %w", name, err)
	}
	return n > 0, nil
}
